// Package testutil provides shared test helpers for setting up content
// stores and catalog databases.
package testutil

import (
	"os"
	"testing"

	"github.com/sanhik/contentos/internal/catalog"
	"github.com/sanhik/contentos/internal/storage"
	"github.com/sanhik/contentos/internal/vcs"
)

// TestDB creates a temporary SQLite catalog that is automatically cleaned up.
func TestDB(t *testing.T) *catalog.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "contentos-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := catalog.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestStore creates a temporary content-store directory with a provider.
func TestStore(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// TestRepo creates a repository over a temporary content store.
func TestRepo(t *testing.T) (string, *vcs.Repository) {
	t.Helper()
	dir, store := TestStore(t)
	return dir, vcs.NewRepository(store)
}
