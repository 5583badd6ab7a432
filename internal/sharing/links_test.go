package sharing

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/sanhik/contentos/internal/apperr"
	"github.com/sanhik/contentos/internal/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "share_links.json"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestGenerateAndValidate(t *testing.T) {
	s := testStore(t)
	token, err := s.Generate("Blog", "p1", "alice", models.RoleEditor)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(token) != tokenLen {
		t.Errorf("token %q has length %d", token, len(token))
	}

	l, err := s.Validate(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if l.Folder != "Blog" || l.ProjectID != "p1" || l.DefaultRole != models.RoleEditor {
		t.Errorf("link = %+v", l)
	}
	if l.Token != token {
		t.Errorf("token not echoed back: %q", l.Token)
	}
}

func TestValidateUnknownToken(t *testing.T) {
	s := testStore(t)
	if _, err := s.Validate("deadbeefdeadbeef"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestRevoke(t *testing.T) {
	s := testStore(t)
	token, _ := s.Generate("Blog", "p1", "alice", models.RoleViewer)

	if err := s.Revoke(token); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := s.Validate(token); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("revoked link should not validate, err = %v", err)
	}
	// Revoking twice is idempotent.
	if err := s.Revoke(token); err != nil {
		t.Errorf("second revoke: %v", err)
	}
	if err := s.Revoke("nonexistent"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown token revoke: err = %v", err)
	}
}

func TestProjectLinks(t *testing.T) {
	s := testStore(t)
	t1, _ := s.Generate("Blog", "p1", "alice", models.RoleViewer)
	t2, _ := s.Generate("Blog", "p1", "alice", models.RoleEditor)
	_, _ = s.Generate("Blog", "other", "alice", models.RoleViewer)
	_ = s.Revoke(t2)

	links, err := s.ProjectLinks("Blog", "p1")
	if err != nil {
		t.Fatalf("project links: %v", err)
	}
	if len(links) != 1 || links[0].Token != t1 {
		t.Errorf("links = %+v", links)
	}
}

func TestUnknownRoleNormalized(t *testing.T) {
	s := testStore(t)
	token, _ := s.Generate("Blog", "p1", "alice", models.Role("Wizard"))
	l, err := s.Validate(token)
	if err != nil {
		t.Fatal(err)
	}
	if l.DefaultRole != models.RoleViewer {
		t.Errorf("unknown role should normalize to Viewer, got %q", l.DefaultRole)
	}
}
