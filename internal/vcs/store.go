// Package vcs implements the git-like content versioning store: append-only
// revision logs partitioned into branches, a mutable per-project HEAD, and
// permission-gated merges into main.
package vcs

import (
	"fmt"
	"path"
	"sort"

	"github.com/sanhik/contentos/internal/apperr"
	"github.com/sanhik/contentos/internal/metadata"
	"github.com/sanhik/contentos/internal/models"
	"github.com/sanhik/contentos/internal/storage"
)

// Store persists immutable revision records, scoped to a (project, branch)
// pair. Records are write-once: AppendRevision never overwrites.
type Store struct {
	store storage.Provider
}

// NewStore creates a version store on top of the given provider.
func NewStore(p storage.Provider) *Store {
	return &Store{store: p}
}

// BranchDir returns the store-relative directory of a branch's revision log.
func BranchDir(folder, projectID, branch string) string {
	if branch == models.MainBranch {
		return path.Join(folder, projectID, models.MainBranch)
	}
	return path.Join(folder, projectID, "branches", branch)
}

func revisionPath(folder, projectID, branch, versionID string) string {
	return path.Join(BranchDir(folder, projectID, branch), "v_"+versionID+".json")
}

// AppendRevision writes a new immutable record keyed by its version id.
// Returns apperr.ErrAlreadyExists when a record with the same fingerprint
// is already present; the branch manager retries with a longer fingerprint.
func (s *Store) AppendRevision(folder, projectID, branch string, rev *models.Revision) error {
	p := revisionPath(folder, projectID, branch, rev.VersionID)
	if s.store.Exists(p) {
		return fmt.Errorf("vcs: revision %s: %w", rev.VersionID, apperr.ErrAlreadyExists)
	}
	data, err := metadata.EncodeRevision(rev)
	if err != nil {
		return fmt.Errorf("vcs: encode revision %s: %w", rev.VersionID, err)
	}
	if err := s.store.Write(p, data); err != nil {
		return fmt.Errorf("vcs: append revision: %w", err)
	}
	return nil
}

// ReadRevision loads a single revision, or nil when absent or corrupt.
func (s *Store) ReadRevision(folder, projectID, branch, versionID string) *models.Revision {
	data, err := s.store.Read(revisionPath(folder, projectID, branch, versionID))
	if err != nil {
		return nil
	}
	return metadata.DecodeRevision(data)
}

// ListHistory enumerates every revision on a branch, most recent first.
// Each call re-scans storage so the result always reflects on-disk state;
// corrupt records are skipped.
func (s *Store) ListHistory(folder, projectID, branch string) ([]models.Revision, error) {
	dir := BranchDir(folder, projectID, branch)
	names, err := s.store.Glob(dir, "v_*.json")
	if err != nil {
		return nil, fmt.Errorf("vcs: list history: %w", err)
	}
	history := make([]models.Revision, 0, len(names))
	for _, name := range names {
		data, err := s.store.Read(path.Join(dir, name))
		if err != nil {
			continue
		}
		if rev := metadata.DecodeRevision(data); rev != nil {
			history = append(history, *rev)
		}
	}
	sort.Slice(history, func(i, j int) bool {
		return history[i].Timestamp.After(history[j].Timestamp)
	})
	return history, nil
}
