package vcs

import (
	"errors"
	"fmt"
	"time"

	"github.com/sanhik/contentos/internal/apperr"
	"github.com/sanhik/contentos/internal/fingerprint"
	"github.com/sanhik/contentos/internal/metadata"
	"github.com/sanhik/contentos/internal/models"
)

// Manager resolves write targets for commits and performs branch-to-main
// merges under the ownership check.
type Manager struct {
	versions *Store
	codec    *metadata.Codec
	clock    func() time.Time
}

// NewManager creates a branch manager over the version store and codec.
func NewManager(versions *Store, codec *metadata.Codec) *Manager {
	return &Manager{versions: versions, codec: codec, clock: time.Now}
}

// CommitParams carries everything a commit needs besides its target.
type CommitParams struct {
	Committer string
	Content   string
	Title     string
	Tags      []string
	Status    models.Lifecycle
	Message   string
	ExtraMeta models.ExtraMeta
}

// ResolveWriteBranch returns main for the project owner and a personal
// branch named after the committer for everyone else. Non-owners never
// write directly to main; their work becomes visible there only via merge.
func ResolveWriteBranch(meta *models.Metadata, committer string) string {
	if committer == meta.Owner {
		return models.MainBranch
	}
	return committer
}

// CommitVersion appends a new revision to the committer's resolved branch.
// Only main-branch commits move the project's HEAD and listing metadata;
// personal-branch commits leave meta.json untouched.
func (m *Manager) CommitVersion(folder, projectID string, p CommitParams) (string, error) {
	meta := m.codec.ReadMetadata(folder, projectID)
	if meta == nil {
		return "", fmt.Errorf("vcs: project %s/%s: %w", folder, projectID, apperr.ErrNotFound)
	}
	// A non-owner whose identity equals the main branch name would
	// otherwise resolve to main itself. The identity is reserved.
	if p.Committer == models.MainBranch && p.Committer != meta.Owner {
		return "", fmt.Errorf("vcs: committer identity %q is reserved: %w", p.Committer, apperr.ErrPermissionDenied)
	}

	ts := m.clock()
	rev := &models.Revision{
		VersionID:   fingerprint.New(p.Content, ts, p.Committer),
		Contributor: p.Committer,
		Timestamp:   ts,
		Title:       p.Title,
		Content:     p.Content,
		Tags:        p.Tags,
		Status:      p.Status,
		Message:     p.Message,
		Metrics:     models.ComputeMetrics(p.Content),
		ExtraMeta:   p.ExtraMeta,
	}
	branch := ResolveWriteBranch(meta, p.Committer)

	if err := m.versions.AppendRevision(folder, projectID, branch, rev); err != nil {
		if !errors.Is(err, apperr.ErrAlreadyExists) {
			return "", err
		}
		// Truncated fingerprint collision. Retry once with the extended
		// length; a second collision is rejected as a configuration bug.
		rev.VersionID = fingerprint.Long(p.Content, ts, p.Committer)
		if err := m.versions.AppendRevision(folder, projectID, branch, rev); err != nil {
			return "", fmt.Errorf("vcs: fingerprint collision on %s: %w", rev.VersionID, err)
		}
	}

	if branch == models.MainBranch {
		meta.CurrentHead = rev.VersionID
		meta.LastModified = ts
		meta.Title = p.Title
		meta.Tags = p.Tags
		meta.Status = p.Status
		meta.LatestMetrics = rev.Metrics
		ensureOwnerCollaborator(meta)
		if err := m.codec.WriteMetadata(folder, projectID, meta); err != nil {
			return "", err
		}
	}
	return rev.VersionID, nil
}

// MergeBranch copies the named revision from a personal branch into a new
// main commit. Only the project owner may merge. The merge is a whole
// snapshot copy: no three-way merge, no conflict detection — the merged
// revision becomes the new HEAD and later main edits are superseded.
func (m *Manager) MergeBranch(folder, projectID, sourceBranch, versionID, requester string) (string, error) {
	meta := m.codec.ReadMetadata(folder, projectID)
	if meta == nil {
		return "", fmt.Errorf("vcs: project %s/%s: %w", folder, projectID, apperr.ErrNotFound)
	}
	if requester != meta.Owner {
		return "", fmt.Errorf("vcs: merge into %s/%s by %q: %w", folder, projectID, requester, apperr.ErrPermissionDenied)
	}
	src := m.versions.ReadRevision(folder, projectID, sourceBranch, versionID)
	if src == nil {
		return "", fmt.Errorf("vcs: revision %s on branch %s: %w", versionID, sourceBranch, apperr.ErrNotFound)
	}
	return m.CommitVersion(folder, projectID, CommitParams{
		Committer: requester,
		Content:   src.Content,
		Title:     src.Title,
		Tags:      src.Tags,
		Status:    src.Status,
		Message:   fmt.Sprintf("Merged from branch %s: %s", sourceBranch, src.Message),
		ExtraMeta: src.ExtraMeta,
	})
}

// ensureOwnerCollaborator keeps the invariant that collaborators always
// contains at least the owner at the highest role.
func ensureOwnerCollaborator(meta *models.Metadata) {
	if meta.Collaborators == nil {
		meta.Collaborators = map[string]models.Role{}
	}
	if meta.Owner != "" && meta.Owner != models.UnknownOwner {
		if !meta.Collaborators[meta.Owner].CanPushToMain() {
			meta.Collaborators[meta.Owner] = models.RoleDeveloper
		}
	}
}
