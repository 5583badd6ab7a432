// Package contentservice coordinates the version store, the catalog and
// the AI boundary behind one API used by HTTP handlers, the MCP server
// and the CLI.
package contentservice

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sanhik/contentos/internal/ai"
	"github.com/sanhik/contentos/internal/apperr"
	"github.com/sanhik/contentos/internal/catalog"
	"github.com/sanhik/contentos/internal/models"
	"github.com/sanhik/contentos/internal/vcs"
)

// Event kinds published after successful mutations.
const (
	EventProjectCreated   = "project.created"
	EventProjectCommitted = "project.committed"
	EventProjectMerged    = "project.merged"
)

// Event describes one mutation for subscribers.
type Event struct {
	Kind      string `json:"kind"`
	Folder    string `json:"folder"`
	ProjectID string `json:"project_id"`
	Branch    string `json:"branch,omitempty"`
	VersionID string `json:"version_id,omitempty"`
}

// Notifier receives events after the mutation is durable.
type Notifier interface {
	Publish(ev Event)
}

// ProjectDetail is a project's metadata plus its main-branch history.
type ProjectDetail struct {
	Metadata *models.Metadata  `json:"metadata"`
	History  []models.Revision `json:"history"`
}

// Service coordinates repository and catalog operations.
type Service struct {
	repo     *vcs.Repository
	db       *catalog.DB
	gen      ai.Generator
	notifier Notifier
	logger   *slog.Logger
}

// NewService creates a content service. gen and notifier may be nil; AI
// operations then fail with a clear error and events are dropped.
func NewService(repo *vcs.Repository, db *catalog.DB, gen ai.Generator, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{repo: repo, db: db, gen: gen, notifier: notifier, logger: logger}
}

// CreateProjectParams are the inputs for a new project.
type CreateProjectParams struct {
	Title     string
	Folder    string
	Owner     string
	Content   string
	Tags      []string
	ExtraMeta models.ExtraMeta
}

// CreateProject creates a project with its initial commit and indexes it.
func (s *Service) CreateProject(_ context.Context, p CreateProjectParams) (string, string, error) {
	pid, vid, err := s.repo.CreateProject(p.Title, p.Folder, p.Owner, p.Content, p.Tags, p.ExtraMeta)
	if err != nil {
		return "", "", err
	}
	s.index(p.Folder, pid)
	s.publish(Event{Kind: EventProjectCreated, Folder: p.Folder, ProjectID: pid, VersionID: vid})
	return pid, vid, nil
}

// Commit records a new revision. The branch it lands on depends on the
// committer: owners write to main, everyone else to a personal branch.
// Collaborators explicitly limited to Viewer cannot commit at all.
func (s *Service) Commit(_ context.Context, folder, projectID string, p vcs.CommitParams) (*models.Revision, string, error) {
	meta := s.repo.GetMetadata(folder, projectID)
	if meta == nil {
		return nil, "", fmt.Errorf("project %s/%s: %w", folder, projectID, apperr.ErrNotFound)
	}
	if role, ok := meta.Collaborators[p.Committer]; ok && !role.CanEdit() {
		return nil, "", fmt.Errorf("committer %q is read-only: %w", p.Committer, apperr.ErrPermissionDenied)
	}

	branch := vcs.ResolveWriteBranch(meta, p.Committer)
	versionID, err := s.repo.CommitVersion(folder, projectID, p)
	if err != nil {
		return nil, "", err
	}
	if branch == models.MainBranch {
		s.index(folder, projectID)
	}
	s.publish(Event{Kind: EventProjectCommitted, Folder: folder, ProjectID: projectID, Branch: branch, VersionID: versionID})
	rev := s.repo.GetRevision(folder, projectID, branch, versionID)
	if rev == nil {
		return nil, "", fmt.Errorf("revision %s vanished after commit", versionID)
	}
	return rev, branch, nil
}

// Merge copies a branch's revision onto main. Only the owner may merge.
func (s *Service) Merge(_ context.Context, folder, projectID, branch, versionID, requestedBy string) (*models.Revision, error) {
	mergedID, err := s.repo.MergeBranch(folder, projectID, branch, versionID, requestedBy)
	if err != nil {
		return nil, err
	}
	s.index(folder, projectID)
	s.publish(Event{Kind: EventProjectMerged, Folder: folder, ProjectID: projectID, Branch: branch, VersionID: mergedID})
	rev := s.repo.GetRevision(folder, projectID, models.MainBranch, mergedID)
	if rev == nil {
		return nil, fmt.Errorf("revision %s vanished after merge", mergedID)
	}
	return rev, nil
}

// AddCollaborator grants identity a role on the project. Used when a
// share link is accepted.
func (s *Service) AddCollaborator(_ context.Context, folder, projectID, identity string, role models.Role) error {
	return s.repo.AddCollaborator(folder, projectID, identity, role)
}

// GetProject returns metadata and main-branch history.
func (s *Service) GetProject(_ context.Context, folder, projectID string) (*ProjectDetail, error) {
	meta := s.repo.GetMetadata(folder, projectID)
	if meta == nil {
		return nil, fmt.Errorf("project %s/%s: %w", folder, projectID, apperr.ErrNotFound)
	}
	history, err := s.repo.GetHistory(folder, projectID, models.MainBranch)
	if err != nil {
		return nil, err
	}
	return &ProjectDetail{Metadata: meta, History: history}, nil
}

// GetHistory returns one branch's history, newest first.
func (s *Service) GetHistory(_ context.Context, folder, projectID, branch string) ([]models.Revision, error) {
	meta := s.repo.GetMetadata(folder, projectID)
	if meta == nil {
		return nil, fmt.Errorf("project %s/%s: %w", folder, projectID, apperr.ErrNotFound)
	}
	return s.repo.GetHistory(folder, projectID, branch)
}

// GetRevision returns one revision, searching main first and then the
// project's other branches.
func (s *Service) GetRevision(_ context.Context, folder, projectID, versionID string) (*models.Revision, error) {
	rev, _, err := s.findRevision(folder, projectID, versionID)
	return rev, err
}

// ListBranches returns the project's branch names, main first.
func (s *Service) ListBranches(_ context.Context, folder, projectID string) ([]string, error) {
	meta := s.repo.GetMetadata(folder, projectID)
	if meta == nil {
		return nil, fmt.Errorf("project %s/%s: %w", folder, projectID, apperr.ErrNotFound)
	}
	return s.repo.ListBranches(folder, projectID)
}

// ListFolders returns top-level folder names.
func (s *Service) ListFolders(_ context.Context) ([]string, error) {
	return s.repo.ListFolders()
}

// CreateFolder makes a new top-level folder.
func (s *Service) CreateFolder(_ context.Context, name string) error {
	return s.repo.CreateFolder(name)
}

// ListProjects returns the catalog's paginated project listing.
func (s *Service) ListProjects(_ context.Context, limit, offset int, tag, sort string) ([]catalog.ProjectRow, int, error) {
	return s.db.ListProjects(limit, offset, tag, sort)
}

// Search delegates full-text search to the catalog.
func (s *Service) Search(_ context.Context, query string, limit int) ([]catalog.SearchResult, error) {
	return s.db.Search(query, limit)
}

// findRevision locates a version across all of the project's branches.
func (s *Service) findRevision(folder, projectID, versionID string) (*models.Revision, string, error) {
	meta := s.repo.GetMetadata(folder, projectID)
	if meta == nil {
		return nil, "", fmt.Errorf("project %s/%s: %w", folder, projectID, apperr.ErrNotFound)
	}
	branches, err := s.repo.ListBranches(folder, projectID)
	if err != nil {
		return nil, "", err
	}
	for _, branch := range branches {
		if rev := s.repo.GetRevision(folder, projectID, branch, versionID); rev != nil {
			return rev, branch, nil
		}
	}
	return nil, "", fmt.Errorf("version %s: %w", versionID, apperr.ErrNotFound)
}

// index synchronously refreshes the catalog row for a project. Failures
// are logged, not returned: the commit already succeeded and the watcher
// or next sync will repair the catalog.
func (s *Service) index(folder, projectID string) {
	meta := s.repo.GetMetadata(folder, projectID)
	if meta == nil {
		return
	}
	if err := catalog.IndexProject(s.db, s.repo, meta); err != nil {
		s.logger.Warn("index after commit failed",
			slog.String("project", folder+"/"+projectID),
			slog.String("error", err.Error()))
	}
}

func (s *Service) publish(ev Event) {
	if s.notifier != nil {
		s.notifier.Publish(ev)
	}
}
