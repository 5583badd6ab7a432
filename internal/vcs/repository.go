package vcs

import (
	"fmt"
	"path"
	"sort"
	"time"

	"github.com/sanhik/contentos/internal/apperr"
	"github.com/sanhik/contentos/internal/metadata"
	"github.com/sanhik/contentos/internal/models"
	"github.com/sanhik/contentos/internal/storage"
)

const (
	maxIDTitleLen = 30
	branchesDir   = "branches"
)

// Repository composes the metadata codec, version store and branch manager
// into the public content-store surface.
type Repository struct {
	store    storage.Provider
	codec    *metadata.Codec
	versions *Store
	branches *Manager
	clock    func() time.Time
}

// NewRepository creates a repository over the given storage provider.
func NewRepository(p storage.Provider) *Repository {
	codec := metadata.NewCodec(p)
	versions := NewStore(p)
	return &Repository{
		store:    p,
		codec:    codec,
		versions: versions,
		branches: NewManager(versions, codec),
		clock:    time.Now,
	}
}

// CreateProject creates a named project under folder, owned by owner, and
// commits its first revision on main with status Idea. Returns the derived
// project id and the initial revision id.
func (r *Repository) CreateProject(title, folder, owner, content string, tags []string, extra models.ExtraMeta) (string, string, error) {
	if title == "" {
		title = "Untitled Project"
	}
	ts := r.clock()
	projectID := fmt.Sprintf("%d_%s", ts.Unix(), sanitizeTitle(title))

	base := path.Join(folder, projectID)
	if err := r.store.MkdirAll(path.Join(base, models.MainBranch)); err != nil {
		return "", "", err
	}
	if err := r.store.MkdirAll(path.Join(base, branchesDir)); err != nil {
		return "", "", err
	}

	meta := &models.Metadata{
		ProjectID:     projectID,
		Folder:        folder,
		Owner:         owner,
		Title:         title,
		Tags:          tags,
		Status:        models.StageIdea,
		Collaborators: map[string]models.Role{owner: models.RoleDeveloper},
		CreatedAt:     ts,
	}
	if err := r.codec.WriteMetadata(folder, projectID, meta); err != nil {
		return "", "", err
	}

	versionID, err := r.branches.CommitVersion(folder, projectID, CommitParams{
		Committer: owner,
		Content:   content,
		Title:     title,
		Tags:      tags,
		Status:    models.StageIdea,
		Message:   "Initial commit",
		ExtraMeta: extra,
	})
	if err != nil {
		return "", "", err
	}
	return projectID, versionID, nil
}

// CommitVersion appends a revision to the committer's resolved branch.
func (r *Repository) CommitVersion(folder, projectID string, p CommitParams) (string, error) {
	return r.branches.CommitVersion(folder, projectID, p)
}

// MergeBranch merges a personal-branch revision into main (owner only).
func (r *Repository) MergeBranch(folder, projectID, sourceBranch, versionID, requester string) (string, error) {
	return r.branches.MergeBranch(folder, projectID, sourceBranch, versionID, requester)
}

// GetMetadata returns a project's metadata, or nil when absent. The owner
// is re-added to collaborators when a migrated record lost the mapping.
func (r *Repository) GetMetadata(folder, projectID string) *models.Metadata {
	meta := r.codec.ReadMetadata(folder, projectID)
	if meta == nil {
		return nil
	}
	ensureOwnerCollaborator(meta)
	return meta
}

// AddCollaborator records a collaborator's role in project metadata. The
// owner's own entry cannot be downgraded this way.
func (r *Repository) AddCollaborator(folder, projectID, identity string, role models.Role) error {
	meta := r.codec.ReadMetadata(folder, projectID)
	if meta == nil {
		return fmt.Errorf("vcs: project %s/%s: %w", folder, projectID, apperr.ErrNotFound)
	}
	ensureOwnerCollaborator(meta)
	if identity != meta.Owner {
		meta.Collaborators[identity] = models.NormalizeRole(string(role))
	}
	return r.codec.WriteMetadata(folder, projectID, meta)
}

// GetHistory lists a branch's revisions, most recent first.
func (r *Repository) GetHistory(folder, projectID, branch string) ([]models.Revision, error) {
	return r.versions.ListHistory(folder, projectID, branch)
}

// GetRevision loads a single revision, or nil when absent.
func (r *Repository) GetRevision(folder, projectID, branch, versionID string) *models.Revision {
	return r.versions.ReadRevision(folder, projectID, branch, versionID)
}

// ListBranches returns main plus every personal branch that has ever
// received a commit.
func (r *Repository) ListBranches(folder, projectID string) ([]string, error) {
	personal, err := r.store.ListDirs(path.Join(folder, projectID, branchesDir))
	if err != nil {
		return nil, err
	}
	return append([]string{models.MainBranch}, personal...), nil
}

// ListFolders enumerates the top-level grouping namespaces. An empty store
// yields an empty slice.
func (r *Repository) ListFolders() ([]string, error) {
	return r.store.ListDirs("")
}

// CreateFolder creates an empty grouping namespace.
func (r *Repository) CreateFolder(name string) error {
	return r.store.MkdirAll(name)
}

// ListAllProjects scans every project directory under every folder and
// returns the catalog sorted by last-modified descending. Projects whose
// metadata fails to load are skipped. Personal-branch activity does not
// influence the ordering: only main commits touch last_modified.
func (r *Repository) ListAllProjects() ([]models.Metadata, error) {
	folders, err := r.ListFolders()
	if err != nil {
		return nil, err
	}
	var projects []models.Metadata
	for _, folder := range folders {
		ids, err := r.store.ListDirs(folder)
		if err != nil {
			continue
		}
		for _, id := range ids {
			if meta := r.codec.ReadMetadata(folder, id); meta != nil {
				projects = append(projects, *meta)
			}
		}
	}
	sort.Slice(projects, func(i, j int) bool {
		return projects[i].LastModified.After(projects[j].LastModified)
	})
	return projects, nil
}

// sanitizeTitle reduces a title to a filesystem-safe id fragment: ASCII
// alphanumerics pass through, everything else becomes an underscore.
func sanitizeTitle(title string) string {
	out := make([]rune, 0, maxIDTitleLen)
	for _, c := range title {
		if len(out) == maxIDTitleLen {
			break
		}
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			out = append(out, c)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
