package catalog

import (
	"log/slog"
	"strings"

	"github.com/sanhik/contentos/internal/models"
	"github.com/sanhik/contentos/internal/vcs"
)

// Sync walks the content store and brings the catalog up to date:
//   - projects whose HEAD moved are re-indexed
//   - projects removed from disk are deleted from the catalog
func Sync(db *DB, repo *vcs.Repository, logger *slog.Logger) error {
	projects, err := repo.ListAllProjects()
	if err != nil {
		return err
	}

	heads, err := db.AllHeads()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(projects))
	for i := range projects {
		meta := &projects[i]
		key := ref(meta.Folder, meta.ProjectID)
		disk[key] = struct{}{}

		if heads[key] == meta.CurrentHead && meta.CurrentHead != "" {
			continue
		}
		if err := IndexProject(db, repo, meta); err != nil {
			logger.Warn("sync: index failed", slog.String("project", key), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("project", key))
		}
	}

	// Remove stale entries.
	for key := range heads {
		if _, ok := disk[key]; !ok {
			folder, pid, found := strings.Cut(key, "/")
			if !found {
				continue
			}
			if err := db.DeleteProject(folder, pid); err != nil {
				logger.Warn("sync: delete failed", slog.String("project", key), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("project", key))
			}
		}
	}

	return nil
}

// IndexProject upserts one project's metadata and HEAD content into the
// catalog. Exported so the watcher and the content service can reuse it.
func IndexProject(db *DB, repo *vcs.Repository, meta *models.Metadata) error {
	body := ""
	if meta.CurrentHead != "" {
		if rev := repo.GetRevision(meta.Folder, meta.ProjectID, models.MainBranch, meta.CurrentHead); rev != nil {
			body = rev.Content
		}
	}
	return db.UpsertProject(ProjectRow{
		Folder:    meta.Folder,
		ProjectID: meta.ProjectID,
		Title:     meta.Title,
		Owner:     meta.Owner,
		Tags:      meta.Tags,
		Status:    string(meta.Status),
		Head:      meta.CurrentHead,
		UpdatedAt: meta.LastModified,
	}, body)
}
