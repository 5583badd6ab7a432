package catalog

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sanhik/contentos/internal/metadata"
	"github.com/sanhik/contentos/internal/vcs"
)

// EventCallback is called after a watcher-driven catalog change.
// kind is one of "updated", "deleted".
type EventCallback func(kind, folder, projectID string)

// Watch starts an fsnotify watcher on the store root and keeps the catalog
// in sync with external edits until ctx is cancelled. Commits made through
// the API are indexed synchronously; the watcher covers everything else
// (manual edits, rsync restores, other processes).
//
// New directories created at runtime are automatically added to the watch
// list. Removals and renames trigger a debounced reconciliation pass.
func Watch(ctx context.Context, db *DB, repo *vcs.Repository, root string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	// reconcileTimer debounces full reconciliation after removals/renames.
	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(200 * time.Millisecond)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcile(db, repo, logger, cb)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			// New directories (folders, projects, branches): watch them.
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					continue
				}
			}

			folder, pid, ok := projectOf(root, ev.Name)
			if !ok {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				meta := repo.GetMetadata(folder, pid)
				if meta == nil {
					continue
				}
				if idxErr := IndexProject(db, repo, meta); idxErr != nil {
					logger.Warn("watcher: index failed",
						slog.String("project", ref(folder, pid)),
						slog.String("error", idxErr.Error()))
					continue
				}
				logger.Debug("watcher: indexed", slog.String("project", ref(folder, pid)))
				if cb != nil {
					cb("updated", folder, pid)
				}

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				// The old path is gone; a full pass cleans up stale rows
				// and picks up anything that reappeared elsewhere.
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// projectOf maps an absolute meta.json path to its (folder, projectID).
// Revision writes are ignored: the meta.json rewrite that follows every
// main commit is the catalog's trigger.
func projectOf(root, abs string) (string, string, bool) {
	if filepath.Base(abs) != metadata.MetaFile {
		return "", "", false
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", "", false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) != 3 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// reconcile removes catalog rows whose projects no longer exist on disk
// and re-indexes projects whose HEAD moved.
func reconcile(db *DB, repo *vcs.Repository, logger *slog.Logger, cb EventCallback) {
	heads, err := db.AllHeads()
	if err != nil {
		logger.Warn("reconcile: all heads failed", slog.String("error", err.Error()))
		return
	}
	projects, err := repo.ListAllProjects()
	if err != nil {
		logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]string, len(projects))
	for _, m := range projects {
		disk[ref(m.Folder, m.ProjectID)] = m.CurrentHead
	}

	for key := range heads {
		if _, ok := disk[key]; !ok {
			folder, pid, found := strings.Cut(key, "/")
			if !found {
				continue
			}
			if delErr := db.DeleteProject(folder, pid); delErr == nil {
				logger.Debug("reconcile: removed stale", slog.String("project", key))
				if cb != nil {
					cb("deleted", folder, pid)
				}
			}
		}
	}

	for i := range projects {
		meta := &projects[i]
		key := ref(meta.Folder, meta.ProjectID)
		if heads[key] == meta.CurrentHead && meta.CurrentHead != "" {
			continue
		}
		if idxErr := IndexProject(db, repo, meta); idxErr == nil {
			logger.Debug("reconcile: indexed", slog.String("project", key))
			if cb != nil {
				cb("updated", meta.Folder, meta.ProjectID)
			}
		}
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
