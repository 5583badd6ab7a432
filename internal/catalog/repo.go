package catalog

import (
	"encoding/json"
	"fmt"
	"time"
)

// ProjectRow represents a row in the projects table.
type ProjectRow struct {
	Folder    string
	ProjectID string
	Title     string
	Owner     string
	Tags      []string
	Status    string
	Head      string
	UpdatedAt time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Folder    string
	ProjectID string
	Title     string
	Snippet   string
}

// ref is the composite key used by the FTS shadow table.
func ref(folder, projectID string) string {
	return folder + "/" + projectID
}

// UpsertProject inserts or replaces a project row and its FTS entry within
// a transaction. body is the HEAD revision's content.
func (db *DB) UpsertProject(row ProjectRow, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tagsJSON, _ := json.Marshal(row.Tags)

	_, err = tx.Exec(`
		INSERT INTO projects (folder, project_id, title, owner, tags, status, head, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(folder, project_id) DO UPDATE SET
			title      = excluded.title,
			owner      = excluded.owner,
			tags       = excluded.tags,
			status     = excluded.status,
			head       = excluded.head,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, row.Folder, row.ProjectID, row.Title, row.Owner, string(tagsJSON), row.Status, row.Head, body, row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("catalog: upsert project: %w", err)
	}

	if err := ftsUpsert(tx, ref(row.Folder, row.ProjectID), row.Title, body, row.Tags); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteProject removes a project row and its FTS entry.
func (db *DB) DeleteProject(folder, projectID string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, ref(folder, projectID))
	_, _ = tx.Exec(`DELETE FROM projects WHERE folder = ? AND project_id = ?`, folder, projectID)

	return tx.Commit()
}

// ListProjects returns paginated project rows with an optional tag filter.
// sort may be "updated_at" (default, descending), "title" or "status".
func (db *DB) ListProjects(limit, offset int, tag, sort string) ([]ProjectRow, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	order := "updated_at DESC"
	switch sort {
	case "title":
		order = "title COLLATE NOCASE ASC"
	case "status":
		order = "status ASC, updated_at DESC"
	}

	where := ""
	args := []any{}
	if tag != "" {
		// Tags are stored as a JSON array; match the quoted element.
		where = `WHERE tags LIKE ?`
		args = append(args, `%"`+tag+`"%`)
	}

	var total int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM projects `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("catalog: count: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT folder, project_id, title, owner, tags, status, head, updated_at
		FROM projects %s ORDER BY %s LIMIT ? OFFSET ?`, where, order)
	rows, err := db.conn.Query(query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("catalog: list: %w", err)
	}
	defer rows.Close()

	out := []ProjectRow{}
	for rows.Next() {
		var r ProjectRow
		var tagsJSON string
		if err := rows.Scan(&r.Folder, &r.ProjectID, &r.Title, &r.Owner, &tagsJSON, &r.Status, &r.Head, &r.UpdatedAt); err != nil {
			return nil, 0, err
		}
		_ = json.Unmarshal([]byte(tagsJSON), &r.Tags)
		if r.Tags == nil {
			r.Tags = []string{}
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

// AllHeads returns the indexed HEAD fingerprint for every project, keyed
// by "folder/project_id". Sync uses it to skip unchanged projects.
func (db *DB) AllHeads() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT folder, project_id, head FROM projects`)
	if err != nil {
		return nil, fmt.Errorf("catalog: all heads: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var folder, pid, head string
		if err := rows.Scan(&folder, &pid, &head); err != nil {
			return nil, err
		}
		out[ref(folder, pid)] = head
	}
	return out, rows.Err()
}
