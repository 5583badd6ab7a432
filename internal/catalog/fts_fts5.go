//go:build sqlite_fts5

package catalog

import (
	"database/sql"
	"fmt"
	"strings"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS projects_fts USING fts5(
			ref UNINDEXED,
			title,
			body,
			tags,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, ref, title, body string, tags []string) error {
	_, _ = tx.Exec(`DELETE FROM projects_fts WHERE ref = ?`, ref)
	_, err := tx.Exec(`INSERT INTO projects_fts (ref, title, body, tags) VALUES (?, ?, ?, ?)`,
		ref, title, body, strings.Join(tags, " "))
	if err != nil {
		return fmt.Errorf("catalog: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, ref string) {
	_, _ = tx.Exec(`DELETE FROM projects_fts WHERE ref = ?`, ref)
}

// Search performs an FTS5 full-text search and returns matching projects
// with snippets.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT p.folder,
		       p.project_id,
		       p.title,
		       snippet(projects_fts, 2, '<b>', '</b>', '...', 64)
		FROM projects_fts f
		JOIN projects p ON p.folder || '/' || p.project_id = f.ref
		WHERE projects_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("catalog: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Folder, &r.ProjectID, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
