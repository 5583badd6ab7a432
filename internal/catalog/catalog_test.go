package catalog_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/sanhik/contentos/internal/catalog"
	"github.com/sanhik/contentos/internal/models"
	"github.com/sanhik/contentos/internal/testutil"
)

func row(folder, pid, title string, tags []string, head string, at time.Time) catalog.ProjectRow {
	return catalog.ProjectRow{
		Folder: folder, ProjectID: pid, Title: title, Owner: "alice",
		Tags: tags, Status: "Draft", Head: head, UpdatedAt: at,
	}
}

func TestUpsertAndList(t *testing.T) {
	db := testutil.TestDB(t)
	now := time.Now().UTC()

	if err := db.UpsertProject(row("Blog", "p1", "Older", []string{"go"}, "aaa", now.Add(-time.Hour)), "older body"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := db.UpsertProject(row("Blog", "p2", "Newer", []string{"ai"}, "bbb", now), "newer body"); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	rows, total, err := db.ListProjects(10, 0, "", "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("total=%d rows=%d", total, len(rows))
	}
	if rows[0].ProjectID != "p2" {
		t.Errorf("default sort should be updated_at desc, got %s first", rows[0].ProjectID)
	}
}

func TestUpsertReplaces(t *testing.T) {
	db := testutil.TestDB(t)
	now := time.Now().UTC()
	_ = db.UpsertProject(row("Blog", "p1", "Before", nil, "aaa", now), "body")
	_ = db.UpsertProject(row("Blog", "p1", "After", nil, "bbb", now), "body")

	rows, total, _ := db.ListProjects(10, 0, "", "")
	if total != 1 {
		t.Fatalf("total = %d, want 1", total)
	}
	if rows[0].Title != "After" || rows[0].Head != "bbb" {
		t.Errorf("row = %+v", rows[0])
	}
}

func TestTagFilter(t *testing.T) {
	db := testutil.TestDB(t)
	now := time.Now().UTC()
	_ = db.UpsertProject(row("Blog", "p1", "Go post", []string{"go", "dev"}, "a", now), "")
	_ = db.UpsertProject(row("Blog", "p2", "AI post", []string{"ai"}, "b", now), "")

	rows, total, err := db.ListProjects(10, 0, "go", "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || rows[0].ProjectID != "p1" {
		t.Errorf("total=%d rows=%v", total, rows)
	}
}

func TestSortByTitle(t *testing.T) {
	db := testutil.TestDB(t)
	now := time.Now().UTC()
	_ = db.UpsertProject(row("Blog", "p1", "zebra", nil, "a", now), "")
	_ = db.UpsertProject(row("Blog", "p2", "Apple", nil, "b", now.Add(-time.Hour)), "")

	rows, _, _ := db.ListProjects(10, 0, "", "title")
	if rows[0].Title != "Apple" {
		t.Errorf("title sort: got %q first", rows[0].Title)
	}
}

func TestDeleteProject(t *testing.T) {
	db := testutil.TestDB(t)
	_ = db.UpsertProject(row("Blog", "p1", "Doc", nil, "a", time.Now()), "")
	if err := db.DeleteProject("Blog", "p1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, total, _ := db.ListProjects(10, 0, "", "")
	if total != 0 {
		t.Errorf("total = %d after delete", total)
	}
}

func TestSearch(t *testing.T) {
	db := testutil.TestDB(t)
	now := time.Now().UTC()
	_ = db.UpsertProject(row("Blog", "p1", "Quarterly report", nil, "a", now), "revenue projections for the launch")
	_ = db.UpsertProject(row("Blog", "p2", "Recipe book", nil, "b", now), "pancakes and waffles")

	hits, err := db.Search("launch", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 || hits[0].ProjectID != "p1" {
		t.Errorf("hits = %v", hits)
	}
}

func TestAllHeads(t *testing.T) {
	db := testutil.TestDB(t)
	_ = db.UpsertProject(row("Blog", "p1", "Doc", nil, "abc", time.Now()), "")
	heads, err := db.AllHeads()
	if err != nil {
		t.Fatalf("all heads: %v", err)
	}
	if heads["Blog/p1"] != "abc" {
		t.Errorf("heads = %v", heads)
	}
}

func TestSyncIndexesAndPrunes(t *testing.T) {
	db := testutil.TestDB(t)
	_, repo := testutil.TestRepo(t)
	logger := slog.Default()

	pid, _, err := repo.CreateProject("Launch Plan", "Marketing", "alice", "the big launch", []string{"q3"}, models.ExtraMeta{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// A row for a project that never existed on disk must be pruned.
	_ = db.UpsertProject(row("Ghost", "gone", "Ghost", nil, "x", time.Now()), "")

	if err := catalog.Sync(db, repo, logger); err != nil {
		t.Fatalf("sync: %v", err)
	}

	rows, total, _ := db.ListProjects(10, 0, "", "")
	if total != 1 {
		t.Fatalf("total = %d, want 1 (rows %v)", total, rows)
	}
	if rows[0].ProjectID != pid || rows[0].Folder != "Marketing" {
		t.Errorf("row = %+v", rows[0])
	}

	hits, _ := db.Search("big launch", 10)
	if len(hits) != 1 {
		t.Errorf("HEAD content should be searchable after sync, hits = %v", hits)
	}
}

func TestSyncSkipsUnchangedHead(t *testing.T) {
	db := testutil.TestDB(t)
	_, repo := testutil.TestRepo(t)
	logger := slog.Default()

	_, _, _ = repo.CreateProject("Doc", "Blog", "alice", "body", nil, models.ExtraMeta{})
	if err := catalog.Sync(db, repo, logger); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if err := catalog.Sync(db, repo, logger); err != nil {
		t.Fatalf("second sync: %v", err)
	}
	_, total, _ := db.ListProjects(10, 0, "", "")
	if total != 1 {
		t.Errorf("total = %d", total)
	}
}
