package contentservice

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/sanhik/contentos/internal/ai"
	"github.com/sanhik/contentos/internal/apperr"
	"github.com/sanhik/contentos/internal/models"
	"github.com/sanhik/contentos/internal/testutil"
	"github.com/sanhik/contentos/internal/vcs"
)

type stubGen struct {
	reply string
	err   error
}

func (s stubGen) GenerateText(_ context.Context, _ string, _ ai.Task) (string, error) {
	return s.reply, s.err
}

type captureNotifier struct {
	events []Event
}

func (c *captureNotifier) Publish(ev Event) { c.events = append(c.events, ev) }

func testService(t *testing.T, gen ai.Generator) (*Service, *captureNotifier) {
	t.Helper()
	db := testutil.TestDB(t)
	_, repo := testutil.TestRepo(t)
	n := &captureNotifier{}
	return NewService(repo, db, gen, n, slog.Default()), n
}

func create(t *testing.T, s *Service, title, folder, owner, content string) string {
	t.Helper()
	pid, _, err := s.CreateProject(context.Background(), CreateProjectParams{
		Title: title, Folder: folder, Owner: owner, Content: content,
	})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	return pid
}

func TestCreateProjectIndexesAndNotifies(t *testing.T) {
	s, n := testService(t, nil)
	ctx := context.Background()

	pid := create(t, s, "Launch", "Blog", "alice", "hello launch world")

	rows, total, err := s.ListProjects(ctx, 10, 0, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || rows[0].ProjectID != pid {
		t.Errorf("catalog rows = %v", rows)
	}
	if len(n.events) != 1 || n.events[0].Kind != EventProjectCreated {
		t.Errorf("events = %v", n.events)
	}

	hits, err := s.Search(ctx, "launch world", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Errorf("hits = %v", hits)
	}
}

func TestCommitByOwnerUpdatesCatalog(t *testing.T) {
	s, n := testService(t, nil)
	ctx := context.Background()
	pid := create(t, s, "Doc", "Blog", "alice", "first")

	rev, branch, err := s.Commit(ctx, "Blog", pid, vcs.CommitParams{
		Committer: "alice", Content: "second version text", Title: "Doc",
		Status: models.StageDraft, Message: "update",
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if branch != models.MainBranch {
		t.Errorf("branch = %q", branch)
	}

	rows, _, _ := s.ListProjects(ctx, 10, 0, "", "")
	if rows[0].Head != rev.VersionID {
		t.Errorf("catalog head = %q, want %q", rows[0].Head, rev.VersionID)
	}
	last := n.events[len(n.events)-1]
	if last.Kind != EventProjectCommitted || last.VersionID != rev.VersionID {
		t.Errorf("last event = %+v", last)
	}
}

func TestCommitByCollaboratorStaysOffCatalogHead(t *testing.T) {
	s, _ := testService(t, nil)
	ctx := context.Background()
	pid := create(t, s, "Doc", "Blog", "alice", "main text")

	before, _, _ := s.ListProjects(ctx, 10, 0, "", "")

	_, branch, err := s.Commit(ctx, "Blog", pid, vcs.CommitParams{
		Committer: "bob", Content: "bob text", Title: "Doc",
		Status: models.StageDraft, Message: "bob edit",
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if branch == models.MainBranch {
		t.Fatal("non-owner commit must not land on main")
	}

	after, _, _ := s.ListProjects(ctx, 10, 0, "", "")
	if after[0].Head != before[0].Head {
		t.Error("branch commit must not move the catalog head")
	}
}

func TestCommitDeniedForViewer(t *testing.T) {
	s, _ := testService(t, nil)
	ctx := context.Background()
	pid := create(t, s, "Doc", "Blog", "alice", "text")

	// Grant carol explicit read-only access.
	if err := s.AddCollaborator(ctx, "Blog", pid, "carol", models.RoleViewer); err != nil {
		t.Fatal(err)
	}

	_, _, err := s.Commit(ctx, "Blog", pid, vcs.CommitParams{
		Committer: "carol", Content: "x", Title: "Doc", Status: models.StageDraft,
	})
	if !errors.Is(err, apperr.ErrPermissionDenied) {
		t.Errorf("err = %v", err)
	}
}

func TestMergePublishesAndReindexes(t *testing.T) {
	s, n := testService(t, nil)
	ctx := context.Background()
	pid := create(t, s, "Doc", "Blog", "alice", "main text")

	rev, branch, err := s.Commit(ctx, "Blog", pid, vcs.CommitParams{
		Committer: "bob", Content: "bob improved text", Title: "Doc",
		Status: models.StageDraft, Message: "bob edit",
	})
	if err != nil {
		t.Fatal(err)
	}

	merged, err := s.Merge(ctx, "Blog", pid, branch, rev.VersionID, "alice")
	if err != nil {
		t.Fatalf("merge: %v", err)
	}

	rows, _, _ := s.ListProjects(ctx, 10, 0, "", "")
	if rows[0].Head != merged.VersionID {
		t.Errorf("catalog head = %q, want merged %q", rows[0].Head, merged.VersionID)
	}
	last := n.events[len(n.events)-1]
	if last.Kind != EventProjectMerged {
		t.Errorf("last event = %+v", last)
	}
}

func TestGetProjectMissing(t *testing.T) {
	s, _ := testService(t, nil)
	if _, err := s.GetProject(context.Background(), "Blog", "nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestGetRevisionSearchesBranches(t *testing.T) {
	s, _ := testService(t, nil)
	ctx := context.Background()
	pid := create(t, s, "Doc", "Blog", "alice", "main text")

	rev, _, err := s.Commit(ctx, "Blog", pid, vcs.CommitParams{
		Committer: "bob", Content: "branch text", Title: "Doc", Status: models.StageDraft,
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := s.GetRevision(ctx, "Blog", pid, rev.VersionID)
	if err != nil {
		t.Fatalf("get revision: %v", err)
	}
	if got.Content != "branch text" {
		t.Errorf("content = %q", got.Content)
	}
	if _, err := s.GetRevision(ctx, "Blog", pid, "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestCompare(t *testing.T) {
	s, _ := testService(t, nil)
	ctx := context.Background()
	pid := create(t, s, "Doc", "Blog", "alice", "line one\nline two\n")

	detail, _ := s.GetProject(ctx, "Blog", pid)
	v1 := detail.Metadata.CurrentHead

	rev2, _, err := s.Commit(ctx, "Blog", pid, vcs.CommitParams{
		Committer: "alice", Content: "line one\nline 2\n", Title: "Doc",
		Status: models.StageDraft, Message: "tweak",
	})
	if err != nil {
		t.Fatal(err)
	}

	res, err := s.Compare(ctx, "Blog", pid, v1, rev2.VersionID)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}

	var plus, minus, same int
	for _, l := range res.Lines {
		switch l.Op {
		case "+":
			plus++
		case "-":
			minus++
		default:
			same++
		}
	}
	if plus != 1 || minus != 1 || same != 1 {
		t.Errorf("diff ops +%d -%d =%d, lines %v", plus, minus, same, res.Lines)
	}
}

func TestCreateGenerated(t *testing.T) {
	s, _ := testService(t, stubGen{reply: "a generated blog post"})
	ctx := context.Background()

	got, err := s.CreateGenerated(ctx, ai.CreationSpec{
		Mode: "Blog Post", Audience: "Engineering leaders everywhere",
		Tone: "Professional", Platform: "LinkedIn",
	}, "Blog", "alice")
	if err != nil {
		t.Fatalf("create generated: %v", err)
	}
	if got.Content != "a generated blog post" {
		t.Errorf("content = %q", got.Content)
	}

	detail, err := s.GetProject(ctx, "Blog", got.ProjectID)
	if err != nil {
		t.Fatal(err)
	}
	if detail.Metadata.Owner != "alice" {
		t.Errorf("owner = %q", detail.Metadata.Owner)
	}
	if len(detail.History) != 1 || detail.History[0].ExtraMeta.Kind != models.ProvenanceGeneration {
		t.Errorf("history = %+v", detail.History)
	}
	found := false
	for _, tag := range detail.Metadata.Tags {
		if tag == "AI-Gen" {
			found = true
		}
	}
	if !found {
		t.Errorf("tags = %v", detail.Metadata.Tags)
	}
}

func TestGenerationUnconfigured(t *testing.T) {
	s, _ := testService(t, nil)
	if _, err := s.Transform(context.Background(), "text", "Tweet", ""); err == nil {
		t.Error("expected error when generator is nil")
	}
}
