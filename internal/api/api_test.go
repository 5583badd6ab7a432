package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sanhik/contentos/internal/ai"
	"github.com/sanhik/contentos/internal/auth"
	"github.com/sanhik/contentos/internal/contentservice"
	"github.com/sanhik/contentos/internal/profile"
	"github.com/sanhik/contentos/internal/sharing"
	"github.com/sanhik/contentos/internal/testutil"
)

type stubGen struct {
	reply string
}

func (s stubGen) GenerateText(_ context.Context, _ string, _ ai.Task) (string, error) {
	return s.reply, nil
}

type testEnv struct {
	srv    *httptest.Server
	users  *auth.Store
	tokens map[string]string
}

func newTestEnv(t *testing.T, authEnabled bool) *testEnv {
	t.Helper()

	db := testutil.TestDB(t)
	_, repo := testutil.TestRepo(t)
	svc := contentservice.NewService(repo, db, stubGen{reply: "generated text"}, nil, slog.Default())

	dir := t.TempDir()
	links, err := sharing.NewStore(filepath.Join(dir, "share_links.json"))
	if err != nil {
		t.Fatal(err)
	}
	profiles, err := profile.NewStore(filepath.Join(dir, "profiles"))
	if err != nil {
		t.Fatal(err)
	}
	users, err := auth.NewStore(filepath.Join(dir, "users.json"), "admin123")
	if err != nil {
		t.Fatal(err)
	}
	tokens := auth.NewTokens("test-secret", 0)

	h := NewHandler(svc, links, profiles)
	router := NewRouter(RouterDeps{
		Handler:     h,
		AI:          NewAIHandler(h, stubGen{reply: `{"likes": 10, "comments": 2, "shares": 1, "engagement_score": 50, "best_time": "Morning", "predicted_reach": "Low", "confidence": 80}`}, nil),
		Auth:        NewAuthHandler(users, tokens),
		AuthEnabled: authEnabled,
		Tokens:      tokens,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, users: users, tokens: map[string]string{}}
}

// login registers (if needed) and logs a user in, caching the token.
func (e *testEnv) login(t *testing.T, username string) string {
	t.Helper()
	if tok, ok := e.tokens[username]; ok {
		return tok
	}
	if _, err := e.users.Create(username, "password-"+username, "", ""); err != nil {
		t.Fatal(err)
	}
	var res TokenResponse
	status := e.do(t, "", http.MethodPost, "/auth/token", TokenRequest{Username: username, Password: "password-" + username}, &res)
	if status != http.StatusOK {
		t.Fatalf("login %s: status %d", username, status)
	}
	e.tokens[username] = res.AccessToken
	return res.AccessToken
}

// do performs a JSON request and decodes the response into out (if non-nil).
func (e *testEnv) do(t *testing.T, token, method, path string, body, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && resp.StatusCode < 300 {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func TestAuthRequired(t *testing.T) {
	e := newTestEnv(t, true)
	if status := e.do(t, "", http.MethodGet, "/cms/projects", nil, nil); status != http.StatusUnauthorized {
		t.Errorf("no token: status = %d", status)
	}
	if status := e.do(t, "garbage", http.MethodGet, "/cms/projects", nil, nil); status != http.StatusUnauthorized {
		t.Errorf("bad token: status = %d", status)
	}
}

func TestAuthDisabledMode(t *testing.T) {
	e := newTestEnv(t, false)
	if status := e.do(t, "", http.MethodGet, "/cms/projects", nil, nil); status != http.StatusOK {
		t.Errorf("disabled mode should pass through, status = %d", status)
	}
}

func TestRegisterValidation(t *testing.T) {
	e := newTestEnv(t, true)
	status := e.do(t, "", http.MethodPost, "/auth/register", RegisterRequest{Username: "x", Password: "short"}, nil)
	if status != http.StatusBadRequest {
		t.Errorf("short password: status = %d", status)
	}
}

func TestRegisterReservedUsername(t *testing.T) {
	e := newTestEnv(t, true)
	status := e.do(t, "", http.MethodPost, "/auth/register", RegisterRequest{Username: "main", Password: "longenough1"}, nil)
	if status != http.StatusBadRequest {
		t.Errorf("reserved username: status = %d", status)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	e := newTestEnv(t, true)
	e.login(t, "alice")
	status := e.do(t, "", http.MethodPost, "/auth/token", TokenRequest{Username: "alice", Password: "wrong"}, nil)
	if status != http.StatusUnauthorized {
		t.Errorf("status = %d", status)
	}
}

func TestProjectLifecycleOverHTTP(t *testing.T) {
	e := newTestEnv(t, true)
	alice := e.login(t, "alice")
	bob := e.login(t, "bob")

	// Create.
	var created map[string]string
	status := e.do(t, alice, http.MethodPost, "/cms/projects", CreateProjectRequest{
		Title: "Launch Post", Folder: "Blog", Content: "first draft", Tags: []string{"launch"},
	}, &created)
	if status != http.StatusCreated {
		t.Fatalf("create: status = %d", status)
	}
	pid := created["project_id"]
	base := fmt.Sprintf("/cms/projects/Blog/%s", pid)

	// Owner commit lands on main.
	var commit CommitResponse
	status = e.do(t, alice, http.MethodPost, base+"/commit", CommitRequest{
		Content: "second draft", Title: "Launch Post", Status: "Draft", Message: "tighten intro",
	}, &commit)
	if status != http.StatusCreated {
		t.Fatalf("owner commit: status = %d", status)
	}
	if commit.Branch != "main" {
		t.Errorf("owner commit branch = %q", commit.Branch)
	}

	// Collaborator commit lands on a personal branch.
	var bobCommit CommitResponse
	status = e.do(t, bob, http.MethodPost, base+"/commit", CommitRequest{
		Content: "bob's rewrite", Title: "Launch Post", Status: "Draft", Message: "rework",
	}, &bobCommit)
	if status != http.StatusCreated {
		t.Fatalf("bob commit: status = %d", status)
	}
	if bobCommit.Branch != "bob" {
		t.Errorf("bob commit branch = %q", bobCommit.Branch)
	}

	// Bob cannot merge.
	status = e.do(t, bob, http.MethodPost, base+"/merge", MergeRequest{
		Branch: "bob", VersionID: bobCommit.Revision.VersionID,
	}, nil)
	if status != http.StatusForbidden {
		t.Errorf("bob merge: status = %d", status)
	}

	// Alice merges bob's branch.
	var merged CommitResponse
	status = e.do(t, alice, http.MethodPost, base+"/merge", MergeRequest{
		Branch: "bob", VersionID: bobCommit.Revision.VersionID,
	}, &merged)
	if status != http.StatusCreated {
		t.Fatalf("alice merge: status = %d", status)
	}
	if !strings.Contains(merged.Revision.Message, "Merged from branch bob") {
		t.Errorf("merge message = %q", merged.Revision.Message)
	}

	// Detail shows the merged HEAD.
	var detail ProjectDetail
	if status := e.do(t, alice, http.MethodGet, base, nil, &detail); status != http.StatusOK {
		t.Fatalf("get project: status = %d", status)
	}
	if detail.Metadata.CurrentHead != merged.Revision.VersionID {
		t.Errorf("head = %q, want %q", detail.Metadata.CurrentHead, merged.Revision.VersionID)
	}

	// Branch listing includes bob.
	var branches struct {
		Branches []string `json:"branches"`
	}
	e.do(t, alice, http.MethodGet, base+"/branches", nil, &branches)
	want := []string{"main", "bob"}
	if len(branches.Branches) != 2 || branches.Branches[0] != want[0] || branches.Branches[1] != want[1] {
		t.Errorf("branches = %v", branches.Branches)
	}

	// Compare the two main revisions.
	var cmp struct {
		Lines []struct {
			Op   string `json:"op"`
			Text string `json:"text"`
		} `json:"lines"`
	}
	path := fmt.Sprintf("%s/compare?v1=%s&v2=%s", base, commit.Revision.VersionID, merged.Revision.VersionID)
	if status := e.do(t, alice, http.MethodGet, path, nil, &cmp); status != http.StatusOK {
		t.Fatalf("compare: status = %d", status)
	}
	if len(cmp.Lines) == 0 {
		t.Error("compare returned no lines")
	}
}

func TestGetProjectNotFound(t *testing.T) {
	e := newTestEnv(t, true)
	alice := e.login(t, "alice")
	if status := e.do(t, alice, http.MethodGet, "/cms/projects/Blog/missing", nil, nil); status != http.StatusNotFound {
		t.Errorf("status = %d", status)
	}
}

func TestShareLinkFlow(t *testing.T) {
	e := newTestEnv(t, true)
	alice := e.login(t, "alice")
	carol := e.login(t, "carol")

	var created map[string]string
	e.do(t, alice, http.MethodPost, "/cms/projects", CreateProjectRequest{
		Title: "Shared Doc", Folder: "Blog", Content: "text",
	}, &created)
	base := "/cms/projects/Blog/" + created["project_id"]

	var share map[string]string
	if status := e.do(t, alice, http.MethodPost, base+"/share", ShareRequest{Role: "Viewer"}, &share); status != http.StatusCreated {
		t.Fatalf("share: status = %d", status)
	}

	// Carol accepts and becomes a read-only collaborator.
	if status := e.do(t, carol, http.MethodPost, "/share/"+share["token"]+"/accept", nil, nil); status != http.StatusOK {
		t.Fatalf("accept: status = %d", status)
	}
	status := e.do(t, carol, http.MethodPost, base+"/commit", CommitRequest{Content: "carol edit"}, nil)
	if status != http.StatusForbidden {
		t.Errorf("viewer commit: status = %d", status)
	}

	// Revoked tokens stop validating.
	if status := e.do(t, alice, http.MethodDelete, "/share/"+share["token"], nil, nil); status != http.StatusNoContent {
		t.Errorf("revoke: status = %d", status)
	}
	if status := e.do(t, carol, http.MethodPost, "/share/"+share["token"]+"/accept", nil, nil); status != http.StatusNotFound {
		t.Errorf("accept revoked: status = %d", status)
	}
}

func TestSearchEndpoint(t *testing.T) {
	e := newTestEnv(t, true)
	alice := e.login(t, "alice")

	e.do(t, alice, http.MethodPost, "/cms/projects", CreateProjectRequest{
		Title: "Quarterly Numbers", Folder: "Reports", Content: "revenue is up this quarter",
	}, nil)

	if status := e.do(t, alice, http.MethodGet, "/search", nil, nil); status != http.StatusBadRequest {
		t.Errorf("missing q: status = %d", status)
	}

	var res struct {
		Results []struct {
			ProjectID string `json:"project_id"`
		} `json:"results"`
	}
	if status := e.do(t, alice, http.MethodGet, "/search?q=revenue", nil, &res); status != http.StatusOK {
		t.Fatalf("search: status = %d", status)
	}
	if len(res.Results) != 1 {
		t.Errorf("results = %v", res.Results)
	}
}

func TestCreateContentAutoSaves(t *testing.T) {
	e := newTestEnv(t, true)
	alice := e.login(t, "alice")

	var out struct {
		Content   string `json:"content"`
		ProjectID string `json:"project_id"`
		Folder    string `json:"folder"`
	}
	status := e.do(t, alice, http.MethodPost, "/create", CreateContentRequest{
		Mode: "Blog Post", InputContext: "notes", Audience: "Developers", Platform: "Blog",
	}, &out)
	if status != http.StatusCreated {
		t.Fatalf("create: status = %d", status)
	}
	if out.ProjectID == "" || out.Folder != "Drafts" {
		t.Errorf("out = %+v", out)
	}

	var detail ProjectDetail
	if s := e.do(t, alice, http.MethodGet, "/cms/projects/Drafts/"+out.ProjectID, nil, &detail); s != http.StatusOK {
		t.Fatalf("get saved project: status = %d", s)
	}
	if detail.Metadata.Owner != "alice" {
		t.Errorf("owner = %q", detail.Metadata.Owner)
	}
}

func TestPredictEngagementEndpoint(t *testing.T) {
	e := newTestEnv(t, true)
	alice := e.login(t, "alice")

	var out struct {
		Predictions ai.EngagementPrediction `json:"predictions"`
		Degraded    bool                    `json:"degraded"`
	}
	status := e.do(t, alice, http.MethodPost, "/personalize/predict_engagement", ContentRequest{
		Content: "a post", Tone: "Casual", Platform: "LinkedIn",
	}, &out)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if out.Degraded || out.Predictions.Likes != 10 {
		t.Errorf("out = %+v", out)
	}
}

func TestPredictionDegradesWithoutGenerator(t *testing.T) {
	db := testutil.TestDB(t)
	_, repo := testutil.TestRepo(t)
	svc := contentservice.NewService(repo, db, nil, nil, slog.Default())

	dir := t.TempDir()
	links, err := sharing.NewStore(filepath.Join(dir, "share_links.json"))
	if err != nil {
		t.Fatal(err)
	}
	profiles, err := profile.NewStore(filepath.Join(dir, "profiles"))
	if err != nil {
		t.Fatal(err)
	}
	users, err := auth.NewStore(filepath.Join(dir, "users.json"), "admin123")
	if err != nil {
		t.Fatal(err)
	}
	tokens := auth.NewTokens("test-secret", 0)

	// Ingestion-only deployments mount the AI routes without a generator.
	h := NewHandler(svc, links, profiles)
	router := NewRouter(RouterDeps{
		Handler: h,
		AI:      NewAIHandler(h, nil, nil),
		Auth:    NewAuthHandler(users, tokens),
		Tokens:  tokens,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	e := &testEnv{srv: srv, users: users, tokens: map[string]string{}}

	var out struct {
		Predictions ai.EngagementPrediction `json:"predictions"`
		Degraded    bool                    `json:"degraded"`
	}
	status := e.do(t, "", http.MethodPost, "/personalize/predict_engagement", ContentRequest{
		Content: "a post", Tone: "Casual", Platform: "Blog",
	}, &out)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if !out.Degraded {
		t.Error("expected degraded response")
	}
	if out.Predictions != ai.DefaultEngagement {
		t.Errorf("predictions = %+v, want default fallback", out.Predictions)
	}

	var behavior struct {
		Prediction ai.BehaviorPrediction `json:"prediction"`
		Degraded   bool                  `json:"degraded"`
	}
	status = e.do(t, "", http.MethodPost, "/personalize/predict_user_behavior", BehaviorRequest{History: []string{"edited"}}, &behavior)
	if status != http.StatusOK {
		t.Fatalf("behavior status = %d", status)
	}
	if !behavior.Degraded || behavior.Prediction != ai.DefaultBehavior {
		t.Errorf("behavior = %+v", behavior)
	}
}

func TestProfileSignalEndpoint(t *testing.T) {
	e := newTestEnv(t, true)
	alice := e.login(t, "alice")

	var p profile.Profile
	status := e.do(t, alice, http.MethodPost, "/profile/signal", SignalRequest{Kind: profile.SignalTone, Value: "Witty"}, &p)
	if status != http.StatusOK {
		t.Fatalf("signal: status = %d", status)
	}
	if p.PreferredTone != "Witty" {
		t.Errorf("profile = %+v", p)
	}

	var got profile.Profile
	if s := e.do(t, alice, http.MethodGet, "/profile", nil, &got); s != http.StatusOK {
		t.Fatalf("get profile: status = %d", s)
	}
	if got.Interactions != 1 {
		t.Errorf("interactions = %d", got.Interactions)
	}
}

func TestIngestUnconfigured(t *testing.T) {
	e := newTestEnv(t, true)
	alice := e.login(t, "alice")
	status := e.do(t, alice, http.MethodPost, "/ingest/url", IngestURLRequest{URL: "https://example.com"}, nil)
	if status != http.StatusServiceUnavailable {
		t.Errorf("status = %d", status)
	}
}
