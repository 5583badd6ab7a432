package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sanhik/contentos/internal/contentservice"
	"github.com/sanhik/contentos/internal/models"
	"github.com/sanhik/contentos/internal/profile"
	"github.com/sanhik/contentos/internal/sharing"
	"github.com/sanhik/contentos/internal/vcs"
)

// maxBodySize caps request bodies; content payloads can be large but not
// unbounded.
const maxBodySize = 10 << 20

// Handler holds API route handlers.
type Handler struct {
	svc      *contentservice.Service
	links    *sharing.Store
	profiles *profile.Store
}

// NewHandler creates a new Handler.
func NewHandler(svc *contentservice.Service, links *sharing.Store, profiles *profile.Store) *Handler {
	return &Handler{svc: svc, links: links, profiles: profiles}
}

// ListFolders handles GET /cms/folders.
func (h *Handler) ListFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := h.svc.ListFolders(r.Context())
	if err != nil {
		writeError(w, err, "list folders failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"folders": folders})
}

// CreateFolder handles POST /cms/folders/{folder}.
func (h *Handler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	folder := chi.URLParam(r, "folder")
	if folder == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("folder is required"))
		return
	}
	if err := h.svc.CreateFolder(r.Context(), folder); err != nil {
		writeError(w, err, "create folder failed")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"folder": folder})
}

// ListProjects handles GET /cms/projects.
//
//	@Summary	List projects with optional pagination and tag filter
//	@Param		limit	query	int		false	"Page size"
//	@Param		offset	query	int		false	"Page offset"
//	@Param		tag		query	string	false	"Filter by tag"
//	@Param		sort	query	string	false	"Sort field"	Enums(updated_at, title, status)
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	rows, total, err := h.svc.ListProjects(r.Context(), limit, offset, q.Get("tag"), q.Get("sort"))
	if err != nil {
		writeError(w, err, "list projects failed")
		return
	}
	writeJSON(w, http.StatusOK, ProjectListResponse{Projects: rows, Total: total})
}

// GetProject handles GET /cms/projects/{folder}/{id}: metadata plus
// main-branch history.
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	folder, id := chi.URLParam(r, "folder"), chi.URLParam(r, "id")
	detail, err := h.svc.GetProject(r.Context(), folder, id)
	if err != nil {
		writeError(w, err, "get project failed")
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// CreateProject handles POST /cms/projects.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Folder == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("folder is required"))
		return
	}

	pid, vid, err := h.svc.CreateProject(r.Context(), contentservice.CreateProjectParams{
		Title:   req.Title,
		Folder:  req.Folder,
		Owner:   Identity(r),
		Content: req.Content,
		Tags:    req.Tags,
	})
	if err != nil {
		writeError(w, err, "create project failed")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"project_id": pid, "version_id": vid})
}

// Commit handles POST /cms/projects/{folder}/{id}/commit. The branch the
// revision lands on depends on who the caller is.
func (h *Handler) Commit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	folder, id := chi.URLParam(r, "folder"), chi.URLParam(r, "id")

	var req CommitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("content is required"))
		return
	}

	rev, branch, err := h.svc.Commit(r.Context(), folder, id, vcs.CommitParams{
		Committer: Identity(r),
		Content:   req.Content,
		Title:     req.Title,
		Tags:      req.Tags,
		Status:    models.NormalizeLifecycle(req.Status),
		Message:   req.Message,
	})
	if err != nil {
		writeError(w, err, "commit failed")
		return
	}
	writeJSON(w, http.StatusCreated, CommitResponse{Revision: rev, Branch: branch})
}

// History handles GET /cms/projects/{folder}/{id}/history. The branch
// query parameter defaults to main.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	folder, id := chi.URLParam(r, "folder"), chi.URLParam(r, "id")
	branch := r.URL.Query().Get("branch")
	if branch == "" {
		branch = models.MainBranch
	}
	history, err := h.svc.GetHistory(r.Context(), folder, id, branch)
	if err != nil {
		writeError(w, err, "history failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"branch": branch, "history": history})
}

// Branches handles GET /cms/projects/{folder}/{id}/branches.
func (h *Handler) Branches(w http.ResponseWriter, r *http.Request) {
	folder, id := chi.URLParam(r, "folder"), chi.URLParam(r, "id")
	branches, err := h.svc.ListBranches(r.Context(), folder, id)
	if err != nil {
		writeError(w, err, "list branches failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"branches": branches})
}

// Merge handles POST /cms/projects/{folder}/{id}/merge. Owner only.
func (h *Handler) Merge(w http.ResponseWriter, r *http.Request) {
	folder, id := chi.URLParam(r, "folder"), chi.URLParam(r, "id")

	var req MergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Branch == "" || req.VersionID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("branch and version_id are required"))
		return
	}

	rev, err := h.svc.Merge(r.Context(), folder, id, req.Branch, req.VersionID, Identity(r))
	if err != nil {
		writeError(w, err, "merge failed")
		return
	}
	writeJSON(w, http.StatusCreated, CommitResponse{Revision: rev, Branch: models.MainBranch})
}

// Compare handles GET /cms/projects/{folder}/{id}/compare?v1=...&v2=...
func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	folder, id := chi.URLParam(r, "folder"), chi.URLParam(r, "id")
	v1, v2 := r.URL.Query().Get("v1"), r.URL.Query().Get("v2")
	if v1 == "" || v2 == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("v1 and v2 are required"))
		return
	}
	res, err := h.svc.Compare(r.Context(), folder, id, v1, v2)
	if err != nil {
		writeError(w, err, "compare failed")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Search handles GET /search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, err, "search failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// Share handles POST /cms/projects/{folder}/{id}/share: generates a share
// link granting the requested role.
func (h *Handler) Share(w http.ResponseWriter, r *http.Request) {
	folder, id := chi.URLParam(r, "folder"), chi.URLParam(r, "id")

	var req ShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if _, err := h.svc.GetProject(r.Context(), folder, id); err != nil {
		writeError(w, err, "share failed")
		return
	}

	token, err := h.links.Generate(folder, id, Identity(r), models.NormalizeRole(req.Role))
	if err != nil {
		writeError(w, err, "share link generate failed")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"token": token})
}

// ShareLinks handles GET /cms/projects/{folder}/{id}/share.
func (h *Handler) ShareLinks(w http.ResponseWriter, r *http.Request) {
	folder, id := chi.URLParam(r, "folder"), chi.URLParam(r, "id")
	links, err := h.links.ProjectLinks(folder, id)
	if err != nil {
		writeError(w, err, "share links failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"links": links})
}

// AcceptShare handles POST /share/{token}/accept: the caller becomes a
// collaborator with the link's default role.
func (h *Handler) AcceptShare(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	link, err := h.links.Validate(token)
	if err != nil {
		writeError(w, err, "share validate failed")
		return
	}
	identity := Identity(r)
	if err := h.svc.AddCollaborator(r.Context(), link.Folder, link.ProjectID, identity, link.DefaultRole); err != nil {
		writeError(w, err, "share accept failed")
		return
	}
	slog.Info("share link accepted",
		slog.String("project", link.Folder+"/"+link.ProjectID),
		slog.String("identity", identity),
		slog.String("role", string(link.DefaultRole)))
	writeJSON(w, http.StatusOK, map[string]string{
		"folder":     link.Folder,
		"project_id": link.ProjectID,
		"role":       string(link.DefaultRole),
	})
}

// RevokeShare handles DELETE /share/{token}.
func (h *Handler) RevokeShare(w http.ResponseWriter, r *http.Request) {
	if err := h.links.Revoke(chi.URLParam(r, "token")); err != nil {
		writeError(w, err, "share revoke failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetProfile handles GET /profile.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.Get(Identity(r))
	if err != nil {
		writeError(w, err, "get profile failed")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ProfileSignal handles POST /profile/signal: folds one preference signal
// into the caller's profile.
func (h *Handler) ProfileSignal(w http.ResponseWriter, r *http.Request) {
	var req SignalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Kind == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("kind is required"))
		return
	}
	p, err := h.profiles.Apply(Identity(r), profile.Signal{Kind: req.Kind, Value: req.Value, At: time.Now()})
	if err != nil {
		writeError(w, err, "profile signal failed")
		return
	}
	writeJSON(w, http.StatusOK, p)
}
