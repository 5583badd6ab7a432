package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"github.com/sanhik/contentos/internal/auth"
)

// RouterDeps bundles everything the router mounts.
type RouterDeps struct {
	Handler     *Handler
	AI          *AIHandler
	Auth        *AuthHandler
	AuthEnabled bool
	Tokens      *auth.Tokens
	SSE         http.Handler
}

// NewRouter creates a chi router with all API routes mounted. Auth routes
// are public; everything else sits behind the JWT middleware (which in
// disabled mode assigns the local dev identity).
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", deps.Auth.Register)
		r.Post("/token", deps.Auth.Token)
	})

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(deps.AuthEnabled, deps.Tokens))

		h := deps.Handler
		r.Get("/cms/folders", h.ListFolders)
		r.Post("/cms/folders/{folder}", h.CreateFolder)
		r.Get("/cms/projects", h.ListProjects)
		r.Post("/cms/projects", h.CreateProject)
		r.Get("/cms/projects/{folder}/{id}", h.GetProject)
		r.Post("/cms/projects/{folder}/{id}/commit", h.Commit)
		r.Get("/cms/projects/{folder}/{id}/history", h.History)
		r.Get("/cms/projects/{folder}/{id}/branches", h.Branches)
		r.Post("/cms/projects/{folder}/{id}/merge", h.Merge)
		r.Get("/cms/projects/{folder}/{id}/compare", h.Compare)
		r.Post("/cms/projects/{folder}/{id}/share", h.Share)
		r.Get("/cms/projects/{folder}/{id}/share", h.ShareLinks)
		r.Post("/share/{token}/accept", h.AcceptShare)
		r.Delete("/share/{token}", h.RevokeShare)
		r.Get("/search", h.Search)

		r.Get("/profile", h.GetProfile)
		r.Post("/profile/signal", h.ProfileSignal)

		if deps.AI != nil {
			a := deps.AI
			r.Post("/create", a.Create)
			r.Post("/transform", a.Transform)
			r.Post("/analyze", a.Analyze)
			r.Post("/personalize/adapt_tone", a.AdaptTone)
			r.Post("/personalize/predict_engagement", a.PredictEngagement)
			r.Post("/personalize/predict_audience", a.PredictAudience)
			r.Post("/personalize/predict_user_behavior", a.PredictBehavior)
			r.Post("/ingest/url", a.IngestURL)
			r.Post("/ingest/file", a.IngestFile)
		}

		if deps.SSE != nil {
			r.Get("/events", deps.SSE.ServeHTTP)
		}
	})

	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(r)
}
