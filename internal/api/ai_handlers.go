package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/sanhik/contentos/internal/ai"
	"github.com/sanhik/contentos/internal/ingest"
)

// AIHandler serves the generation, prediction and ingestion endpoints.
type AIHandler struct {
	h      *Handler
	gen    ai.Generator
	ingest *ingest.Client
}

// NewAIHandler creates an AIHandler. gen and ingest may be nil when the
// corresponding backends are not configured.
func NewAIHandler(h *Handler, gen ai.Generator, ingestClient *ingest.Client) *AIHandler {
	return &AIHandler{h: h, gen: gen, ingest: ingestClient}
}

// Create handles POST /create: runs the creation engine and auto-saves
// the result as a new project owned by the caller.
func (a *AIHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	var req CreateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	folder := req.SaveFolder
	if folder == "" {
		folder = "Drafts"
	}

	out, err := a.h.svc.CreateGenerated(r.Context(), ai.CreationSpec{
		Mode:       req.Mode,
		Context:    req.InputContext,
		Audience:   req.Audience,
		Tone:       req.Tone,
		Length:     req.Length,
		Depth:      req.Depth,
		Platform:   req.Platform,
		ABVariants: req.ABVariants,
		Humanize:   req.Humanize,
		Analogies:  req.Analogies,
	}, folder, Identity(r))
	if err != nil {
		writeError(w, err, "create content failed")
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

// Transform handles POST /transform.
func (a *AIHandler) Transform(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	var req TransformRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("content is required"))
		return
	}
	out, err := a.h.svc.Transform(r.Context(), req.Content, req.TransMode, req.Refinement)
	if err != nil {
		writeError(w, err, "transform failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"content": out})
}

// Analyze handles POST /analyze: editorial review of a draft.
func (a *AIHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	var req ContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	out, err := a.h.svc.Analyze(r.Context(), req.Content)
	if err != nil {
		writeError(w, err, "analyze failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"analysis": out})
}

// AdaptTone handles POST /personalize/adapt_tone.
func (a *AIHandler) AdaptTone(w http.ResponseWriter, r *http.Request) {
	var req AdaptToneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	out, err := a.h.svc.AdaptTone(r.Context(), req.Content, req.TargetTone)
	if err != nil {
		writeError(w, err, "adapt tone failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"adapted_content": out})
}

// PredictEngagement handles POST /personalize/predict_engagement. When
// the model's reply cannot be parsed the default prediction is served
// with degraded=true rather than failing the request.
func (a *AIHandler) PredictEngagement(w http.ResponseWriter, r *http.Request) {
	var req ContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	pred, err := ai.PredictEngagement(r.Context(), a.gen, req.Content, req.Tone, req.Platform)
	if err != nil {
		slog.Warn("engagement prediction degraded", slog.String("error", err.Error()))
	}
	writeJSON(w, http.StatusOK, map[string]any{"predictions": pred, "degraded": err != nil})
}

// PredictAudience handles POST /personalize/predict_audience.
func (a *AIHandler) PredictAudience(w http.ResponseWriter, r *http.Request) {
	var req ContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	insights, err := ai.PredictAudience(r.Context(), a.gen, req.Content, req.Audience)
	if err != nil {
		slog.Warn("audience prediction degraded", slog.String("error", err.Error()))
	}
	writeJSON(w, http.StatusOK, map[string]any{"insights": insights, "degraded": err != nil})
}

// PredictBehavior handles POST /personalize/predict_user_behavior. The
// caller's stored profile supplies preferences unless the body overrides
// them.
func (a *AIHandler) PredictBehavior(w http.ResponseWriter, r *http.Request) {
	var req BehaviorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	prefs := req.Prefs
	if len(prefs) == 0 {
		if p, err := a.h.profiles.Get(Identity(r)); err == nil {
			prefs = p.Preferences()
		}
	}
	pred, err := ai.PredictBehavior(r.Context(), a.gen, req.History, prefs)
	if err != nil {
		slog.Warn("behavior prediction degraded", slog.String("error", err.Error()))
	}
	writeJSON(w, http.StatusOK, map[string]any{"prediction": pred, "degraded": err != nil})
}

// IngestURL handles POST /ingest/url.
func (a *AIHandler) IngestURL(w http.ResponseWriter, r *http.Request) {
	if a.ingest == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("ingestion is not configured"))
		return
	}
	var req IngestURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.URL == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("url is required"))
		return
	}
	res, err := a.ingest.IngestURL(r.Context(), req.URL)
	if err != nil {
		writeError(w, err, "ingest url failed")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// IngestFile handles POST /ingest/file (multipart upload).
func (a *AIHandler) IngestFile(w http.ResponseWriter, r *http.Request) {
	if a.ingest == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("ingestion is not configured"))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 32<<20)
	file, hdr, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("multipart field 'file' is required"))
		return
	}
	defer file.Close()

	buf, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read upload"))
		return
	}
	res, err := a.ingest.IngestFile(r.Context(), hdr.Filename, buf, hdr.Header.Get("Content-Type"))
	if err != nil {
		writeError(w, err, "ingest file failed")
		return
	}
	writeJSON(w, http.StatusOK, res)
}
