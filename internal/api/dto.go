package api

import (
	"github.com/sanhik/contentos/internal/catalog"
	"github.com/sanhik/contentos/internal/contentservice"
	"github.com/sanhik/contentos/internal/models"
)

// RegisterRequest is the body for POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// TokenRequest is the body for POST /auth/token.
type TokenRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse carries a signed access token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// CreateProjectRequest is the body for POST /cms/projects.
type CreateProjectRequest struct {
	Title   string   `json:"title"`
	Folder  string   `json:"folder" validate:"required"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// CommitRequest is the body for POST /cms/projects/{folder}/{id}/commit.
type CommitRequest struct {
	Content string   `json:"content" validate:"required"`
	Title   string   `json:"title"`
	Tags    []string `json:"tags"`
	Status  string   `json:"status"`
	Message string   `json:"message"`
}

// MergeRequest is the body for POST /cms/projects/{folder}/{id}/merge.
type MergeRequest struct {
	Branch    string `json:"branch" validate:"required"`
	VersionID string `json:"version_id" validate:"required"`
}

// ShareRequest is the body for POST /cms/projects/{folder}/{id}/share.
type ShareRequest struct {
	Role string `json:"role"`
}

// CreateContentRequest is the body for POST /create.
type CreateContentRequest struct {
	Mode         string `json:"mode"`
	InputContext string `json:"input_context"`
	Audience     string `json:"audience"`
	Tone         string `json:"tone"`
	Length       string `json:"length"`
	Depth        string `json:"depth"`
	Platform     string `json:"platform"`
	SaveFolder   string `json:"save_folder"`
	ABVariants   bool   `json:"adv_ab"`
	Humanize     bool   `json:"adv_human"`
	Analogies    bool   `json:"adv_analogy"`
}

// TransformRequest is the body for POST /transform.
type TransformRequest struct {
	Content    string `json:"content" validate:"required"`
	TransMode  string `json:"trans_mode"`
	Refinement string `json:"sem_mode"`
}

// ContentRequest is a body carrying only content, used by analyze and the
// prediction endpoints.
type ContentRequest struct {
	Content  string `json:"content" validate:"required"`
	Tone     string `json:"tone"`
	Platform string `json:"platform"`
	Audience string `json:"audience"`
}

// AdaptToneRequest is the body for POST /personalize/adapt_tone.
type AdaptToneRequest struct {
	Content    string `json:"content" validate:"required"`
	TargetTone string `json:"target_tone" validate:"required"`
}

// BehaviorRequest is the body for POST /personalize/predict_user_behavior.
type BehaviorRequest struct {
	History []string          `json:"history"`
	Prefs   map[string]string `json:"user_prefs"`
}

// SignalRequest is the body for POST /profile/signal.
type SignalRequest struct {
	Kind  string `json:"kind" validate:"required"`
	Value string `json:"value"`
}

// IngestURLRequest is the body for POST /ingest/url.
type IngestURLRequest struct {
	URL string `json:"url" validate:"required"`
}

// ProjectListResponse wraps paginated project listings.
type ProjectListResponse struct {
	Projects []catalog.ProjectRow `json:"projects"`
	Total    int                  `json:"total"`
}

// ProjectDetail is the full project response (aliased from the domain layer).
type ProjectDetail = contentservice.ProjectDetail

// CommitResponse reports where a commit landed.
type CommitResponse struct {
	Revision *models.Revision `json:"revision"`
	Branch   string           `json:"branch"`
}
