package models

// ProvenanceKind discriminates the typed variants of ExtraMeta.
type ProvenanceKind string

const (
	ProvenanceGeneration ProvenanceKind = "generation"
	ProvenanceOCR        ProvenanceKind = "ocr"
	ProvenanceEngagement ProvenanceKind = "engagement"
)

// GenerationMeta records how an AI-generated revision was produced.
type GenerationMeta struct {
	Mode     string `json:"mode"`
	Tone     string `json:"tone"`
	Platform string `json:"platform"`
	Audience string `json:"audience"`
	Model    string `json:"model,omitempty"`
}

// OCRMeta records ingestion provenance for content extracted from a
// document or URL.
type OCRMeta struct {
	Source     string  `json:"source"`
	Confidence float64 `json:"confidence"`
}

// EngagementMeta stores predicted engagement numbers attached to a revision.
type EngagementMeta struct {
	Likes           int    `json:"likes"`
	Comments        int    `json:"comments"`
	Shares          int    `json:"shares"`
	EngagementScore int    `json:"engagement_score"`
	BestTime        string `json:"best_time"`
	PredictedReach  string `json:"predicted_reach"`
	Confidence      int    `json:"confidence"`
}

// ExtraMeta is the open provenance bag carried by every revision. Known
// kinds are typed; anything else lands in Extra so future writers can add
// fields without breaking older readers.
type ExtraMeta struct {
	Kind       ProvenanceKind  `json:"kind,omitempty"`
	Generation *GenerationMeta `json:"generation,omitempty"`
	OCR        *OCRMeta        `json:"ocr,omitempty"`
	Engagement *EngagementMeta `json:"engagement,omitempty"`
	Extra      map[string]any  `json:"extra,omitempty"`
}

// IsZero reports whether no provenance of any kind is present.
func (e ExtraMeta) IsZero() bool {
	return e.Kind == "" && e.Generation == nil && e.OCR == nil && e.Engagement == nil && len(e.Extra) == 0
}
