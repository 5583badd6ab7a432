// Package models defines the domain types for Content OS.
package models

import "time"

// UnknownOwner is the sentinel substituted for records written before
// ownership tracking existed.
const UnknownOwner = "unknown"

// Lifecycle is the editorial stage label attached to a revision. It is a
// plain label, not a gated state machine: editors may move a project back
// to any earlier stage.
type Lifecycle string

const (
	StageIdea        Lifecycle = "Idea"
	StageDraft       Lifecycle = "Draft"
	StageReview      Lifecycle = "Review"
	StageApproval    Lifecycle = "Approval"
	StagePublication Lifecycle = "Publication"
	StageArchival    Lifecycle = "Archival"
)

// LifecycleStages lists all stages in editorial order.
var LifecycleStages = []Lifecycle{
	StageIdea, StageDraft, StageReview, StageApproval, StagePublication, StageArchival,
}

// NormalizeLifecycle maps unknown stage strings to StageIdea.
func NormalizeLifecycle(s string) Lifecycle {
	for _, stage := range LifecycleStages {
		if string(stage) == s {
			return stage
		}
	}
	return StageIdea
}

// Metrics are derived per-revision content statistics.
type Metrics struct {
	WordCount int    `json:"word_count"`
	CharCount int    `json:"char_count"`
	ReadTime  string `json:"read_time"`
}

// Metadata is the mutable per-project record stored in meta.json. It is
// rewritten in full on every main-branch commit and on collaborator changes.
type Metadata struct {
	ProjectID     string          `json:"project_id"`
	Folder        string          `json:"folder"`
	Owner         string          `json:"owner"`
	Title         string          `json:"title"`
	Tags          []string        `json:"tags"`
	Status        Lifecycle       `json:"status"`
	Collaborators map[string]Role `json:"collaborators"`
	CreatedAt     time.Time       `json:"created_at"`
	LastModified  time.Time       `json:"last_modified"`
	CurrentHead   string          `json:"current_head"`
	LatestMetrics Metrics         `json:"latest_metrics"`
	SchemaVersion int             `json:"schema_version"`
}

// RoleOf returns the collaborator role for identity. The owner always
// resolves to RoleDeveloper even if the stored map omits them.
func (m *Metadata) RoleOf(identity string) Role {
	if identity == m.Owner {
		return RoleDeveloper
	}
	if m.Collaborators == nil {
		return Role("")
	}
	return m.Collaborators[identity]
}
