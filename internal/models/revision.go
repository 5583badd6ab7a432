package models

import (
	"fmt"
	"strings"
	"time"
)

// Revision is an immutable full-text snapshot stored as v_<id>.json under
// a branch directory. Revisions are write-once: nothing mutates or deletes
// them after AppendRevision.
type Revision struct {
	VersionID   string    `json:"version_id"`
	Contributor string    `json:"contributor_hash"`
	Timestamp   time.Time `json:"timestamp"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Tags        []string  `json:"tags"`
	Status      Lifecycle `json:"status"`
	Message     string    `json:"message"`
	Metrics     Metrics   `json:"metrics"`
	ExtraMeta   ExtraMeta `json:"extra_meta"`
}

// MainBranch is the single authoritative branch of every project.
const MainBranch = "main"

// ComputeMetrics derives word/char counts and an estimated reading time
// (200 words per minute) for a content snapshot.
func ComputeMetrics(content string) Metrics {
	words := len(strings.Fields(content))
	return Metrics{
		WordCount: words,
		CharCount: len(content),
		ReadTime:  fmt.Sprintf("%.1f min", float64(words)/200),
	}
}
