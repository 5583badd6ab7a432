package metadata

import (
	"time"

	"github.com/sanhik/contentos/internal/models"
)

// SchemaVersion is the current metadata schema generation. Every write
// stamps it; reads apply all migrations newer than the stored version.
const SchemaVersion = 3

type migration struct {
	version int
	name    string
	apply   func(raw map[string]any)
}

// migrations is the single place new metadata fields are introduced. Each
// step fills the defaults its schema generation added; steps run in order
// against any record older than their version.
var migrations = []migration{
	{
		version: 1,
		name:    "base record",
		apply: func(raw map[string]any) {
			fill(raw, "project_id", "")
			fill(raw, "folder", "")
			fill(raw, "title", "Untitled Project")
			fill(raw, "tags", []any{})
			fill(raw, "status", string(models.StageIdea))
			fill(raw, "current_head", "")
			fill(raw, "last_modified", "")
		},
	},
	{
		version: 2,
		name:    "derived metrics",
		apply: func(raw map[string]any) {
			fill(raw, "latest_metrics", map[string]any{})
		},
	},
	{
		version: 3,
		name:    "ownership and collaborators",
		apply: func(raw map[string]any) {
			fill(raw, "owner", models.UnknownOwner)
			fill(raw, "collaborators", map[string]any{})
			// Records predating creation tracking never stored created_at;
			// the first known modification is the best available value.
			fill(raw, "created_at", raw["last_modified"])
		},
	},
}

// Migrate applies every pending migration step to a raw metadata record,
// in place. Records without a schema_version are treated as version 0.
func Migrate(raw map[string]any) {
	stored := intField(raw, "schema_version")
	for _, m := range migrations {
		if stored < m.version {
			m.apply(raw)
		}
	}
	raw["schema_version"] = SchemaVersion
}

// fill sets key to def when it is absent or explicitly null.
func fill(raw map[string]any, key string, def any) {
	if v, ok := raw[key]; !ok || v == nil {
		raw[key] = def
	}
}

func stringField(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return s
}

func intField(raw map[string]any, key string) int {
	switch v := raw[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

func stringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// timeLayouts covers timestamps written by current and historical record
// shapes (RFC 3339 and zone-less ISO 8601).
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// timeField parses a stored timestamp. Unparseable or absent values yield
// the zero time, the "never modified" sentinel.
func timeField(raw map[string]any, key string) time.Time {
	s, _ := raw[key].(string)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
