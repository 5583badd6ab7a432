// Package metadata reads and writes project metadata records, reconciling
// historical schema drift at the storage boundary. Records written by any
// older generation of the tool decode into a fully populated Metadata.
package metadata

import (
	"encoding/json"
	"fmt"
	"path"

	"github.com/sanhik/contentos/internal/models"
	"github.com/sanhik/contentos/internal/storage"
)

// MetaFile is the per-project metadata file name.
const MetaFile = "meta.json"

// Codec loads and persists project metadata through a storage provider.
type Codec struct {
	store storage.Provider
}

// NewCodec creates a metadata codec on top of the given store.
func NewCodec(store storage.Provider) *Codec {
	return &Codec{store: store}
}

// Path returns the store-relative path of a project's metadata record.
func Path(folder, projectID string) string {
	return path.Join(folder, projectID, MetaFile)
}

// ReadMetadata loads a project's metadata record. Any read or parse failure
// yields nil: callers treat nil as "project effectively absent" so a single
// corrupt record never takes down a catalog scan.
func (c *Codec) ReadMetadata(folder, projectID string) *models.Metadata {
	data, err := c.store.Read(Path(folder, projectID))
	if err != nil {
		return nil
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	Migrate(raw)
	return decode(raw)
}

// WriteMetadata persists the full current-shape record, overwriting any
// prior version. There is no field-level update path.
func (c *Codec) WriteMetadata(folder, projectID string, m *models.Metadata) error {
	m.SchemaVersion = SchemaVersion
	if m.Tags == nil {
		m.Tags = []string{}
	}
	if m.Collaborators == nil {
		m.Collaborators = map[string]models.Role{}
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("metadata: marshal %s/%s: %w", folder, projectID, err)
	}
	return c.store.Write(Path(folder, projectID), data)
}

// decode extracts a typed Metadata from a migrated raw record. Migrate has
// already guaranteed every required key is present, so this is a straight
// type-safe pull with defensive fallbacks on shape mismatches.
func decode(raw map[string]any) *models.Metadata {
	m := &models.Metadata{
		ProjectID:     stringField(raw, "project_id"),
		Folder:        stringField(raw, "folder"),
		Owner:         stringField(raw, "owner"),
		Title:         stringField(raw, "title"),
		Tags:          stringSlice(raw["tags"]),
		Status:        models.NormalizeLifecycle(stringField(raw, "status")),
		Collaborators: collaborators(raw["collaborators"]),
		CreatedAt:     timeField(raw, "created_at"),
		LastModified:  timeField(raw, "last_modified"),
		CurrentHead:   stringField(raw, "current_head"),
		SchemaVersion: intField(raw, "schema_version"),
	}
	if lm, ok := raw["latest_metrics"].(map[string]any); ok {
		m.LatestMetrics = models.Metrics{
			WordCount: intField(lm, "word_count"),
			CharCount: intField(lm, "char_count"),
			ReadTime:  stringField(lm, "read_time"),
		}
	}
	return m
}

// collaborators enforces the one hard post-fill invariant: the stored value
// must be a mapping. Lists, strings, nulls and anything else coerce to an
// empty map instead of propagating a type mismatch.
func collaborators(v any) map[string]models.Role {
	obj, ok := v.(map[string]any)
	if !ok {
		return map[string]models.Role{}
	}
	out := make(map[string]models.Role, len(obj))
	for identity, role := range obj {
		s, _ := role.(string)
		out[identity] = models.NormalizeRole(s)
	}
	return out
}
