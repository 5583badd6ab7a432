package metadata

import (
	"encoding/json"

	"github.com/sanhik/contentos/internal/models"
)

// DecodeRevision parses a stored revision record, filling absent fields
// with the same sentinel defaults the metadata path uses. Returns nil on
// parse failure so history scans can skip corrupt files.
func DecodeRevision(data []byte) *models.Revision {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	rev := &models.Revision{
		VersionID:   stringField(raw, "version_id"),
		Contributor: stringField(raw, "contributor_hash"),
		Timestamp:   timeField(raw, "timestamp"),
		Title:       stringField(raw, "title"),
		Content:     stringField(raw, "content"),
		Tags:        stringSlice(raw["tags"]),
		Status:      models.NormalizeLifecycle(stringField(raw, "status")),
		Message:     stringField(raw, "message"),
		ExtraMeta:   extraMetaField(raw["extra_meta"]),
	}
	if mm, ok := raw["metrics"].(map[string]any); ok {
		rev.Metrics = models.Metrics{
			WordCount: intField(mm, "word_count"),
			CharCount: intField(mm, "char_count"),
			ReadTime:  stringField(mm, "read_time"),
		}
	}
	return rev
}

// EncodeRevision serializes a revision in the current wire shape.
func EncodeRevision(rev *models.Revision) ([]byte, error) {
	if rev.Tags == nil {
		rev.Tags = []string{}
	}
	return json.MarshalIndent(rev, "", "  ")
}

// extraMetaField reconciles both generations of the provenance bag: the
// current tagged-union shape and the original free-form dictionary, which
// lands whole in Extra.
func extraMetaField(v any) models.ExtraMeta {
	obj, ok := v.(map[string]any)
	if !ok || len(obj) == 0 {
		return models.ExtraMeta{}
	}
	tagged := false
	for _, key := range []string{"kind", "generation", "ocr", "engagement", "extra"} {
		if _, present := obj[key]; present {
			tagged = true
			break
		}
	}
	if !tagged {
		return models.ExtraMeta{Extra: obj}
	}
	var em models.ExtraMeta
	data, err := json.Marshal(obj)
	if err != nil {
		return models.ExtraMeta{Extra: obj}
	}
	if err := json.Unmarshal(data, &em); err != nil {
		return models.ExtraMeta{Extra: obj}
	}
	return em
}
