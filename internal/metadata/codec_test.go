package metadata

import (
	"testing"
	"time"

	"github.com/sanhik/contentos/internal/models"
	"github.com/sanhik/contentos/internal/storage"
)

func tempCodec(t *testing.T) (*Codec, storage.Provider) {
	t.Helper()
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return NewCodec(store), store
}

func TestReadMissingReturnsNil(t *testing.T) {
	c, _ := tempCodec(t)
	if m := c.ReadMetadata("Marketing", "absent"); m != nil {
		t.Errorf("ReadMetadata = %+v, want nil", m)
	}
}

func TestReadCorruptReturnsNil(t *testing.T) {
	c, store := tempCodec(t)
	_ = store.Write(Path("f", "p"), []byte("{not json"))
	if m := c.ReadMetadata("f", "p"); m != nil {
		t.Errorf("ReadMetadata = %+v, want nil for corrupt record", m)
	}
}

func TestLegacyRecordFilled(t *testing.T) {
	// A record written by the first generation of the tool: no owner, no
	// collaborators, no metrics, no schema version.
	c, store := tempCodec(t)
	legacy := `{
		"current_head": "abc123def456",
		"folder": "Blog",
		"project_id": "1700000000_Launch",
		"last_modified": "2023-11-14T12:00:00",
		"title": "Launch",
		"tags": ["ai"],
		"status": "Draft"
	}`
	_ = store.Write(Path("Blog", "1700000000_Launch"), []byte(legacy))

	m := c.ReadMetadata("Blog", "1700000000_Launch")
	if m == nil {
		t.Fatal("ReadMetadata = nil")
	}
	if m.Owner != models.UnknownOwner {
		t.Errorf("Owner = %q, want sentinel", m.Owner)
	}
	if m.Collaborators == nil || len(m.Collaborators) != 0 {
		t.Errorf("Collaborators = %v, want empty map", m.Collaborators)
	}
	if m.Status != models.StageDraft {
		t.Errorf("Status = %q", m.Status)
	}
	if m.LastModified.IsZero() {
		t.Error("LastModified should parse zone-less ISO timestamp")
	}
	if !m.CreatedAt.Equal(m.LastModified) {
		t.Errorf("CreatedAt = %v, want backfilled from last_modified", m.CreatedAt)
	}
}

func TestCollaboratorsCoercedToMap(t *testing.T) {
	cases := map[string]string{
		"list":   `{"collaborators": ["alice", "bob"]}`,
		"string": `{"collaborators": "alice"}`,
		"null":   `{"collaborators": null}`,
		"absent": `{}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			c, store := tempCodec(t)
			_ = store.Write(Path("f", "p"), []byte(body))
			m := c.ReadMetadata("f", "p")
			if m == nil {
				t.Fatal("ReadMetadata = nil")
			}
			if m.Collaborators == nil {
				t.Fatal("Collaborators is nil, want empty map")
			}
			if len(m.Collaborators) != 0 {
				t.Errorf("Collaborators = %v, want empty", m.Collaborators)
			}
		})
	}
}

func TestCollaboratorRolesNormalized(t *testing.T) {
	c, store := tempCodec(t)
	_ = store.Write(Path("f", "p"), []byte(`{"collaborators": {"bob": "Editor", "eve": "Overlord"}}`))
	m := c.ReadMetadata("f", "p")
	if m.Collaborators["bob"] != models.RoleEditor {
		t.Errorf("bob = %q", m.Collaborators["bob"])
	}
	if m.Collaborators["eve"] != models.RoleViewer {
		t.Errorf("unknown role should normalize to Viewer, got %q", m.Collaborators["eve"])
	}
}

func TestRoundTripFixedPoint(t *testing.T) {
	c, _ := tempCodec(t)
	now := time.Now().UTC().Truncate(time.Millisecond)
	in := &models.Metadata{
		ProjectID:     "1700000001_Plan",
		Folder:        "Marketing",
		Owner:         "alice",
		Title:         "Plan",
		Tags:          []string{"q3", "launch"},
		Status:        models.StageReview,
		Collaborators: map[string]models.Role{"alice": models.RoleDeveloper, "bob": models.RoleEditor},
		CreatedAt:     now,
		LastModified:  now,
		CurrentHead:   "deadbeef0123",
		LatestMetrics: models.Metrics{WordCount: 10, CharCount: 60, ReadTime: "0.1 min"},
	}
	if err := c.WriteMetadata("Marketing", in.ProjectID, in); err != nil {
		t.Fatalf("WriteMetadata: %v", err)
	}

	first := c.ReadMetadata("Marketing", in.ProjectID)
	if first == nil {
		t.Fatal("first read = nil")
	}
	if err := c.WriteMetadata("Marketing", in.ProjectID, first); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	second := c.ReadMetadata("Marketing", in.ProjectID)
	if second == nil {
		t.Fatal("second read = nil")
	}

	if first.Owner != second.Owner || first.CurrentHead != second.CurrentHead ||
		first.Title != second.Title || first.Status != second.Status ||
		!first.LastModified.Equal(second.LastModified) ||
		len(first.Collaborators) != len(second.Collaborators) {
		t.Errorf("round trip not a fixed point:\nfirst  %+v\nsecond %+v", first, second)
	}
	if second.SchemaVersion != SchemaVersion {
		t.Errorf("SchemaVersion = %d, want %d", second.SchemaVersion, SchemaVersion)
	}
}

func TestMigrateIdempotent(t *testing.T) {
	raw := map[string]any{"title": "kept", "schema_version": float64(0)}
	Migrate(raw)
	if raw["title"] != "kept" {
		t.Error("migration must not clobber present fields")
	}
	if raw["owner"] != models.UnknownOwner {
		t.Errorf("owner = %v", raw["owner"])
	}
	Migrate(raw)
	if raw["owner"] != models.UnknownOwner {
		t.Error("second migration changed owner")
	}
}
