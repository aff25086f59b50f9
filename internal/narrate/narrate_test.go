package narrate

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/gcpwatch/internal/redact"
)

func sampleEvent() map[string]any {
	return map[string]any{
		"name":        "projects/proj-a/locations/global/events/evt-1",
		"title":       "Cloud SQL elevated latency",
		"description": "Some instances see elevated latency.",
		"state":       "ACTIVE",
		"category":    "INCIDENT",
		"updateTime":  "2024-01-01T12:00:00Z",
		"etag":        "internal-etag",
		"relevance":   "IMPACTED",
		"eventImpacts": []any{
			map[string]any{"product": map[string]any{"productName": "Cloud SQL", "productId": "p-123"}},
			map[string]any{"product": map[string]any{"productName": "Cloud SQL"}},
			map[string]any{"product": map[string]any{"productName": "Compute Engine"}},
		},
		"updates": []any{
			map[string]any{
				"updateTime":  "2024-01-01T11:30:00Z",
				"title":       "Mitigating",
				"description": "Rolling back.",
				"workaround":  "Fail over to replica.",
				"internalId":  "track-2",
			},
			map[string]any{
				"updateTime":  "2024-01-01T10:00:00Z",
				"title":       "Investigating",
				"description": "We are looking into it.",
				"workaround":  "Retry requests.",
			},
			map[string]any{
				"updateTime":  "2024-01-01T11:59:00+00:00",
				"title":       "Update",
				"description": "Still rolling back.",
			},
		},
	}
}

func TestEventFields(t *testing.T) {
	rec := New(nil).Event(sampleEvent())

	assert.Equal(t, "projects/proj-a/locations/global/events/evt-1", rec.ID)
	assert.Equal(t, KindEvent, rec.Kind)
	assert.Equal(t, "Cloud SQL elevated latency", rec.Title)
	assert.Equal(t, "ACTIVE", rec.Status)
	assert.Equal(t, "INCIDENT", rec.Category)
	assert.Equal(t, "2024-01-01T12:00:00Z", rec.LastUpdated)
	assert.Equal(t, []string{"Cloud SQL", "Compute Engine"}, rec.AffectedResources)
	assert.Nil(t, rec.Enabled)
	assert.Equal(t, map[string]any{"relevance": "IMPACTED"}, rec.Attributes)
}

func TestTimelineChronological(t *testing.T) {
	rec := New(nil).Event(sampleEvent())

	require.Len(t, rec.Timeline, 3)
	assert.Equal(t, "Investigating", rec.Timeline[0].Title)
	assert.Equal(t, "Mitigating", rec.Timeline[1].Title)
	assert.Equal(t, "Update", rec.Timeline[2].Title)
	// Original timestamp text is preserved.
	assert.Equal(t, "2024-01-01T11:59:00+00:00", rec.Timeline[2].Time)

	want := strings.Join([]string{
		"2024-01-01T10:00:00Z - Investigating: We are looking into it.",
		"2024-01-01T11:30:00Z - Mitigating: Rolling back.",
		"2024-01-01T11:59:00+00:00 - Update: Still rolling back.",
	}, "\n")
	assert.Equal(t, want, rec.Narrative)
	assert.Equal(t, "Fail over to replica.", rec.Workaround)
}

func TestTimelineOffsetsCompareAsInstants(t *testing.T) {
	ev := map[string]any{
		"updates": []any{
			map[string]any{"updateTime": "2024-01-01T10:00:00-05:00", "title": "late"},
			map[string]any{"updateTime": "2024-01-01T14:00:00Z", "title": "early"},
		},
	}
	rec := New(nil).Event(ev)
	require.Len(t, rec.Timeline, 2)
	assert.Equal(t, "early", rec.Timeline[0].Title)
}

func TestEventIsDeterministic(t *testing.T) {
	n := New(nil)
	first, err := json.Marshal(n.Event(sampleEvent()))
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := json.Marshal(n.Event(sampleEvent()))
		require.NoError(t, err)
		require.Equal(t, string(first), string(again))
	}
}

func TestEventRedactsAtAnyDepth(t *testing.T) {
	b, err := json.Marshal(New(nil).Event(sampleEvent()))
	require.NoError(t, err)
	out := string(b)
	for _, leaked := range []string{"internal-etag", "track-2", "p-123", "productId", "etag"} {
		assert.NotContains(t, out, leaked)
	}
}

func TestSparseEventOmitsFields(t *testing.T) {
	rec := New(nil).Event(map[string]any{"name": "projects/p/locations/global/events/e"})
	b, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Equal(t, `{"id":"projects/p/locations/global/events/e","kind":"event"}`, string(b))
	assert.NotContains(t, string(b), "null")
}

func TestNilEvent(t *testing.T) {
	rec := New(nil).Event(nil)
	assert.Equal(t, KindEvent, rec.Kind)
}

func TestAsset(t *testing.T) {
	n := New(redact.New("kmsKey", "etag"))
	rec := n.Asset(map[string]any{
		"name":        "//compute.googleapis.com/projects/proj-a/zones/us-central1-a/instances/vm-1",
		"assetType":   "compute.googleapis.com/Instance",
		"project":     "projects/1234",
		"location":    "us-central1-a",
		"state":       "RUNNING",
		"kmsKey":      "projects/p/locations/l/keyRings/r/cryptoKeys/k",
		"labels":      map[string]any{"env": "prod"},
		"description": "",
	})

	assert.Equal(t, KindAsset, rec.Kind)
	assert.Equal(t, "vm-1", rec.Title)
	assert.Equal(t, "compute.googleapis.com/Instance", rec.Category)
	assert.Equal(t, []string{"projects/1234"}, rec.AffectedResources)
	assert.Equal(t, "us-central1-a", rec.Attributes["location"])
	assert.NotContains(t, rec.Attributes, "kmsKey")
	assert.NotContains(t, rec.Attributes, "description")
	assert.Empty(t, rec.Summary)
}

func TestProjectFinding(t *testing.T) {
	n := New(nil)

	off := n.ProjectFinding("projects/proj-b", "Project B", "servicehealth.googleapis.com", false)
	b, err := json.Marshal(off)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"enabled":false`)
	assert.Equal(t, "DISABLED", off.Status)

	on := n.ProjectFinding("projects/proj-a", "", "servicehealth.googleapis.com", true)
	require.NotNil(t, on.Enabled)
	assert.True(t, *on.Enabled)
	assert.Equal(t, KindProject, on.Kind)
}
