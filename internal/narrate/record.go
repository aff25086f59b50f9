// Package narrate turns raw provider payloads into flat, redacted records an
// agent can read without knowing the provider schemas.
package narrate

// Record kinds.
const (
	KindEvent   = "event"
	KindAsset   = "asset"
	KindProject = "project"
)

// Record is the sanitized output unit. Absent fields are omitted from JSON;
// Enabled is a pointer so an explicit false is still rendered.
type Record struct {
	ID                string          `json:"id,omitempty"`
	Kind              string          `json:"kind,omitempty"`
	Title             string          `json:"title,omitempty"`
	Summary           string          `json:"summary,omitempty"`
	Status            string          `json:"status,omitempty"`
	Category          string          `json:"category,omitempty"`
	LastUpdated       string          `json:"last_updated,omitempty"`
	AffectedResources []string        `json:"affected_resources,omitempty"`
	Timeline          []TimelineEntry `json:"timeline,omitempty"`
	Narrative         string          `json:"narrative,omitempty"`
	Workaround        string          `json:"workaround,omitempty"`
	Enabled           *bool           `json:"enabled,omitempty"`
	Attributes        map[string]any  `json:"attributes,omitempty"`
}

// TimelineEntry is one provider update, timestamps kept verbatim.
type TimelineEntry struct {
	Time        string `json:"time,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Symptom     string `json:"symptom,omitempty"`
	Workaround  string `json:"workaround,omitempty"`
}
