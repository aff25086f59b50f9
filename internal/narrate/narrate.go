package narrate

import (
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/gcpwatch/internal/redact"
)

// sortableLayout is fixed width so lexical order equals chronological order.
const sortableLayout = "2006-01-02T15:04:05.000000000Z"

// Fields consumed into first-class record fields and therefore not repeated
// under attributes.
var (
	eventFields = []string{
		"name", "title", "description", "state", "category", "updateTime",
		"updates", "eventImpacts", "impactedProducts",
	}
	assetFields = []string{
		"name", "displayName", "description", "state", "assetType", "updateTime",
		"project",
	}
)

// Narrator flattens provider payloads. It holds only the shared, read-only
// redaction set and is safe for concurrent use.
type Narrator struct {
	set *redact.Set
}

// New returns a Narrator using set. A nil set means redact.Default().
func New(set *redact.Set) *Narrator {
	if set == nil {
		set = redact.Default()
	}
	return &Narrator{set: set}
}

// Event narrates a health event or organization event.
func (n *Narrator) Event(raw map[string]any) Record {
	clean := n.set.StripMap(raw)
	if clean == nil {
		return Record{Kind: KindEvent}
	}

	r := Record{
		ID:          str(clean, "name"),
		Kind:        KindEvent,
		Title:       str(clean, "title"),
		Summary:     str(clean, "description"),
		Status:      str(clean, "state"),
		Category:    str(clean, "category"),
		LastUpdated: str(clean, "updateTime"),
	}
	r.AffectedResources = affectedProducts(clean)
	r.Timeline = timeline(clean["updates"])
	r.Narrative = narrative(r.Timeline)
	r.Workaround = latestWorkaround(r.Timeline)
	r.Attributes = remainder(clean, eventFields)
	return r
}

// Events narrates a list of events, preserving order.
func (n *Narrator) Events(raws []map[string]any) []Record {
	out := make([]Record, 0, len(raws))
	for _, raw := range raws {
		out = append(out, n.Event(raw))
	}
	return out
}

// Asset narrates a Cloud Asset Inventory search result.
func (n *Narrator) Asset(raw map[string]any) Record {
	clean := n.set.StripMap(raw)
	if clean == nil {
		return Record{Kind: KindAsset}
	}

	r := Record{
		ID:          str(clean, "name"),
		Kind:        KindAsset,
		Title:       str(clean, "displayName"),
		Summary:     str(clean, "description"),
		Status:      str(clean, "state"),
		Category:    str(clean, "assetType"),
		LastUpdated: str(clean, "updateTime"),
	}
	if r.Title == "" && r.ID != "" {
		r.Title = r.ID[strings.LastIndex(r.ID, "/")+1:]
	}
	if p := str(clean, "project"); p != "" {
		r.AffectedResources = []string{p}
	}
	r.Attributes = remainder(clean, assetFields)
	return r
}

// Assets narrates a list of search results, preserving order.
func (n *Narrator) Assets(raws []map[string]any) []Record {
	out := make([]Record, 0, len(raws))
	for _, raw := range raws {
		out = append(out, n.Asset(raw))
	}
	return out
}

// ProjectFinding records whether service is enabled on a project.
func (n *Narrator) ProjectFinding(scope, displayName, service string, enabled bool) Record {
	status := "ENABLED"
	summary := service + " is enabled"
	if !enabled {
		status = "DISABLED"
		summary = service + " is not enabled"
	}
	return Record{
		ID:       scope,
		Kind:     KindProject,
		Title:    redact.Scrub(displayName),
		Summary:  summary,
		Status:   status,
		Category: service,
		Enabled:  &enabled,
	}
}

func str(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func list(v any) []map[string]any {
	items, _ := v.([]any)
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// affectedProducts reads eventImpacts[].product.productName, falling back to
// the older impactedProducts[].productName shape. Order of first appearance
// is kept; duplicates are dropped.
func affectedProducts(ev map[string]any) []string {
	var out []string
	seen := map[string]bool{}
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	for _, imp := range list(ev["eventImpacts"]) {
		if p, ok := imp["product"].(map[string]any); ok {
			add(str(p, "productName"))
		}
	}
	for _, p := range list(ev["impactedProducts"]) {
		add(str(p, "productName"))
	}
	return out
}

func timeline(v any) []TimelineEntry {
	updates := list(v)
	if len(updates) == 0 {
		return nil
	}
	entries := make([]TimelineEntry, 0, len(updates))
	for _, u := range updates {
		entries = append(entries, TimelineEntry{
			Time:        str(u, "updateTime"),
			Title:       str(u, "title"),
			Description: str(u, "description"),
			Symptom:     str(u, "symptom"),
			Workaround:  str(u, "workaround"),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return sortKey(entries[i].Time) < sortKey(entries[j].Time)
	})
	return entries
}

// sortKey orders RFC 3339 timestamps chronologically regardless of offset or
// precision. Unparseable values sort by their raw text.
func sortKey(ts string) string {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return ts
	}
	return t.UTC().Format(sortableLayout)
}

func narrative(entries []TimelineEntry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		var body string
		switch {
		case e.Title != "" && e.Description != "":
			body = e.Title + ": " + e.Description
		case e.Title != "":
			body = e.Title
		default:
			body = e.Description
		}
		if body == "" {
			continue
		}
		if e.Time != "" {
			body = e.Time + " - " + body
		}
		lines = append(lines, body)
	}
	return strings.Join(lines, "\n")
}

func latestWorkaround(entries []TimelineEntry) string {
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Workaround != "" {
			return entries[i].Workaround
		}
	}
	return ""
}

// remainder returns the fields not already promoted, or nil when none are
// left. Empty values are dropped so absence is never rendered as null.
func remainder(m map[string]any, consumed []string) map[string]any {
	skip := make(map[string]bool, len(consumed))
	for _, k := range consumed {
		skip[k] = true
	}
	var out map[string]any
	for k, v := range m {
		if skip[k] || empty(v) {
			continue
		}
		if out == nil {
			out = make(map[string]any)
		}
		out[k] = v
	}
	return out
}

func empty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}
