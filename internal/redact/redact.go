// Package redact removes internal-only provider fields from decoded API
// payloads and scrubs credential-looking text.
package redact

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed fields.yaml
var fieldsYAML []byte

type fieldsFile struct {
	Fields []string `yaml:"fields"`
}

// Set is an immutable collection of field names to drop.
type Set struct {
	keys map[string]struct{}
}

var defaultSet = sync.OnceValue(func() *Set {
	s, err := Load(fieldsYAML)
	if err != nil {
		panic(fmt.Sprintf("redact: embedded field list: %v", err))
	}
	return s
})

// Default returns the reviewed field set embedded in the binary. It is parsed
// once and shared by every caller.
func Default() *Set { return defaultSet() }

// Load parses a field list in the fields.yaml format.
func Load(data []byte) (*Set, error) {
	var f fieldsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse field list: %w", err)
	}
	if len(f.Fields) == 0 {
		return nil, fmt.Errorf("field list is empty")
	}
	return New(f.Fields...), nil
}

// New builds a set from explicit names.
func New(fields ...string) *Set {
	s := &Set{keys: make(map[string]struct{}, len(fields))}
	for _, f := range fields {
		if n := normalize(f); n != "" {
			s.keys[n] = struct{}{}
		}
	}
	return s
}

// Has reports whether key is redacted.
func (s *Set) Has(key string) bool {
	if s == nil {
		return false
	}
	_, ok := s.keys[normalize(key)]
	return ok
}

// Strip returns a copy of v with every redacted key removed at any depth.
// Maps and slices are rebuilt; v itself is never modified. String leaves are
// passed through Scrub.
func (s *Set) Strip(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if s.Has(k) {
				continue
			}
			out[k] = s.Strip(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = s.Strip(val)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = s.Strip(val)
		}
		return out
	case string:
		return Scrub(t)
	default:
		return v
	}
}

// StripMap is Strip for the common top-level case.
func (s *Set) StripMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	return s.Strip(m).(map[string]any)
}

func normalize(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range strings.ToLower(key) {
		if r == '_' || r == '-' || r == ' ' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
