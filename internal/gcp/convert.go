package gcp

import (
	"bytes"
	"encoding/json"

	"github.com/ppiankov/gcpwatch/internal/errs"
)

// toMap decodes a typed API response into generic JSON values. Numbers stay
// json.Number so 64-bit ids survive intact.
func toMap(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, errs.Internal("failed to decode provider response").WithCause(err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, errs.Internal("failed to decode provider response").WithCause(err)
	}
	return out, nil
}

func toMaps[T any](items []*T) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		m, err := toMap(it)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
