package descriptor

import (
	"encoding/json"
	"fmt"
)

// Record is an entity as the renderers see it: field keys to values.
type Record map[string]any

// ToRecord converts a typed entity to a Record through its JSON form.
func ToRecord(v any) (Record, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("to record: %w", err)
	}
	var r Record
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("to record: %w", err)
	}
	return r, nil
}

// ToRecords converts a slice of typed entities.
func ToRecords[T any](items []T) ([]Record, error) {
	out := make([]Record, 0, len(items))
	for _, it := range items {
		r, err := ToRecord(it)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Decode converts a Record back to a typed entity.
func Decode[T any](r Record) (T, error) {
	var v T
	raw, err := json.Marshal(r)
	if err != nil {
		return v, fmt.Errorf("decode record: %w", err)
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("decode record: %w", err)
	}
	return v, nil
}

// ID returns the identity of r under field as a string, or "" when absent.
func (r Record) ID(field string) string {
	v, ok := r[field]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
