// Package types provides shared data types for the hepdataframe library.
package types

// Meta is free-form, whole-table metadata: a mapping from string key to a
// number, a string, or a homogeneous list of numbers or strings. Meta is
// not row-aligned; it describes the table as a whole (e.g. provenance tags).
type Meta map[string]any

// Clone returns a shallow copy of the metadata mapping. List values are
// shared with the source; metadata values are treated as immutable by
// convention.
func (m Meta) Clone() Meta {
	if m == nil {
		return Meta{}
	}
	cp := make(Meta, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

// IsMetaValue reports whether v is an accepted metadata value: a number,
// a string, or a homogeneous list thereof. Attachment of other values is
// not rejected by default (the permissive contract), but strict policies
// use this check to fail fast.
func IsMetaValue(v any) bool {
	switch v := v.(type) {
	case int, int32, int64, float32, float64, string:
		return true
	case []int, []int64, []float64, []string:
		return true
	case []any:
		for _, e := range v {
			switch e.(type) {
			case int, int32, int64, float32, float64, string:
			default:
				return false
			}
		}
		return true
	default:
		return false
	}
}
