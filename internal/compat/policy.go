package compat

import "time"

// Policy decides when a partial-update field counts as set.
type Policy string

const (
	// Definedness copies the field whenever the DTO carries it, zero values included.
	Definedness Policy = "definedness"
	// Truthy copies the field only when it is present and non-zero.
	Truthy Policy = "truthy"
)

// fieldRule extracts one DTO field. get reports false when the field is absent.
// apply overrides the default of writing the value to every column.
type fieldRule[D any] struct {
	name    string
	columns []string
	get     func(D) (any, bool)
	apply   func(m *Mapper, patch Patch, value any)
}

// mapUpdate is the single routine behind every partial update mapping.
func mapUpdate[D any](m *Mapper, dto D, rules []fieldRule[D], policies map[string]Policy) Patch {
	patch := Patch{}
	for _, r := range rules {
		value, ok := r.get(dto)
		if !ok {
			continue
		}
		if policies[r.name] == Truthy && !truthy(value) {
			continue
		}
		if r.apply != nil {
			r.apply(m, patch, value)
			continue
		}
		for _, c := range r.columns {
			patch[c] = value
		}
	}
	return patch
}

func opt[T any](p *T) (any, bool) {
	if p == nil {
		return nil, false
	}
	return *p, true
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	case bool:
		return t
	case time.Time:
		return !t.IsZero()
	default:
		return true
	}
}
