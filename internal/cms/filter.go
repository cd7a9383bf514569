package cms

import "strings"

// Op enumerates the comparison operators a Filter condition may use.
type Op int

const (
	// OpEq matches exact equality.
	OpEq Op = iota
	// OpGte matches values greater than or equal to the condition value.
	OpGte
	// OpLte matches values less than or equal to the condition value.
	OpLte
	// OpContains matches a case-insensitive substring. The value is
	// treated as literal text; backends must escape it before embedding
	// it in their query language.
	OpContains
	// OpIn matches membership in an int64 set.
	OpIn
)

// Cond is a single field constraint.
type Cond struct {
	Field string
	Op    Op
	Value any
}

// Filter is the backend-agnostic query constraint built by the query
// translator and the tenant scope builder. Stores render it into their
// native query language; it never executes anything itself.
type Filter struct {
	Conds []Cond

	SortField string
	SortDesc  bool
	Skip      int64
	Limit     int64
}

// Where appends an equality condition and returns the filter for chaining.
func (f *Filter) Where(field string, v any) *Filter {
	return f.Cond(field, OpEq, v)
}

// Cond appends an arbitrary condition and returns the filter for chaining.
func (f *Filter) Cond(field string, op Op, v any) *Filter {
	f.Conds = append(f.Conds, Cond{Field: field, Op: op, Value: v})
	return f
}

// HasField reports whether any condition already constrains the field.
func (f *Filter) HasField(field string) bool {
	for _, c := range f.Conds {
		if c.Field == field {
			return true
		}
	}
	return false
}

// Matches evaluates the filter's conditions against a flattened record.
// Used by the in-memory store; the Postgres store renders SQL instead.
func (f *Filter) Matches(doc map[string]any) bool {
	for _, c := range f.Conds {
		got, ok := doc[c.Field]
		if !ok {
			return false
		}
		if !condMatches(c, got) {
			return false
		}
	}
	return true
}

// Less orders two records by the filter's sort field. Records compare
// equal when no sort field is set.
func (f *Filter) Less(a, b map[string]any) bool {
	if f.SortField == "" {
		return false
	}
	av, bv := a[f.SortField], b[f.SortField]
	var less bool
	switch x := av.(type) {
	case string:
		y, _ := bv.(string)
		less = x < y
	default:
		less = asInt64(av) < asInt64(bv)
	}
	if f.SortDesc {
		return !less && !valuesEqual(av, bv)
	}
	return less
}

func condMatches(c Cond, got any) bool {
	switch c.Op {
	case OpEq:
		return valuesEqual(got, c.Value)
	case OpGte:
		return asInt64(got) >= asInt64(c.Value)
	case OpLte:
		return asInt64(got) <= asInt64(c.Value)
	case OpContains:
		s, _ := got.(string)
		want, _ := c.Value.(string)
		return strings.Contains(strings.ToLower(s), strings.ToLower(want))
	case OpIn:
		set, _ := c.Value.([]int64)
		v := asInt64(got)
		for _, m := range set {
			if v == m {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func valuesEqual(a, b any) bool {
	if as, ok := a.(string); ok {
		bs, ok := b.(string)
		return ok && as == bs
	}
	if ab, ok := a.(bool); ok {
		bb, ok := b.(bool)
		return ok && ab == bb
	}
	return asInt64(a) == asInt64(b)
}

func asInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case float64:
		return int64(t)
	}
	return 0
}
