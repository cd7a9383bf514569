// Package query converts untrusted, caller-supplied query descriptors into
// backend filters. Every field of a descriptor is interpreted through an
// explicit allow-list supplied by the calling handler; nothing in a
// descriptor ever reaches the store as raw query text.
package query

import (
	"slices"
	"strings"

	"runright.io/internal/cms"
)

// Descriptor is the generic wire shape of a list/count query. It is
// untrusted input.
type Descriptor struct {
	StartMillis int64  `json:"start_millis,omitempty"`
	EndMillis   int64  `json:"end_millis,omitempty"`
	FilterOn    string `json:"filter_on,omitempty"`
	StringQuery string `json:"string_query,omitempty"`
	SortBy      string `json:"sort_by,omitempty"`
	SortOrder   int32  `json:"sort_order,omitempty"`
	Skip        int64  `json:"skip,omitempty"`
	Limit       int64  `json:"limit,omitempty"`
}

// Options declares which descriptor fields a handler honours. Different
// handlers allow different fields.
type Options struct {
	// Filterable lists the fields FilterOn may name.
	Filterable []string
	// Sortable lists the fields SortBy may name. An unrecognized sort
	// field is silently ignored.
	Sortable []string
	// TimeField is the column the start/end range constrains. Defaults
	// to "created".
	TimeField string
}

// Translate builds a filter from the descriptor under the given options.
//
// The time range is inclusive on both ends. The free-text filter is a
// case-insensitive substring match and is only honoured when FilterOn is
// in the allow-list; the value is carried as literal text and escaped by
// the store when rendered. Skip and limit apply after filtering and
// sorting; zero means unconstrained.
func Translate(d Descriptor, opts Options) *cms.Filter {
	f := &cms.Filter{}

	timeField := opts.TimeField
	if timeField == "" {
		timeField = "created"
	}
	if d.StartMillis != 0 {
		f.Cond(timeField, cms.OpGte, d.StartMillis)
	}
	if d.EndMillis != 0 {
		f.Cond(timeField, cms.OpLte, d.EndMillis)
	}

	if d.FilterOn != "" && slices.Contains(opts.Filterable, d.FilterOn) {
		f.Cond(d.FilterOn, cms.OpContains, d.StringQuery)
	}

	if d.SortBy != "" && slices.Contains(opts.Sortable, d.SortBy) {
		f.SortField = d.SortBy
		f.SortDesc = d.SortOrder != 0
	}

	if d.Skip > 0 {
		f.Skip = d.Skip
	}
	if d.Limit > 0 {
		f.Limit = d.Limit
	}
	return f
}

// TranslateMulti handles the overloaded descriptor form where FilterOn and
// StringQuery carry comma-separated parallel lists. Only the customer and
// shoe handlers accept this form; it is deliberately not folded into
// Translate because it diverges from the single-field contract. Sort and
// pagination behave exactly as in Translate.
func TranslateMulti(d Descriptor, opts Options) *cms.Filter {
	f := &cms.Filter{}
	if d.FilterOn != "" {
		fieldList := strings.Split(d.FilterOn, ",")
		valueList := strings.Split(d.StringQuery, ",")
		for i, field := range fieldList {
			if i >= len(valueList) {
				break
			}
			field = strings.TrimSpace(field)
			if !slices.Contains(opts.Filterable, field) {
				continue
			}
			f.Cond(field, cms.OpContains, valueList[i])
		}
	}

	if d.SortBy != "" && slices.Contains(opts.Sortable, d.SortBy) {
		f.SortField = d.SortBy
		f.SortDesc = d.SortOrder != 0
	}

	if d.Skip > 0 {
		f.Skip = d.Skip
	}
	if d.Limit > 0 {
		f.Limit = d.Limit
	}
	return f
}
