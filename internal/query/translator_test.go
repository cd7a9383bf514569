package query

import (
	"testing"

	"runright.io/internal/cms"
)

var testOpts = Options{
	Filterable: []string{"name", "email"},
	Sortable:   []string{"name", "created"},
}

func TestTranslateTimeRange(t *testing.T) {
	f := Translate(Descriptor{StartMillis: 100, EndMillis: 200}, testOpts)
	if len(f.Conds) != 2 {
		t.Fatalf("expected 2 conditions, got %d", len(f.Conds))
	}
	if f.Conds[0].Field != "created" || f.Conds[0].Op != cms.OpGte {
		t.Fatalf("unexpected lower bound: %+v", f.Conds[0])
	}
	if f.Conds[1].Field != "created" || f.Conds[1].Op != cms.OpLte {
		t.Fatalf("unexpected upper bound: %+v", f.Conds[1])
	}

	f = Translate(Descriptor{StartMillis: 100}, Options{TimeField: "recording_date"})
	if f.Conds[0].Field != "recording_date" {
		t.Fatalf("TimeField not honoured: %+v", f.Conds[0])
	}
}

func TestTranslateFilterAllowList(t *testing.T) {
	f := Translate(Descriptor{FilterOn: "name", StringQuery: "smith"}, testOpts)
	if len(f.Conds) != 1 || f.Conds[0].Op != cms.OpContains || f.Conds[0].Value != "smith" {
		t.Fatalf("expected contains condition, got %+v", f.Conds)
	}

	// A field outside the allow-list contributes nothing, even a column
	// that exists on the table.
	f = Translate(Descriptor{FilterOn: "password_hash", StringQuery: "x"}, testOpts)
	if len(f.Conds) != 0 {
		t.Fatalf("disallowed field leaked into filter: %+v", f.Conds)
	}
}

func TestTranslateSort(t *testing.T) {
	f := Translate(Descriptor{SortBy: "name"}, testOpts)
	if f.SortField != "name" || f.SortDesc {
		t.Fatalf("expected ascending name sort, got %q desc=%v", f.SortField, f.SortDesc)
	}

	f = Translate(Descriptor{SortBy: "name", SortOrder: 1}, testOpts)
	if !f.SortDesc {
		t.Fatal("expected descending sort")
	}

	// Unknown sort fields are ignored, not an error.
	f = Translate(Descriptor{SortBy: "role"}, testOpts)
	if f.SortField != "" {
		t.Fatalf("unexpected sort field %q", f.SortField)
	}
}

func TestTranslatePagination(t *testing.T) {
	f := Translate(Descriptor{Skip: 20, Limit: 30}, testOpts)
	if f.Skip != 20 || f.Limit != 30 {
		t.Fatalf("pagination not carried: skip=%d limit=%d", f.Skip, f.Limit)
	}

	f = Translate(Descriptor{Skip: -5, Limit: -1}, testOpts)
	if f.Skip != 0 || f.Limit != 0 {
		t.Fatalf("negative pagination not clamped: skip=%d limit=%d", f.Skip, f.Limit)
	}
}

func TestTranslateMulti(t *testing.T) {
	opts := Options{Filterable: []string{"first_name", "last_name", "email"}}
	f := TranslateMulti(Descriptor{
		FilterOn:    "first_name,last_name",
		StringQuery: "jo,smith",
	}, opts)
	if len(f.Conds) != 2 {
		t.Fatalf("expected 2 conditions, got %+v", f.Conds)
	}
	if f.Conds[0].Field != "first_name" || f.Conds[0].Value != "jo" {
		t.Fatalf("unexpected first condition: %+v", f.Conds[0])
	}
	if f.Conds[1].Field != "last_name" || f.Conds[1].Value != "smith" {
		t.Fatalf("unexpected second condition: %+v", f.Conds[1])
	}

	// Disallowed fields are skipped; surplus fields without values are
	// dropped.
	f = TranslateMulti(Descriptor{
		FilterOn:    "first_name,role,email",
		StringQuery: "jo,6",
	}, opts)
	if len(f.Conds) != 1 || f.Conds[0].Field != "first_name" {
		t.Fatalf("multi allow-list violated: %+v", f.Conds)
	}
}

func TestTranslateMultiSortAndPagination(t *testing.T) {
	opts := Options{
		Filterable: []string{"brand", "model"},
		Sortable:   []string{"brand", "created"},
	}
	f := TranslateMulti(Descriptor{
		FilterOn:    "brand,model",
		StringQuery: "nike,peg",
		SortBy:      "brand",
		SortOrder:   1,
		Skip:        5,
		Limit:       25,
	}, opts)
	if f.SortField != "brand" || !f.SortDesc {
		t.Fatalf("sort not carried in multi form: field=%q desc=%v", f.SortField, f.SortDesc)
	}
	if f.Skip != 5 || f.Limit != 25 {
		t.Fatalf("pagination not carried in multi form: skip=%d limit=%d", f.Skip, f.Limit)
	}

	// The sort allow-list applies the same way as in the single-field form.
	f = TranslateMulti(Descriptor{FilterOn: "brand", StringQuery: "nike", SortBy: "role"}, opts)
	if f.SortField != "" {
		t.Fatalf("unexpected sort field %q", f.SortField)
	}
}
