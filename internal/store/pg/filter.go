package pg

import (
	"fmt"
	"strings"

	"runright.io/internal/cms"
)

// renderWhere turns the filter's conditions into a where clause with
// positional placeholders. Field names are never caller input: they come
// from handler allow-lists and the scope builders, so they embed directly;
// values always bind as parameters.
func renderWhere(f *cms.Filter) (string, []any) {
	var sb strings.Builder
	var args []any
	for i, c := range f.Conds {
		if i == 0 {
			sb.WriteString(" where ")
		} else {
			sb.WriteString(" and ")
		}
		switch c.Op {
		case cms.OpGte:
			args = append(args, c.Value)
			fmt.Fprintf(&sb, "%s >= $%d", c.Field, len(args))
		case cms.OpLte:
			args = append(args, c.Value)
			fmt.Fprintf(&sb, "%s <= $%d", c.Field, len(args))
		case cms.OpContains:
			want, _ := c.Value.(string)
			args = append(args, "%"+escapeLike(want)+"%")
			fmt.Fprintf(&sb, `%s ilike $%d escape '\'`, c.Field, len(args))
		case cms.OpIn:
			args = append(args, c.Value)
			fmt.Fprintf(&sb, "%s = any($%d)", c.Field, len(args))
		default:
			args = append(args, c.Value)
			fmt.Fprintf(&sb, "%s = $%d", c.Field, len(args))
		}
	}
	return sb.String(), args
}

// renderTail appends order by, limit and offset after the where clause.
func renderTail(f *cms.Filter, args []any) (string, []any) {
	var sb strings.Builder
	if f.SortField != "" {
		dir := "asc"
		if f.SortDesc {
			dir = "desc"
		}
		fmt.Fprintf(&sb, " order by %s %s", f.SortField, dir)
	}
	if f.Limit > 0 {
		args = append(args, f.Limit)
		fmt.Fprintf(&sb, " limit $%d", len(args))
	}
	if f.Skip > 0 {
		args = append(args, f.Skip)
		fmt.Fprintf(&sb, " offset $%d", len(args))
	}
	return sb.String(), args
}

// escapeLike neutralizes the pattern metacharacters so the caller's text
// matches literally inside the ilike pattern.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
