package pg

import (
	"context"
	"database/sql"
)

type counters struct {
	db *sql.DB
}

// Next increments the named sequence and returns the new value. The single
// upsert makes allocation atomic under concurrent callers; two allocations
// can never observe the same value.
func (s counters) Next(ctx context.Context, name string) (int64, error) {
	var v int64
	err := s.db.QueryRowContext(ctx, `
		insert into counters (name, value)
		values ($1, 1)
		on conflict (name) do update
		set value = counters.value + 1
		returning value
	`, name).Scan(&v)
	return v, err
}
