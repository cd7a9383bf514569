// Package migrate applies the embedded SQL schema and seed files. Applied
// files are recorded in bookkeeping tables so reruns are idempotent.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sort"
	"strings"
	"time"
)

//go:embed sql/*.sql seeds/*.sql
var files embed.FS

const (
	migrationsTable = "schema_migrations"
	seedsTable      = "schema_seeds"
)

// Runner executes the embedded migrations against one database.
type Runner struct {
	db *sql.DB
}

func New(db *sql.DB) *Runner { return &Runner{db: db} }

// Up applies all pending migrations in lexical order.
func (r *Runner) Up(ctx context.Context) error {
	return r.apply(ctx, "sql", migrationsTable)
}

// Seed applies the seed files. Seeds run after Up and are recorded the
// same way.
func (r *Runner) Seed(ctx context.Context) error {
	return r.apply(ctx, "seeds", seedsTable)
}

// Applied returns the names of migrations already recorded.
func (r *Runner) Applied(ctx context.Context) ([]string, error) {
	if err := r.ensureTables(ctx); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, `select name from `+migrationsTable+` order by applied_at asc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *Runner) apply(ctx context.Context, dir, table string) error {
	if err := r.ensureTables(ctx); err != nil {
		return err
	}
	done, err := r.recorded(ctx, table)
	if err != nil {
		return err
	}
	entries, err := files.ReadDir(dir)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		if done[name] {
			continue
		}
		body, err := files.ReadFile(dir + "/" + name)
		if err != nil {
			return err
		}
		if err := r.execFile(ctx, string(body)); err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
		if _, err := r.db.ExecContext(ctx,
			`insert into `+table+` (name, applied_at) values ($1, $2)`, name, time.Now().UTC()); err != nil {
			return err
		}
	}
	return nil
}

// execFile runs every statement of one file inside a single transaction.
func (r *Runner) execFile(ctx context.Context, body string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, stmt := range strings.Split(body, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *Runner) ensureTables(ctx context.Context) error {
	for _, table := range []string{migrationsTable, seedsTable} {
		ddl := `create table if not exists ` + table + ` (
			name text primary key,
			applied_at timestamptz not null default now()
		)`
		if _, err := r.db.ExecContext(ctx, ddl); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) recorded(ctx context.Context, table string) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx, `select name from `+table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	done := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		done[name] = true
	}
	return done, rows.Err()
}
