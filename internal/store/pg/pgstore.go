// Package pg implements the persistence layer on PostgreSQL via the pgx
// stdlib driver.
package pg

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"runright.io/internal/cms"
)

const pgErrUniqueViolation = "23505"

// Store implements cms.Store over a pooled database handle.
type Store struct {
	db *sql.DB
}

var _ cms.Store = (*Store)(nil)

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	// Tuned pool defaults; adjust under load tests
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing handle. Used by tests.
func NewWithDB(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Users() cms.UserStore         { return users{s.db} }
func (s *Store) Companies() cms.CompanyStore  { return companies{s.db} }
func (s *Store) Branches() cms.BranchStore    { return branches{s.db} }
func (s *Store) Customers() cms.CustomerStore { return customers{s.db} }
func (s *Store) Shoes() cms.ShoeStore         { return shoes{s.db} }
func (s *Store) Trials() cms.TrialStore       { return trials{s.db} }
func (s *Store) Counters() cms.CounterStore   { return counters{s.db} }

func maybePgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// mapWriteError converts driver errors on insert/update paths into the
// store sentinels.
func mapWriteError(err error) error {
	if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
		return cms.ErrAlreadyExists
	}
	return err
}
