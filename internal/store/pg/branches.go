package pg

import (
	"context"
	"database/sql"
	"errors"

	"runright.io/internal/cms"
)

type branches struct {
	db *sql.DB
}

const branchColumns = `company_id, branch_id, name, created, creator, updated, updater`

func scanBranch(row interface{ Scan(...any) error }) (*cms.Branch, error) {
	var b cms.Branch
	err := row.Scan(&b.CompanyID, &b.BranchID, &b.Name, &b.Created, &b.Creator, &b.Updated, &b.Updater)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cms.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s branches) FindOne(ctx context.Context, f *cms.Filter) (*cms.Branch, error) {
	where, args := renderWhere(f)
	row := s.db.QueryRowContext(ctx, `select `+branchColumns+` from branches`+where+` limit 1`, args...)
	return scanBranch(row)
}

func (s branches) List(ctx context.Context, f *cms.Filter) ([]*cms.Branch, error) {
	where, args := renderWhere(f)
	tail, args := renderTail(f, args)
	rows, err := s.db.QueryContext(ctx, `select `+branchColumns+` from branches`+where+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*cms.Branch
	for rows.Next() {
		b, err := scanBranch(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

func (s branches) Create(ctx context.Context, b *cms.Branch) error {
	_, err := s.db.ExecContext(ctx, `
		insert into branches (`+branchColumns+`)
		values ($1,$2,$3,$4,$5,$6,$7)
	`, b.CompanyID, b.BranchID, b.Name, b.Created, b.Creator, b.Updated, b.Updater)
	return mapWriteError(err)
}

func (s branches) Update(ctx context.Context, b *cms.Branch) error {
	res, err := s.db.ExecContext(ctx, `
		update branches set name = $2, updated = $3, updater = $4 where branch_id = $1
	`, b.BranchID, b.Name, b.Updated, b.Updater)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return cms.ErrNotFound
	}
	return nil
}
