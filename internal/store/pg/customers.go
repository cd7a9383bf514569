package pg

import (
	"context"
	"database/sql"
	"errors"

	"runright.io/internal/cms"
)

type customers struct {
	db *sql.DB
}

const customerColumns = `customer_id, company_id, branch_id, first_name, last_name, email, address,
	gender, date_of_birth, created, creator, updated, updater`

func scanCustomer(row interface{ Scan(...any) error }) (*cms.Customer, error) {
	var c cms.Customer
	err := row.Scan(&c.ID, &c.CompanyID, &c.BranchID, &c.FirstName, &c.LastName, &c.Email, &c.Address,
		&c.Gender, &c.DateOfBirth, &c.Created, &c.Creator, &c.Updated, &c.Updater)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cms.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s customers) FindOne(ctx context.Context, f *cms.Filter) (*cms.Customer, error) {
	where, args := renderWhere(f)
	row := s.db.QueryRowContext(ctx, `select `+customerColumns+` from customers`+where+` limit 1`, args...)
	return scanCustomer(row)
}

func (s customers) List(ctx context.Context, f *cms.Filter) ([]*cms.Customer, error) {
	where, args := renderWhere(f)
	tail, args := renderTail(f, args)
	rows, err := s.db.QueryContext(ctx, `select `+customerColumns+` from customers`+where+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*cms.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (s customers) Count(ctx context.Context, f *cms.Filter) (int64, error) {
	where, args := renderWhere(f)
	var n int64
	err := s.db.QueryRowContext(ctx, `select count(*) from customers`+where, args...).Scan(&n)
	return n, err
}

func (s customers) Upsert(ctx context.Context, c *cms.Customer) error {
	_, err := s.db.ExecContext(ctx, `
		insert into customers (`+customerColumns+`)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		on conflict (customer_id) do update set
			company_id = excluded.company_id,
			branch_id = excluded.branch_id,
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			email = excluded.email,
			address = excluded.address,
			gender = excluded.gender,
			date_of_birth = excluded.date_of_birth,
			updated = excluded.updated,
			updater = excluded.updater
	`, c.ID, c.CompanyID, c.BranchID, c.FirstName, c.LastName, c.Email, c.Address,
		c.Gender, c.DateOfBirth, c.Created, c.Creator, c.Updated, c.Updater)
	return mapWriteError(err)
}

func (s customers) Delete(ctx context.Context, f *cms.Filter) (int64, error) {
	where, args := renderWhere(f)
	res, err := s.db.ExecContext(ctx, `delete from customers`+where, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
