package pg

import (
	"context"
	"database/sql"
	"errors"

	"runright.io/internal/cms"
)

type companies struct {
	db *sql.DB
}

const companyColumns = `company_id, name, blocked, licence_expiry, month_count, payment_model, type,
	created, creator, updated, updater`

func scanCompany(row interface{ Scan(...any) error }) (*cms.Company, error) {
	var c cms.Company
	err := row.Scan(&c.ID, &c.Name, &c.Blocked, &c.LicenceExpiry, &c.MonthCount, &c.PaymentModel, &c.Type,
		&c.Created, &c.Creator, &c.Updated, &c.Updater)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cms.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s companies) FindOne(ctx context.Context, f *cms.Filter) (*cms.Company, error) {
	where, args := renderWhere(f)
	row := s.db.QueryRowContext(ctx, `select `+companyColumns+` from companies`+where+` limit 1`, args...)
	return scanCompany(row)
}

func (s companies) List(ctx context.Context, f *cms.Filter) ([]*cms.Company, error) {
	where, args := renderWhere(f)
	tail, args := renderTail(f, args)
	rows, err := s.db.QueryContext(ctx, `select `+companyColumns+` from companies`+where+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*cms.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (s companies) Count(ctx context.Context, f *cms.Filter) (int64, error) {
	where, args := renderWhere(f)
	var n int64
	err := s.db.QueryRowContext(ctx, `select count(*) from companies`+where, args...).Scan(&n)
	return n, err
}

func (s companies) Create(ctx context.Context, c *cms.Company) error {
	_, err := s.db.ExecContext(ctx, `
		insert into companies (`+companyColumns+`)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, c.ID, c.Name, c.Blocked, c.LicenceExpiry, c.MonthCount, c.PaymentModel, c.Type,
		c.Created, c.Creator, c.Updated, c.Updater)
	return mapWriteError(err)
}

func (s companies) Update(ctx context.Context, c *cms.Company) error {
	res, err := s.db.ExecContext(ctx, `
		update companies set
			name = $2,
			blocked = $3,
			licence_expiry = $4,
			month_count = $5,
			payment_model = $6,
			type = $7,
			updated = $8,
			updater = $9
		where company_id = $1
	`, c.ID, c.Name, c.Blocked, c.LicenceExpiry, c.MonthCount, c.PaymentModel, c.Type, c.Updated, c.Updater)
	if err != nil {
		return mapWriteError(err)
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

func (s companies) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from companies where company_id = $1`, id)
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

func (s companies) AppendLicenceEvent(ctx context.Context, ev *cms.LicenceEvent) error {
	_, err := s.db.ExecContext(ctx, `
		insert into licence_events (id, company_id, type, month_count, payment_model, created)
		values ($1,$2,$3,$4,$5,$6)
	`, ev.ID, ev.CompanyID, ev.Type, ev.MonthCount, ev.PaymentModel, ev.Created)
	return mapWriteError(err)
}

func (s companies) LicenceEvents(ctx context.Context, companyID string) ([]*cms.LicenceEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, company_id, type, month_count, payment_model, created
		from licence_events where company_id = $1 order by created
	`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*cms.LicenceEvent
	for rows.Next() {
		var ev cms.LicenceEvent
		if err := rows.Scan(&ev.ID, &ev.CompanyID, &ev.Type, &ev.MonthCount, &ev.PaymentModel, &ev.Created); err != nil {
			return nil, err
		}
		result = append(result, &ev)
	}
	return result, rows.Err()
}
