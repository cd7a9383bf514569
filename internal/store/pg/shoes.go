package pg

import (
	"context"
	"database/sql"
	"errors"

	"runright.io/internal/cms"
)

type shoes struct {
	db *sql.DB
}

const shoeColumns = `shoe_id, ean, brand, model, season, gender, created, creator, updated, updater`

func scanShoe(row interface{ Scan(...any) error }) (*cms.Shoe, error) {
	var sh cms.Shoe
	err := row.Scan(&sh.ID, &sh.EAN, &sh.Brand, &sh.Model, &sh.Season, &sh.Gender,
		&sh.Created, &sh.Creator, &sh.Updated, &sh.Updater)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cms.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sh, nil
}

func (s shoes) FindOne(ctx context.Context, f *cms.Filter) (*cms.Shoe, error) {
	where, args := renderWhere(f)
	row := s.db.QueryRowContext(ctx, `select `+shoeColumns+` from shoes`+where+` limit 1`, args...)
	return scanShoe(row)
}

func (s shoes) List(ctx context.Context, f *cms.Filter) ([]*cms.Shoe, error) {
	where, args := renderWhere(f)
	tail, args := renderTail(f, args)
	rows, err := s.db.QueryContext(ctx, `select `+shoeColumns+` from shoes`+where+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*cms.Shoe
	for rows.Next() {
		sh, err := scanShoe(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, sh)
	}
	return result, rows.Err()
}

func (s shoes) Count(ctx context.Context, f *cms.Filter) (int64, error) {
	where, args := renderWhere(f)
	var n int64
	err := s.db.QueryRowContext(ctx, `select count(*) from shoes`+where, args...).Scan(&n)
	return n, err
}

func (s shoes) Upsert(ctx context.Context, sh *cms.Shoe) error {
	_, err := s.db.ExecContext(ctx, `
		insert into shoes (`+shoeColumns+`)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		on conflict (shoe_id) do update set
			ean = excluded.ean,
			brand = excluded.brand,
			model = excluded.model,
			season = excluded.season,
			gender = excluded.gender,
			updated = excluded.updated,
			updater = excluded.updater
	`, sh.ID, sh.EAN, sh.Brand, sh.Model, sh.Season, sh.Gender,
		sh.Created, sh.Creator, sh.Updated, sh.Updater)
	return mapWriteError(err)
}

func (s shoes) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from shoes where shoe_id = $1`, id)
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
