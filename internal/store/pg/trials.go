package pg

import (
	"context"
	"database/sql"

	"runright.io/internal/cms"
)

type trials struct {
	db *sql.DB
}

const trialColumns = `trial_id, customer_id, company_id, branch_id, shoe_name, shoe_brand,
	shoe_size, shoe_season, recording_date, sold, created, creator, updated, updater`

func (s trials) List(ctx context.Context, f *cms.Filter) ([]*cms.ShoeTrial, error) {
	where, args := renderWhere(f)
	tail, args := renderTail(f, args)
	rows, err := s.db.QueryContext(ctx, `select `+trialColumns+` from shoe_trials`+where+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*cms.ShoeTrial
	for rows.Next() {
		var t cms.ShoeTrial
		if err := rows.Scan(&t.ID, &t.CustomerID, &t.CompanyID, &t.BranchID, &t.ShoeName, &t.ShoeBrand,
			&t.ShoeSize, &t.ShoeSeason, &t.RecordingDate, &t.Sold, &t.Created, &t.Creator, &t.Updated, &t.Updater); err != nil {
			return nil, err
		}
		result = append(result, &t)
	}
	return result, rows.Err()
}

func (s trials) Count(ctx context.Context, f *cms.Filter) (int64, error) {
	where, args := renderWhere(f)
	var n int64
	err := s.db.QueryRowContext(ctx, `select count(*) from shoe_trials`+where, args...).Scan(&n)
	return n, err
}

func (s trials) Insert(ctx context.Context, t *cms.ShoeTrial) error {
	_, err := s.db.ExecContext(ctx, `
		insert into shoe_trials (`+trialColumns+`)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`, t.ID, t.CustomerID, t.CompanyID, t.BranchID, t.ShoeName, t.ShoeBrand,
		t.ShoeSize, t.ShoeSeason, t.RecordingDate, t.Sold, t.Created, t.Creator, t.Updated, t.Updater)
	return mapWriteError(err)
}

func (s trials) Delete(ctx context.Context, f *cms.Filter) (int64, error) {
	where, args := renderWhere(f)
	res, err := s.db.ExecContext(ctx, `delete from shoe_trials`+where, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
