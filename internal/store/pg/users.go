package pg

import (
	"context"
	"database/sql"
	"errors"

	"runright.io/internal/cms"
)

type users struct {
	db *sql.DB
}

const userColumns = `user_id, email, name, role, company_id, branch_id, password_hash,
	locked, disabled, reset_token, reset_generated, created, creator, updated, updater`

func scanUser(row interface{ Scan(...any) error }) (*cms.User, error) {
	var u cms.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.CompanyID, &u.BranchID, &u.PasswordHash,
		&u.Locked, &u.Disabled, &u.ResetToken, &u.ResetGenerated, &u.Created, &u.Creator, &u.Updated, &u.Updater)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cms.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s users) FindOne(ctx context.Context, f *cms.Filter) (*cms.User, error) {
	where, args := renderWhere(f)
	row := s.db.QueryRowContext(ctx, `select `+userColumns+` from users`+where+` limit 1`, args...)
	return scanUser(row)
}

func (s users) List(ctx context.Context, f *cms.Filter) ([]*cms.User, error) {
	where, args := renderWhere(f)
	tail, args := renderTail(f, args)
	rows, err := s.db.QueryContext(ctx, `select `+userColumns+` from users`+where+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*cms.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

func (s users) Count(ctx context.Context, f *cms.Filter) (int64, error) {
	where, args := renderWhere(f)
	var n int64
	err := s.db.QueryRowContext(ctx, `select count(*) from users`+where, args...).Scan(&n)
	return n, err
}

func (s users) Upsert(ctx context.Context, u *cms.User) error {
	_, err := s.db.ExecContext(ctx, `
		insert into users (`+userColumns+`)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		on conflict (user_id) do update set
			email = excluded.email,
			name = excluded.name,
			role = excluded.role,
			company_id = excluded.company_id,
			branch_id = excluded.branch_id,
			password_hash = excluded.password_hash,
			locked = excluded.locked,
			disabled = excluded.disabled,
			updated = excluded.updated,
			updater = excluded.updater
	`, u.ID, u.Email, u.Name, u.Role, u.CompanyID, u.BranchID, u.PasswordHash,
		u.Locked, u.Disabled, u.ResetToken, u.ResetGenerated, u.Created, u.Creator, u.Updated, u.Updater)
	return mapWriteError(err)
}

func (s users) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	res, err := s.db.ExecContext(ctx, `update users set password_hash = $2 where user_id = $1`, userID, passwordHash)
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

func (s users) SetResetToken(ctx context.Context, email, token string, generated int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		update users set reset_token = $2, reset_generated = $3 where email = $1
	`, email, token, generated)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s users) ClearResetToken(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `
		update users set reset_token = '', reset_generated = 0 where user_id = $1
	`, userID)
	return err
}

func (s users) Delete(ctx context.Context, f *cms.Filter) (int64, error) {
	where, args := renderWhere(f)
	res, err := s.db.ExecContext(ctx, `delete from users`+where, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
