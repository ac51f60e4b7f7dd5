package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nwtrack/networth-api/internal/domain/entity"
	"github.com/nwtrack/networth-api/internal/domain/repository"
)

const userColumns = `id, name, email, password_hash, age, age_to_retire,
	target_worth, worth_date_target, draw_down_amount, monthly_increase,
	currency, first_time_user, net_worth, account_list, last_updated,
	created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) db(ctx context.Context) querier {
	if tx := txFrom(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Age, &u.AgeToRetire,
		&u.TargetWorth, &u.WorthDateTarget, &u.DrawDownAmount, &u.MonthlyIncrease,
		&u.Currency, &u.FirstTimeUser, &u.NetWorth, &u.AccountList, &u.LastUpdated,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.db(ctx).QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, age, age_to_retire,
			target_worth, draw_down_amount, monthly_increase, currency,
			first_time_user, net_worth, account_list)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`, u.Name, u.Email, u.Password, u.Age, u.AgeToRetire,
		u.TargetWorth, u.DrawDownAmount, u.MonthlyIncrease, u.Currency,
		u.FirstTimeUser, u.NetWorth, u.AccountList)

	return row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return scanUser(r.db(ctx).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.db(ctx).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *UserRepository) List(ctx context.Context) ([]*entity.User, error) {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	res, err := r.db(ctx).Exec(ctx, `
		UPDATE users
		SET name = $1, age = $2, age_to_retire = $3, target_worth = $4,
			worth_date_target = $5, draw_down_amount = $6, monthly_increase = $7,
			currency = $8, first_time_user = $9, net_worth = $10,
			account_list = $11, last_updated = $12, updated_at = now()
		WHERE id = $13
	`, u.Name, u.Age, u.AgeToRetire, u.TargetWorth,
		u.WorthDateTarget, u.DrawDownAmount, u.MonthlyIncrease,
		u.Currency, u.FirstTimeUser, u.NetWorth,
		u.AccountList, u.LastUpdated, u.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db(ctx).Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
