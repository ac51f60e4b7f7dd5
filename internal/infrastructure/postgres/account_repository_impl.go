package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nwtrack/networth-api/internal/domain/entity"
	"github.com/nwtrack/networth-api/internal/domain/repository"
)

const accountColumns = `id, user_id, name, category, balance, created_at, updated_at`

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func (r *AccountRepository) db(ctx context.Context) querier {
	if tx := txFrom(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func scanAccount(row pgx.Row) (*entity.Account, error) {
	a := &entity.Account{}
	err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.Category, &a.Balance,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *AccountRepository) Create(ctx context.Context, a *entity.Account) error {
	row := r.db(ctx).QueryRow(ctx, `
		INSERT INTO accounts (user_id, name, category, balance)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, a.UserID, a.Name, a.Category, a.Balance)

	return row.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*entity.Account, error) {
	return scanAccount(r.db(ctx).QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
}

func (r *AccountRepository) List(ctx context.Context) ([]*entity.Account, error) {
	return r.queryAccounts(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY created_at`)
}

func (r *AccountRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Account, error) {
	return r.queryAccounts(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE user_id = $1 ORDER BY created_at`, userID)
}

func (r *AccountRepository) queryAccounts(ctx context.Context, sql string, args ...any) ([]*entity.Account, error) {
	rows, err := r.db(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*entity.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *AccountRepository) Update(ctx context.Context, a *entity.Account) error {
	res, err := r.db(ctx).Exec(ctx, `
		UPDATE accounts
		SET name = $1, category = $2, balance = $3, updated_at = now()
		WHERE id = $4
	`, a.Name, a.Category, a.Balance, a.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db(ctx).Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *AccountRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.db(ctx).Exec(ctx, `DELETE FROM accounts WHERE user_id = $1`, userID)
	return err
}

var _ repository.AccountRepository = (*AccountRepository)(nil)
