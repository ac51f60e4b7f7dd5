package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nwtrack/networth-api/internal/domain/entity"
	"github.com/nwtrack/networth-api/internal/domain/repository"
)

type SnapshotRepository struct {
	pool *pgxpool.Pool
}

func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool}
}

func (r *SnapshotRepository) db(ctx context.Context) querier {
	if tx := txFrom(ctx); tx != nil {
		return tx
	}
	return r.pool
}

// Upsert inserts the day's snapshot, replacing the payload when the user
// already logged one for that date.
func (r *SnapshotRepository) Upsert(ctx context.Context, s *entity.Snapshot) error {
	row := r.db(ctx).QueryRow(ctx, `
		INSERT INTO user_snapshots (user_id, snapshot_date, payload)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, snapshot_date)
		DO UPDATE SET payload = EXCLUDED.payload
		RETURNING id, created_at
	`, s.UserID, s.Date, s.Payload)

	return row.Scan(&s.ID, &s.CreatedAt)
}

func (r *SnapshotRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Snapshot, error) {
	rows, err := r.db(ctx).Query(ctx, `
		SELECT id, user_id, snapshot_date, payload, created_at
		FROM user_snapshots
		WHERE user_id = $1
		ORDER BY snapshot_date
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []*entity.Snapshot
	for rows.Next() {
		s := &entity.Snapshot{}
		if err := rows.Scan(&s.ID, &s.UserID, &s.Date, &s.Payload, &s.CreatedAt); err != nil {
			return nil, err
		}
		snaps = append(snaps, s)
	}
	return snaps, rows.Err()
}

func (r *SnapshotRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.db(ctx).Exec(ctx, `DELETE FROM user_snapshots WHERE user_id = $1`, userID)
	return err
}

var _ repository.SnapshotRepository = (*SnapshotRepository)(nil)
