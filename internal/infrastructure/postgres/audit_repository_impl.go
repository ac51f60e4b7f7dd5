package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nwtrack/networth-api/internal/domain/entity"
	"github.com/nwtrack/networth-api/internal/domain/repository"
)

type AuditRepository struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

func (r *AuditRepository) Insert(ctx context.Context, e *entity.AuditLog) error {
	// audit rows never join the request's transaction: a rolled-back mutation
	// should still leave a trace
	_, err := r.pool.Exec(ctx, `
		INSERT INTO audit_logs (user_id, email, action, ip, user_agent, metadata)
		VALUES (NULLIF($1, '')::uuid, NULLIF($2, ''), $3, NULLIF($4, ''), NULLIF($5, ''), $6)
	`, e.UserID, e.Email, e.Action, e.IP, e.UserAgent, e.Metadata)
	return err
}

var _ repository.AuditRepository = (*AuditRepository)(nil)
