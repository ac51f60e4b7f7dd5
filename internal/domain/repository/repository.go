package repository

import (
	"context"
	"errors"

	"github.com/nwtrack/networth-api/internal/domain/entity"
)

// ErrNotFound is returned by every repository when the requested row does not
// exist. Services translate it into their own sentinel errors.
var ErrNotFound = errors.New("not found")

// TxManager runs fn inside a single store transaction. Repository calls made
// with the context passed to fn share that transaction; the transaction
// commits when fn returns nil and rolls back otherwise.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository defines user-row persistence. Update writes the profile
// fields and the denormalized aggregate (net_worth, account_list,
// last_updated) together.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	Delete(ctx context.Context, id string) error
}

// AccountRepository defines account-row persistence.
type AccountRepository interface {
	Create(ctx context.Context, a *entity.Account) error
	GetByID(ctx context.Context, id string) (*entity.Account, error)
	List(ctx context.Context) ([]*entity.Account, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.Account, error)
	Update(ctx context.Context, a *entity.Account) error
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) error
}

// SnapshotRepository stores the append-only balance history. Upsert replaces
// the payload when a row for (user, date) already exists.
type SnapshotRepository interface {
	Upsert(ctx context.Context, s *entity.Snapshot) error
	ListByUser(ctx context.Context, userID string) ([]*entity.Snapshot, error)
	DeleteByUser(ctx context.Context, userID string) error
}

// AuditRepository appends audit rows. Failures are logged, never surfaced to
// callers.
type AuditRepository interface {
	Insert(ctx context.Context, e *entity.AuditLog) error
}
