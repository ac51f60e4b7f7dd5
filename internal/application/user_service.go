package application

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/nwtrack/networth-api/internal/domain/entity"
	repo "github.com/nwtrack/networth-api/internal/domain/repository"
	"github.com/nwtrack/networth-api/pkg/helpers"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Defaults applied to a fresh signup, matching the onboarding flow: planning
// fields start unset, retirement age pessimistic until the user edits them.
const (
	defaultAge         = 18
	defaultAgeToRetire = 99
	defaultCurrency    = "£"
)

// UserService owns identity and the profile fields that carry no aggregate
// invariant beyond net worth (which AccountService maintains).
type UserService struct {
	Users     repo.UserRepository
	Accounts  repo.AccountRepository
	Snapshots repo.SnapshotRepository
	Tx        repo.TxManager
	JWT       *helpers.JWTManager
	Redis     *redis.Client
	Logger    *logrus.Logger
}

func NewUserService(users repo.UserRepository, accounts repo.AccountRepository, snapshots repo.SnapshotRepository, tx repo.TxManager, jwt *helpers.JWTManager, rdb *redis.Client, logger *logrus.Logger) *UserService {
	return &UserService{Users: users, Accounts: accounts, Snapshots: snapshots, Tx: tx, JWT: jwt, Redis: rdb, Logger: logger}
}

func sessionKey(userID string) string {
	return "user:session:" + userID
}

// Signup creates the user with onboarding defaults and issues a bearer token.
// A duplicate email is ErrEmailTaken; the check runs before any insert.
func (s *UserService) Signup(ctx context.Context, name, email, password string) (*entity.User, string, error) {
	existing, err := s.Users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", ErrEmailTaken
	}

	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, "", err
	}
	u := &entity.User{
		Name:          name,
		Email:         email,
		Password:      hash,
		Age:           defaultAge,
		AgeToRetire:   defaultAgeToRetire,
		Currency:      defaultCurrency,
		FirstTimeUser: true,
		NetWorth:      decimal.Zero,
		AccountList:   []string{},
	}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, "", err
	}

	token, _, err := s.JWT.Generate(u.ID, u.Email)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Login validates credentials and issues a bearer token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (*entity.User, string, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, "", ErrInvalidCredentials
	}

	token, exp, err := s.JWT.Generate(u.ID, u.Email)
	if err != nil {
		return nil, "", err
	}

	// informational session record; bearer auth does not depend on it
	if s.Redis != nil {
		session := map[string]any{
			"user_id":   u.ID,
			"email":     u.Email,
			"logged_in": time.Now().UTC().Format(time.RFC3339),
		}
		if err := helpers.RedisSetJSON(ctx, s.Redis, sessionKey(u.ID), session, time.Until(exp)); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("session record failed")
		}
	}
	return u, token, nil
}

func (s *UserService) List(ctx context.Context) ([]*entity.User, error) {
	return s.Users.List(ctx)
}

// GetWithAccounts returns the user and their populated accounts.
func (s *UserService) GetWithAccounts(ctx context.Context, userID string) (*entity.User, []*entity.Account, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}
	accounts, err := s.Accounts.ListByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return u, accounts, nil
}

// UpdateProfileInput carries the editable planning fields. Nil pointers mean
// "not supplied" and leave the stored value alone; the original overwrote
// unconditionally, which clobbered fields absent from the request.
type UpdateProfileInput struct {
	TargetWorth     *decimal.Decimal
	TargetAge       *int
	Name            string
	CurrentAge      *int
	DrawDownAmount  *decimal.Decimal
	MonthlyIncrease *decimal.Decimal
}

// UpdateProfile applies the supplied planning fields and marks onboarding
// complete.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if in.TargetWorth != nil {
		u.TargetWorth = *in.TargetWorth
	}
	if in.TargetAge != nil {
		u.AgeToRetire = *in.TargetAge
	}
	if in.Name != "" {
		u.Name = in.Name
	}
	if in.CurrentAge != nil {
		u.Age = *in.CurrentAge
	}
	if in.DrawDownAmount != nil {
		u.DrawDownAmount = *in.DrawDownAmount
	}
	if in.MonthlyIncrease != nil {
		u.MonthlyIncrease = *in.MonthlyIncrease
	}
	u.FirstTimeUser = false

	if err := s.Users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateCurrency overwrites the display currency.
func (s *UserService) UpdateCurrency(ctx context.Context, userID, currency string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	u.Currency = currency
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ResetAccountData wipes the user's bookkeeping state: account rows, the
// denormalized list, net worth, and snapshot history all go together in one
// transaction, leaving no orphaned rows behind.
func (s *UserService) ResetAccountData(ctx context.Context, userID string) (*entity.User, error) {
	var u *entity.User
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		u, err = s.Users.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if err := s.Accounts.DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if err := s.Snapshots.DeleteByUser(ctx, userID); err != nil {
			return err
		}
		u.NetWorth = decimal.Zero
		u.AccountList = []string{}
		return s.Users.Update(ctx, u)
	})
	if err != nil {
		return nil, err
	}

	s.dropSession(ctx, userID)
	return u, nil
}

// Destroy deletes the user and everything they own. The account and snapshot
// deletes are explicit so the cascade is visible here and testable, even
// though the schema's foreign keys would also enforce it.
func (s *UserService) Destroy(ctx context.Context, userID string) error {
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.Users.GetByID(ctx, userID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if err := s.Accounts.DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if err := s.Snapshots.DeleteByUser(ctx, userID); err != nil {
			return err
		}
		return s.Users.Delete(ctx, userID)
	})
	if err != nil {
		return err
	}

	s.dropSession(ctx, userID)
	return nil
}

func (s *UserService) dropSession(ctx context.Context, userID string) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisDel(ctx, s.Redis, sessionKey(userID)); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("session delete failed")
	}
}
