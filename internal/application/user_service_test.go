package application

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nwtrack/networth-api/pkg/helpers"
)

func newUserService(m *memStore) *UserService {
	jwt := helpers.NewJWTManager("test-secret", time.Hour)
	return NewUserService(m, memAccounts{m}, memSnapshots{m}, m, jwt, nil, nil)
}

func TestSignupAppliesOnboardingDefaults(t *testing.T) {
	m := newMemStore()
	svc := newUserService(m)

	u, token, err := svc.Signup(context.Background(), "Ada", "ada@example.com", "hunter22")
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)

	assert.Equal(t, 18, u.Age)
	assert.Equal(t, 99, u.AgeToRetire)
	assert.Equal(t, "£", u.Currency)
	assert.True(t, u.FirstTimeUser)
	assert.True(t, u.NetWorth.IsZero())
	assert.Empty(t, u.AccountList)

	// stored password is a hash, never the plain text
	assert.NotEqual(t, "hunter22", u.Password)
	assert.True(t, helpers.CompareHashAndPassword(u.Password, "hunter22"))

	claims, err := svc.JWT.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, u.Email, claims.Email)
}

func TestSignupDuplicateEmail(t *testing.T) {
	m := newMemStore()
	svc := newUserService(m)
	ctx := context.Background()

	_, _, err := svc.Signup(ctx, "Ada", "ada@example.com", "hunter22")
	require.NoError(t, err)

	_, _, err = svc.Signup(ctx, "Other", "ada@example.com", "different")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginBadCredentialsAreIndistinguishable(t *testing.T) {
	m := newMemStore()
	svc := newUserService(m)
	ctx := context.Background()

	_, _, err := svc.Signup(ctx, "Ada", "ada@example.com", "hunter22")
	require.NoError(t, err)

	_, _, wrongPwd := svc.Login(ctx, "ada@example.com", "nope")
	_, _, noUser := svc.Login(ctx, "ghost@example.com", "nope")
	assert.ErrorIs(t, wrongPwd, ErrInvalidCredentials)
	assert.ErrorIs(t, noUser, ErrInvalidCredentials)
}

func TestLoginIssuesToken(t *testing.T) {
	m := newMemStore()
	svc := newUserService(m)
	ctx := context.Background()

	created, _, err := svc.Signup(ctx, "Ada", "ada@example.com", "hunter22")
	require.NoError(t, err)

	u, token, err := svc.Login(ctx, "ada@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)

	claims, err := svc.JWT.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
}

func TestUpdateProfileOnlyTouchesSuppliedFields(t *testing.T) {
	m := newMemStore()
	svc := newUserService(m)
	ctx := context.Background()

	u, _, err := svc.Signup(ctx, "Ada", "ada@example.com", "hunter22")
	require.NoError(t, err)

	target := dec("500000")
	got, err := svc.UpdateProfile(ctx, u.ID, UpdateProfileInput{TargetWorth: &target})
	require.NoError(t, err)

	assert.True(t, got.TargetWorth.Equal(target))
	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, 18, got.Age)
	assert.Equal(t, 99, got.AgeToRetire)
	assert.False(t, got.FirstTimeUser, "any profile edit completes onboarding")
}

func TestUpdateProfileAllFields(t *testing.T) {
	m := newMemStore()
	svc := newUserService(m)
	ctx := context.Background()

	u, _, err := svc.Signup(ctx, "Ada", "ada@example.com", "hunter22")
	require.NoError(t, err)

	target := dec("750000")
	draw := dec("2500")
	monthly := dec("800")
	age := 35
	retire := 60
	got, err := svc.UpdateProfile(ctx, u.ID, UpdateProfileInput{
		TargetWorth:     &target,
		TargetAge:       &retire,
		Name:            "Ada L",
		CurrentAge:      &age,
		DrawDownAmount:  &draw,
		MonthlyIncrease: &monthly,
	})
	require.NoError(t, err)

	assert.Equal(t, "Ada L", got.Name)
	assert.Equal(t, 35, got.Age)
	assert.Equal(t, 60, got.AgeToRetire)
	assert.True(t, got.DrawDownAmount.Equal(draw))
	assert.True(t, got.MonthlyIncrease.Equal(monthly))
}

func TestUpdateCurrency(t *testing.T) {
	m := newMemStore()
	svc := newUserService(m)
	ctx := context.Background()

	u, _, err := svc.Signup(ctx, "Ada", "ada@example.com", "hunter22")
	require.NoError(t, err)

	got, err := svc.UpdateCurrency(ctx, u.ID, "$")
	require.NoError(t, err)
	assert.Equal(t, "$", got.Currency)
}

func TestResetAccountDataLeavesNoOrphans(t *testing.T) {
	m := newMemStore()
	userSvc := newUserService(m)
	acctSvc := newAccountService(m)
	ctx := context.Background()

	u, _, err := userSvc.Signup(ctx, "Ada", "ada@example.com", "hunter22")
	require.NoError(t, err)
	_, err = acctSvc.Create(ctx, u.ID, "Savings", "savings", dec("100"))
	require.NoError(t, err)
	_, err = acctSvc.CreateSnapshot(ctx, u.ID, json.RawMessage(`{}`), nil)
	require.NoError(t, err)

	got, err := userSvc.ResetAccountData(ctx, u.ID)
	require.NoError(t, err)

	assert.True(t, got.NetWorth.IsZero())
	assert.Empty(t, got.AccountList)

	accounts, err := memAccounts{m}.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, accounts)
	snaps, err := memSnapshots{m}.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, snaps)

	// the user row itself survives a reset
	_, err = m.GetByID(ctx, u.ID)
	require.NoError(t, err)
}

func TestDestroyRemovesUserAndOwnedRows(t *testing.T) {
	m := newMemStore()
	userSvc := newUserService(m)
	acctSvc := newAccountService(m)
	ctx := context.Background()

	u, _, err := userSvc.Signup(ctx, "Ada", "ada@example.com", "hunter22")
	require.NoError(t, err)
	_, err = acctSvc.Create(ctx, u.ID, "Savings", "savings", dec("100"))
	require.NoError(t, err)
	_, err = acctSvc.CreateSnapshot(ctx, u.ID, json.RawMessage(`{}`), nil)
	require.NoError(t, err)

	require.NoError(t, userSvc.Destroy(ctx, u.ID))

	_, _, err = userSvc.GetWithAccounts(ctx, u.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
	accounts, err := memAccounts{m}.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, accounts)
	snaps, err := memSnapshots{m}.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, snaps)
}

func TestDestroyUnknownUser(t *testing.T) {
	m := newMemStore()
	svc := newUserService(m)

	err := svc.Destroy(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
