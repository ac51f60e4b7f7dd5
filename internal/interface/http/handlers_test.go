package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nwtrack/networth-api/internal/application"
	"github.com/nwtrack/networth-api/internal/domain/entity"
	"github.com/nwtrack/networth-api/internal/domain/repository"
	"github.com/nwtrack/networth-api/internal/interface/middleware"
	"github.com/nwtrack/networth-api/pkg/helpers"
	"github.com/nwtrack/networth-api/pkg/validation"
)

// fakeStore backs the handler tests with just enough persistence. Writes are
// applied directly; WithinTx only threads the context through.
type fakeStore struct {
	users     map[string]*entity.User
	accounts  map[string]*entity.Account
	acctOrder []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[string]*entity.User{}, accounts: map[string]*entity.Account{}}
}

func (f *fakeStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeStore) Create(ctx context.Context, u *entity.User) error {
	u.ID = uuid.NewString()
	f.users[u.ID] = u
	return nil
}

func (f *fakeStore) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeStore) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStore) List(ctx context.Context) ([]*entity.User, error) {
	out := make([]*entity.User, 0, len(f.users))
	for _, u := range f.users {
		c := *u
		out = append(out, &c)
	}
	return out, nil
}

func (f *fakeStore) Update(ctx context.Context, u *entity.User) error {
	if _, ok := f.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	c := *u
	f.users[u.ID] = &c
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, id string) error {
	delete(f.users, id)
	return nil
}

type fakeAccounts struct{ f *fakeStore }

func (r fakeAccounts) Create(ctx context.Context, a *entity.Account) error {
	a.ID = uuid.NewString()
	c := *a
	r.f.accounts[a.ID] = &c
	r.f.acctOrder = append(r.f.acctOrder, a.ID)
	return nil
}

func (r fakeAccounts) GetByID(ctx context.Context, id string) (*entity.Account, error) {
	a, ok := r.f.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *a
	return &c, nil
}

func (r fakeAccounts) List(ctx context.Context) ([]*entity.Account, error) {
	out := make([]*entity.Account, 0, len(r.f.acctOrder))
	for _, id := range r.f.acctOrder {
		if a, ok := r.f.accounts[id]; ok {
			c := *a
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r fakeAccounts) ListByUser(ctx context.Context, userID string) ([]*entity.Account, error) {
	out := []*entity.Account{}
	for _, id := range r.f.acctOrder {
		if a, ok := r.f.accounts[id]; ok && a.UserID == userID {
			c := *a
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r fakeAccounts) Update(ctx context.Context, a *entity.Account) error {
	if _, ok := r.f.accounts[a.ID]; !ok {
		return repository.ErrNotFound
	}
	c := *a
	r.f.accounts[a.ID] = &c
	return nil
}

func (r fakeAccounts) Delete(ctx context.Context, id string) error {
	delete(r.f.accounts, id)
	return nil
}

func (r fakeAccounts) DeleteByUser(ctx context.Context, userID string) error {
	for id, a := range r.f.accounts {
		if a.UserID == userID {
			delete(r.f.accounts, id)
		}
	}
	return nil
}

type fakeSnapshots struct{}

func (fakeSnapshots) Upsert(ctx context.Context, s *entity.Snapshot) error { return nil }
func (fakeSnapshots) ListByUser(ctx context.Context, userID string) ([]*entity.Snapshot, error) {
	return nil, nil
}
func (fakeSnapshots) DeleteByUser(ctx context.Context, userID string) error { return nil }

type testEnv struct {
	store  *fakeStore
	jwt    *helpers.JWTManager
	router *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	store := newFakeStore()
	jwt := helpers.NewJWTManager("test-secret", time.Hour)

	userSvc := application.NewUserService(store, fakeAccounts{store}, fakeSnapshots{}, store, jwt, nil, nil)
	acctSvc := application.NewAccountService(store, fakeAccounts{store}, fakeSnapshots{}, store, nil)

	uh := NewUserHandler(userSvc, nil, nil, nil, nil, nil)
	ah := NewAccountHandler(acctSvc, nil, nil, nil, nil)

	r := gin.New()
	r.POST("/users/signup", uh.Signup)
	r.POST("/users/login", uh.Login)

	auth := r.Group("/accounts")
	auth.Use(middleware.BearerAuth(jwt))
	auth.GET("", ah.List)
	auth.POST("", ah.Create)
	auth.PATCH("/log", ah.Snapshot)
	auth.DELETE("/:aid", ah.Delete)

	return &testEnv{store: store, jwt: jwt, router: r}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) signup(t *testing.T) (userID, token string) {
	t.Helper()
	w := e.do(t, http.MethodPost, "/users/signup", "", gin.H{
		"name": "Ada", "email": "ada@example.com", "password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		Data struct {
			UserID string `json:"userId"`
			Token  string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data.UserID, resp.Data.Token
}

func TestSignupCreatesUser(t *testing.T) {
	e := newTestEnv(t)
	userID, token := e.signup(t)
	assert.NotEmpty(t, userID)
	assert.NotEmpty(t, token)

	claims, err := e.jwt.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}

func TestSignupDuplicateEmailConflicts(t *testing.T) {
	e := newTestEnv(t)
	e.signup(t)

	w := e.do(t, http.MethodPost, "/users/signup", "", gin.H{
		"name": "Other", "email": "ada@example.com", "password": "different",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSignupShortPasswordRejected(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(t, http.MethodPost, "/users/signup", "", gin.H{
		"name": "Ada", "email": "ada@example.com", "password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "password")
}

func TestLoginReturnsFirstTimeFlag(t *testing.T) {
	e := newTestEnv(t)
	e.signup(t)

	w := e.do(t, http.MethodPost, "/users/login", "", gin.H{
		"email": "ada@example.com", "password": "hunter22",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"firstTimeUser":true`)
}

func TestAccountMutationRequiresToken(t *testing.T) {
	e := newTestEnv(t)
	userID, _ := e.signup(t)

	w := e.do(t, http.MethodPost, "/accounts", "", gin.H{
		"name": "Savings", "category": "savings", "balance": "100", "user": userID,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	// the rejected request must not have written anything
	assert.Empty(t, e.store.accounts)
}

func TestCreateAccountUpdatesAggregate(t *testing.T) {
	e := newTestEnv(t)
	userID, token := e.signup(t)

	w := e.do(t, http.MethodPost, "/accounts", token, gin.H{
		"name": "Savings", "category": "savings", "balance": "100.50", "user": userID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	u := e.store.users[userID]
	assert.Equal(t, "100.5", u.NetWorth.String())
	assert.Equal(t, []string{"Savings"}, u.AccountList)
}

func TestCreateAccountUnknownUserIs404(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.signup(t)

	w := e.do(t, http.MethodPost, "/accounts", token, gin.H{
		"name": "Savings", "category": "savings", "balance": "1", "user": uuid.NewString(),
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSnapshotRouteAppliesBalances(t *testing.T) {
	e := newTestEnv(t)
	userID, token := e.signup(t)

	w := e.do(t, http.MethodPost, "/accounts", token, gin.H{
		"name": "Savings", "category": "savings", "balance": "100", "user": userID,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = e.do(t, http.MethodPatch, "/accounts/log", token, gin.H{
		"userId":   userID,
		"snapshot": gin.H{"note": "monthly"},
		"newData":  []gin.H{{"name": "Savings", "balance": "150"}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	u := e.store.users[userID]
	assert.Equal(t, "150", u.NetWorth.String())
}
