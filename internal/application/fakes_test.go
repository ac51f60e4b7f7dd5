package application

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/nwtrack/networth-api/internal/domain/entity"
	"github.com/nwtrack/networth-api/internal/domain/repository"
)

var errForcedWrite = errors.New("forced write failure")

// memStore is an in-memory stand-in for the postgres repositories plus the
// transaction manager. WithinTx snapshots all state up front and restores it
// when fn fails, so rollback behavior is observable in tests.
type memStore struct {
	users     map[string]*entity.User
	accounts  map[string]*entity.Account
	acctOrder []string
	snapshots map[string]*entity.Snapshot // key: userID + "|" + date

	failUserUpdate bool
}

func newMemStore() *memStore {
	return &memStore{
		users:     map[string]*entity.User{},
		accounts:  map[string]*entity.Account{},
		snapshots: map[string]*entity.Snapshot{},
	}
}

func copyUser(u *entity.User) *entity.User {
	c := *u
	c.AccountList = append([]string(nil), u.AccountList...)
	if u.WorthDateTarget != nil {
		t := *u.WorthDateTarget
		c.WorthDateTarget = &t
	}
	if u.LastUpdated != nil {
		t := *u.LastUpdated
		c.LastUpdated = &t
	}
	return &c
}

func copyAccount(a *entity.Account) *entity.Account {
	c := *a
	return &c
}

func copySnapshot(s *entity.Snapshot) *entity.Snapshot {
	c := *s
	c.Payload = append([]byte(nil), s.Payload...)
	return &c
}

type storeState struct {
	users     map[string]*entity.User
	accounts  map[string]*entity.Account
	acctOrder []string
	snapshots map[string]*entity.Snapshot
}

func (m *memStore) save() storeState {
	st := storeState{
		users:     map[string]*entity.User{},
		accounts:  map[string]*entity.Account{},
		acctOrder: append([]string(nil), m.acctOrder...),
		snapshots: map[string]*entity.Snapshot{},
	}
	for k, v := range m.users {
		st.users[k] = copyUser(v)
	}
	for k, v := range m.accounts {
		st.accounts[k] = copyAccount(v)
	}
	for k, v := range m.snapshots {
		st.snapshots[k] = copySnapshot(v)
	}
	return st
}

func (m *memStore) restore(st storeState) {
	m.users = st.users
	m.accounts = st.accounts
	m.acctOrder = st.acctOrder
	m.snapshots = st.snapshots
}

func (m *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	st := m.save()
	if err := fn(ctx); err != nil {
		m.restore(st)
		return err
	}
	return nil
}

// UserRepository

func (m *memStore) Create(ctx context.Context, u *entity.User) error {
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	m.users[u.ID] = copyUser(u)
	return nil
}

func (m *memStore) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyUser(u), nil
}

func (m *memStore) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) List(ctx context.Context) ([]*entity.User, error) {
	out := make([]*entity.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, copyUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) Update(ctx context.Context, u *entity.User) error {
	if m.failUserUpdate {
		return errForcedWrite
	}
	if _, ok := m.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	u.UpdatedAt = time.Now().UTC()
	m.users[u.ID] = copyUser(u)
	return nil
}

func (m *memStore) Delete(ctx context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

// AccountRepository, wrapped so method sets do not collide with the user repo

type memAccounts struct{ m *memStore }

func (r memAccounts) Create(ctx context.Context, a *entity.Account) error {
	a.ID = uuid.NewString()
	a.CreatedAt = time.Now().UTC()
	a.UpdatedAt = a.CreatedAt
	r.m.accounts[a.ID] = copyAccount(a)
	r.m.acctOrder = append(r.m.acctOrder, a.ID)
	return nil
}

func (r memAccounts) GetByID(ctx context.Context, id string) (*entity.Account, error) {
	a, ok := r.m.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyAccount(a), nil
}

func (r memAccounts) List(ctx context.Context) ([]*entity.Account, error) {
	out := make([]*entity.Account, 0, len(r.m.acctOrder))
	for _, id := range r.m.acctOrder {
		if a, ok := r.m.accounts[id]; ok {
			out = append(out, copyAccount(a))
		}
	}
	return out, nil
}

func (r memAccounts) ListByUser(ctx context.Context, userID string) ([]*entity.Account, error) {
	out := []*entity.Account{}
	for _, id := range r.m.acctOrder {
		if a, ok := r.m.accounts[id]; ok && a.UserID == userID {
			out = append(out, copyAccount(a))
		}
	}
	return out, nil
}

func (r memAccounts) Update(ctx context.Context, a *entity.Account) error {
	if _, ok := r.m.accounts[a.ID]; !ok {
		return repository.ErrNotFound
	}
	a.UpdatedAt = time.Now().UTC()
	r.m.accounts[a.ID] = copyAccount(a)
	return nil
}

func (r memAccounts) Delete(ctx context.Context, id string) error {
	if _, ok := r.m.accounts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.m.accounts, id)
	return nil
}

func (r memAccounts) DeleteByUser(ctx context.Context, userID string) error {
	for id, a := range r.m.accounts {
		if a.UserID == userID {
			delete(r.m.accounts, id)
		}
	}
	return nil
}

// SnapshotRepository

type memSnapshots struct{ m *memStore }

func snapKey(userID string, date time.Time) string {
	return userID + "|" + date.Format("2006-01-02")
}

func (r memSnapshots) Upsert(ctx context.Context, s *entity.Snapshot) error {
	key := snapKey(s.UserID, s.Date)
	if prev, ok := r.m.snapshots[key]; ok {
		s.ID = prev.ID
		s.CreatedAt = prev.CreatedAt
	} else {
		s.ID = uuid.NewString()
		s.CreatedAt = time.Now().UTC()
	}
	r.m.snapshots[key] = copySnapshot(s)
	return nil
}

func (r memSnapshots) ListByUser(ctx context.Context, userID string) ([]*entity.Snapshot, error) {
	out := []*entity.Snapshot{}
	for _, s := range r.m.snapshots {
		if s.UserID == userID {
			out = append(out, copySnapshot(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r memSnapshots) DeleteByUser(ctx context.Context, userID string) error {
	for k, s := range r.m.snapshots {
		if s.UserID == userID {
			delete(r.m.snapshots, k)
		}
	}
	return nil
}
