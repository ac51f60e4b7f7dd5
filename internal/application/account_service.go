package application

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/nwtrack/networth-api/internal/domain/entity"
	repo "github.com/nwtrack/networth-api/internal/domain/repository"
	"github.com/nwtrack/networth-api/pkg/helpers"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrExportsDisabled = errors.New("exports not configured")
)

// AccountService owns the net-worth consistency protocol: every account
// mutation updates the account row(s) and the owner's net_worth/account_list
// inside one store transaction. Outside a transaction the invariant
// net_worth equals the sum of balances always holds.
type AccountService struct {
	Users     repo.UserRepository
	Accounts  repo.AccountRepository
	Snapshots repo.SnapshotRepository
	Tx        repo.TxManager
	Logger    *logrus.Logger

	// optional infra, nil-guarded
	ES              *elasticsearch.Client
	ESAccountsIndex string
	GCS             *storage.Client
	GCSBucket       string
}

func NewAccountService(users repo.UserRepository, accounts repo.AccountRepository, snapshots repo.SnapshotRepository, tx repo.TxManager, logger *logrus.Logger) *AccountService {
	return &AccountService{Users: users, Accounts: accounts, Snapshots: snapshots, Tx: tx, Logger: logger}
}

// Create inserts a new account and folds its balance into the owner's
// aggregate. Fails with ErrUserNotFound when the owner does not exist; on any
// failure nothing is committed.
func (s *AccountService) Create(ctx context.Context, userID, name, category string, balance decimal.Decimal) (*entity.Account, error) {
	acct := &entity.Account{UserID: userID, Name: name, Category: category, Balance: balance}

	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		user, err := s.Users.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if err := s.Accounts.Create(ctx, acct); err != nil {
			return err
		}
		user.NetWorth = user.NetWorth.Add(balance)
		user.AccountList = append(user.AccountList, name)
		return s.Users.Update(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	s.indexAccount(ctx, acct)
	return acct, nil
}

// Update writes new account fields and applies the balance delta to the
// owner's net worth in the same transaction. The delta (new minus the balance
// read inside the transaction) is what keeps the aggregate honest: writing
// the new balance without subtracting the old one would double-count.
func (s *AccountService) Update(ctx context.Context, accountID, name, category string, balance decimal.Decimal) (*entity.Account, error) {
	var acct *entity.Account

	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		acct, err = s.Accounts.GetByID(ctx, accountID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrAccountNotFound
			}
			return err
		}
		user, err := s.Users.GetByID(ctx, acct.UserID)
		if err != nil {
			return err
		}

		delta := balance.Sub(acct.Balance)
		oldName := acct.Name
		acct.Name = name
		acct.Category = category
		acct.Balance = balance
		if err := s.Accounts.Update(ctx, acct); err != nil {
			return err
		}

		user.NetWorth = user.NetWorth.Add(delta)
		if oldName != name {
			renameFirst(user.AccountList, oldName, name)
		}
		return s.Users.Update(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	s.indexAccount(ctx, acct)
	return acct, nil
}

// Delete removes the account and reverses its contribution to the owner's
// aggregate, all in one transaction.
func (s *AccountService) Delete(ctx context.Context, accountID string) error {
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		acct, err := s.Accounts.GetByID(ctx, accountID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrAccountNotFound
			}
			return err
		}
		user, err := s.Users.GetByID(ctx, acct.UserID)
		if err != nil {
			return err
		}
		if err := s.Accounts.Delete(ctx, accountID); err != nil {
			return err
		}
		user.AccountList = removeFirst(user.AccountList, acct.Name)
		user.NetWorth = user.NetWorth.Sub(acct.Balance)
		return s.Users.Update(ctx, user)
	})
	if err != nil {
		return err
	}

	s.removeFromIndex(ctx, accountID)
	return nil
}

func (s *AccountService) GetByID(ctx context.Context, accountID string) (*entity.Account, error) {
	acct, err := s.Accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return acct, nil
}

func (s *AccountService) GetAll(ctx context.Context) ([]*entity.Account, error) {
	return s.Accounts.List(ctx)
}

// GetAllForUser returns the user's accounts; unknown user is ErrUserNotFound.
func (s *AccountService) GetAllForUser(ctx context.Context, userID string) ([]*entity.Account, error) {
	if _, err := s.Users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.Accounts.ListByUser(ctx, userID)
}

// BalanceUpdate is one entry of a bulk snapshot: the account it targets
// (preferably by ID; name kept for older clients) and its new balance.
type BalanceUpdate struct {
	AccountID string
	Name      string
	Balance   decimal.Decimal
}

// CreateSnapshot appends the caller's snapshot payload to the user's history
// (one entry per calendar day, same-day overwrite), applies the supplied
// balances to matching accounts, and recomputes net worth from the
// post-update balances of every owned account; accounts the payload doesn't
// mention keep their prior balance and stay in the aggregate. Every write
// shares one transaction.
func (s *AccountService) CreateSnapshot(ctx context.Context, userID string, payload json.RawMessage, updates []BalanceUpdate) (*entity.User, error) {
	var user *entity.User

	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.Users.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		accounts, err := s.Accounts.ListByUser(ctx, userID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		snap := &entity.Snapshot{
			UserID:  userID,
			Date:    time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
			Payload: payload,
		}
		if err := s.Snapshots.Upsert(ctx, snap); err != nil {
			return err
		}

		newNetWorth := decimal.Zero
		for _, acct := range accounts {
			if upd, ok := matchUpdate(acct, updates); ok {
				acct.Balance = upd.Balance
				if err := s.Accounts.Update(ctx, acct); err != nil {
					return err
				}
			}
			newNetWorth = newNetWorth.Add(acct.Balance)
		}

		user.NetWorth = newNetWorth
		user.LastUpdated = &now
		return s.Users.Update(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// matchUpdate finds the update targeting acct: ID match wins over name match,
// and the first name match wins when names collide.
func matchUpdate(acct *entity.Account, updates []BalanceUpdate) (BalanceUpdate, bool) {
	for _, u := range updates {
		if u.AccountID != "" && u.AccountID == acct.ID {
			return u, true
		}
	}
	for _, u := range updates {
		if u.AccountID == "" && u.Name == acct.Name {
			return u, true
		}
	}
	return BalanceUpdate{}, false
}

// ExportSnapshots uploads the user's snapshot history as a JSON document to
// the configured bucket and returns the object URL.
func (s *AccountService) ExportSnapshots(ctx context.Context, userID string) (string, error) {
	if s.GCS == nil || s.GCSBucket == "" {
		return "", ErrExportsDisabled
	}
	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}
	snaps, err := s.Snapshots.ListByUser(ctx, userID)
	if err != nil {
		return "", err
	}

	type exportEntry struct {
		Date    string          `json:"date"`
		Payload json.RawMessage `json:"payload"`
	}
	export := struct {
		UserID      string        `json:"userId"`
		Email       string        `json:"email"`
		NetWorth    string        `json:"netWorth"`
		GeneratedAt time.Time     `json:"generatedAt"`
		Snapshots   []exportEntry `json:"snapshots"`
	}{
		UserID:      user.ID,
		Email:       user.Email,
		NetWorth:    user.NetWorth.String(),
		GeneratedAt: time.Now().UTC(),
		Snapshots:   make([]exportEntry, 0, len(snaps)),
	}
	for _, sn := range snaps {
		export.Snapshots = append(export.Snapshots, exportEntry{
			Date:    sn.Date.Format("2006-01-02"),
			Payload: sn.Payload,
		})
	}

	b, err := json.Marshal(export)
	if err != nil {
		return "", err
	}
	objectPath := fmt.Sprintf("exports/%s/%d.json", userID, time.Now().Unix())
	return helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, "application/json", bytes.NewReader(b))
}

// Search runs a multi_match query over indexed account names and categories.
// Returns empty results when no index is configured.
func (s *AccountService) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESAccountsIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"name^2", "category"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESAccountsIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

func (s *AccountService) indexAccount(ctx context.Context, a *entity.Account) {
	if s.ES == nil || s.ESAccountsIndex == "" {
		return
	}
	doc := map[string]any{
		"id":       a.ID,
		"user_id":  a.UserID,
		"name":     a.Name,
		"category": a.Category,
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESAccountsIndex, DocumentID: a.ID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("account_id", a.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("account_id", a.ID).Warn("es index response error")
	}
}

func (s *AccountService) removeFromIndex(ctx context.Context, accountID string) {
	if s.ES == nil || s.ESAccountsIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESAccountsIndex, DocumentID: accountID}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("account_id", accountID).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}

func renameFirst(list []string, from, to string) {
	for i, n := range list {
		if n == from {
			list[i] = to
			return
		}
	}
}

func removeFirst(list []string, name string) []string {
	for i, n := range list {
		if n == name {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
