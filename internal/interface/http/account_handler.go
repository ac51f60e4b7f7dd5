package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/nwtrack/networth-api/config"
	"github.com/nwtrack/networth-api/internal/application"
	repo "github.com/nwtrack/networth-api/internal/domain/repository"
	"github.com/nwtrack/networth-api/internal/interface/middleware"
	"github.com/nwtrack/networth-api/pkg/helpers"
	"github.com/nwtrack/networth-api/pkg/mailer"
	"github.com/nwtrack/networth-api/pkg/response"
	"github.com/nwtrack/networth-api/pkg/validation"
)

type AccountHandler struct {
	Svc    *application.AccountService
	Audit  repo.AuditRepository
	Pub    *helpers.RabbitPublisher
	Logger *logrus.Logger
	Cfg    *config.Config
}

func NewAccountHandler(svc *application.AccountService, auditRepo repo.AuditRepository, pub *helpers.RabbitPublisher, logger *logrus.Logger, cfg *config.Config) *AccountHandler {
	return &AccountHandler{Svc: svc, Audit: auditRepo, Pub: pub, Logger: logger, Cfg: cfg}
}

type createAccountRequest struct {
	Name     string          `json:"name" binding:"required"`
	Category string          `json:"category" binding:"required"`
	Balance  decimal.Decimal `json:"balance"`
	User     string          `json:"user" binding:"required,uuid"`
}

type updateAccountRequest struct {
	Name     string          `json:"name" binding:"required"`
	Category string          `json:"category" binding:"required"`
	Balance  decimal.Decimal `json:"balance"`
}

type balanceUpdateRequest struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

type snapshotRequest struct {
	UserID   string                 `json:"userId" binding:"required,uuid"`
	Snapshot json.RawMessage        `json:"snapshot" binding:"required"`
	NewData  []balanceUpdateRequest `json:"newData" binding:"required"`
}

// List GET /accounts: every account, balances excluded.
func (h *AccountHandler) List(c *gin.Context) {
	accounts, err := h.Svc.GetAll(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	views := make([]gin.H, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, accountSummary(a))
	}
	response.Success(c, http.StatusOK, views, "accounts", nil)
}

// ListForUser GET /accounts/user/:uid
func (h *AccountHandler) ListForUser(c *gin.Context) {
	accounts, err := h.Svc.GetAllForUser(c.Request.Context(), c.Param("uid"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	views := make([]gin.H, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, accountView(a))
	}
	response.Success(c, http.StatusOK, views, "accounts", nil)
}

// Get GET /accounts/:aid
func (h *AccountHandler) Get(c *gin.Context) {
	a, err := h.Svc.GetByID(c.Request.Context(), c.Param("aid"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, accountView(a), "account", nil)
}

// Create POST /accounts
func (h *AccountHandler) Create(c *gin.Context) {
	var req createAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	a, err := h.Svc.Create(c.Request.Context(), req.User, req.Name, req.Category, req.Balance)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	audit(c, h.Audit, h.Logger, req.User, "", "account_created", map[string]any{"account_id": a.ID, "name": a.Name})
	response.Success(c, http.StatusCreated, accountView(a), "account created", nil)
}

// Update PATCH /accounts/:aid
func (h *AccountHandler) Update(c *gin.Context) {
	var req updateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	a, err := h.Svc.Update(c.Request.Context(), c.Param("aid"), req.Name, req.Category, req.Balance)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, accountView(a), "account updated", nil)
}

// Delete DELETE /accounts/:aid
func (h *AccountHandler) Delete(c *gin.Context) {
	aid := c.Param("aid")
	if err := h.Svc.Delete(c.Request.Context(), aid); err != nil {
		respondServiceError(c, err)
		return
	}
	audit(c, h.Audit, h.Logger, c.GetString(middleware.CtxUserIDKey), "", "account_deleted", map[string]any{"account_id": aid})
	response.Success[any](c, http.StatusOK, nil, "account deleted", nil)
}

// Snapshot PATCH /accounts/log: bulk balance update plus history entry.
func (h *AccountHandler) Snapshot(c *gin.Context) {
	var req snapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	updates := make([]application.BalanceUpdate, 0, len(req.NewData))
	for _, d := range req.NewData {
		updates = append(updates, application.BalanceUpdate{
			AccountID: d.ID,
			Name:      d.Name,
			Balance:   d.Balance,
		})
	}

	u, err := h.Svc.CreateSnapshot(c.Request.Context(), req.UserID, req.Snapshot, updates)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	audit(c, h.Audit, h.Logger, u.ID, u.Email, "snapshot_created", map[string]any{"entries": len(req.NewData)})
	h.enqueueReceipt(c, u.Email, u.Name, u.Currency, u.NetWorth.String())
	response.Success(c, http.StatusCreated, userView(u), "snapshot recorded", nil)
}

// Export POST /accounts/export: uploads the caller's snapshot history.
func (h *AccountHandler) Export(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	url, err := h.Svc.ExportSnapshots(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	audit(c, h.Audit, h.Logger, userID, "", "snapshots_exported", nil)
	response.Success(c, http.StatusOK, gin.H{"url": url}, "export ready", nil)
}

// Search GET /accounts/search?q=&size=
func (h *AccountHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error(c, http.StatusBadRequest, "q is required", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.Search(c.Request.Context(), q, size)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", gin.H{"count": len(hits)})
}

func (h *AccountHandler) enqueueReceipt(c *gin.Context, email, name, currency, netWorth string) {
	if h.Pub == nil || h.Cfg == nil || !h.Cfg.MailSendEnabled {
		return
	}
	job := mailer.EmailJob{
		To:       email,
		Template: mailer.TemplateSnapshotReceipt,
		Data: map[string]any{
			"Name":     name,
			"Currency": currency,
			"NetWorth": netWorth,
			"Date":     time.Now().Format("2 Jan 2006"),
		},
	}
	if err := h.Pub.PublishJSON(c.Request.Context(), job); err != nil && h.Logger != nil {
		h.Logger.WithError(err).Warn("failed to enqueue snapshot receipt")
	}
}
