package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/nwtrack/networth-api/config"
	"github.com/nwtrack/networth-api/internal/application"
	repo "github.com/nwtrack/networth-api/internal/domain/repository"
	"github.com/nwtrack/networth-api/pkg/helpers"
	"github.com/nwtrack/networth-api/pkg/mailer"
	"github.com/nwtrack/networth-api/pkg/response"
	"github.com/nwtrack/networth-api/pkg/validation"
)

const usersCacheKey = "cache:users:list"

type UserHandler struct {
	Svc    *application.UserService
	Audit  repo.AuditRepository
	Pub    *helpers.RabbitPublisher
	RDB    *redis.Client
	Logger *logrus.Logger
	Cfg    *config.Config
}

func NewUserHandler(svc *application.UserService, auditRepo repo.AuditRepository, pub *helpers.RabbitPublisher, rdb *redis.Client, logger *logrus.Logger, cfg *config.Config) *UserHandler {
	return &UserHandler{Svc: svc, Audit: auditRepo, Pub: pub, RDB: rdb, Logger: logger, Cfg: cfg}
}

type signupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type updateProfileRequest struct {
	UserID          string           `json:"userId" binding:"required,uuid"`
	TargetWorth     *decimal.Decimal `json:"targetWorth"`
	TargetAge       *int             `json:"targetAge"`
	Name            string           `json:"name"`
	CurrentAge      *int             `json:"currentAge"`
	DrawDownAmount  *decimal.Decimal `json:"drawDownAmount"`
	MonthlyIncrease *decimal.Decimal `json:"monthlyIncrease"`
}

type currencyRequest struct {
	UserID   string `json:"userId" binding:"required,uuid"`
	Currency string `json:"currency" binding:"required"`
}

type userIDRequest struct {
	UserID string `json:"userId" binding:"required,uuid"`
}

// List GET /users: passwords excluded; short-lived redis cache in front.
func (h *UserHandler) List(c *gin.Context) {
	if h.RDB != nil {
		var cached []gin.H
		if ok, err := helpers.RedisGetJSON(c.Request.Context(), h.RDB, usersCacheKey, &cached); err == nil && ok {
			response.Success(c, http.StatusOK, cached, "users", gin.H{"cached": true})
			return
		}
	}

	users, err := h.Svc.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	views := make([]gin.H, 0, len(users))
	for _, u := range users {
		views = append(views, userView(u))
	}

	if h.RDB != nil {
		_ = helpers.RedisSetJSON(c.Request.Context(), h.RDB, usersCacheKey, views, 30*time.Second)
	}
	response.Success(c, http.StatusOK, views, "users", nil)
}

// Get GET /users/:id: user with populated accounts.
func (h *UserHandler) Get(c *gin.Context) {
	u, accounts, err := h.Svc.GetWithAccounts(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	view := userView(u)
	accts := make([]gin.H, 0, len(accounts))
	for _, a := range accounts {
		accts = append(accts, accountView(a))
	}
	view["accounts"] = accts
	response.Success(c, http.StatusOK, view, "user", nil)
}

// Signup POST /users/signup
func (h *UserHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, token, err := h.Svc.Signup(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	audit(c, h.Audit, h.Logger, u.ID, u.Email, "signup", nil)
	h.enqueueWelcome(c, u.Email, u.Name)

	response.Success(c, http.StatusCreated, gin.H{
		"userId": u.ID,
		"email":  u.Email,
		"token":  token,
	}, "user created", nil)
}

// Login POST /users/login
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, token, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		audit(c, h.Audit, h.Logger, "", req.Email, "login_failed", nil)
		respondServiceError(c, err)
		return
	}

	audit(c, h.Audit, h.Logger, u.ID, u.Email, "login", nil)
	response.Success(c, http.StatusOK, gin.H{
		"userId":        u.ID,
		"email":         u.Email,
		"token":         token,
		"firstTimeUser": u.FirstTimeUser,
	}, "login successful", nil)
}

// UpdateProfile PATCH /users/update
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, err := h.Svc.UpdateProfile(c.Request.Context(), req.UserID, application.UpdateProfileInput{
		TargetWorth:     req.TargetWorth,
		TargetAge:       req.TargetAge,
		Name:            req.Name,
		CurrentAge:      req.CurrentAge,
		DrawDownAmount:  req.DrawDownAmount,
		MonthlyIncrease: req.MonthlyIncrease,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, userView(u), "profile updated", nil)
}

// UpdateCurrency PATCH /users/currency
func (h *UserHandler) UpdateCurrency(c *gin.Context) {
	var req currencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, err := h.Svc.UpdateCurrency(c.Request.Context(), req.UserID, req.Currency)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, userView(u), "currency updated", nil)
}

// Reset PATCH /users/d: wipes accounts, history and net worth.
func (h *UserHandler) Reset(c *gin.Context) {
	var req userIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, err := h.Svc.ResetAccountData(c.Request.Context(), req.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	audit(c, h.Audit, h.Logger, u.ID, u.Email, "reset_account_data", nil)
	response.Success(c, http.StatusOK, userView(u), "account data reset", nil)
}

// Destroy DELETE /users/destroy
func (h *UserHandler) Destroy(c *gin.Context) {
	var req userIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	if err := h.Svc.Destroy(c.Request.Context(), req.UserID); err != nil {
		respondServiceError(c, err)
		return
	}
	audit(c, h.Audit, h.Logger, req.UserID, "", "user_destroyed", nil)
	response.Success[any](c, http.StatusOK, nil, "user deleted", nil)
}

func (h *UserHandler) enqueueWelcome(c *gin.Context, email, name string) {
	if h.Pub == nil || h.Cfg == nil || !h.Cfg.MailSendEnabled {
		return
	}
	job := mailer.EmailJob{
		To:       email,
		Template: mailer.TemplateWelcome,
		Data:     map[string]any{"Name": name},
	}
	if err := h.Pub.PublishJSON(c.Request.Context(), job); err != nil && h.Logger != nil {
		h.Logger.WithError(err).Warn("failed to enqueue welcome email")
	}
}
