package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nwtrack/networth-api/internal/container"
	handlers "github.com/nwtrack/networth-api/internal/interface/http"
	"github.com/nwtrack/networth-api/internal/interface/middleware"
	"github.com/nwtrack/networth-api/pkg/helpers"
)

// AccountModule wires account HTTP handlers into routes, all behind JWT auth.
// GET /accounts, GET /accounts/search, GET /accounts/user/:uid, GET /accounts/:aid,
// POST /accounts, PATCH /accounts/log, PATCH /accounts/:aid, POST /accounts/export,
// DELETE /accounts/:aid

type AccountModule struct {
	Handler *handlers.AccountHandler
	JWT     *helpers.JWTManager
}

func NewAccountModule(h *handlers.AccountHandler, jwt *helpers.JWTManager) *AccountModule {
	return &AccountModule{Handler: h, JWT: jwt}
}

func (m *AccountModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/accounts")
	auth.Use(middleware.BearerAuth(m.JWT))
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.GET("", m.Handler.List)
		auth.GET("/search", m.Handler.Search)
		auth.GET("/user/:uid", m.Handler.ListForUser)
		auth.GET("/:aid", m.Handler.Get)
		auth.POST("", m.Handler.Create)
		auth.PATCH("/log", m.Handler.Snapshot)
		auth.PATCH("/:aid", m.Handler.Update)
		auth.POST("/export", m.Handler.Export)
		auth.DELETE("/:aid", m.Handler.Delete)
	}
}
