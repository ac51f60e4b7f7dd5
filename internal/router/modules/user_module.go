package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nwtrack/networth-api/internal/container"
	handlers "github.com/nwtrack/networth-api/internal/interface/http"
	"github.com/nwtrack/networth-api/internal/interface/middleware"
)

// UserModule wires the user HTTP handlers into routes. User routes carry no
// bearer token; signup and login get the tightest per-IP limits.

type UserModule struct {
	Handler *handlers.UserHandler
}

func NewUserModule(h *handlers.UserHandler) *UserModule {
	return &UserModule{Handler: h}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	signupLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIP(), nil)  // 5 req/min per IP
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil) // 10 req/min per IP

	rg.POST("/users/signup", signupLimiter, m.Handler.Signup)
	rg.POST("/users/login", loginLimiter, m.Handler.Login)

	users := rg.Group("/users")
	users.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), nil))
	{
		users.GET("", m.Handler.List)
		users.GET("/:id", m.Handler.Get)
		users.PATCH("/update", m.Handler.UpdateProfile)
		users.PATCH("/currency", m.Handler.UpdateCurrency)
		users.PATCH("/d", m.Handler.Reset)
		users.DELETE("/destroy", m.Handler.Destroy)
	}
}
