package router

import (
	"github.com/nwtrack/networth-api/internal/application"
	"github.com/nwtrack/networth-api/internal/container"
	pginfra "github.com/nwtrack/networth-api/internal/infrastructure/postgres"
	handlers "github.com/nwtrack/networth-api/internal/interface/http"
	"github.com/nwtrack/networth-api/internal/router/modules"
)

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	pool := container.GetPGPool()
	cfg := container.GetConfig()

	userRepo := pginfra.NewUserRepository(pool)
	accountRepo := pginfra.NewAccountRepository(pool)
	snapshotRepo := pginfra.NewSnapshotRepository(pool)
	auditRepo := pginfra.NewAuditRepository(pool)
	txm := pginfra.NewTxManager(pool)

	userSvc := application.NewUserService(
		userRepo,
		accountRepo,
		snapshotRepo,
		txm,
		container.GetJWT(),
		container.GetRedis(),
		container.GetLogger(),
	)

	accountSvc := application.NewAccountService(
		userRepo,
		accountRepo,
		snapshotRepo,
		txm,
		container.GetLogger(),
	)
	accountSvc.ES = container.GetES()
	accountSvc.ESAccountsIndex = cfg.ESAccountsIndex
	accountSvc.GCS = container.GetGCS()
	accountSvc.GCSBucket = cfg.GCSBucket

	userHandler := handlers.NewUserHandler(
		userSvc,
		auditRepo,
		container.GetRabbitPub(),
		container.GetRedis(),
		container.GetLogger(),
		cfg,
	)
	accountHandler := handlers.NewAccountHandler(
		accountSvc,
		auditRepo,
		container.GetRabbitPub(),
		container.GetLogger(),
		cfg,
	)

	r.Add(modules.NewUserModule(userHandler))
	r.Add(modules.NewAccountModule(accountHandler, container.GetJWT()))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
