package router

import (
	"masterdata-web/internal/config"
	"masterdata-web/internal/handler"
	"masterdata-web/internal/middleware"
	"masterdata-web/internal/repository"
	"masterdata-web/internal/service"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

func SetupAPIRoutes(
	router fiber.Router,
	db *sqlx.DB,
	redis *redis.Client,
	cfg *config.Config,
) {
	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	masterRepo := repository.NewMasterRepository(db)

	// Redis backs the caches and flow state when available, memory otherwise
	kv := service.NewKVStore(redis)

	// Initialize Asynq client (optional - only if Redis is available)
	var queue service.TaskEnqueuer
	if redis != nil {
		queue = asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.AsynqRedisAddr,
			Password: cfg.AsynqRedisPassword,
			DB:       cfg.AsynqRedisDB,
		})
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg)
	excelService := service.NewExcelService()
	referenceService := service.NewReferenceService(masterRepo, kv, cfg.ReferenceCacheTTL)
	loaderService := service.NewLoaderService(masterRepo, excelService)
	importService := service.NewImportService(masterRepo, referenceService)
	eraserService := service.NewEraserService(masterRepo, authService, referenceService)
	captcha := service.NewCaptchaGenerator(cfg.CaptchaMax, time.Now().UnixNano())
	clearService := service.NewClearService(masterRepo, eraserService, kv, captcha, cfg.ClearFlowTTL)
	importJobService := service.NewImportJobService(queue, kv, cfg.ImportResultTTL)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, nil)
	masterHandler := handler.NewMasterHandler(loaderService, importService, eraserService, excelService, importJobService, cfg)
	clearHandler := handler.NewClearHandler(clearService)
	importJobHandler := handler.NewImportJobHandler(importJobService)

	// Public routes
	auth := router.Group("/auth")
	auth.Post("/login", requireDatabase(db), authHandler.Login)
	auth.Post("/logout", authHandler.Logout)

	// Protected routes
	protected := router.Group("", middleware.AuthMiddleware(cfg))

	// Auth routes
	protected.Get("/auth/me", requireDatabase(db), authHandler.Me)

	// Master type catalogue and job results work without a database
	protected.Get("/masters", masterHandler.ListMasters)
	protected.Get("/imports/:job_id", importJobHandler.Status)

	data := protected.Group("", requireDatabase(db))

	// Master data routes
	masters := data.Group("/masters/:type")
	masters.Get("/groups", masterHandler.ListGroups)
	masters.Get("/groups/:group_id/rows", masterHandler.Rows)
	masters.Post("/groups/:group_id/upload", masterHandler.Upload)
	masters.Post("/groups/:group_id/validate", masterHandler.Validate)
	masters.Post("/groups/:group_id/derive", masterHandler.Derive)
	masters.Post("/groups/:group_id/import", masterHandler.Import)
	masters.Post("/groups/:group_id/import/async", masterHandler.ImportAsync)
	masters.Post("/groups/:group_id/export", masterHandler.Export)
	masters.Get("/groups/:group_id/template", masterHandler.Template)
	masters.Delete("/rows/:id", middleware.AdminOnly(), masterHandler.DeleteRow)
	masters.Post("/groups/:group_id/clear/start", clearHandler.Start)

	// Clear flow routes
	clear := data.Group("/clear/:flow_id")
	clear.Post("/answer", clearHandler.Answer)
	clear.Post("/credentials", clearHandler.Credentials)
	clear.Post("/cancel", clearHandler.Cancel)
}
