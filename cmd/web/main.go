package main

import (
	"errors"
	"fmt"
	"masterdata-web/internal/config"
	"masterdata-web/internal/database"
	"masterdata-web/internal/models"
	"masterdata-web/internal/repository"
	"masterdata-web/internal/router"
	"masterdata-web/internal/service"
	"masterdata-web/internal/utils"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"
)

func main() {
	log := utils.GetLogger()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	// Initialize database
	db, err := database.NewMySQL(cfg)
	if err != nil {
		log.WithError(err).Warn("Failed to connect to database, master data routes answer 503")
		db = nil
	} else {
		defer db.Close()
		bootstrap(db, cfg)
	}

	// Initialize Redis (optional - for caching, clear flows and background imports)
	redisClient, err := database.NewRedis(cfg)
	if err != nil {
		log.WithError(err).Warn("Failed to connect to Redis, using in-memory state and disabling async imports")
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	// Initialize template engine
	engine := html.New("./views", ".html")
	engine.Reload(cfg.AppEnv == "development")

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		Views:        engine,
		BodyLimit:    cfg.UploadMaxSize,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Static files
	app.Static("/static", "./public")

	// Setup routes
	router.Setup(app, db, redisClient, cfg)

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Info("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	port := fmt.Sprintf(":%s", cfg.AppPort)
	log.WithField("port", port).Info("Server starting")
	if err := app.Listen(port); err != nil {
		log.WithError(err).Fatal("Failed to start server")
	}

	log.Info("Server exited")
}

// bootstrap creates missing tables and the initial admin account. Failures leave the
// service running.
func bootstrap(db *sqlx.DB, cfg *config.Config) {
	log := utils.GetLogger()

	if cfg.SchemaBootstrap {
		if failed := database.EnsureSchema(db); failed > 0 {
			log.WithField("failed_statements", failed).Warn("Schema bootstrap incomplete")
		}
	}

	authService := service.NewAuthService(repository.NewUserRepository(db), cfg)
	created, err := authService.EnsureAdmin(cfg.AdminUsername, cfg.AdminPassword)
	if errors.Is(err, models.ErrAdminPassword) {
		log.WithField("username", cfg.AdminUsername).Warn("ADMIN_PASSWORD is empty, admin account not created")
		return
	}
	if err != nil {
		log.WithError(err).Warn("Failed to ensure admin account")
		return
	}
	if created {
		log.WithField("username", cfg.AdminUsername).Info("Admin account created")
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	if code >= fiber.StatusInternalServerError {
		utils.GetLogger().WithError(err).WithField("path", c.Path()).Error("Request failed")
	}

	// Check if request expects JSON
	if c.Accepts("application/json") != "" {
		return c.Status(code).JSON(fiber.Map{
			"success": false,
			"message": message,
			"error":   err.Error(),
		})
	}

	// Return HTML error page
	return c.Status(code).Render("error", fiber.Map{
		"Title":   "Error",
		"Code":    code,
		"Message": message,
	}, "layouts/main")
}
