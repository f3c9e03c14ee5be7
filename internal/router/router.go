package router

import (
	"masterdata-web/internal/config"
	"masterdata-web/internal/handler"
	"masterdata-web/internal/middleware"
	"masterdata-web/internal/repository"
	"masterdata-web/internal/rules"
	"masterdata-web/internal/service"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

func Setup(app *fiber.App, db *sqlx.DB, redis *redis.Client, cfg *config.Config) {
	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"app":      cfg.AppName,
			"database": db != nil,
			"redis":    redis != nil,
		})
	})

	sessions := session.New(session.Config{
		Expiration:     cfg.JWTAccessExpire,
		CookieHTTPOnly: true,
	})

	// Web routes (HTML)
	web := app.Group("")
	setupWebRoutes(web, db, sessions, cfg)

	// API routes (JSON)
	api := app.Group("/api/v1")
	SetupAPIRoutes(api, db, redis, cfg)
}

func setupWebRoutes(router fiber.Router, db *sqlx.DB, sessions *session.Store, cfg *config.Config) {
	authService := service.NewAuthService(repository.NewUserRepository(db), cfg)
	authHandler := handler.NewAuthHandler(authService, sessions)

	// Authentication pages
	router.Get("/login", middleware.GuestMiddleware(sessions), func(c *fiber.Ctx) error {
		return c.Render("auth/login", fiber.Map{
			"Title": "Login",
		}, "layouts/main")
	})
	router.Post("/login", requireDatabase(db), authHandler.WebLogin)
	router.Get("/logout", authHandler.WebLogout)

	webAuth := middleware.WebAuthMiddleware(sessions)

	// Dashboard (protected)
	router.Get("/", webAuth, func(c *fiber.Ctx) error {
		return c.Render("dashboard/index", fiber.Map{
			"Title":    "Dashboard",
			"Masters":  rules.All(),
			"Username": c.Locals("username"),
		}, "layouts/main")
	})

	// Master data grid
	router.Get("/masters/:type", webAuth, func(c *fiber.Ctx) error {
		t, err := rules.Lookup(c.Params("type"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Unknown master type")
		}
		return c.Render("master/grid", fiber.Map{
			"Title":    t.Label,
			"Master":   t,
			"Slug":     strings.ToLower(string(t.Type)),
			"Username": c.Locals("username"),
			"Token":    c.Locals("access_token"),
		}, "layouts/main")
	})
}

// requireDatabase answers 503 while the app runs without a database connection.
func requireDatabase(db *sqlx.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if db == nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"success": false,
				"message": "Database is not available",
			})
		}
		return c.Next()
	}
}
