package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	v1 "github.com/mnuddindev/winoreat/internal/api/v1"
	"github.com/mnuddindev/winoreat/internal/config"
	"github.com/mnuddindev/winoreat/pkg/logger"
	"github.com/mnuddindev/winoreat/pkg/utils"
	"gorm.io/gorm"
)

// NewRoutes installs the middleware chain, the health check and the v1 API.
func NewRoutes(app *fiber.App, cfg *config.Config, db *gorm.DB, log *logger.Logger, h *v1.Handler) {
	app.Use(
		logger.SetupLogger(log),
		recover.New(),
		cors.New(
			cors.Config{
				AllowOrigins: cfg.CORSOrigins,
				AllowHeaders: "Origin, Content-Type, Accept",
			},
		),
		compress.New(
			compress.Config{
				Level: compress.LevelBestSpeed,
			},
		),
		limiter.New(
			limiter.Config{
				Expiration: cfg.RateLimitExpiration,
				Max:        cfg.RateLimitMax,
				KeyGenerator: func(c *fiber.Ctx) string {
					return utils.ClientIP(c)
				},
				LimitReached: func(c *fiber.Ctx) error {
					return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"errors": []string{"Too many requests"}})
				},
			},
		),
	)
	app.Use(log.Middleware())

	app.Get("/health", Health(db))
	h.Register(app.Group("/api/v1"))
}

// Health reports whether the database answers.
func Health(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
