package routes

import (
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"booklend_backend/internals/configs"
	lendingService "booklend_backend/internals/features/books/lending/service"
	helper "booklend_backend/internals/helpers"
	middlewares "booklend_backend/internals/middlewares"
)

// NewApp builds the HTTP surface on top of an open store.
func NewApp(cfg configs.Config, db *gorm.DB, notifier lendingService.Notifier) *fiber.App {
	app := fiber.New(fiber.Config{
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		DisableStartupMessage: true,
		ErrorHandler:          helper.ErrorHandler,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          30 * time.Second,
		IdleTimeout:           90 * time.Second,
	})

	middlewares.SetupMiddlewares(app, cfg)
	SetupRoutes(app, db, cfg, notifier)
	return app
}
