package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"booklend_backend/internals/configs"
	bookRoute "booklend_backend/internals/features/books/lending/route"
	lendingService "booklend_backend/internals/features/books/lending/service"
	notificationRoute "booklend_backend/internals/features/home/notifications/route"
	userRoute "booklend_backend/internals/features/users/users/route"
	authMiddleware "booklend_backend/internals/middlewares/auth"
)

var startTime time.Time

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg configs.Config, notifier lendingService.Notifier) {
	startTime = time.Now()

	log.Println("[INFO] Setting up BaseRoutes...")
	BaseRoutes(app, db)

	log.Println("[INFO] Setting up PRIVATE group...")
	private := app.Group("/api",
		authMiddleware.AuthJWT(authMiddleware.AuthJWTOpts{
			Secret:              cfg.JWTSecret,
			AllowCookieFallback: true,
		}),
	)

	log.Println("[INFO] Mounting Book routes...")
	bookRoute.BookUserRoutes(private, db, notifier)

	log.Println("[INFO] Mounting User routes...")
	userRoute.UserUserRoutes(private, db)

	log.Println("[INFO] Mounting Notification routes...")
	notificationRoute.NotificationUserRoutes(private, db)
}
