package route

import (
	"booklend_backend/internals/features/home/notifications/controller"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func NotificationUserRoutes(user fiber.Router, db *gorm.DB) {
	ctrl := controller.NewNotificationUserController(db)

	notification := user.Group("/notifications")
	notification.Get("/", ctrl.ListMine)
}
