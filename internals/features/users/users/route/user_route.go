package route

import (
	userController "booklend_backend/internals/features/users/users/controller"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func UserUserRoutes(user fiber.Router, db *gorm.DB) {
	selfCtrl := userController.NewUserSelfController(db)

	me := user.Group("/users/me")
	me.Get("/", selfCtrl.GetMe)
	me.Put("/", selfCtrl.UpdateMe)
}
