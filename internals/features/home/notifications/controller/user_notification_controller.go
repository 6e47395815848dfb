package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"booklend_backend/internals/features/home/notifications/dto"
	"booklend_backend/internals/features/home/notifications/repository"
	helper "booklend_backend/internals/helpers"
)

type NotificationUserController struct {
	Repo *repository.DeliveryRepository
}

func NewNotificationUserController(db *gorm.DB) *NotificationUserController {
	return &NotificationUserController{Repo: repository.NewDeliveryRepository(db)}
}

// GET /api/notifications
func (ctrl *NotificationUserController) ListMine(c *fiber.Ctx) error {
	userID, err := helper.GetUserID(c)
	if err != nil {
		return err
	}

	rows, err := ctrl.Repo.ListByUser(c.UserContext(), userID)
	if err != nil {
		log.Printf("[ERROR] list notifications for %s: %v", userID, err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Error fetching notifications")
	}
	return helper.JsonList(c, "ok", dto.ToNotificationDeliveryResponseList(rows))
}
