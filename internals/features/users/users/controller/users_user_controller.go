package controller

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	userdto "booklend_backend/internals/features/users/users/dto"
	"booklend_backend/internals/features/users/users/repository"
	helper "booklend_backend/internals/helpers"
)

// UserSelfController lets the caller keep the directory entry other users see
// next to their books and lendings.
type UserSelfController struct {
	Repo *repository.UserRepository
}

func NewUserSelfController(db *gorm.DB) *UserSelfController {
	return &UserSelfController{Repo: repository.NewUserRepository(db)}
}

var validate = validator.New()

// GET /api/users/me
func (uc *UserSelfController) GetMe(c *fiber.Ctx) error {
	userID, err := helper.GetUserID(c)
	if err != nil {
		return err
	}

	user, err := uc.Repo.FindUserByID(c.UserContext(), userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return helper.JsonError(c, fiber.StatusNotFound, "User not found")
	}
	if err != nil {
		log.Printf("[ERROR] get user %s: %v", userID, err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Error fetching user")
	}
	return helper.JsonOK(c, "User profile fetched successfully", userdto.FromModel(*user))
}

// PUT /api/users/me
func (uc *UserSelfController) UpdateMe(c *fiber.Ctx) error {
	userID, err := helper.GetUserID(c)
	if err != nil {
		return err
	}

	var input userdto.UpdateMeRequest
	if err := c.BodyParser(&input); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	input.Normalize()
	if input.Name == "" {
		input.Name = helper.GetUserName(c)
	}
	if err := validate.Struct(&input); err != nil {
		return helper.JsonValidationError(c, err)
	}

	user := input.ToModel(userID)
	if err := uc.Repo.UpsertUser(c.UserContext(), &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return helper.JsonError(c, fiber.StatusConflict, "Email is already in use")
		}
		if errors.Is(err, repository.ErrInvalidUser) {
			return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
		}
		log.Printf("[ERROR] upsert user %s: %v", userID, err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to update user")
	}
	return helper.JsonOK(c, "User updated successfully", userdto.FromModel(user))
}
