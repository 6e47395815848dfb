package model

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var validate = validator.New()

// UserModel is the directory entry the identity provider keeps for every account.
// Only display data lives here; credentials are managed elsewhere.
type UserModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserName    string    `gorm:"column:user_name;size:100;not null" json:"name" validate:"required,min=1,max=100"`
	Email       string    `gorm:"size:255;uniqueIndex;not null" json:"email" validate:"required,email"`
	PhoneNumber *string   `gorm:"column:phone_number;size:32" json:"phoneNumber,omitempty" validate:"omitempty,max=32"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (UserModel) TableName() string {
	return "users"
}

func (u *UserModel) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Validate trims the display fields and checks them.
func (u *UserModel) Validate() error {
	u.UserName = strings.TrimSpace(u.UserName)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if err := validate.Struct(u); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			return errors.New(strings.ToLower(ve[0].Field()) + " is " + ve[0].Tag())
		}
		return err
	}
	return nil
}

// UserSummary is the public part of a user shown next to books and lendings.
type UserSummary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	PhoneNumber *string   `json:"phoneNumber,omitempty"`
}

func (u UserModel) Summary() UserSummary {
	return UserSummary{
		ID:          u.ID,
		Name:        u.UserName,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
	}
}
