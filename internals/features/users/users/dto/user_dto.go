package dto

import (
	"strings"

	"github.com/google/uuid"

	"booklend_backend/internals/features/users/users/model"
)

// UpdateMeRequest carries the caller's own contact data. Name falls back to
// the token's name claim when omitted.
type UpdateMeRequest struct {
	Name        string  `json:"name"                  validate:"omitempty,max=100"`
	Email       string  `json:"email"                 validate:"required,email,max=255"`
	PhoneNumber *string `json:"phoneNumber,omitempty" validate:"omitempty,max=32"`
}

func (r *UpdateMeRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.PhoneNumber != nil {
		p := strings.TrimSpace(*r.PhoneNumber)
		if p == "" {
			r.PhoneNumber = nil
		} else {
			r.PhoneNumber = &p
		}
	}
}

func (r UpdateMeRequest) ToModel(id uuid.UUID) model.UserModel {
	return model.UserModel{
		ID:          id,
		UserName:    r.Name,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
	}
}

func FromModel(u model.UserModel) model.UserSummary {
	return u.Summary()
}
