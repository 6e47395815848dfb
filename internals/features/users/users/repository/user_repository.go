package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	userModel "booklend_backend/internals/features/users/users/model"
)

var ErrInvalidUser = errors.New("invalid user")

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) FindUserByID(ctx context.Context, id uuid.UUID) (*userModel.UserModel, error) {
	var user userModel.UserModel
	if err := r.DB.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindUsersByIDs resolves display data for a batch of ids. Unknown ids are
// simply absent from the result.
func (r *UserRepository) FindUsersByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]userModel.UserModel, error) {
	out := make(map[uuid.UUID]userModel.UserModel, len(ids))
	uniq := uniqueIDs(ids)
	if len(uniq) == 0 {
		return out, nil
	}

	var users []userModel.UserModel
	if err := r.DB.WithContext(ctx).Where("id IN ?", uniq).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

// UpsertUser inserts the user or refreshes its display fields by id.
func (r *UserRepository) UpsertUser(ctx context.Context, user *userModel.UserModel) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidUser, err)
	}
	if user.ID == uuid.Nil {
		return fmt.Errorf("%w: id is required", ErrInvalidUser)
	}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_name", "email", "phone_number", "updated_at"}),
	}).Create(user).Error
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
