package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"booklend_backend/internals/features/home/notifications/model"
)

type DeliveryRepository struct {
	DB *gorm.DB
}

func NewDeliveryRepository(db *gorm.DB) *DeliveryRepository {
	return &DeliveryRepository{DB: db}
}

func (r *DeliveryRepository) RecordDelivery(ctx context.Context, d *model.NotificationDeliveryModel) error {
	return r.DB.WithContext(ctx).Create(d).Error
}

func (r *DeliveryRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.NotificationDeliveryModel, error) {
	var rows []model.NotificationDeliveryModel
	err := r.DB.WithContext(ctx).
		Where("notification_delivery_user_id = ?", userID).
		Order("notification_delivery_created_at DESC").
		Find(&rows).Error
	return rows, err
}
