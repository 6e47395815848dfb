package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DeliveryStatusSent    = "SENT"
	DeliveryStatusFailed  = "FAILED"
	DeliveryStatusSkipped = "SKIPPED"
)

// NotificationDeliveryModel records one attempt to email a user.
type NotificationDeliveryModel struct {
	NotificationDeliveryID     uuid.UUID `gorm:"column:notification_delivery_id;type:uuid;primaryKey" json:"id"`
	NotificationDeliveryUserID uuid.UUID `gorm:"column:notification_delivery_user_id;type:uuid;not null;index:idx_notification_deliveries_user" json:"userId"`

	NotificationDeliveryKind    string `gorm:"column:notification_delivery_kind;type:varchar(64);not null" json:"kind"`
	NotificationDeliveryTo      string `gorm:"column:notification_delivery_to;type:varchar(255)" json:"to"`
	NotificationDeliverySubject string `gorm:"column:notification_delivery_subject;type:varchar(255);not null" json:"subject"`
	NotificationDeliveryText    string `gorm:"column:notification_delivery_text;type:text;not null" json:"text"`

	NotificationDeliveryStatus string         `gorm:"column:notification_delivery_status;type:varchar(16);not null" json:"status"`
	NotificationDeliveryError  *string        `gorm:"column:notification_delivery_error;type:text" json:"error,omitempty"`
	NotificationDeliveryMeta   datatypes.JSON `gorm:"column:notification_delivery_meta" json:"meta,omitempty"`

	NotificationDeliveryCreatedAt time.Time `gorm:"column:notification_delivery_created_at;not null;autoCreateTime" json:"createdAt"`
}

func (NotificationDeliveryModel) TableName() string {
	return "notification_deliveries"
}

func (m *NotificationDeliveryModel) BeforeCreate(tx *gorm.DB) error {
	if m.NotificationDeliveryID == uuid.Nil {
		m.NotificationDeliveryID = uuid.New()
	}
	return nil
}
