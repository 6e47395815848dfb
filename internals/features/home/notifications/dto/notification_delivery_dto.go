package dto

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"booklend_backend/internals/features/home/notifications/model"
)

type NotificationDeliveryResponse struct {
	ID        uuid.UUID      `json:"id"`
	Kind      string         `json:"kind"`
	Subject   string         `json:"subject"`
	Text      string         `json:"text"`
	Status    string         `json:"status"`
	Error     *string        `json:"error,omitempty"`
	Meta      datatypes.JSON `json:"meta,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

func ToNotificationDeliveryResponse(m model.NotificationDeliveryModel) NotificationDeliveryResponse {
	return NotificationDeliveryResponse{
		ID:        m.NotificationDeliveryID,
		Kind:      m.NotificationDeliveryKind,
		Subject:   m.NotificationDeliverySubject,
		Text:      m.NotificationDeliveryText,
		Status:    m.NotificationDeliveryStatus,
		Error:     m.NotificationDeliveryError,
		Meta:      m.NotificationDeliveryMeta,
		CreatedAt: m.NotificationDeliveryCreatedAt,
	}
}

func ToNotificationDeliveryResponseList(rows []model.NotificationDeliveryModel) []NotificationDeliveryResponse {
	out := make([]NotificationDeliveryResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, ToNotificationDeliveryResponse(r))
	}
	return out
}
