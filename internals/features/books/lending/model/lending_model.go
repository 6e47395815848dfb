package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LendingStatus string

const (
	LendingStatusPending  LendingStatus = "PENDING"
	LendingStatusAccepted LendingStatus = "ACCEPTED"
	LendingStatusRejected LendingStatus = "REJECTED"
	LendingStatusReturned LendingStatus = "RETURNED"
)

// ActiveLendingStatuses are the non-terminal states. A book has at most one
// lending in one of these at any time.
var ActiveLendingStatuses = []LendingStatus{LendingStatusPending, LendingStatusAccepted}

func (s LendingStatus) IsActive() bool {
	return s == LendingStatusPending || s == LendingStatusAccepted
}

func (s LendingStatus) IsTerminal() bool {
	return s == LendingStatusRejected || s == LendingStatusReturned
}

func (s LendingStatus) Valid() bool {
	return s.IsActive() || s.IsTerminal()
}

// CanTransitionTo encodes the lending state machine. ACCEPTED and REJECTED are
// reachable from PENDING but no operation drives those transitions yet.
func (s LendingStatus) CanTransitionTo(next LendingStatus) bool {
	switch s {
	case LendingStatusPending:
		return next == LendingStatusAccepted || next == LendingStatusRejected || next == LendingStatusReturned
	case LendingStatusAccepted:
		return next == LendingStatusReturned
	default:
		return false
	}
}

type LendingModel struct {
	LendingID uuid.UUID `json:"id" gorm:"column:lending_id;type:uuid;primaryKey"`

	// uq_lendings_active_book backs the one-active-lending-per-book rule at the store level.
	LendingBookID     uuid.UUID `json:"bookId"     gorm:"column:lending_book_id;type:uuid;not null;index:idx_lendings_book;index:uq_lendings_active_book,unique,where:lending_status = 'PENDING' OR lending_status = 'ACCEPTED'"`
	LendingBorrowerID uuid.UUID `json:"borrowerId" gorm:"column:lending_borrower_id;type:uuid;not null;index:idx_lendings_borrower"`
	LendingLenderID   uuid.UUID `json:"lenderId"   gorm:"column:lending_lender_id;type:uuid;not null;index:idx_lendings_lender"`

	LendingStatus LendingStatus `json:"status" gorm:"column:lending_status;type:varchar(16);not null;default:'PENDING'"`
	LendingNotes  *string       `json:"notes,omitempty" gorm:"column:lending_notes;type:text"`

	LendingReturnDate *time.Time `json:"returnDate,omitempty" gorm:"column:lending_return_date"`
	LendingCreatedAt  time.Time  `json:"createdAt" gorm:"column:lending_created_at;not null;autoCreateTime;index:idx_lendings_created"`
	LendingUpdatedAt  time.Time  `json:"updatedAt" gorm:"column:lending_updated_at;not null;autoUpdateTime"`
}

func (LendingModel) TableName() string { return "lendings" }

func (m *LendingModel) BeforeCreate(tx *gorm.DB) error {
	if m.LendingID == uuid.Nil {
		m.LendingID = uuid.New()
	}
	return nil
}
