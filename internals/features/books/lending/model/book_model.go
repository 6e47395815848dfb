package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookModel struct {
	BookID uuid.UUID `json:"id" gorm:"column:book_id;type:uuid;primaryKey"`

	BookTitle           string  `json:"title"                     gorm:"column:book_title;type:varchar(255);not null"`
	BookAuthor          string  `json:"author"                    gorm:"column:book_author;type:varchar(255);not null"`
	BookDescription     *string `json:"description,omitempty"     gorm:"column:book_description;type:text"`
	BookPublicationYear *int    `json:"publicationYear,omitempty" gorm:"column:book_publication_year"`

	// Immutable after creation.
	BookOwnerID uuid.UUID `json:"ownerId" gorm:"column:book_owner_id;type:uuid;not null;index:idx_books_owner"`

	// false iff the book has an active lending. Only the lending coordinator flips it.
	BookIsAvailable bool `json:"isAvailable" gorm:"column:book_is_available;not null;default:true;index:idx_books_available"`

	BookCreatedAt time.Time `json:"createdAt" gorm:"column:book_created_at;not null;autoCreateTime"`
	BookUpdatedAt time.Time `json:"updatedAt" gorm:"column:book_updated_at;not null;autoUpdateTime"`
}

func (BookModel) TableName() string { return "books" }

func (m *BookModel) BeforeCreate(tx *gorm.DB) error {
	if m.BookID == uuid.Nil {
		m.BookID = uuid.New()
	}
	return nil
}
