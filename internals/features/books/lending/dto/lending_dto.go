package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"booklend_backend/internals/features/books/lending/model"
	"booklend_backend/internals/features/books/lending/service"
	userModel "booklend_backend/internals/features/users/users/model"
)

/* =========================
   REQUEST
   ========================= */

type CreateBookRequest struct {
	Title           string  `json:"title"                     validate:"required,max=255"`
	Author          string  `json:"author"                    validate:"required,max=255"`
	Description     *string `json:"description,omitempty"     validate:"omitempty"`
	PublicationYear *int    `json:"publicationYear,omitempty" validate:"omitempty,gte=0,lte=9999"`
}

func (r *CreateBookRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Author = strings.TrimSpace(r.Author)
	r.Description = trimPtr(r.Description)
}

func (r CreateBookRequest) ToInput() service.CreateBookInput {
	return service.CreateBookInput{
		Title:           r.Title,
		Author:          r.Author,
		Description:     r.Description,
		PublicationYear: r.PublicationYear,
	}
}

type RequestBookRequest struct {
	BookID string  `json:"bookId"          validate:"required,uuid"`
	Notes  *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

func (r *RequestBookRequest) Normalize() {
	r.BookID = strings.TrimSpace(r.BookID)
	r.Notes = trimPtr(r.Notes)
}

type ReturnBookRequest struct {
	BookID string `json:"bookId" validate:"required,uuid"`
}

func (r *ReturnBookRequest) Normalize() {
	r.BookID = strings.TrimSpace(r.BookID)
}

/* =========================
   RESPONSE
   ========================= */

type BookResponse struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	Description     *string   `json:"description,omitempty"`
	PublicationYear *int      `json:"publicationYear,omitempty"`
	OwnerID         uuid.UUID `json:"ownerId"`
	IsAvailable     bool      `json:"isAvailable"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`

	Owner *userModel.UserSummary `json:"owner,omitempty"`
}

type LendingResponse struct {
	ID         uuid.UUID           `json:"id"`
	BookID     uuid.UUID           `json:"bookId"`
	BorrowerID uuid.UUID           `json:"borrowerId"`
	LenderID   uuid.UUID           `json:"lenderId"`
	Status     model.LendingStatus `json:"status"`
	Notes      *string             `json:"notes,omitempty"`
	ReturnDate *time.Time          `json:"returnDate,omitempty"`
	CreatedAt  time.Time           `json:"createdAt"`

	Book     *BookResponse          `json:"book,omitempty"`
	Borrower *userModel.UserSummary `json:"borrower,omitempty"`
	Lender   *userModel.UserSummary `json:"lender,omitempty"`
}

type ReturnBookResponse struct {
	Book    BookResponse    `json:"book"`
	Lending LendingResponse `json:"lending"`
}

/* =========================
   MAPPER
   ========================= */

func ToBookResponse(m model.BookModel) BookResponse {
	return BookResponse{
		ID:              m.BookID,
		Title:           m.BookTitle,
		Author:          m.BookAuthor,
		Description:     m.BookDescription,
		PublicationYear: m.BookPublicationYear,
		OwnerID:         m.BookOwnerID,
		IsAvailable:     m.BookIsAvailable,
		CreatedAt:       m.BookCreatedAt,
		UpdatedAt:       m.BookUpdatedAt,
	}
}

func ToBookResponseList(books []model.BookModel) []BookResponse {
	out := make([]BookResponse, 0, len(books))
	for _, b := range books {
		out = append(out, ToBookResponse(b))
	}
	return out
}

func ToAvailableBookResponseList(books []service.AvailableBook) []BookResponse {
	out := make([]BookResponse, 0, len(books))
	for _, b := range books {
		resp := ToBookResponse(b.Book)
		owner := b.Owner
		resp.Owner = &owner
		out = append(out, resp)
	}
	return out
}

func ToLendingResponse(m model.LendingModel) LendingResponse {
	return LendingResponse{
		ID:         m.LendingID,
		BookID:     m.LendingBookID,
		BorrowerID: m.LendingBorrowerID,
		LenderID:   m.LendingLenderID,
		Status:     m.LendingStatus,
		Notes:      m.LendingNotes,
		ReturnDate: m.LendingReturnDate,
		CreatedAt:  m.LendingCreatedAt,
	}
}

func ToLendingDetailResponseList(details []service.LendingDetail) []LendingResponse {
	out := make([]LendingResponse, 0, len(details))
	for _, d := range details {
		resp := ToLendingResponse(d.Lending)
		if d.Book != nil {
			b := ToBookResponse(*d.Book)
			resp.Book = &b
		}
		resp.Borrower = d.Borrower
		resp.Lender = d.Lender
		out = append(out, resp)
	}
	return out
}

func ToReturnBookResponse(r service.ReturnResult) ReturnBookResponse {
	return ReturnBookResponse{
		Book:    ToBookResponse(r.Book),
		Lending: ToLendingResponse(r.Lending),
	}
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
