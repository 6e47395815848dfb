package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"booklend_backend/internals/features/books/lending/model"
	userModel "booklend_backend/internals/features/users/users/model"
	notificationService "booklend_backend/internals/features/home/notifications/service"
)

// Store is the persistence the coordinator needs. Finders return nil, nil when
// nothing matches. The Mark* methods are conditional writes and report whether
// a row actually changed.
type Store interface {
	Transaction(ctx context.Context, fn func(tx Store) error) error

	CreateBook(ctx context.Context, book *model.BookModel) error
	FindBookByID(ctx context.Context, id uuid.UUID) (*model.BookModel, error)
	FindBooksByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.BookModel, error)
	ListBooksByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.BookModel, error)
	ListAvailableBooksNotOwnedBy(ctx context.Context, userID uuid.UUID) ([]model.BookModel, error)

	// MarkBookUnavailable flips is_available true -> false.
	MarkBookUnavailable(ctx context.Context, bookID uuid.UUID) (bool, error)
	// MarkBookAvailable flips is_available false -> true.
	MarkBookAvailable(ctx context.Context, bookID uuid.UUID) (bool, error)

	// CreateLending returns ErrBookNotAvailable when the book already has an active lending.
	CreateLending(ctx context.Context, lending *model.LendingModel) error
	FindLatestActiveLending(ctx context.Context, bookID, lenderID uuid.UUID) (*model.LendingModel, error)
	// MarkLendingReturned moves an active lending to RETURNED.
	MarkLendingReturned(ctx context.Context, lendingID uuid.UUID, at time.Time) (bool, error)
	ListLendingsByLender(ctx context.Context, lenderID uuid.UUID) ([]model.LendingModel, error)
	ListActiveLendingsByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]model.LendingModel, error)
}

type UserDirectory interface {
	FindUsersByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]userModel.UserModel, error)
}

type Notifier interface {
	Dispatch(msg notificationService.Message)
}
