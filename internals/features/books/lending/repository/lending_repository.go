package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"booklend_backend/internals/features/books/lending/model"
	"booklend_backend/internals/features/books/lending/service"
)

// LendingRepository is the gorm implementation of service.Store.
type LendingRepository struct {
	DB *gorm.DB
}

func NewLendingRepository(db *gorm.DB) *LendingRepository {
	return &LendingRepository{DB: db}
}

var _ service.Store = (*LendingRepository)(nil)

func (r *LendingRepository) Transaction(ctx context.Context, fn func(tx service.Store) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&LendingRepository{DB: tx})
	})
}

/* ====================== BOOKS ====================== */

func (r *LendingRepository) CreateBook(ctx context.Context, book *model.BookModel) error {
	return r.DB.WithContext(ctx).Create(book).Error
}

func (r *LendingRepository) FindBookByID(ctx context.Context, id uuid.UUID) (*model.BookModel, error) {
	var book model.BookModel
	err := r.DB.WithContext(ctx).Where("book_id = ?", id).Take(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *LendingRepository) FindBooksByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.BookModel, error) {
	out := make(map[uuid.UUID]model.BookModel, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var books []model.BookModel
	if err := r.DB.WithContext(ctx).Where("book_id IN ?", ids).Find(&books).Error; err != nil {
		return nil, err
	}
	for _, b := range books {
		out[b.BookID] = b
	}
	return out, nil
}

func (r *LendingRepository) ListBooksByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.BookModel, error) {
	var books []model.BookModel
	err := r.DB.WithContext(ctx).
		Where("book_owner_id = ?", ownerID).
		Order("book_created_at DESC").
		Find(&books).Error
	return books, err
}

func (r *LendingRepository) ListAvailableBooksNotOwnedBy(ctx context.Context, userID uuid.UUID) ([]model.BookModel, error) {
	var books []model.BookModel
	err := r.DB.WithContext(ctx).
		Where("book_owner_id <> ? AND book_is_available = ?", userID, true).
		Order("book_created_at DESC").
		Find(&books).Error
	return books, err
}

func (r *LendingRepository) MarkBookUnavailable(ctx context.Context, bookID uuid.UUID) (bool, error) {
	return r.flipAvailability(ctx, bookID, true, false)
}

func (r *LendingRepository) MarkBookAvailable(ctx context.Context, bookID uuid.UUID) (bool, error) {
	return r.flipAvailability(ctx, bookID, false, true)
}

// flipAvailability only writes when the flag still holds the expected value.
func (r *LendingRepository) flipAvailability(ctx context.Context, bookID uuid.UUID, from, to bool) (bool, error) {
	tx := r.DB.WithContext(ctx).
		Model(&model.BookModel{}).
		Where("book_id = ? AND book_is_available = ?", bookID, from).
		Updates(map[string]any{
			"book_is_available": to,
			"book_updated_at":   time.Now(),
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}

/* ====================== LENDINGS ====================== */

func (r *LendingRepository) CreateLending(ctx context.Context, lending *model.LendingModel) error {
	err := r.DB.WithContext(ctx).Create(lending).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return service.ErrBookNotAvailable
	}
	return err
}

func (r *LendingRepository) FindLatestActiveLending(ctx context.Context, bookID, lenderID uuid.UUID) (*model.LendingModel, error) {
	var lending model.LendingModel
	err := r.DB.WithContext(ctx).
		Where("lending_book_id = ? AND lending_lender_id = ? AND lending_status IN ?", bookID, lenderID, model.ActiveLendingStatuses).
		Order("lending_created_at DESC").
		Take(&lending).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lending, nil
}

func (r *LendingRepository) MarkLendingReturned(ctx context.Context, lendingID uuid.UUID, at time.Time) (bool, error) {
	tx := r.DB.WithContext(ctx).
		Model(&model.LendingModel{}).
		Where("lending_id = ? AND lending_status IN ?", lendingID, model.ActiveLendingStatuses).
		Updates(map[string]any{
			"lending_status":      model.LendingStatusReturned,
			"lending_return_date": at,
			"lending_updated_at":  time.Now(),
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}

func (r *LendingRepository) ListLendingsByLender(ctx context.Context, lenderID uuid.UUID) ([]model.LendingModel, error) {
	var lendings []model.LendingModel
	err := r.DB.WithContext(ctx).
		Where("lending_lender_id = ?", lenderID).
		Order("lending_created_at DESC").
		Find(&lendings).Error
	return lendings, err
}

func (r *LendingRepository) ListActiveLendingsByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]model.LendingModel, error) {
	var lendings []model.LendingModel
	err := r.DB.WithContext(ctx).
		Where("lending_borrower_id = ? AND lending_status IN ?", borrowerID, model.ActiveLendingStatuses).
		Order("lending_created_at DESC").
		Find(&lendings).Error
	return lendings, err
}
