package service

import (
	"context"

	"github.com/google/uuid"

	"booklend_backend/internals/features/books/lending/model"
	userModel "booklend_backend/internals/features/users/users/model"
)

type AvailableBook struct {
	Book  model.BookModel
	Owner userModel.UserSummary
}

// LendingDetail is a lending resolved with its book and the other party.
// Borrower is set on the lender's view, Lender on the borrower's view.
type LendingDetail struct {
	Lending  model.LendingModel
	Book     *model.BookModel
	Borrower *userModel.UserSummary
	Lender   *userModel.UserSummary
}

func (c *Coordinator) ListOwnBooks(ctx context.Context, userID uuid.UUID) ([]model.BookModel, error) {
	books, err := c.store.ListBooksByOwner(ctx, userID)
	if err != nil {
		return nil, storeErr("list own books", err)
	}
	return books, nil
}

// ListAvailableBooks returns what the user could borrow right now: available
// books owned by someone else, with the owner's display data.
func (c *Coordinator) ListAvailableBooks(ctx context.Context, userID uuid.UUID) ([]AvailableBook, error) {
	books, err := c.store.ListAvailableBooksNotOwnedBy(ctx, userID)
	if err != nil {
		return nil, storeErr("list available books", err)
	}

	ownerIDs := make([]uuid.UUID, 0, len(books))
	for _, b := range books {
		ownerIDs = append(ownerIDs, b.BookOwnerID)
	}
	owners, err := c.users.FindUsersByIDs(ctx, ownerIDs)
	if err != nil {
		return nil, storeErr("resolve owners", err)
	}

	out := make([]AvailableBook, 0, len(books))
	for _, b := range books {
		out = append(out, AvailableBook{Book: b, Owner: summaryOf(owners, b.BookOwnerID)})
	}
	return out, nil
}

// GetLendingDetails lists every lending where the user is the lender, newest first.
func (c *Coordinator) GetLendingDetails(ctx context.Context, lenderID uuid.UUID) ([]LendingDetail, error) {
	lendings, err := c.store.ListLendingsByLender(ctx, lenderID)
	if err != nil {
		return nil, storeErr("list lendings", err)
	}
	return c.resolve(ctx, lendings, func(l model.LendingModel) uuid.UUID { return l.LendingBorrowerID }, func(d *LendingDetail, u userModel.UserSummary) {
		d.Borrower = &u
	})
}

// GetBorrowedBooks lists the user's active lendings as borrower, newest first.
func (c *Coordinator) GetBorrowedBooks(ctx context.Context, borrowerID uuid.UUID) ([]LendingDetail, error) {
	lendings, err := c.store.ListActiveLendingsByBorrower(ctx, borrowerID)
	if err != nil {
		return nil, storeErr("list borrowed books", err)
	}
	return c.resolve(ctx, lendings, func(l model.LendingModel) uuid.UUID { return l.LendingLenderID }, func(d *LendingDetail, u userModel.UserSummary) {
		d.Lender = &u
	})
}

func (c *Coordinator) resolve(
	ctx context.Context,
	lendings []model.LendingModel,
	party func(model.LendingModel) uuid.UUID,
	attach func(*LendingDetail, userModel.UserSummary),
) ([]LendingDetail, error) {
	bookIDs := make([]uuid.UUID, 0, len(lendings))
	userIDs := make([]uuid.UUID, 0, len(lendings))
	for _, l := range lendings {
		bookIDs = append(bookIDs, l.LendingBookID)
		userIDs = append(userIDs, party(l))
	}

	books, err := c.store.FindBooksByIDs(ctx, bookIDs)
	if err != nil {
		return nil, storeErr("resolve books", err)
	}
	users, err := c.users.FindUsersByIDs(ctx, userIDs)
	if err != nil {
		return nil, storeErr("resolve users", err)
	}

	out := make([]LendingDetail, 0, len(lendings))
	for _, l := range lendings {
		d := LendingDetail{Lending: l}
		if b, ok := books[l.LendingBookID]; ok {
			b := b
			d.Book = &b
		}
		attach(&d, summaryOf(users, party(l)))
		out = append(out, d)
	}
	return out, nil
}

// summaryOf never fails: a user missing from the directory shows up with only its id.
func summaryOf(users map[uuid.UUID]userModel.UserModel, id uuid.UUID) userModel.UserSummary {
	if u, ok := users[id]; ok {
		return u.Summary()
	}
	return userModel.UserSummary{ID: id}
}
