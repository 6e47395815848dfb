package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"booklend_backend/internals/features/books/lending/model"
)

// Actor is the authenticated caller as supplied by the identity provider.
type Actor struct {
	ID   uuid.UUID
	Name string
}

type CreateBookInput struct {
	Title           string
	Author          string
	Description     *string
	PublicationYear *int
}

type ReturnResult struct {
	Book    model.BookModel
	Lending model.LendingModel
}

// Coordinator owns every lending state transition. It is the only writer of
// books.is_available and lendings.status.
type Coordinator struct {
	store    Store
	users    UserDirectory
	notifier Notifier
	now      func() time.Time
}

type Option func(*Coordinator)

func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

func NewCoordinator(store Store, users UserDirectory, notifier Notifier, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:    store,
		users:    users,
		notifier: notifier,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// =========================================================
// CREATE BOOK
// =========================================================
func (c *Coordinator) CreateBook(ctx context.Context, ownerID uuid.UUID, in CreateBookInput) (*model.BookModel, error) {
	title := strings.TrimSpace(in.Title)
	author := strings.TrimSpace(in.Author)
	if title == "" {
		return nil, validationErr("title is required")
	}
	if author == "" {
		return nil, validationErr("author is required")
	}
	if ownerID == uuid.Nil {
		return nil, validationErr("owner is required")
	}

	book := &model.BookModel{
		BookTitle:           title,
		BookAuthor:          author,
		BookDescription:     trimPtr(in.Description),
		BookPublicationYear: in.PublicationYear,
		BookOwnerID:         ownerID,
		BookIsAvailable:     true,
	}
	if err := c.store.CreateBook(ctx, book); err != nil {
		return nil, storeErr("create book", err)
	}
	return book, nil
}

// =========================================================
// REQUEST BOOK
// =========================================================

// RequestBook opens a PENDING lending for the borrower and takes the book out
// of the catalog. The availability flip is a compare-and-set, so of several
// concurrent requests for the same book exactly one wins and the rest see
// ErrBookNotAvailable.
func (c *Coordinator) RequestBook(ctx context.Context, borrower Actor, bookID uuid.UUID, notes *string) (*model.LendingModel, error) {
	var (
		book    model.BookModel
		lending model.LendingModel
	)

	err := c.store.Transaction(ctx, func(tx Store) error {
		b, err := tx.FindBookByID(ctx, bookID)
		if err != nil {
			return storeErr("find book", err)
		}
		if b == nil {
			return ErrBookNotFound
		}
		if !b.BookIsAvailable {
			return ErrBookNotAvailable
		}
		if b.BookOwnerID == borrower.ID {
			return ErrOwnBook
		}

		flipped, err := tx.MarkBookUnavailable(ctx, b.BookID)
		if err != nil {
			return storeErr("reserve book", err)
		}
		if !flipped {
			return ErrBookNotAvailable
		}

		l := model.LendingModel{
			LendingBookID:     b.BookID,
			LendingBorrowerID: borrower.ID,
			LendingLenderID:   b.BookOwnerID,
			LendingStatus:     model.LendingStatusPending,
			LendingNotes:      trimPtr(notes),
			LendingCreatedAt:  c.now(),
		}
		if err := tx.CreateLending(ctx, &l); err != nil {
			if errors.Is(err, ErrBookNotAvailable) {
				return err
			}
			return storeErr("create lending", err)
		}

		b.BookIsAvailable = false
		book, lending = *b, l
		return nil
	})
	if err != nil {
		return nil, txErr("request book", err)
	}

	c.notifyLender(borrower, book, lending)
	return &lending, nil
}

// =========================================================
// RETURN BOOK
// =========================================================

// ReturnBook closes the newest active lending the owner has for the book and
// puts the book back in the catalog. A concurrent second return finds no
// active lending and fails with ErrLendingNotFound.
func (c *Coordinator) ReturnBook(ctx context.Context, lenderID, bookID uuid.UUID) (*ReturnResult, error) {
	var res ReturnResult

	err := c.store.Transaction(ctx, func(tx Store) error {
		b, err := tx.FindBookByID(ctx, bookID)
		if err != nil {
			return storeErr("find book", err)
		}
		if b == nil {
			return ErrBookNotFound
		}
		if b.BookOwnerID != lenderID {
			return ErrNotOwner
		}

		l, err := tx.FindLatestActiveLending(ctx, bookID, lenderID)
		if err != nil {
			return storeErr("find active lending", err)
		}
		if l == nil {
			return ErrLendingNotFound
		}

		at := c.now()
		closed, err := tx.MarkLendingReturned(ctx, l.LendingID, at)
		if err != nil {
			return storeErr("close lending", err)
		}
		if !closed {
			return ErrLendingNotFound
		}

		released, err := tx.MarkBookAvailable(ctx, bookID)
		if err != nil {
			return storeErr("release book", err)
		}
		if !released {
			log.Printf("[WARN] book %s was already available while lending %s was active", bookID, l.LendingID)
		}

		l.LendingStatus = model.LendingStatusReturned
		l.LendingReturnDate = &at
		b.BookIsAvailable = true
		res = ReturnResult{Book: *b, Lending: *l}
		return nil
	})
	if err != nil {
		return nil, txErr("return book", err)
	}

	c.notifyBorrower(res.Book, res.Lending)
	return &res, nil
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
