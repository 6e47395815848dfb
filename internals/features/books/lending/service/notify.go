package service

import (
	"fmt"

	"booklend_backend/internals/features/books/lending/model"
	notificationService "booklend_backend/internals/features/home/notifications/service"
)

const (
	KindLendingRequested = "lending.requested"
	KindLendingReturned  = "lending.returned"
)

// Notifications are handed off after commit. The dispatcher resolves the
// recipient address and delivers on its own goroutine.

func (c *Coordinator) notifyLender(borrower Actor, book model.BookModel, lending model.LendingModel) {
	if c.notifier == nil {
		return
	}
	c.notifier.Dispatch(notificationService.Message{
		Kind:    KindLendingRequested,
		UserID:  lending.LendingLenderID,
		Subject: "New Book Request",
		Text:    fmt.Sprintf("You have a new request for your book \"%s\" from %s.", book.BookTitle, borrower.Name),
		Meta:    lendingMeta(book, lending),
	})
}

func (c *Coordinator) notifyBorrower(book model.BookModel, lending model.LendingModel) {
	if c.notifier == nil {
		return
	}
	c.notifier.Dispatch(notificationService.Message{
		Kind:    KindLendingReturned,
		UserID:  lending.LendingBorrowerID,
		Subject: "Book Return Confirmed",
		Text:    fmt.Sprintf("The book \"%s\" has been marked as returned. Thank you for using our book lending service!", book.BookTitle),
		Meta:    lendingMeta(book, lending),
	})
}

func lendingMeta(book model.BookModel, lending model.LendingModel) map[string]any {
	return map[string]any{
		"book_id":     book.BookID.String(),
		"lending_id":  lending.LendingID.String(),
		"borrower_id": lending.LendingBorrowerID.String(),
		"lender_id":   lending.LendingLenderID.String(),
		"status":      string(lending.LendingStatus),
	}
}
