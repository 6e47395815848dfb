package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrBookNotFound     = errors.New("book not found")
	ErrBookNotAvailable = errors.New("book is not available")
	ErrOwnBook          = errors.New("cannot borrow your own book")
	ErrNotOwner         = errors.New("not authorized to mark this book as returned")
	ErrLendingNotFound  = errors.New("no active lending found for this book")
	ErrStore            = errors.New("store error")
)

func validationErr(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStore, op, err)
}

// txErr passes domain outcomes through and marks anything else, such as a
// failed BEGIN or COMMIT, as a store failure.
func txErr(op string, err error) error {
	for _, known := range []error{ErrValidation, ErrBookNotFound, ErrBookNotAvailable, ErrOwnBook, ErrNotOwner, ErrLendingNotFound, ErrStore} {
		if errors.Is(err, known) {
			return err
		}
	}
	return storeErr(op, err)
}
