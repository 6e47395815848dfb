package controller

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"booklend_backend/internals/features/books/lending/dto"
	"booklend_backend/internals/features/books/lending/service"
	helper "booklend_backend/internals/helpers"
)

type BooksController struct {
	Coordinator *service.Coordinator
}

func NewBooksController(coordinator *service.Coordinator) *BooksController {
	return &BooksController{Coordinator: coordinator}
}

var validate = validator.New()

// =========================================================
// CREATE - POST /api/books
// =========================================================
func (h *BooksController) Create(c *fiber.Ctx) error {
	userID, err := helper.GetUserID(c)
	if err != nil {
		return err
	}

	var req dto.CreateBookRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	req.Normalize()
	if err := validate.Struct(&req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	book, err := h.Coordinator.CreateBook(c.UserContext(), userID, req.ToInput())
	if err != nil {
		return respondError(c, "Error creating book", err)
	}
	return helper.JsonCreated(c, "Book created successfully", dto.ToBookResponse(*book))
}

// =========================================================
// LIST OWN - GET /api/books/own
// =========================================================
func (h *BooksController) ListOwn(c *fiber.Ctx) error {
	userID, err := helper.GetUserID(c)
	if err != nil {
		return err
	}

	books, err := h.Coordinator.ListOwnBooks(c.UserContext(), userID)
	if err != nil {
		return respondError(c, "Error fetching books", err)
	}
	return helper.JsonList(c, "ok", dto.ToBookResponseList(books))
}

// =========================================================
// LIST AVAILABLE - GET /api/books/available
// =========================================================
func (h *BooksController) ListAvailable(c *fiber.Ctx) error {
	userID, err := helper.GetUserID(c)
	if err != nil {
		return err
	}

	books, err := h.Coordinator.ListAvailableBooks(c.UserContext(), userID)
	if err != nil {
		return respondError(c, "Error fetching books", err)
	}
	return helper.JsonList(c, "ok", dto.ToAvailableBookResponseList(books))
}

// =========================================================
// REQUEST - POST /api/books/request
// Body: {bookId, notes?}
// =========================================================
func (h *BooksController) Request(c *fiber.Ctx) error {
	userID, err := helper.GetUserID(c)
	if err != nil {
		return err
	}

	var req dto.RequestBookRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	req.Normalize()
	if err := validate.Struct(&req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	bookID, _ := uuid.Parse(req.BookID)

	borrower := service.Actor{ID: userID, Name: helper.GetUserName(c)}
	lending, err := h.Coordinator.RequestBook(c.UserContext(), borrower, bookID, req.Notes)
	if err != nil {
		return respondError(c, "Error requesting book", err)
	}
	return helper.JsonCreated(c, "Book request sent successfully", dto.ToLendingResponse(*lending))
}

// =========================================================
// LENDINGS (as lender) - GET /api/books/lendings
// =========================================================
func (h *BooksController) Lendings(c *fiber.Ctx) error {
	userID, err := helper.GetUserID(c)
	if err != nil {
		return err
	}

	details, err := h.Coordinator.GetLendingDetails(c.UserContext(), userID)
	if err != nil {
		return respondError(c, "Error fetching lending details", err)
	}
	return helper.JsonList(c, "ok", dto.ToLendingDetailResponseList(details))
}

// =========================================================
// RETURN - POST /api/books/return
// Body: {bookId}
// =========================================================
func (h *BooksController) Return(c *fiber.Ctx) error {
	userID, err := helper.GetUserID(c)
	if err != nil {
		return err
	}

	var req dto.ReturnBookRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	req.Normalize()
	if err := validate.Struct(&req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	bookID, _ := uuid.Parse(req.BookID)

	res, err := h.Coordinator.ReturnBook(c.UserContext(), userID, bookID)
	if err != nil {
		return respondError(c, "Error returning book", err)
	}
	return helper.JsonOK(c, "Book marked as returned successfully", dto.ToReturnBookResponse(*res))
}

// =========================================================
// BORROWED (as borrower) - GET /api/books/borrowed
// =========================================================
func (h *BooksController) Borrowed(c *fiber.Ctx) error {
	userID, err := helper.GetUserID(c)
	if err != nil {
		return err
	}

	details, err := h.Coordinator.GetBorrowedBooks(c.UserContext(), userID)
	if err != nil {
		return respondError(c, "Error fetching borrowed books", err)
	}
	return helper.JsonList(c, "ok", dto.ToLendingDetailResponseList(details))
}

// respondError maps coordinator errors onto HTTP statuses. Store failures
// keep their detail in the log only.
func respondError(c *fiber.Ctx, fallback string, err error) error {
	switch {
	case errors.Is(err, service.ErrBookNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "Book not found")
	case errors.Is(err, service.ErrLendingNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "No active lending found for this book")
	case errors.Is(err, service.ErrNotOwner):
		return helper.JsonError(c, fiber.StatusForbidden, "Not authorized to mark this book as returned")
	case errors.Is(err, service.ErrBookNotAvailable):
		return helper.JsonError(c, fiber.StatusBadRequest, "Book is not available")
	case errors.Is(err, service.ErrOwnBook):
		return helper.JsonError(c, fiber.StatusBadRequest, "You cannot borrow your own book")
	case errors.Is(err, service.ErrValidation):
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	default:
		log.Printf("[ERROR] %s: %v", fallback, err)
		return helper.JsonError(c, fiber.StatusInternalServerError, fallback)
	}
}
