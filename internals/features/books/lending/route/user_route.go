package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"booklend_backend/internals/features/books/lending/controller"
	"booklend_backend/internals/features/books/lending/repository"
	"booklend_backend/internals/features/books/lending/service"
	userRepo "booklend_backend/internals/features/users/users/repository"
)

// BookUserRoutes mounts the lending endpoints under /books on an authenticated router.
func BookUserRoutes(user fiber.Router, db *gorm.DB, notifier service.Notifier) {
	coordinator := service.NewCoordinator(
		repository.NewLendingRepository(db),
		userRepo.NewUserRepository(db),
		notifier,
	)
	ctrl := controller.NewBooksController(coordinator)

	books := user.Group("/books")
	books.Post("/", ctrl.Create)
	books.Get("/own", ctrl.ListOwn)
	books.Get("/available", ctrl.ListAvailable)
	books.Post("/request", ctrl.Request)
	books.Get("/lendings", ctrl.Lendings)
	books.Post("/return", ctrl.Return)
	books.Get("/borrowed", ctrl.Borrowed)
}
