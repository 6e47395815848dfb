package service_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	database "booklend_backend/internals/databases"
	"booklend_backend/internals/features/books/lending/model"
	"booklend_backend/internals/features/books/lending/repository"
	"booklend_backend/internals/features/books/lending/service"
	userRepo "booklend_backend/internals/features/users/users/repository"
	"booklend_backend/internals/testutil"
)

type fixture struct {
	db          *gorm.DB
	coordinator *service.Coordinator
	notifier    *testutil.RecordingNotifier
	clock       *fakeClock
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func setup(t *testing.T) fixture {
	t.Helper()

	db := testutil.OpenDB(t)
	notifier := &testutil.RecordingNotifier{}
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	coordinator := service.NewCoordinator(
		repository.NewLendingRepository(db),
		userRepo.NewUserRepository(db),
		notifier,
		service.WithClock(clock.Now),
	)
	return fixture{db: db, coordinator: coordinator, notifier: notifier, clock: clock}
}

func givenBook(t *testing.T, f fixture, ownerID uuid.UUID, title string) *model.BookModel {
	t.Helper()

	book, err := f.coordinator.CreateBook(context.Background(), ownerID, service.CreateBookInput{
		Title:  title,
		Author: "Author of " + title,
	})
	require.NoError(t, err)
	return book
}

func reloadBook(t *testing.T, db *gorm.DB, id uuid.UUID) model.BookModel {
	t.Helper()

	var b model.BookModel
	require.NoError(t, db.Where("book_id = ?", id).Take(&b).Error)
	return b
}

func countLendings(t *testing.T, db *gorm.DB, bookID uuid.UUID) int64 {
	t.Helper()

	var n int64
	require.NoError(t, db.Model(&model.LendingModel{}).Where("lending_book_id = ?", bookID).Count(&n).Error)
	return n
}

// assertAvailabilityInvariant checks that every book is unavailable exactly
// when it has an active lending, and never more than one.
func assertAvailabilityInvariant(t *testing.T, db *gorm.DB) {
	t.Helper()

	var books []model.BookModel
	require.NoError(t, db.Find(&books).Error)
	for _, b := range books {
		var active int64
		require.NoError(t, db.Model(&model.LendingModel{}).
			Where("lending_book_id = ? AND lending_status IN ?", b.BookID, model.ActiveLendingStatuses).
			Count(&active).Error)

		assert.LessOrEqual(t, active, int64(1), "book %s has more than one active lending", b.BookID)
		assert.Equal(t, active == 1, !b.BookIsAvailable, "availability of book %s disagrees with its lendings", b.BookID)
	}
}

func Test_CreateBook_IsAvailable(t *testing.T) {
	f := setup(t)
	owner := uuid.New()
	desc := "  desert planet  "
	year := 1965

	book, err := f.coordinator.CreateBook(context.Background(), owner, service.CreateBookInput{
		Title:           " Dune ",
		Author:          "Herbert",
		Description:     &desc,
		PublicationYear: &year,
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, book.BookID)
	assert.Equal(t, "Dune", book.BookTitle)
	assert.Equal(t, "desert planet", *book.BookDescription)
	assert.Equal(t, owner, book.BookOwnerID)
	assert.True(t, reloadBook(t, f.db, book.BookID).BookIsAvailable)
	assert.Empty(t, f.notifier.Messages())
}

func Test_CreateBook_RequiresTitleAndAuthor(t *testing.T) {
	f := setup(t)

	_, err := f.coordinator.CreateBook(context.Background(), uuid.New(), service.CreateBookInput{Title: "  ", Author: "Herbert"})
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = f.coordinator.CreateBook(context.Background(), uuid.New(), service.CreateBookInput{Title: "Dune"})
	assert.ErrorIs(t, err, service.ErrValidation)

	var n int64
	require.NoError(t, f.db.Model(&model.BookModel{}).Count(&n).Error)
	assert.Zero(t, n)
}

func Test_RequestThenReturn_Scenario(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ownerA := testutil.GivenUser(t, f.db, "Alice", "alice@example.com")
	userB := testutil.GivenUser(t, f.db, "Bob", "bob@example.com")

	book := givenBook(t, f, ownerA.ID, "Dune")

	lending, err := f.coordinator.RequestBook(ctx, service.Actor{ID: userB.ID, Name: "Bob"}, book.BookID, nil)
	require.NoError(t, err)
	assert.Equal(t, model.LendingStatusPending, lending.LendingStatus)
	assert.Equal(t, ownerA.ID, lending.LendingLenderID)
	assert.Equal(t, userB.ID, lending.LendingBorrowerID)
	assert.Nil(t, lending.LendingReturnDate)
	assert.False(t, reloadBook(t, f.db, book.BookID).BookIsAvailable)
	assertAvailabilityInvariant(t, f.db)

	res, err := f.coordinator.ReturnBook(ctx, ownerA.ID, book.BookID)
	require.NoError(t, err)
	assert.Equal(t, model.LendingStatusReturned, res.Lending.LendingStatus)
	require.NotNil(t, res.Lending.LendingReturnDate)
	assert.True(t, res.Book.BookIsAvailable)

	var stored model.LendingModel
	require.NoError(t, f.db.Where("lending_id = ?", lending.LendingID).Take(&stored).Error)
	assert.Equal(t, model.LendingStatusReturned, stored.LendingStatus)
	assert.NotNil(t, stored.LendingReturnDate)
	assert.True(t, reloadBook(t, f.db, book.BookID).BookIsAvailable)
	assertAvailabilityInvariant(t, f.db)

	msgs := f.notifier.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, service.KindLendingRequested, msgs[0].Kind)
	assert.Equal(t, ownerA.ID, msgs[0].UserID)
	assert.Equal(t, `You have a new request for your book "Dune" from Bob.`, msgs[0].Text)
	assert.Equal(t, service.KindLendingReturned, msgs[1].Kind)
	assert.Equal(t, userB.ID, msgs[1].UserID)
	assert.Equal(t, "Book Return Confirmed", msgs[1].Subject)
}

func Test_RequestBook_NotFound(t *testing.T) {
	f := setup(t)

	_, err := f.coordinator.RequestBook(context.Background(), service.Actor{ID: uuid.New()}, uuid.New(), nil)

	assert.ErrorIs(t, err, service.ErrBookNotFound)
	assert.Empty(t, f.notifier.Messages())
}

func Test_RequestBook_WhenUnavailable_LeavesStateUnchanged(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	owner := uuid.New()
	book := givenBook(t, f, owner, "Dune")

	_, err := f.coordinator.RequestBook(ctx, service.Actor{ID: uuid.New()}, book.BookID, nil)
	require.NoError(t, err)

	_, err = f.coordinator.RequestBook(ctx, service.Actor{ID: uuid.New()}, book.BookID, nil)

	assert.ErrorIs(t, err, service.ErrBookNotAvailable)
	assert.Equal(t, int64(1), countLendings(t, f.db, book.BookID))
	assert.False(t, reloadBook(t, f.db, book.BookID).BookIsAvailable)
	assert.Len(t, f.notifier.Messages(), 1)
	assertAvailabilityInvariant(t, f.db)
}

func Test_RequestBook_OwnBook(t *testing.T) {
	f := setup(t)
	owner := uuid.New()
	book := givenBook(t, f, owner, "Dune")

	_, err := f.coordinator.RequestBook(context.Background(), service.Actor{ID: owner}, book.BookID, nil)

	assert.ErrorIs(t, err, service.ErrOwnBook)
	assert.True(t, reloadBook(t, f.db, book.BookID).BookIsAvailable)
	assert.Zero(t, countLendings(t, f.db, book.BookID))
}

func Test_RequestBook_StoresNotes(t *testing.T) {
	f := setup(t)
	book := givenBook(t, f, uuid.New(), "Dune")
	notes := "  can pick it up on friday "

	lending, err := f.coordinator.RequestBook(context.Background(), service.Actor{ID: uuid.New()}, book.BookID, &notes)

	require.NoError(t, err)
	require.NotNil(t, lending.LendingNotes)
	assert.Equal(t, "can pick it up on friday", *lending.LendingNotes)
}

func Test_RequestBook_Concurrent_ExactlyOneWins(t *testing.T) {
	f := setup(t)
	book := givenBook(t, f, uuid.New(), "Dune")

	const requesters = 10
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		conflicts atomic.Int32
		others    atomic.Int32
	)
	start := make(chan struct{})

	for i := 0; i < requesters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.coordinator.RequestBook(context.Background(), service.Actor{ID: uuid.New()}, book.BookID, nil)
			switch {
			case err == nil:
				successes.Add(1)
			case assert.ErrorIs(t, err, service.ErrBookNotAvailable):
				conflicts.Add(1)
			default:
				others.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, int32(requesters-1), conflicts.Load())
	assert.Zero(t, others.Load())
	assert.Equal(t, int64(1), countLendings(t, f.db, book.BookID))
	assertAvailabilityInvariant(t, f.db)
}

func Test_RequestReturnRequest_RoundTrip(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	owner := uuid.New()
	book := givenBook(t, f, owner, "Dune")

	_, err := f.coordinator.RequestBook(ctx, service.Actor{ID: uuid.New()}, book.BookID, nil)
	require.NoError(t, err)
	assert.False(t, reloadBook(t, f.db, book.BookID).BookIsAvailable)

	_, err = f.coordinator.ReturnBook(ctx, owner, book.BookID)
	require.NoError(t, err)
	assert.True(t, reloadBook(t, f.db, book.BookID).BookIsAvailable)

	second, err := f.coordinator.RequestBook(ctx, service.Actor{ID: uuid.New()}, book.BookID, nil)
	require.NoError(t, err)
	assert.Equal(t, model.LendingStatusPending, second.LendingStatus)
	assert.False(t, reloadBook(t, f.db, book.BookID).BookIsAvailable)

	assert.Equal(t, int64(2), countLendings(t, f.db, book.BookID))
	assertAvailabilityInvariant(t, f.db)
}

func Test_ReturnBook_ByNonOwner_IsForbidden(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	owner := uuid.New()
	borrower := uuid.New()
	book := givenBook(t, f, owner, "Dune")
	lending, err := f.coordinator.RequestBook(ctx, service.Actor{ID: borrower}, book.BookID, nil)
	require.NoError(t, err)

	_, err = f.coordinator.ReturnBook(ctx, borrower, book.BookID)

	assert.ErrorIs(t, err, service.ErrNotOwner)
	var stored model.LendingModel
	require.NoError(t, f.db.Where("lending_id = ?", lending.LendingID).Take(&stored).Error)
	assert.Equal(t, model.LendingStatusPending, stored.LendingStatus)
	assert.Nil(t, stored.LendingReturnDate)
	assert.False(t, reloadBook(t, f.db, book.BookID).BookIsAvailable)
	assertAvailabilityInvariant(t, f.db)
}

func Test_ReturnBook_WithoutActiveLending_IsNotFound(t *testing.T) {
	f := setup(t)
	owner := uuid.New()
	book := givenBook(t, f, owner, "Dune")

	_, err := f.coordinator.ReturnBook(context.Background(), owner, book.BookID)

	assert.ErrorIs(t, err, service.ErrLendingNotFound)
	assert.True(t, reloadBook(t, f.db, book.BookID).BookIsAvailable)
	assert.Empty(t, f.notifier.Messages())
}

func Test_ReturnBook_UnknownBook_IsNotFound(t *testing.T) {
	f := setup(t)

	_, err := f.coordinator.ReturnBook(context.Background(), uuid.New(), uuid.New())

	assert.ErrorIs(t, err, service.ErrBookNotFound)
}

func Test_ReturnBook_ClosesAcceptedLending(t *testing.T) {
	f := setup(t)
	owner := uuid.New()
	borrower := uuid.New()
	book := givenBook(t, f, owner, "Dune")

	// ACCEPTED is only reachable through the store today
	require.NoError(t, f.db.Model(&model.BookModel{}).Where("book_id = ?", book.BookID).Update("book_is_available", false).Error)
	accepted := model.LendingModel{
		LendingBookID:     book.BookID,
		LendingBorrowerID: borrower,
		LendingLenderID:   owner,
		LendingStatus:     model.LendingStatusAccepted,
	}
	require.NoError(t, f.db.Create(&accepted).Error)

	res, err := f.coordinator.ReturnBook(context.Background(), owner, book.BookID)

	require.NoError(t, err)
	assert.Equal(t, accepted.LendingID, res.Lending.LendingID)
	assert.Equal(t, model.LendingStatusReturned, res.Lending.LendingStatus)
	assertAvailabilityInvariant(t, f.db)
}

func Test_ReturnBook_Concurrent_ExactlyOneWins(t *testing.T) {
	f := setup(t)
	owner := uuid.New()
	book := givenBook(t, f, owner, "Dune")
	_, err := f.coordinator.RequestBook(context.Background(), service.Actor{ID: uuid.New()}, book.BookID, nil)
	require.NoError(t, err)

	const confirmations = 5
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		notFound  atomic.Int32
	)
	for i := 0; i < confirmations; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.coordinator.ReturnBook(context.Background(), owner, book.BookID)
			if err == nil {
				successes.Add(1)
				return
			}
			if assert.ErrorIs(t, err, service.ErrLendingNotFound) {
				notFound.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, int32(confirmations-1), notFound.Load())
	assertAvailabilityInvariant(t, f.db)
}

func Test_ListOwnBooks_IncludesLentBooks(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	owner := uuid.New()
	lent := givenBook(t, f, owner, "Dune")
	givenBook(t, f, owner, "Emma")
	givenBook(t, f, uuid.New(), "Someone else's")
	_, err := f.coordinator.RequestBook(ctx, service.Actor{ID: uuid.New()}, lent.BookID, nil)
	require.NoError(t, err)

	books, err := f.coordinator.ListOwnBooks(ctx, owner)

	require.NoError(t, err)
	assert.Len(t, books, 2)
	for _, b := range books {
		assert.Equal(t, owner, b.BookOwnerID)
	}
}

func Test_ListAvailableBooks_ExcludesOwnAndLentBooks(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	userA := testutil.GivenUser(t, f.db, "Alice", "alice@example.com")
	userC := testutil.GivenUser(t, f.db, "Carol", "carol@example.com")

	givenBook(t, f, userA.ID, "Alice's available book")
	carolsFree := givenBook(t, f, userC.ID, "Carol's free book")
	carolsLent := givenBook(t, f, userC.ID, "Carol's lent book")
	_, err := f.coordinator.RequestBook(ctx, service.Actor{ID: uuid.New()}, carolsLent.BookID, nil)
	require.NoError(t, err)

	books, err := f.coordinator.ListAvailableBooks(ctx, userA.ID)

	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, carolsFree.BookID, books[0].Book.BookID)
	assert.Equal(t, "Carol", books[0].Owner.Name)
	assert.Equal(t, "carol@example.com", books[0].Owner.Email)
}

func Test_ListAvailableBooks_UnknownOwnerResolvesToIDOnly(t *testing.T) {
	f := setup(t)
	stranger := uuid.New()
	givenBook(t, f, stranger, "Dune")

	books, err := f.coordinator.ListAvailableBooks(context.Background(), uuid.New())

	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, stranger, books[0].Owner.ID)
	assert.Empty(t, books[0].Owner.Name)
}

func Test_GetLendingDetails_NewestFirstWithBorrower(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	owner := testutil.GivenUser(t, f.db, "Alice", "alice@example.com")
	bob := testutil.GivenUser(t, f.db, "Bob", "bob@example.com")
	first := givenBook(t, f, owner.ID, "Dune")
	second := givenBook(t, f, owner.ID, "Emma")

	_, err := f.coordinator.RequestBook(ctx, service.Actor{ID: bob.ID}, first.BookID, nil)
	require.NoError(t, err)
	_, err = f.coordinator.ReturnBook(ctx, owner.ID, first.BookID)
	require.NoError(t, err)
	_, err = f.coordinator.RequestBook(ctx, service.Actor{ID: bob.ID}, second.BookID, nil)
	require.NoError(t, err)

	details, err := f.coordinator.GetLendingDetails(ctx, owner.ID)

	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, second.BookID, details[0].Lending.LendingBookID)
	assert.Equal(t, model.LendingStatusPending, details[0].Lending.LendingStatus)
	assert.Equal(t, model.LendingStatusReturned, details[1].Lending.LendingStatus)
	require.NotNil(t, details[0].Book)
	assert.Equal(t, "Emma", details[0].Book.BookTitle)
	require.NotNil(t, details[0].Borrower)
	assert.Equal(t, "Bob", details[0].Borrower.Name)
	assert.Nil(t, details[0].Lender)
}

func Test_GetBorrowedBooks_OnlyActiveNewestFirst(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	owner := testutil.GivenUser(t, f.db, "Alice", "alice@example.com")
	borrower := uuid.New()
	returned := givenBook(t, f, owner.ID, "Dune")
	older := givenBook(t, f, owner.ID, "Emma")
	newer := givenBook(t, f, owner.ID, "Ulysses")

	_, err := f.coordinator.RequestBook(ctx, service.Actor{ID: borrower}, returned.BookID, nil)
	require.NoError(t, err)
	_, err = f.coordinator.ReturnBook(ctx, owner.ID, returned.BookID)
	require.NoError(t, err)
	_, err = f.coordinator.RequestBook(ctx, service.Actor{ID: borrower}, older.BookID, nil)
	require.NoError(t, err)
	_, err = f.coordinator.RequestBook(ctx, service.Actor{ID: borrower}, newer.BookID, nil)
	require.NoError(t, err)

	details, err := f.coordinator.GetBorrowedBooks(ctx, borrower)

	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, newer.BookID, details[0].Lending.LendingBookID)
	assert.Equal(t, older.BookID, details[1].Lending.LendingBookID)
	require.NotNil(t, details[0].Lender)
	assert.Equal(t, "alice@example.com", details[0].Lender.Email)
	assert.Nil(t, details[0].Borrower)
}

func Test_StoreFailure_IsReportedAsStoreError(t *testing.T) {
	f := setup(t)
	require.NoError(t, database.Close(f.db))

	_, err := f.coordinator.ListOwnBooks(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrStore)

	_, err = f.coordinator.RequestBook(context.Background(), service.Actor{ID: uuid.New()}, uuid.New(), nil)
	assert.ErrorIs(t, err, service.ErrStore)
}
