// Package testutil holds fixtures shared by store-backed tests.
package testutil

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"booklend_backend/internals/configs"
	database "booklend_backend/internals/databases"
	notificationService "booklend_backend/internals/features/home/notifications/service"
	userModel "booklend_backend/internals/features/users/users/model"
)

// OpenDB returns a migrated SQLite store in a temp dir, closed on cleanup.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(configs.DBConfig{
		Driver:     configs.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "booklend_test.db"),
	}, gormLogger.Silent)
	require.NoError(t, err, "opening test db")
	require.NoError(t, database.Migrate(db), "migrating test db")

	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// GivenUser stores a directory entry and returns it.
func GivenUser(t *testing.T, db *gorm.DB, name, email string) userModel.UserModel {
	t.Helper()

	u := userModel.UserModel{ID: uuid.New(), UserName: name, Email: email}
	require.NoError(t, db.WithContext(context.Background()).Create(&u).Error)
	return u
}

// RecordingNotifier keeps dispatched messages in memory.
type RecordingNotifier struct {
	mu       sync.Mutex
	messages []notificationService.Message
}

func (n *RecordingNotifier) Dispatch(msg notificationService.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
}

func (n *RecordingNotifier) Messages() []notificationService.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notificationService.Message(nil), n.messages...)
}
