package database

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"booklend_backend/internals/configs"
	lendingModel "booklend_backend/internals/features/books/lending/model"
	notificationModel "booklend_backend/internals/features/home/notifications/model"
	userModel "booklend_backend/internals/features/users/users/model"
)

var ErrUnknownDriver = errors.New("unknown database driver")

// Open connects to the configured store. The caller owns the handle and must Close it.
func Open(cfg configs.DBConfig, level gormLogger.LogLevel) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         configs.NewGormLogger(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	if err := TunePool(db, cfg.Driver); err != nil {
		_ = Close(db)
		return nil, err
	}
	log.Printf("[INFO] DB connected (driver=%s)", cfg.Driver)
	return db, nil
}

func dialectorFor(cfg configs.DBConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case configs.DriverPostgres, "":
		dsn := fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=booklend&options=-c%%20statement_timeout%%3D3000",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name, cfg.SSLMode,
		)
		return postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), nil
	case configs.DriverSQLite:
		return sqlite.Open(cfg.SQLitePath + "?_busy_timeout=5000&_foreign_keys=on"), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

func TunePool(db *gorm.DB, driver string) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("pool: %w", err)
	}
	if driver == configs.DriverSQLite {
		// sqlite allows a single writer
		sqlDB.SetMaxOpenConns(1)
		return nil
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
	return nil
}

func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Migrate creates or updates every table the service owns, including the
// partial unique index that allows one active lending per book.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&userModel.UserModel{},
		&lendingModel.BookModel{},
		&lendingModel.LendingModel{},
		&notificationModel.NotificationDeliveryModel{},
	)
}
