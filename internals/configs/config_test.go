package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "JWT_SECRET", "CORS_ORIGINS", "REQUEST_TIMEOUT_SECONDS", "NOTIFY_WORKERS",
		"DB_DRIVER", "DB_HOST", "DB_PORT", "DB_NAME", "DB_SSLMODE", "DB_SQLITE_PATH",
		"MAIL_HOST", "MAIL_PORT", "MAIL_SECURE", "EMAIL_USER", "EMAIL_PASS", "MAIL_FROM",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "5959", cfg.Port)
	assert.Equal(t, "*", cfg.CORSOrigins)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 4, cfg.NotifyWorkers)
	assert.Equal(t, DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.False(t, cfg.Mail.Enabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("NOTIFY_WORKERS", "0")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "not-a-number")
	t.Setenv("MAIL_HOST", "smtp.example.com")
	t.Setenv("MAIL_SECURE", "true")
	t.Setenv("EMAIL_USER", "lending@example.com")
	t.Setenv("MAIL_FROM", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, 1, cfg.NotifyWorkers)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.Mail.Enabled())
	assert.True(t, cfg.Mail.Secure)
	assert.Equal(t, "lending@example.com", cfg.Mail.From)
}

func TestGetEnv_EmptyFallsBackToDefault(t *testing.T) {
	t.Setenv("BOOKLEND_TEST_KEY", "   ")
	assert.Equal(t, "fallback", GetEnv("BOOKLEND_TEST_KEY", "fallback"))

	t.Setenv("BOOKLEND_TEST_KEY", "set")
	assert.Equal(t, "set", GetEnv("BOOKLEND_TEST_KEY", "fallback"))
}
