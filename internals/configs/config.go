package configs

import (
	"context"
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DBConfig struct {
	Driver     string
	User       string
	Password   string
	Host       string
	Port       string
	Name       string
	SSLMode    string
	SQLitePath string
}

type MailConfig struct {
	Host     string
	Port     int
	Secure   bool
	User     string
	Password string
	From     string
}

// Enabled reports whether an SMTP relay is configured.
func (m MailConfig) Enabled() bool { return strings.TrimSpace(m.Host) != "" }

type Config struct {
	Port           string
	JWTSecret      string
	CORSOrigins    string
	RequestTimeout time.Duration
	NotifyWorkers  int
	DB             DBConfig
	Mail           MailConfig
}

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("[WARN] .env not found, using system environment")
	} else {
		log.Println("[INFO] .env loaded")
	}
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if (!exists || strings.TrimSpace(value) == "") && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(GetEnv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("[WARN] %s=%q is not a number, using %d", key, raw, def)
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	raw := strings.TrimSpace(GetEnv(key))
	if raw == "" {
		return def
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return b
}

// Load reads the environment (after LoadEnv) into a Config.
func Load() Config {
	mailUser := GetEnv("EMAIL_USER")
	cfg := Config{
		Port:           GetEnv("PORT", "5959"),
		JWTSecret:      strings.TrimSpace(GetEnv("JWT_SECRET")),
		CORSOrigins:    GetEnv("CORS_ORIGINS", "*"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 5)) * time.Second,
		NotifyWorkers:  getEnvInt("NOTIFY_WORKERS", 4),
		DB: DBConfig{
			Driver:     strings.ToLower(GetEnv("DB_DRIVER", DriverPostgres)),
			User:       GetEnv("DB_USER"),
			Password:   GetEnv("DB_PASSWORD"),
			Host:       GetEnv("DB_HOST", "localhost"),
			Port:       GetEnv("DB_PORT", "5432"),
			Name:       GetEnv("DB_NAME", "booklend"),
			SSLMode:    GetEnv("DB_SSLMODE", "disable"),
			SQLitePath: GetEnv("DB_SQLITE_PATH", "booklend.db"),
		},
		Mail: MailConfig{
			Host:     GetEnv("MAIL_HOST"),
			Port:     getEnvInt("MAIL_PORT", 587),
			Secure:   getEnvBool("MAIL_SECURE", false),
			User:     mailUser,
			Password: GetEnv("EMAIL_PASS"),
			From:     GetEnv("MAIL_FROM", mailUser),
		},
	}

	if cfg.JWTSecret == "" {
		log.Println("[WARN] JWT_SECRET is not set")
	}
	if !cfg.Mail.Enabled() {
		log.Println("[WARN] MAIL_HOST is not set, notifications will only be logged")
	}
	if cfg.NotifyWorkers < 1 {
		cfg.NotifyWorkers = 1
	}
	return cfg
}

// =======================
// GORM LOGGER CUSTOM
// =======================
type GormLogger struct {
	SlowThreshold time.Duration
	LogLevel      gormLogger.LogLevel
}

func NewGormLogger(level gormLogger.LogLevel) gormLogger.Interface {
	return &GormLogger{
		SlowThreshold: 200 * time.Millisecond,
		LogLevel:      level,
	}
}

func (l *GormLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	cp := *l
	cp.LogLevel = level
	return &cp
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Info {
		log.Printf("[INFO] "+msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Warn {
		log.Printf("[WARN] "+msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Error {
		log.Printf("[ERROR] "+msg, data...)
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= gormLogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.LogLevel >= gormLogger.Error:
		sql, rows := fc()
		log.Printf("[ERROR] %s | %v | %s | %d rows | %s", utils.FileWithLineNum(), err, elapsed, rows, sql)
	case elapsed > l.SlowThreshold && l.LogLevel >= gormLogger.Warn:
		sql, rows := fc()
		log.Printf("[SLOW SQL] %s | %s | %d rows | %s", utils.FileWithLineNum(), elapsed, rows, sql)
	case l.LogLevel >= gormLogger.Info:
		sql, rows := fc()
		log.Printf("[QUERY] %s | %s | %d rows | %s", utils.FileWithLineNum(), elapsed, rows, sql)
	}
}
