package configs

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

var (
	JWTSecret   string
	AppTimezone string
	AppEnv      string

	appLocation *time.Location

	PolicyCacheTTL     time.Duration
	BroadcastBuffer    int
	MissedCheckoutCron string
)

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			zap.S().Warn("⚠️ .env file not found, using system environment")
		} else {
			zap.S().Info("✅ .env file loaded")
		}
	} else {
		zap.S().Info("🚀 Running in Railway, using system environment")
	}

	JWTSecret = GetEnv("JWT_SECRET")
	AppTimezone = GetEnv("APP_TIMEZONE", "Asia/Jakarta")
	AppEnv = GetEnv("APP_ENV", "development")
	appLocation = resolveLocation(AppTimezone)

	PolicyCacheTTL = time.Duration(GetEnvInt("POLICY_CACHE_TTL_SECONDS", 60)) * time.Second
	BroadcastBuffer = GetEnvInt("BROADCAST_BUFFER", 256)
	MissedCheckoutCron = GetEnv("MISSED_CHECKOUT_CRON", "@every 30m")

	if JWTSecret == "" {
		zap.S().Error("❌ JWT_SECRET is not set!")
	} else {
		zap.S().Info("✅ JWT_SECRET loaded.")
	}
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

// GetEnvInt falls back to def when the variable is missing or not a positive integer.
func GetEnvInt(key string, def int) int {
	raw := strings.TrimSpace(GetEnv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		zap.S().Warnf("invalid %s=%q, using default %d", key, raw, def)
		return def
	}
	return n
}

// Location is the employee-local zone used to derive session dates,
// resolved once by LoadEnv.
func Location() *time.Location {
	if appLocation != nil {
		return appLocation
	}
	return resolveLocation(AppTimezone)
}

// resolveLocation falls back to UTC when the zone is unknown.
func resolveLocation(name string) *time.Location {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Asia/Jakarta"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		zap.S().Warnf("⚠️ invalid APP_TIMEZONE=%q, using UTC: %v", name, err)
		return time.UTC
	}
	return loc
}

// =======================
// GORM LOGGER CUSTOM
// =======================
type GormLogger struct {
	SlowThreshold time.Duration
	LogLevel      gormLogger.LogLevel
}

func NewGormLogger() gormLogger.Interface {
	level := gormLogger.Warn
	if AppEnv != "production" {
		level = gormLogger.Info
	}
	return &GormLogger{
		SlowThreshold: 200 * time.Millisecond,
		LogLevel:      level,
	}
}

func (l *GormLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	nl := *l
	nl.LogLevel = level
	return &nl
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Info {
		zap.S().Infof(msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Warn {
		zap.S().Warnf(msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Error {
		zap.S().Errorf(msg, data...)
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= gormLogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()
	file := utils.FileWithLineNum()

	switch {
	case err != nil && l.LogLevel >= gormLogger.Error:
		zap.S().Errorw("query failed", "file", file, "error", err, "elapsed", elapsed, "rows", rows, "sql", sql)
	case elapsed > l.SlowThreshold && l.LogLevel >= gormLogger.Warn:
		zap.S().Warnw("slow query", "file", file, "elapsed", elapsed, "rows", rows, "sql", sql)
	case l.LogLevel >= gormLogger.Info:
		zap.S().Debugw("query", "file", file, "elapsed", elapsed, "rows", rows, "sql", sql)
	}
}
