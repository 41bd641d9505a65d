package database

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"workforce_backend/internals/configs"
	policyModel "workforce_backend/internals/features/attendance/policies/model"
	sessionModel "workforce_backend/internals/features/attendance/sessions/model"
	directoryModel "workforce_backend/internals/features/users/directory/model"
)

var DB *gorm.DB

func ConnectDB() {
	driver := strings.ToLower(getenv("DB_DRIVER", "postgres"))
	zap.S().Infof("🔌 Connecting to database (driver=%s)...", driver)

	db, err := gorm.Open(dialector(driver), &gorm.Config{
		Logger:         configs.NewGormLogger(),
		TranslateError: true,
	})
	if err != nil {
		zap.S().Fatalf("❌ Failed to connect DB: %v", err)
	}
	DB = db
	zap.S().Info("✅ DB connected.")
}

func dialector(driver string) gorm.Dialector {
	if driver == "sqlite" {
		return sqlite.Open(getenv("SQLITE_PATH", "workforce.db"))
	}

	// statement_timeout keeps runaway dashboard queries from holding the pool
	sslmode := getenv("DB_SSLMODE", "require")
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=workforce&options=-c statement_timeout=3000",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_NAME"),
		sslmode,
	)
	return postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true, // PgBouncer transaction pooling
	})
}

func TunePool() {
	sqlDB, err := DB.DB()
	if err != nil {
		zap.S().Warnf("pool tune err: %v", err)
		return
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

// Migrate creates/updates every table this service reads or owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&directoryModel.EmployeeModel{},
		&directoryModel.UserRoleModel{},
		&directoryModel.EmployeeHierarchyModel{},
		&policyModel.AttendancePolicyModel{},
		&sessionModel.AttendanceSessionModel{},
		&sessionModel.AttendanceViolationModel{},
	)
}

func WarmUpQueries() {
	go func() {
		time.Sleep(500 * time.Millisecond) // give the server time to come up
		if err := ping(); err != nil {
			zap.S().Warnf("warm-up ping err: %v", err)
		}
	}()
}

func ping() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
