package configs

import (
	"os"

	"go.uber.org/zap"
)

// InitLogger replaces zap's globals so the rest of the app can use zap.S().
// It runs before LoadEnv, so it reads APP_ENV directly.
func InitLogger() *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if os.Getenv("APP_ENV") == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		logger = zap.NewNop()
	}
	zap.ReplaceGlobals(logger)
	return logger
}
