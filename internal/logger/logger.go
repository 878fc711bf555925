package logger

import (
	"os"

	"go.uber.org/zap"
)

// NewLogger builds the process-wide zap logger. Development mode gives
// console output when APP_ENV=development, production JSON otherwise.
func NewLogger() *zap.Logger {
	var log *zap.Logger
	var err error

	if os.Getenv("APP_ENV") == "development" {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}

	return log
}
