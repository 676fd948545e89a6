package logger

import (
	"log"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Set SKYBIZ_LOG_FORMAT=json for machine readable logs.
const LOG_FORMAT_ENV = "SKYBIZ_LOG_FORMAT"

// NewLogger returns a sugared logger named after the component that owns it.
func NewLogger(component string) *zap.SugaredLogger {
	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	if os.Getenv(LOG_FORMAT_ENV) == "json" {
		config = zap.NewProductionConfig()
	}

	logger, err := config.Build()
	if err != nil {
		log.Panic(err)
	}

	// flushes buffer, if any
	defer logger.Sync()

	return logger.Named(component).Sugar()
}
