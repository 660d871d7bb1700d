package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"gr_scraper/internal/config"
)

// New builds the process-wide sugared logger from config. Scraping runs are
// operator-facing, so the console encoder is used even in production mode.
func New(cfg config.LoggingConfig) (*zap.SugaredLogger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zc.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// Nop returns a discard-everything logger for tests.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
