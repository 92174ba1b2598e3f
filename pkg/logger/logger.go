package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the application logger for the given environment. Local gets a
// human-readable console logger at debug level; everything else gets the
// production JSON config.
func New(env string) *zap.Logger {
	var cfg zap.Config

	switch env {
	case "local", "dev", "development":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	log, err := cfg.Build()
	if err != nil {
		// A broken logger config leaves nothing to log with.
		panic(err)
	}

	return log.With(zap.String("service", "linkbio-backend"))
}
