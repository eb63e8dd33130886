package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"sweetshop-backend/internal/config"
)

func New(cfg config.Config) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.LogJSON {
		zc = zap.NewProductionConfig()
		zc.EncoderConfig.TimeKey = "ts"
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	if cfg.Env == "dev" {
		zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		zc.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return zc.Build(zap.Fields(zap.String("service", "sweetshop"), zap.String("env", cfg.Env)))
}
