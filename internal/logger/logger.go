package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Standard field names
const (
	FieldComponent = "component"
	FieldURL       = "url"
	FieldCount     = "count"
	FieldTotal     = "total"
)

// Logger is the process wide logger, a no-op until New is called
var Logger = zap.NewNop().Sugar()

// New builds a logger for the given level ("debug", "info", "warn", "error").
// Console output is meant for people; json for log collection.
func New(level string, json bool) (*zap.SugaredLogger, error) {
	lvl := zap.NewAtomicLevel()
	if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		lvl.SetLevel(zapcore.InfoLevel)
	}

	var cfg zap.Config
	if json {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.DisableStacktrace = true
	}
	cfg.Level = lvl
	cfg.OutputPaths = []string{"stderr"}

	base, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return base.Sugar(), nil
}

// Initialize replaces the process wide logger
func Initialize(level string, json bool) error {
	l, err := New(level, json)
	if err != nil {
		return err
	}
	Logger = l
	return nil
}

// Component returns a child logger tagged with a component name
func Component(name string) *zap.SugaredLogger {
	return Logger.Named(name).With(FieldComponent, name)
}

// Sync flushes buffered entries
func Sync() {
	_ = Logger.Sync()
}
