// Package logging builds the logr.Logger the rest of the agent logs
// through, backed by zap.
package logging

import (
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	apperrors "github.com/pixell-labs/workflow-testagent/pkg/agenterrors"
)

// New constructs a logger at the given level ("debug", "info", "warn",
// "error"). Debug level maps to logr V(1) output.
func New(level string) (logr.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return logr.Logger{}, apperrors.New(apperrors.ErrCodeLoggerInit, "unrecognized log level "+level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = true
	z, err := cfg.Build()
	if err != nil {
		return logr.Logger{}, apperrors.New(apperrors.ErrCodeLoggerInit, "failed to build logger", err)
	}
	return zapr.NewLogger(z), nil
}
