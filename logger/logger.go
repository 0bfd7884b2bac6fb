// Package logger builds the process-wide zap logger.
package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Error types attached to failure logs.
const (
	DBConnectionError = "DB_CONNECTION_ERROR"
	AIGenerationError = "AI_GENERATION_ERROR"
	ToolError         = "TOOL_ERROR"
	ImportError       = "IMPORT_ERROR"
)

// New returns a JSON logger on stdout. When errorFile is set, error-level
// entries are also appended to that file.
func New(level, errorFile string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encCfg)

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), lvl),
	}
	if errorFile != "" {
		f, err := os.OpenFile(errorFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open error log %s: %w", errorFile, err)
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.Lock(f), zapcore.ErrorLevel))
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

// ErrorType tags a failure log entry.
func ErrorType(t string) zap.Field { return zap.String("error_type", t) }
