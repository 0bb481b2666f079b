package logging

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Stderr as a log path sends logs to the terminal instead of a file.
const Stderr = "-"

// New builds the application logger. File output is uncoloured; the
// terminal gets coloured levels.
func New(path, level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, goerr.Wrap(err, "invalid log level", goerr.V("level", level))
	}

	encodeLevel := zapcore.CapitalLevelEncoder
	output := path
	if path == "" || path == Stderr {
		encodeLevel = zapcore.CapitalColorLevelEncoder
		output = "stderr"
	} else if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, goerr.Wrap(err, "failed to create logs directory", goerr.V("path", path))
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    encodeLevel,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(lvl),
		Encoding:         "console",
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{output},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := config.Build()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize logger")
	}
	return logger, nil
}
