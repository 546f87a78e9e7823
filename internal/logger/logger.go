package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/slingdata-io/odbcbind/internal/config"

	"github.com/pkg/errors"
)

// ParseLevel maps a config level name to a slog level. Unknown names map
// to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup builds the process logger: a text handler on stderr plus an
// optional file handler. debug forces the console to debug level, which
// turns on the cursor's binding diagnostics. The returned closer releases
// the log file.
func Setup(cfg config.LoggerConfigs, debug bool) (*slog.Logger, io.Closer, error) {
	return setup(os.Stderr, cfg, debug)
}

func setup(console io.Writer, cfg config.LoggerConfigs, debug bool) (*slog.Logger, io.Closer, error) {
	var handlers []slog.Handler
	var closer io.Closer = nopCloser{}

	stdErrLevel := ParseLevel(cfg.ConsoleLevel)
	if debug {
		stdErrLevel = slog.LevelDebug
	}
	stdErrOpts := &slog.HandlerOptions{Level: stdErrLevel}
	handlers = append(handlers, slog.NewTextHandler(console, stdErrOpts))

	if cfg.FileOutput != "" {
		logFile, err := os.OpenFile(cfg.FileOutput, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, errors.Wrap(err, "opening log file")
		}
		closer = logFile

		fileOpts := &slog.HandlerOptions{
			Level: ParseLevel(cfg.FileLevel), AddSource: true,
		}
		handlers = append(handlers, slog.NewTextHandler(logFile, fileOpts))
	}

	log := slog.New(NewMultiHandler(handlers...))
	slog.SetDefault(log)

	return log, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
