package core

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mitchellh/go-homedir"
)

// LogFileName is the file written inside the configured log directory.
const LogFileName = "laplace.log"

type LogLevel = log.Level

const (
	LogLevelDebug = log.DebugLevel
	LogLevelInfo  = log.InfoLevel
	LogLevelWarn  = log.WarnLevel
	LogLevelError = log.ErrorLevel
)

type LogOptions struct {
	Level LogLevel
	// Directory, when set, receives a copy of every record in LogFileName.
	// A leading ~ is expanded to the user's home directory.
	Directory string
}

var (
	mu        sync.Mutex
	singleton *logger
)

type logger struct {
	*log.Logger
}

func newLogger(w io.Writer, level LogLevel) *logger {
	l := log.NewWithOptions(w, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "Laplace 🌀 ",
		// skip the LogXxx wrappers when reporting the caller
		CallerOffset: 1,
	})
	l.SetLevel(level)
	return &logger{l}
}

func getLogger() *logger {
	mu.Lock()
	defer mu.Unlock()
	if singleton == nil {
		singleton = newLogger(os.Stderr, LogLevelDebug)
	}
	return singleton
}

// SetupLogging replaces the process logger. The returned closer releases the
// log file, if one was opened, and must be called on shutdown.
func SetupLogging(opts LogOptions) (io.Closer, error) {
	var (
		w      io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)

	if opts.Directory != "" {
		dir, err := homedir.Expand(opts.Directory)
		if err != nil {
			return nil, fmt.Errorf("failed to expand log directory %q: %w", opts.Directory, err)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory %q: %w", dir, err)
		}
		f, err := os.OpenFile(filepath.Join(dir, LogFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = io.MultiWriter(os.Stderr, f)
		closer = f
	}

	mu.Lock()
	singleton = newLogger(w, opts.Level)
	mu.Unlock()

	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func LogDebug(msg string, args ...interface{}) {
	getLogger().Debugf(msg, args...)
}

func LogInfo(msg string, args ...interface{}) {
	getLogger().Infof(msg, args...)
}

func LogWarn(msg string, args ...interface{}) {
	getLogger().Warnf(msg, args...)
}

func LogError(msg string, args ...interface{}) {
	getLogger().Errorf(msg, args...)
}

func LogFatal(msg string, args ...interface{}) {
	getLogger().Fatalf(msg, args...)
}
