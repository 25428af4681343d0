// Package logging provides config-driven categorized logging for gosh.
// Records go to a log file, never to stdout: stdout is the raw terminal the
// shell draws on. Logging is controlled by debug_mode - when false, every
// category logger is a no-op.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot       Category = "boot"       // Startup, config resolution
	CategorySession    Category = "session"    // Session lifecycle, teardown
	CategoryEditor     Category = "editor"     // Key dispatch
	CategoryHistory    Category = "history"    // History load/persist, search
	CategoryCompletion Category = "completion" // Tab completion
	CategoryPreprocess Category = "preprocess" // Preprocess chain
	CategoryEvaluator  Category = "evaluator"  // yaegi evaluation
	CategoryTerminal   Category = "terminal"   // Raw mode, key decoding
	CategoryUsage      Category = "usage"      // Submission statistics file
)

// Config mirrors config.LoggingConfig to avoid an import cycle.
type Config struct {
	DebugMode  bool
	Level      string
	Format     string // json or text
	File       string
	Categories map[string]bool
}

// Logger is a category logger with printf-style helpers over zap.
type Logger struct {
	*zap.SugaredLogger
	category Category
}

var (
	root     = zap.NewNop()
	config   Config
	configMu sync.RWMutex
)

// Initialize builds the root logger from cfg. With DebugMode off it installs
// a no-op logger and touches nothing on disk.
func Initialize(cfg Config) error {
	configMu.Lock()
	defer configMu.Unlock()

	config = cfg
	if !cfg.DebugMode {
		root = zap.NewNop()
		return nil
	}
	if cfg.File == "" {
		return fmt.Errorf("log file path required in debug mode")
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	zc := zap.NewProductionConfig()
	if cfg.Format != "json" {
		zc.Encoding = "console"
		zc.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{cfg.File}
	zc.ErrorOutputPaths = []string{cfg.File}
	zc.Sampling = nil
	zc.DisableStacktrace = true

	l, err := zc.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	root = l
	root.Named(string(CategoryBoot)).Info("logging initialized",
		zap.String("file", cfg.File),
		zap.String("level", level.String()))
	return nil
}

// SetLogger replaces the root logger. Used by tests (zaptest/observer) and by
// the CLI when --verbose forces debug output.
func SetLogger(l *zap.Logger) {
	configMu.Lock()
	defer configMu.Unlock()
	if l == nil {
		l = zap.NewNop()
	}
	root = l
	config.DebugMode = true
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	configMu.RLock()
	defer configMu.RUnlock()

	if !config.DebugMode {
		return false
	}
	if config.Categories == nil {
		return true // All enabled by default in debug mode
	}
	enabled, exists := config.Categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns a logger for the given category.
// Returns a no-op logger if debug mode is disabled or category is disabled.
func Get(category Category) *Logger {
	if !IsCategoryEnabled(category) {
		return &Logger{SugaredLogger: zap.NewNop().Sugar(), category: category}
	}
	configMu.RLock()
	l := root.Named(string(category))
	configMu.RUnlock()
	return &Logger{SugaredLogger: l.Sugar(), category: category}
}

// Sync flushes buffered records.
func Sync() error {
	configMu.RLock()
	defer configMu.RUnlock()
	return root.Sync()
}

// Category returns the logger's category.
func (l *Logger) Category() Category {
	return l.category
}

// With returns a child logger carrying the given key/value pairs.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(keysAndValues...), category: l.category}
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.SugaredLogger.Debugf(format, args...)
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.SugaredLogger.Infof(format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.SugaredLogger.Warnf(format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.SugaredLogger.Errorf(format, args...)
}
