// Package logging builds the application's slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"

	"ga4dash/internal/config"
)

// LogFileName is the name of the rotating log file inside the logs directory.
const LogFileName = "ga4dash.log"

// Options controls where log records go.
type Options struct {
	Level       string
	JSON        bool
	Directory   string
	MaxSizeMB   int
	MaxBackups  int
	MaxAgeDays  int
	Stdout      io.Writer
	ForceStdout bool
}

// OptionsFromConfig maps application config to logger options. Production
// writes JSON and keeps stdout only when attached to a terminal; tests log to
// stdout only.
func OptionsFromConfig(cfg *config.Config) Options {
	opts := Options{
		Level:      string(cfg.LogLevel),
		JSON:       cfg.IsProduction(),
		Directory:  cfg.LogsDirectory,
		MaxSizeMB:  cfg.LogsMaxSizeInMb,
		MaxBackups: cfg.LogsMaxBackups,
		MaxAgeDays: cfg.LogsMaxAgeInDays,
		Stdout:     os.Stdout,
	}
	if !cfg.IsProduction() || term.IsTerminal(int(os.Stdout.Fd())) {
		opts.ForceStdout = true
	}
	if cfg.IsTest() {
		opts.Directory = ""
	}
	return opts
}

// NewLogger returns a logger that fans out to stdout and, when a directory is
// set, to a size-rotated file.
func NewLogger(opts Options) *slog.Logger {
	var writers []io.Writer
	if opts.ForceStdout && opts.Stdout != nil {
		writers = append(writers, opts.Stdout)
	}
	if opts.Directory != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   filepath.Join(opts.Directory, LogFileName),
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   true,
		})
	}

	var out io.Writer
	switch len(writers) {
	case 0:
		out = io.Discard
	case 1:
		out = writers[0]
	default:
		out = io.MultiWriter(writers...)
	}

	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}
	if opts.JSON {
		return slog.New(slog.NewJSONHandler(out, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(out, handlerOpts))
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
