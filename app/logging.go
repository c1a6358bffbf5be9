package app

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/zachfi/zkit/pkg/util"
)

type LogConfig struct {
	Level      string `yaml:"level,omitempty"`
	Format     string `yaml:"format,omitempty"` // text or json
	File       string `yaml:"file,omitempty"`   // empty logs to stderr
	MaxSizeMB  int    `yaml:"max_size_mb,omitempty"`
	MaxBackups int    `yaml:"max_backups,omitempty"`
	MaxAgeDays int    `yaml:"max_age_days,omitempty"`
}

func (c *LogConfig) RegisterFlagsAndApplyDefaults(prefix string, f *flag.FlagSet) {
	f.StringVar(&c.Level, util.PrefixConfig(prefix, "level"), "info", "Log level: debug, info, warn or error.")
	f.StringVar(&c.Format, util.PrefixConfig(prefix, "format"), "text", "Log format: text or json.")
	f.StringVar(&c.File, util.PrefixConfig(prefix, "file"), "", "Write logs to this file, rotated by size, instead of stderr.")
	f.IntVar(&c.MaxSizeMB, util.PrefixConfig(prefix, "max-size-mb"), 10, "Size in megabytes at which the log file is rotated.")
	f.IntVar(&c.MaxBackups, util.PrefixConfig(prefix, "max-backups"), 3, "Number of rotated log files to keep.")
	f.IntVar(&c.MaxAgeDays, util.PrefixConfig(prefix, "max-age-days"), 28, "Days to keep rotated log files.")
}

// NewLogger builds the process logger. The returned closer releases the log
// file, if any.
func NewLogger(cfg LogConfig, stderr io.Writer) (*slog.Logger, io.Closer, error) {
	level := new(slog.LevelVar)
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}

	w := stderr
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		}
		w, closer = lj, lj
	}

	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), closer, nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), closer, nil
	default:
		_ = closer.Close()
		return nil, nil, fmt.Errorf("invalid log format %q", cfg.Format)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
