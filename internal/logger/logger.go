// Package logger builds the zerolog logger handed to the engine.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Format selects how log lines are rendered.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

// Config holds logger settings.
type Config struct {
	Level      zerolog.Level
	Format     Format
	NoColor    bool
	FilePath   string // optional rotating log file
	MaxSizeMB  int
	MaxBackups int
	Output     io.Writer // console destination, stderr when nil
}

// DefaultConfig returns console logging at info level.
func DefaultConfig() Config {
	return Config{
		Level:      zerolog.InfoLevel,
		Format:     FormatConsole,
		MaxSizeMB:  10,
		MaxBackups: 3,
	}
}

// Builder assembles a zerolog.Logger from a Config.
type Builder struct {
	cfg Config
}

// NewBuilder starts from DefaultConfig.
func NewBuilder() *Builder {
	return &Builder{cfg: DefaultConfig()}
}

// WithLevel parses and sets the minimum level.
func (b *Builder) WithLevel(level string) (*Builder, error) {
	if level == "" {
		return b, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return b, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	b.cfg.Level = lvl
	return b, nil
}

// WithFormat sets the output format. Unknown values fall back to console.
func (b *Builder) WithFormat(format string) *Builder {
	b.cfg.Format = ParseFormat(format)
	return b
}

// WithNoColor disables ANSI colors on the console.
func (b *Builder) WithNoColor(noColor bool) *Builder {
	b.cfg.NoColor = noColor
	return b
}

// WithFile adds a rotating log file.
func (b *Builder) WithFile(path string) *Builder {
	b.cfg.FilePath = path
	return b
}

// WithOutput replaces the console destination.
func (b *Builder) WithOutput(w io.Writer) *Builder {
	b.cfg.Output = w
	return b
}

// Build creates the logger. The returned closer releases the log file and
// is safe to call when no file is configured.
func (b *Builder) Build() (zerolog.Logger, io.Closer, error) {
	cfg := b.cfg
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	writers := []io.Writer{consoleWriter(out, cfg.Format, cfg.NoColor)}
	var closer io.Closer = nopCloser{}

	if cfg.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("creating log directory: %w", err)
		}
		lj := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			LocalTime:  true,
		}
		// Files always get JSON lines.
		writers = append(writers, lj)
		closer = lj
	}

	var w io.Writer = writers[0]
	if len(writers) > 1 {
		w = zerolog.MultiLevelWriter(writers...)
	}

	log := zerolog.New(w).Level(cfg.Level).With().Timestamp().Logger()
	return log, closer, nil
}

// ParseFormat maps a format name to a Format.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON
	default:
		return FormatConsole
	}
}

func consoleWriter(out io.Writer, format Format, noColor bool) io.Writer {
	if format == FormatJSON {
		return out
	}
	return zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    noColor,
		TimeFormat: time.TimeOnly,
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
