package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/georgekikalishvili83/gzipper/internal/logger"
)

// Build-time variables set via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags.
var (
	logFormat string
	logFile   string
	logLevel  string
	quiet     bool
	noColor   bool

	// verboseOutput is resolved from the compress options.
	verboseOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "gzipper",
	Short: "Incremental compression of static assets",
	Long: `gzipper compresses every eligible file in a directory tree with one or
more codecs (gzip, deflate, brotli, zstd, lz4, snappy). In incremental mode a
revision cache remembers what was compressed under which options, so re-runs
only touch files whose content or codec settings changed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gzipper %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format: console or json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write JSON logs to this rotating file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "minimum log level")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "minimal output (errors only)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(versionCmd)
}

// newLogger builds the run logger from the global flags. Quiet mode raises
// the level to errors only.
func newLogger() (zerolog.Logger, io.Closer, error) {
	level := logLevel
	if quiet {
		level = "error"
	}
	b, err := logger.NewBuilder().
		WithFormat(logFormat).
		WithNoColor(noColor).
		WithFile(logFile).
		WithOutput(os.Stderr).
		WithLevel(level)
	if err != nil {
		return zerolog.Nop(), nil, err
	}
	return b.Build()
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		reportError(err)
		return err
	}
	return nil
}

// loggedError marks a failure the engine has already logged as its error
// event.
type loggedError struct {
	err error
}

func (e *loggedError) Error() string {
	return e.err.Error()
}

func (e *loggedError) Unwrap() error {
	return e.err
}

// reportError prints err unless it was already logged.
func reportError(err error) {
	var logged *loggedError
	if errors.As(err, &logged) {
		return
	}
	errorf("%s", err)
}
