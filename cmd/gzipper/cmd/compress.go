package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/georgekikalishvili83/gzipper/internal/engine"
)

var compressFlagValues compressFlags

var compressCmd = &cobra.Command{
	Use:   "compress <target> [destination]",
	Short: "Compress a file or every eligible file under a directory",
	Long: `Compresses the target with the selected codecs. Without a destination the
artifacts are written next to their sources; with one, the target's directory
structure is mirrored under it.

Options are read in this order, later sources winning: defaults, the --config
options file, command-line flags, GZIPPER_* environment variables.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := optionsFromFlags(cmd.Flags(), &compressFlagValues)
		if err != nil {
			return err
		}
		verboseOutput = opts.Verbose

		log, closer, err := newLogger()
		if err != nil {
			return err
		}
		defer closer.Close()

		eng, err := engine.New(opts, log)
		if err != nil {
			return &loggedError{err: err}
		}

		target, destination := args[0], ""
		if len(args) == 2 {
			destination = args[1]
		}

		result, err := eng.Run(cmd.Context(), target, destination)
		if err != nil {
			return &loggedError{err: err}
		}
		if result.NoFiles {
			return nil
		}

		for _, f := range result.Compressed {
			detail("%s  %s  %s -> %s", f.Action, f.Output, humanSize(f.BytesBefore), humanSize(f.BytesAfter))
		}
		for _, f := range result.Cached {
			detail("%s  %s", f.Action, f.Output)
		}
		if verboseOutput {
			info("Compressed %d, cached %d: %s -> %s in %s.",
				len(result.Compressed), len(result.Cached),
				humanSize(result.BytesBefore), humanSize(result.BytesAfter),
				result.Elapsed.Round(time.Millisecond))
		}
		return nil
	},
}

func init() {
	bindCompressFlags(compressCmd.Flags(), &compressFlagValues)
	rootCmd.AddCommand(compressCmd)
}
