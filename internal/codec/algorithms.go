package codec

import (
	"io"

	"github.com/andybalholm/brotli"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// zlib strategy values accepted by --strategy.
const (
	StrategyDefault = iota
	StrategyFiltered
	StrategyHuffmanOnly
	StrategyRLE
	StrategyFixed
)

// Brotli modes accepted by --brotli-param-mode.
const (
	BrotliModeDefault = "default"
	BrotliModeText    = "text"
	BrotliModeFont    = "font"
)

// deflateLevel folds level and strategy into the single level knob the
// klauspost encoders expose. Only Huffman-only changes the encoding; the
// other zlib strategies have no equivalent and keep the level as is.
func deflateLevel(p Params) int {
	level := flate.DefaultCompression
	if p.Level != nil {
		level = *p.Level
	}
	if p.Strategy != nil && *p.Strategy == StrategyHuffmanOnly {
		level = flate.HuffmanOnly
	}
	return level
}

func gzipFactory(p Params) func(io.Writer) (io.WriteCloser, error) {
	level := deflateLevel(p)
	return func(w io.Writer) (io.WriteCloser, error) {
		return gzip.NewWriterLevel(w, level)
	}
}

// deflateFactory produces zlib-wrapped deflate streams, written as ".zz"
// artifacts.
func deflateFactory(p Params) func(io.Writer) (io.WriteCloser, error) {
	level := deflateLevel(p)
	return func(w io.Writer) (io.WriteCloser, error) {
		return zlib.NewWriterLevel(w, level)
	}
}

// The Go brotli encoder has no mode parameter, so Params.BrotliMode is
// accepted but does not reach the encoder.
func brotliFactory(p Params) func(io.Writer) (io.WriteCloser, error) {
	opts := brotli.WriterOptions{Quality: brotli.DefaultCompression}
	if p.BrotliQuality != nil {
		opts.Quality = *p.BrotliQuality
	}
	if p.BrotliSizeHint != nil {
		opts.LGWin = windowForSizeHint(*p.BrotliSizeHint)
	}
	return func(w io.Writer) (io.WriteCloser, error) {
		return brotli.NewWriterOptions(w, opts), nil
	}
}

// windowForSizeHint picks the smallest brotli window that covers the hinted
// input size, clamped to the range the encoder accepts. 0 lets the encoder
// decide.
func windowForSizeHint(hint int) int {
	const minWin, maxWin = 10, 24
	if hint <= 0 {
		return 0
	}
	win := minWin
	for win < maxWin && 1<<win < hint {
		win++
	}
	return win
}

func zstdFactory(p Params) func(io.Writer) (io.WriteCloser, error) {
	level := zstd.SpeedDefault
	if p.Level != nil {
		level = zstd.EncoderLevelFromZstd(*p.Level)
	}
	return func(w io.Writer) (io.WriteCloser, error) {
		return zstd.NewWriter(w, zstd.WithEncoderLevel(level))
	}
}

var lz4Levels = []lz4.CompressionLevel{
	lz4.Fast, lz4.Level1, lz4.Level2, lz4.Level3, lz4.Level4,
	lz4.Level5, lz4.Level6, lz4.Level7, lz4.Level8, lz4.Level9,
}

func lz4Factory(p Params) func(io.Writer) (io.WriteCloser, error) {
	level := lz4.Fast
	if p.Level != nil && *p.Level >= 0 && *p.Level < len(lz4Levels) {
		level = lz4Levels[*p.Level]
	}
	return func(w io.Writer) (io.WriteCloser, error) {
		zw := lz4.NewWriter(w)
		if err := zw.Apply(lz4.CompressionLevelOption(level)); err != nil {
			return nil, err
		}
		return zw, nil
	}
}

func snappyFactory() func(io.Writer) (io.WriteCloser, error) {
	return func(w io.Writer) (io.WriteCloser, error) {
		return snappy.NewBufferedWriter(w), nil
	}
}
