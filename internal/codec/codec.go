// Package codec adapts third-party compression libraries to the stream
// factory used by the compress engine. A Codec turns an output writer into a
// compressing writer; it never implements compression itself.
package codec

import (
	"fmt"
	"io"
	"strings"
)

// Kind names a compression codec.
type Kind string

const (
	Gzip    Kind = "gzip"
	Deflate Kind = "deflate"
	Brotli  Kind = "brotli"
	Zstd    Kind = "zstd"
	LZ4     Kind = "lz4"
	Snappy  Kind = "snappy"
)

// Artifact extensions, without the leading dot.
var extensions = map[Kind]string{
	Gzip:    "gz",
	Deflate: "zz",
	Brotli:  "br",
	Zstd:    "zst",
	LZ4:     "lz4",
	Snappy:  "sz",
}

// Kinds returns every supported codec in display order.
func Kinds() []Kind {
	return []Kind{Gzip, Deflate, Brotli, Zstd, LZ4, Snappy}
}

// Ext returns the artifact extension for k, or "" if k is unknown.
func Ext(k Kind) string {
	return extensions[k]
}

// ParseKind converts a user supplied codec name.
func ParseKind(name string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := extensions[k]; !ok {
		return "", &UnsupportedCodecError{Name: name}
	}
	return k, nil
}

// Params holds codec tuning parameters. Nil pointers select the library
// default. Each codec reads only the fields that apply to it.
type Params struct {
	Level          *int
	MemoryLevel    *int
	Strategy       *int
	BrotliMode     string
	BrotliQuality  *int
	BrotliSizeHint *int
}

// Codec is an opaque stream transform from plain to compressed bytes.
type Codec interface {
	Kind() Kind
	// Ext is the artifact extension without the leading dot.
	Ext() string
	// NewWriter wraps w. Closing the returned writer flushes the codec
	// trailer but does not close w.
	NewWriter(w io.Writer) (io.WriteCloser, error)
}

// UnsupportedCodecError reports a codec that is not available.
type UnsupportedCodecError struct {
	Name string
}

func (e *UnsupportedCodecError) Error() string {
	return fmt.Sprintf("unsupported codec %q, must be one of: gzip, deflate, brotli, zstd, lz4, snappy", e.Name)
}

// New returns the codec for k configured with p.
func New(k Kind, p Params) (Codec, error) {
	var factory func(io.Writer) (io.WriteCloser, error)
	switch k {
	case Gzip:
		factory = gzipFactory(p)
	case Deflate:
		factory = deflateFactory(p)
	case Brotli:
		factory = brotliFactory(p)
	case Zstd:
		factory = zstdFactory(p)
	case LZ4:
		factory = lz4Factory(p)
	case Snappy:
		factory = snappyFactory()
	default:
		return nil, &UnsupportedCodecError{Name: string(k)}
	}
	return &streamCodec{kind: k, factory: factory}, nil
}

type streamCodec struct {
	kind    Kind
	factory func(io.Writer) (io.WriteCloser, error)
}

func (c *streamCodec) Kind() Kind  { return c.kind }
func (c *streamCodec) Ext() string { return extensions[c.kind] }

func (c *streamCodec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return c.factory(w)
}

// Ratio returns compressed/original, 0 when original is empty.
func Ratio(originalSize, compressedSize int64) float64 {
	if originalSize == 0 {
		return 0
	}
	return float64(compressedSize) / float64(originalSize)
}
