package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/georgekikalishvili83/gzipper/internal/codec"
)

// fingerprintFields lists exactly the options that change the compressed
// bytes. Naming, filtering, logging and scheduling options are not part of
// it, so changing them never invalidates cached revisions.
//
//	gzip, deflate: level, memoryLevel, strategy
//	brotli:        brotliParamMode, brotliQuality, brotliSizeHint
//	zstd, lz4:     level
//	snappy:        (codec only)
type fingerprintFields struct {
	Codec          codec.Kind `json:"codec"`
	Level          *int       `json:"level,omitempty"`
	MemoryLevel    *int       `json:"memoryLevel,omitempty"`
	Strategy       *int       `json:"strategy,omitempty"`
	BrotliMode     string     `json:"brotliParamMode,omitempty"`
	BrotliQuality  *int       `json:"brotliQuality,omitempty"`
	BrotliSizeHint *int       `json:"brotliSizeHint,omitempty"`
}

// Fingerprint summarizes the options that affect the output of codec k.
// The result is a lowercase hex SHA-256 and is stable across runs.
func Fingerprint(k codec.Kind, o Options) string {
	f := fingerprintFields{Codec: k}
	switch k {
	case codec.Gzip, codec.Deflate:
		f.Level = o.Level
		f.MemoryLevel = o.MemoryLevel
		f.Strategy = o.Strategy
	case codec.Brotli:
		f.BrotliMode = o.BrotliParamMode
		f.BrotliQuality = o.BrotliQuality
		f.BrotliSizeHint = o.BrotliSizeHint
	case codec.Zstd, codec.LZ4:
		f.Level = o.Level
	}

	// Marshaling a flat struct of scalars cannot fail.
	data, _ := json.Marshal(f)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
