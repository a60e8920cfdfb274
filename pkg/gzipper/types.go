package gzipper

import (
	"github.com/georgekikalishvili83/gzipper/internal/cache"
	"github.com/georgekikalishvili83/gzipper/internal/codec"
	"github.com/georgekikalishvili83/gzipper/internal/config"
	"github.com/georgekikalishvili83/gzipper/internal/engine"
	"github.com/georgekikalishvili83/gzipper/internal/walker"
)

// Type aliases re-export internal types as the public API.

type Options = config.Options
type ValidationError = config.ValidationError
type Result = engine.Result
type FileAction = engine.FileAction
type CacheInfoResult = engine.CacheInfoResult
type PurgeOptions = engine.PurgeOptions
type PurgeResult = engine.PurgeResult

// Errors a run can return.
type PathNotFoundError = walker.PathNotFoundError
type UnsupportedCodecError = codec.UnsupportedCodecError
type CompressionIOError = engine.CompressionIOError
type CacheCorruptionError = cache.CorruptionError
