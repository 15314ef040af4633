package persistence

import (
	"context"
	"fmt"
)

// Backend selects a TranscriptStore implementation.
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendFile   Backend = "file"
	BackendRedis  Backend = "redis"
)

// Options configures NewStore.
type Options struct {
	Backend Backend
	// Dir is the base directory for the file backend.
	Dir string
	// RedisAddr and RedisDB configure the redis backend.
	RedisAddr string
	RedisDB   int
}

// NewStore builds a TranscriptStore from opts. An empty backend selects
// the in-memory store.
func NewStore(ctx context.Context, opts Options) (TranscriptStore, error) {
	switch opts.Backend {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile:
		return NewFileStore(opts.Dir)
	case BackendRedis:
		return NewRedisStore(ctx, opts.RedisAddr, opts.RedisDB)
	default:
		return nil, fmt.Errorf("persistence: unknown backend %q", opts.Backend)
	}
}
