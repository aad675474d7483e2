package core

import (
	"context"
	"io"
	"time"
)

// FileStore persists uploaded files and returns the URL they are served from.
type FileStore interface {
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) (url string, err error)
	Delete(ctx context.Context, key string) error
}

// Cache is a byte-oriented key/value cache. Get reports ok=false on a miss.
type Cache interface {
	Get(ctx context.Context, key string) (val []byte, ok bool, err error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
