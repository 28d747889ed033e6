package media

import "context"

// Store persists uploaded files. Keys are slash separated and deterministic,
// so writing the same key twice overwrites rather than duplicates.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (url string, err error)
	Delete(ctx context.Context, key string) error
}
