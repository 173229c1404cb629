// Package imagestore persists images attached to item reports. Items keep
// only the returned storage key.
package imagestore

import (
	"context"
	"io"
)

type ImageStore interface {
	Save(ctx context.Context, prefix, mimeType string, r io.Reader) (storageKey string, err error)
	// Get returns an error wrapping domain.ErrNotFound for unknown keys.
	Get(ctx context.Context, storageKey string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, storageKey string) error
}
