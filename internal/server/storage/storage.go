// Package storage abstracts the ciphertext blob store behind a small
// interface with MinIO and in-memory implementations.
package storage

import (
	"context"
	"io"
)

// BlobStore stores opaque ciphertext blobs under string keys.
type BlobStore interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
