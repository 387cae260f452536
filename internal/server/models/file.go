package models

import "time"

// File is file metadata. The ciphertext lives in the blob store under
// ObjectKey; WrappedKey is the per-file data key encrypted under the server
// master key. Size is the plaintext size reported by the uploader.
type File struct {
	ID          string
	OwnerID     int64
	Name        string
	Size        int64
	ContentType string
	ObjectKey   string
	WrappedKey  []byte
	CreatedAt   time.Time
}
