// Package files holds the client's in-memory collection of file records and
// the request state of the operations that mutate it.
package files

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/avolkov/fileshare/internal/client/api"
	"github.com/avolkov/fileshare/internal/cryptox"
)

// filesAPI is the slice of the REST client this store needs.
type filesAPI interface {
	ListFiles(ctx context.Context) ([]api.FileRecord, error)
	UploadFile(ctx context.Context, name string, content, key []byte, size int64, contentType string) (*api.FileRecord, error)
	DeleteFile(ctx context.Context, id string) error
	DownloadFile(ctx context.Context, id string) (content, key []byte, err error)
}

// Snapshot is a point-in-time copy of the store.
type Snapshot struct {
	Files   []api.FileRecord
	Loading bool
	Error   string
}

// Store keeps the current user's files. Each operation sets Loading and
// clears Error on start, then settles exactly one of them. List responses
// carry a generation number: if a newer list was issued while one was in
// flight, the stale response is discarded instead of overwriting the
// collection.
type Store struct {
	api filesAPI

	mu      sync.Mutex
	files   []api.FileRecord
	loading bool
	err     string
	listGen uint64
}

func New(a filesAPI) *Store {
	return &Store{api: a}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	files := make([]api.FileRecord, len(s.files))
	copy(files, s.files)
	return Snapshot{Files: files, Loading: s.loading, Error: s.err}
}

func (s *Store) begin() {
	s.loading = true
	s.err = ""
}

func (s *Store) settle(err error) {
	s.loading = false
	if err != nil {
		s.err = err.Error()
	}
}

// List replaces the collection with the server's current view.
func (s *Store) List(ctx context.Context) error {
	s.mu.Lock()
	s.begin()
	s.listGen++
	gen := s.listGen
	s.mu.Unlock()

	files, err := s.api.ListFiles(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.listGen {
		// A newer list settled (or started) after this one; drop it.
		return nil
	}
	s.settle(err)
	if err != nil {
		return err
	}
	s.files = files
	return nil
}

// Upload encrypts content under a fresh data key, submits it, and appends
// the server's canonical record to the collection. If the same id is
// already present (a list settled in between), the record is replaced
// rather than duplicated.
func (s *Store) Upload(ctx context.Context, name string, plaintext []byte, contentType string) (*api.FileRecord, error) {
	s.mu.Lock()
	s.begin()
	s.mu.Unlock()

	key := cryptox.NewDataKey()
	blob, err := cryptox.Encrypt(plaintext, key)
	if err != nil {
		err = fmt.Errorf("encrypting %s: %w", name, err)
		s.mu.Lock()
		defer s.mu.Unlock()
		s.settle(err)
		return nil, err
	}

	rec, err := s.api.UploadFile(ctx, name, blob, key, int64(len(plaintext)), contentType)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.settle(err)
	if err != nil {
		return nil, err
	}

	for i := range s.files {
		if s.files[i].ID == rec.ID {
			s.files[i] = *rec
			return rec, nil
		}
	}
	s.files = append(s.files, *rec)
	return rec, nil
}

// UploadPath reads a local file and uploads it under its base name.
func (s *Store) UploadPath(ctx context.Context, path, contentType string) (*api.FileRecord, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.loading = false
		s.err = err.Error()
		return nil, err
	}
	return s.Upload(ctx, filepath.Base(path), content, contentType)
}

// Delete removes a file on the server and drops it from the collection.
// Removing an id that is not present locally is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	s.begin()
	s.mu.Unlock()

	err := s.api.DeleteFile(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.settle(err)
	if err != nil {
		return err
	}

	kept := s.files[:0]
	for _, f := range s.files {
		if f.ID != id {
			kept = append(kept, f)
		}
	}
	s.files = kept
	return nil
}

// Download fetches a file's ciphertext and data key and returns the
// decrypted content.
func (s *Store) Download(ctx context.Context, id string) ([]byte, error) {
	s.mu.Lock()
	s.begin()
	s.mu.Unlock()

	blob, key, err := s.api.DownloadFile(ctx, id)
	if err == nil {
		var plaintext []byte
		plaintext, err = cryptox.Decrypt(blob, key)
		if err == nil {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.settle(nil)
			return plaintext, nil
		}
		err = fmt.Errorf("decrypting file %s: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.settle(err)
	return nil, err
}
