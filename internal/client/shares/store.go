// Package shares holds the client's outbound shareable links and the shares
// received from other users. Both resources share one loading/error slot,
// matching the surface the view consumes.
package shares

import (
	"context"
	"sync"
	"time"

	"github.com/avolkov/fileshare/internal/client/api"
)

// sharesAPI is the slice of the REST client this store needs.
type sharesAPI interface {
	CreateShare(ctx context.Context, fileID, username string, permission api.Permission) (*api.ShareRecord, error)
	ListShares(ctx context.Context) ([]api.ShareRecord, error)
	DeleteShare(ctx context.Context, id string) error
	CreateLink(ctx context.Context, fileID string, expiresAt time.Time, permission api.Permission) (*api.ShareLink, error)
	ListLinks(ctx context.Context) ([]api.ShareLink, error)
	DeleteLink(ctx context.Context, id string) error
}

// Snapshot is a point-in-time copy of the store.
type Snapshot struct {
	Links    []api.ShareLink
	Received []api.ShareRecord
	Loading  bool
	Error    string
}

// Store keeps shareable links and received shares. List responses are
// generation-guarded the same way the files store guards its collection.
type Store struct {
	api sharesAPI

	mu       sync.Mutex
	links    []api.ShareLink
	received []api.ShareRecord
	loading  bool
	err      string
	listGen  uint64
}

func New(a sharesAPI) *Store {
	return &Store{api: a}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	links := make([]api.ShareLink, len(s.links))
	copy(links, s.links)
	received := make([]api.ShareRecord, len(s.received))
	copy(received, s.received)
	return Snapshot{Links: links, Received: received, Loading: s.loading, Error: s.err}
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

// CreateLink creates an expiring link for a file and records it.
func (s *Store) CreateLink(ctx context.Context, fileID string, expiresAt time.Time, permission api.Permission) (*api.ShareLink, error) {
	s.mu.Lock()
	s.begin()
	s.mu.Unlock()

	link, err := s.api.CreateLink(ctx, fileID, expiresAt, permission)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.settle(err)
	if err != nil {
		return nil, err
	}
	s.links = append(s.links, *link)
	return link, nil
}

// ListLinks refreshes the caller's links from the server.
func (s *Store) ListLinks(ctx context.Context) error {
	s.mu.Lock()
	s.begin()
	s.listGen++
	gen := s.listGen
	s.mu.Unlock()

	links, err := s.api.ListLinks(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.listGen {
		return nil
	}
	s.settle(err)
	if err != nil {
		return err
	}
	s.links = links
	return nil
}

// DeleteLink revokes a link and drops it from the collection.
func (s *Store) DeleteLink(ctx context.Context, id string) error {
	s.mu.Lock()
	s.begin()
	s.mu.Unlock()

	err := s.api.DeleteLink(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.settle(err)
	if err != nil {
		return err
	}

	kept := s.links[:0]
	for _, l := range s.links {
		if l.ID != id {
			kept = append(kept, l)
		}
	}
	s.links = kept
	return nil
}

// CreateShare grants a named recipient access to a file.
func (s *Store) CreateShare(ctx context.Context, fileID, username string, permission api.Permission) (*api.ShareRecord, error) {
	s.mu.Lock()
	s.begin()
	s.mu.Unlock()

	rec, err := s.api.CreateShare(ctx, fileID, username, permission)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.settle(err)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ListReceived refreshes the shares granted to the current user.
func (s *Store) ListReceived(ctx context.Context) error {
	s.mu.Lock()
	s.begin()
	s.listGen++
	gen := s.listGen
	s.mu.Unlock()

	received, err := s.api.ListShares(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.listGen {
		return nil
	}
	s.settle(err)
	if err != nil {
		return err
	}
	s.received = received
	return nil
}

// DeleteShare revokes a direct share.
func (s *Store) DeleteShare(ctx context.Context, id string) error {
	s.mu.Lock()
	s.begin()
	s.mu.Unlock()

	err := s.api.DeleteShare(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.settle(err)
	return err
}
