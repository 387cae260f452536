package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/avolkov/fileshare/internal/common"
	"github.com/avolkov/fileshare/internal/server/models"
)

// MemoryManager is a fully in-memory Manager used by tests and by the
// server when no database DSN is configured.
type MemoryManager struct {
	users  *memoryUsers
	files  *memoryFiles
	shares *memoryShares
	links  *memoryLinks
	audit  *memoryAudit
}

func NewMemoryManager() *MemoryManager {
	shares := &memoryShares{byID: make(map[string]*models.Share)}
	return &MemoryManager{
		users:  &memoryUsers{byID: make(map[int64]*models.User)},
		files:  &memoryFiles{byID: make(map[string]*models.File), shares: shares},
		shares: shares,
		links:  &memoryLinks{byID: make(map[string]*models.Link)},
		audit:  &memoryAudit{},
	}
}

func (m *MemoryManager) Users() Users   { return m.users }
func (m *MemoryManager) Files() Files   { return m.files }
func (m *MemoryManager) Shares() Shares { return m.shares }
func (m *MemoryManager) Links() Links   { return m.links }
func (m *MemoryManager) Audit() Audit   { return m.audit }

type memoryUsers struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*models.User
}

func (r *memoryUsers) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.byID {
		if strings.EqualFold(u.Username, user.Username) || strings.EqualFold(u.Email, user.Email) {
			return nil, common.ErrorAlreadyExists
		}
	}

	r.nextID++
	saved := *user
	saved.ID = r.nextID
	if saved.CreatedAt.IsZero() {
		saved.CreatedAt = time.Now()
	}
	r.byID[saved.ID] = &saved

	out := saved
	return &out, nil
}

func (r *memoryUsers) GetByID(ctx context.Context, id int64) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *u
	return &out, nil
}

func (r *memoryUsers) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byID {
		if strings.EqualFold(u.Username, login) || strings.EqualFold(u.Email, login) {
			out := *u
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memoryUsers) Update(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[user.ID]; !ok {
		return common.ErrorNotFound
	}
	saved := *user
	r.byID[user.ID] = &saved
	return nil
}

type memoryFiles struct {
	mu   sync.RWMutex
	byID map[string]*models.File

	// shares is set by the manager-level wiring below so ListVisible can
	// resolve shared files without a cross-repository query layer.
	shares *memoryShares
}

func (r *memoryFiles) Create(ctx context.Context, file *models.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[file.ID]; ok {
		return common.ErrorAlreadyExists
	}
	saved := *file
	if saved.CreatedAt.IsZero() {
		saved.CreatedAt = time.Now()
	}
	r.byID[saved.ID] = &saved
	return nil
}

func (r *memoryFiles) GetByID(ctx context.Context, id string) (*models.File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *f
	return &out, nil
}

func (r *memoryFiles) ListVisible(ctx context.Context, userID int64) ([]*models.File, error) {
	shared := make(map[string]bool)
	if r.shares != nil {
		recs, err := r.shares.ListByRecipient(ctx, userID)
		if err != nil {
			return nil, err
		}
		for _, s := range recs {
			shared[s.FileID] = true
		}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.File
	for _, f := range r.byID {
		if f.OwnerID == userID || shared[f.ID] {
			c := *f
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *memoryFiles) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.byID, id)
	return nil
}

type memoryShares struct {
	mu   sync.RWMutex
	byID map[string]*models.Share
}

func (r *memoryShares) Create(ctx context.Context, share *models.Share) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.byID {
		if s.FileID == share.FileID && s.RecipientID == share.RecipientID {
			return common.ErrorAlreadyExists
		}
	}
	saved := *share
	if saved.CreatedAt.IsZero() {
		saved.CreatedAt = time.Now()
	}
	r.byID[saved.ID] = &saved
	return nil
}

func (r *memoryShares) GetByID(ctx context.Context, id string) (*models.Share, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *s
	return &out, nil
}

func (r *memoryShares) GetByFileAndRecipient(ctx context.Context, fileID string, recipientID int64) (*models.Share, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.byID {
		if s.FileID == fileID && s.RecipientID == recipientID {
			out := *s
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memoryShares) ListByRecipient(ctx context.Context, recipientID int64) ([]*models.Share, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.Share
	for _, s := range r.byID {
		if s.RecipientID == recipientID {
			c := *s
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryShares) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *memoryShares) DeleteByFile(ctx context.Context, fileID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, s := range r.byID {
		if s.FileID == fileID {
			delete(r.byID, id)
		}
	}
	return nil
}

type memoryLinks struct {
	mu   sync.RWMutex
	byID map[string]*models.Link
}

func (r *memoryLinks) Create(ctx context.Context, link *models.Link) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[link.ID]; ok {
		return common.ErrorAlreadyExists
	}
	saved := *link
	if saved.CreatedAt.IsZero() {
		saved.CreatedAt = time.Now()
	}
	r.byID[saved.ID] = &saved
	return nil
}

func (r *memoryLinks) GetByID(ctx context.Context, id string) (*models.Link, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *l
	return &out, nil
}

func (r *memoryLinks) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Link, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.Link
	for _, l := range r.byID {
		if l.OwnerID == ownerID {
			c := *l
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryLinks) IncrementAccess(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	l.AccessCount++
	return nil
}

func (r *memoryLinks) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *memoryLinks) DeleteByFile(ctx context.Context, fileID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, l := range r.byID {
		if l.FileID == fileID {
			delete(r.byID, id)
		}
	}
	return nil
}

type memoryAudit struct {
	mu      sync.Mutex
	nextID  int64
	entries []*models.AuditEntry
}

func (r *memoryAudit) Record(ctx context.Context, entry *models.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	saved := *entry
	saved.ID = r.nextID
	if saved.CreatedAt.IsZero() {
		saved.CreatedAt = time.Now()
	}
	r.entries = append(r.entries, &saved)
	return nil
}

func (r *memoryAudit) ListByFile(ctx context.Context, fileID string) ([]*models.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.AuditEntry
	for _, e := range r.entries {
		if e.FileID == fileID {
			c := *e
			out = append(out, &c)
		}
	}
	return out, nil
}
