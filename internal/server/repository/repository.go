// Package repository defines persistence interfaces for the server's domain
// entities, with Postgres and in-memory implementations. Absent rows are
// reported as common.ErrorNotFound, uniqueness violations as
// common.ErrorAlreadyExists.
package repository

import (
	"context"

	"github.com/avolkov/fileshare/internal/server/models"
)

// Users persists accounts. Username and email are both unique.
type Users interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// Files persists file metadata.
type Files interface {
	Create(ctx context.Context, file *models.File) error
	GetByID(ctx context.Context, id string) (*models.File, error)
	// ListVisible returns files owned by userID plus files shared with
	// userID, newest first.
	ListVisible(ctx context.Context, userID int64) ([]*models.File, error)
	Delete(ctx context.Context, id string) error
}

// Shares persists direct shares. Create fails with ErrorAlreadyExists when
// the (file, recipient) pair is already granted.
type Shares interface {
	Create(ctx context.Context, share *models.Share) error
	GetByID(ctx context.Context, id string) (*models.Share, error)
	GetByFileAndRecipient(ctx context.Context, fileID string, recipientID int64) (*models.Share, error)
	ListByRecipient(ctx context.Context, recipientID int64) ([]*models.Share, error)
	Delete(ctx context.Context, id string) error
	DeleteByFile(ctx context.Context, fileID string) error
}

// Links persists shareable links.
type Links interface {
	Create(ctx context.Context, link *models.Link) error
	GetByID(ctx context.Context, id string) (*models.Link, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.Link, error)
	// IncrementAccess atomically bumps the access counter.
	IncrementAccess(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	DeleteByFile(ctx context.Context, fileID string) error
}

// Audit appends action records. Reads exist for tests and future tooling.
type Audit interface {
	Record(ctx context.Context, entry *models.AuditEntry) error
	ListByFile(ctx context.Context, fileID string) ([]*models.AuditEntry, error)
}

// Manager bundles the per-entity repositories behind one handle.
type Manager interface {
	Users() Users
	Files() Files
	Shares() Shares
	Links() Links
	Audit() Audit
}
