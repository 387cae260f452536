package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avolkov/fileshare/internal/common"
	"github.com/avolkov/fileshare/internal/server/models"
	"github.com/avolkov/fileshare/internal/server/repository"
)

// LinkService manages expiring public links.
type LinkService struct {
	repos repository.Manager
	files *FileService

	now func() time.Time
}

func NewLinkService(repos repository.Manager, files *FileService) *LinkService {
	return &LinkService{repos: repos, files: files, now: time.Now}
}

// Create issues a link for a file the owner holds. maxAccess of zero means
// unlimited.
func (s *LinkService) Create(ctx context.Context, owner *models.User, fileID string, expiresAt time.Time, permission string, maxAccess int) (*models.Link, error) {
	file, err := s.repos.Files().GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if file.OwnerID != owner.ID && !owner.IsAdmin() {
		return nil, common.ErrorForbidden
	}
	if !expiresAt.After(s.now()) {
		return nil, fmt.Errorf("expiry must be in the future")
	}

	link := &models.Link{
		ID:         uuid.NewString(),
		FileID:     file.ID,
		OwnerID:    file.OwnerID,
		Permission: permission,
		ExpiresAt:  expiresAt,
		MaxAccess:  maxAccess,
	}
	if err := s.repos.Links().Create(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

// ListByOwner returns the caller's links, newest first.
func (s *LinkService) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Link, error) {
	return s.repos.Links().ListByOwner(ctx, ownerID)
}

// Delete revokes a link. Only the link's owner (or an admin) may revoke.
func (s *LinkService) Delete(ctx context.Context, user *models.User, linkID string) error {
	link, err := s.repos.Links().GetByID(ctx, linkID)
	if err != nil {
		return err
	}
	if link.OwnerID != user.ID && !user.IsAdmin() {
		return common.ErrorForbidden
	}
	return s.repos.Links().Delete(ctx, linkID)
}

// Resolve serves a public link: it checks expiry and the access limit,
// decrypts the file server-side, bumps the access counter, and records the
// anonymous access. Expired and exhausted links both yield ErrLinkExpired.
func (s *LinkService) Resolve(ctx context.Context, linkID string) (*models.File, []byte, error) {
	link, err := s.repos.Links().GetByID(ctx, linkID)
	if err != nil {
		return nil, nil, err
	}
	if link.Expired(s.now()) || link.Exhausted() {
		return nil, nil, common.ErrLinkExpired
	}

	file, err := s.repos.Files().GetByID(ctx, link.FileID)
	if err != nil {
		return nil, nil, err
	}

	content, key, err := s.files.OpenForLink(ctx, file)
	if err != nil {
		return nil, nil, err
	}
	plaintext, err := s.files.Decrypt(content, key)
	if err != nil {
		return nil, nil, fmt.Errorf("decrypting file %s: %w", file.ID, err)
	}

	if err := s.repos.Links().IncrementAccess(ctx, link.ID); err != nil {
		return nil, nil, err
	}
	_ = s.repos.Audit().Record(ctx, &models.AuditEntry{FileID: file.ID, Action: models.AuditLinkAccess})

	return file, plaintext, nil
}
