package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/avolkov/fileshare/internal/common"
	"github.com/avolkov/fileshare/internal/server/models"
	"github.com/avolkov/fileshare/internal/server/repository"
)

// ShareInfo is a share with its file and recipient resolved, the shape the
// REST layer serializes.
type ShareInfo struct {
	Share     *models.Share
	File      *models.File
	Recipient *models.User
}

// ShareService manages direct file shares.
type ShareService struct {
	repos repository.Manager
}

func NewShareService(repos repository.Manager) *ShareService {
	return &ShareService{repos: repos}
}

// Create grants recipientUsername access to a file the owner holds. Sharing
// a file with the same recipient twice, with oneself, or sharing a file one
// does not own are all rejected.
func (s *ShareService) Create(ctx context.Context, owner *models.User, fileID, recipientUsername, permission string) (*ShareInfo, error) {
	file, err := s.repos.Files().GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if file.OwnerID != owner.ID && !owner.IsAdmin() {
		return nil, common.ErrorForbidden
	}

	recipient, err := s.repos.Users().GetByLogin(ctx, recipientUsername)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("recipient %q: %w", recipientUsername, common.ErrorNotFound)
		}
		return nil, err
	}
	if recipient.ID == owner.ID {
		return nil, fmt.Errorf("cannot share a file with yourself: %w", common.ErrorAlreadyExists)
	}

	share := &models.Share{
		ID:          uuid.NewString(),
		FileID:      file.ID,
		OwnerID:     file.OwnerID,
		RecipientID: recipient.ID,
		Permission:  permission,
	}
	if err := s.repos.Shares().Create(ctx, share); err != nil {
		return nil, err
	}

	_ = s.repos.Audit().Record(ctx, &models.AuditEntry{UserID: owner.ID, FileID: file.ID, Action: models.AuditShare})

	saved, err := s.repos.Shares().GetByID(ctx, share.ID)
	if err != nil {
		saved = share
	}
	return &ShareInfo{Share: saved, File: file, Recipient: recipient}, nil
}

// ListReceived returns the shares granted to the user, with files resolved.
func (s *ShareService) ListReceived(ctx context.Context, user *models.User) ([]*ShareInfo, error) {
	shares, err := s.repos.Shares().ListByRecipient(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	out := make([]*ShareInfo, 0, len(shares))
	for _, share := range shares {
		file, err := s.repos.Files().GetByID(ctx, share.FileID)
		if err != nil {
			// A share may outlive its file for a moment during deletion.
			continue
		}
		out = append(out, &ShareInfo{Share: share, File: file, Recipient: user})
	}
	return out, nil
}

// Delete revokes a share. Only the file owner (or an admin) may revoke.
func (s *ShareService) Delete(ctx context.Context, user *models.User, shareID string) error {
	share, err := s.repos.Shares().GetByID(ctx, shareID)
	if err != nil {
		return err
	}
	if share.OwnerID != user.ID && !user.IsAdmin() {
		return common.ErrorForbidden
	}
	return s.repos.Shares().Delete(ctx, shareID)
}
