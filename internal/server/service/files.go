package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/avolkov/fileshare/internal/common"
	"github.com/avolkov/fileshare/internal/cryptox"
	"github.com/avolkov/fileshare/internal/server/models"
	"github.com/avolkov/fileshare/internal/server/repository"
	"github.com/avolkov/fileshare/internal/server/storage"
)

// FileService stores encrypted files and enforces access rules. Data keys
// arrive with the upload and are persisted wrapped under the master key;
// they are unwrapped only to serve an authorized download.
type FileService struct {
	repos     repository.Manager
	blobs     storage.BlobStore
	masterKey []byte
}

func NewFileService(repos repository.Manager, blobs storage.BlobStore, masterKey []byte) *FileService {
	return &FileService{repos: repos, blobs: blobs, masterKey: masterKey}
}

// Upload persists ciphertext and metadata. size is the plaintext size
// reported by the uploader, kept as display metadata.
func (s *FileService) Upload(ctx context.Context, owner *models.User, name string, ciphertext io.Reader, dataKey []byte, size int64, contentType string) (*models.File, error) {
	if len(dataKey) != cryptox.KeySize {
		return nil, fmt.Errorf("data key has size %d, want %d", len(dataKey), cryptox.KeySize)
	}

	wrapped, err := cryptox.WrapKey(dataKey, s.masterKey)
	if err != nil {
		return nil, fmt.Errorf("wrapping data key: %w", err)
	}

	file := &models.File{
		ID:          uuid.NewString(),
		OwnerID:     owner.ID,
		Name:        name,
		Size:        size,
		ContentType: contentType,
		WrappedKey:  wrapped,
	}
	file.ObjectKey = fmt.Sprintf("uploads/%d/%s", owner.ID, file.ID)

	if err := s.blobs.Upload(ctx, file.ObjectKey, ciphertext, -1); err != nil {
		return nil, fmt.Errorf("storing blob: %w", err)
	}

	if err := s.repos.Files().Create(ctx, file); err != nil {
		// Metadata write failed; do not leave the blob orphaned.
		_ = s.blobs.Delete(ctx, file.ObjectKey)
		return nil, fmt.Errorf("storing file metadata: %w", err)
	}

	s.audit(ctx, owner.ID, file.ID, models.AuditUpload)

	created, err := s.repos.Files().GetByID(ctx, file.ID)
	if err != nil {
		return file, nil
	}
	return created, nil
}

// List returns the files the user owns plus the files shared with them,
// newest first.
func (s *FileService) List(ctx context.Context, userID int64) ([]*models.File, error) {
	return s.repos.Files().ListVisible(ctx, userID)
}

// Get loads file metadata without an access check.
func (s *FileService) Get(ctx context.Context, id string) (*models.File, error) {
	return s.repos.Files().GetByID(ctx, id)
}

// Delete removes a file, its blob, and all shares and links pointing at it.
// Only the owner or an admin may delete.
func (s *FileService) Delete(ctx context.Context, user *models.User, fileID string) error {
	file, err := s.repos.Files().GetByID(ctx, fileID)
	if err != nil {
		return err
	}
	if file.OwnerID != user.ID && !user.IsAdmin() {
		return common.ErrorForbidden
	}

	if err := s.repos.Shares().DeleteByFile(ctx, fileID); err != nil {
		return err
	}
	if err := s.repos.Links().DeleteByFile(ctx, fileID); err != nil {
		return err
	}
	if err := s.repos.Files().Delete(ctx, fileID); err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, file.ObjectKey); err != nil {
		return fmt.Errorf("deleting blob: %w", err)
	}

	s.audit(ctx, user.ID, fileID, models.AuditDelete)
	return nil
}

// Download serves the ciphertext and the unwrapped data key to a user who
// may download the file: its owner, an admin, or the recipient of a share
// with download permission. A view-only share yields ErrorForbidden; no
// share at all yields ErrorNotFound so file ids are not probeable.
func (s *FileService) Download(ctx context.Context, user *models.User, fileID string) (*models.File, []byte, []byte, error) {
	file, err := s.repos.Files().GetByID(ctx, fileID)
	if err != nil {
		return nil, nil, nil, err
	}

	if file.OwnerID != user.ID && !user.IsAdmin() {
		share, err := s.repos.Shares().GetByFileAndRecipient(ctx, fileID, user.ID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil, nil, nil, common.ErrorNotFound
			}
			return nil, nil, nil, err
		}
		if share.Permission != models.PermissionDownload {
			return nil, nil, nil, common.ErrorForbidden
		}
	}

	content, key, err := s.open(ctx, file)
	if err != nil {
		return nil, nil, nil, err
	}

	s.audit(ctx, user.ID, file.ID, models.AuditDownload)
	return file, content, key, nil
}

// OpenForLink reads the ciphertext and unwrapped key for link resolution.
// Link-level checks (expiry, access limits) are the caller's concern.
func (s *FileService) OpenForLink(ctx context.Context, file *models.File) ([]byte, []byte, error) {
	return s.open(ctx, file)
}

func (s *FileService) open(ctx context.Context, file *models.File) ([]byte, []byte, error) {
	rc, err := s.blobs.Download(ctx, file.ObjectKey)
	if err != nil {
		return nil, nil, fmt.Errorf("reading blob: %w", err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, nil, fmt.Errorf("reading blob: %w", err)
	}

	key, err := cryptox.UnwrapKey(file.WrappedKey, s.masterKey)
	if err != nil {
		return nil, nil, err
	}
	return content, key, nil
}

// Decrypt returns the plaintext of a file, for server-side link downloads.
func (s *FileService) Decrypt(content, key []byte) ([]byte, error) {
	return cryptox.Decrypt(content, key)
}

func (s *FileService) audit(ctx context.Context, userID int64, fileID, action string) {
	// Audit failures never fail the operation.
	_ = s.repos.Audit().Record(ctx, &models.AuditEntry{UserID: userID, FileID: fileID, Action: action})
}
