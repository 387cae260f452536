package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/avolkov/fileshare/internal/common"
	"github.com/avolkov/fileshare/internal/server/models"
)

func TestMemoryUsers_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryManager()

	u, err := m.Users().Create(ctx, &models.User{Username: "alice", Email: "alice@example.com", Role: models.RoleUser})
	require.NoError(t, err)
	require.NotZero(t, u.ID)

	byName, err := m.Users().GetByLogin(ctx, "ALICE")
	require.NoError(t, err)
	require.Equal(t, u.ID, byName.ID)

	byEmail, err := m.Users().GetByLogin(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, byEmail.ID)

	_, err = m.Users().GetByLogin(ctx, "nobody")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemoryUsers_DuplicateRejected(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryManager()

	_, err := m.Users().Create(ctx, &models.User{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)

	_, err = m.Users().Create(ctx, &models.User{Username: "Alice", Email: "other@example.com"})
	require.ErrorIs(t, err, common.ErrorAlreadyExists)

	_, err = m.Users().Create(ctx, &models.User{Username: "bob", Email: "Alice@example.com"})
	require.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestMemoryUsers_Update(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryManager()

	u, err := m.Users().Create(ctx, &models.User{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)

	u.OTPSecret = "SECRET"
	u.OTPEnabled = true
	require.NoError(t, m.Users().Update(ctx, u))

	got, err := m.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, got.OTPEnabled)
	require.Equal(t, "SECRET", got.OTPSecret)
}

func TestMemoryFiles_ListVisible(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryManager()

	now := time.Now()
	require.NoError(t, m.Files().Create(ctx, &models.File{ID: "f1", OwnerID: 1, Name: "old.txt", CreatedAt: now.Add(-time.Hour)}))
	require.NoError(t, m.Files().Create(ctx, &models.File{ID: "f2", OwnerID: 1, Name: "new.txt", CreatedAt: now}))
	require.NoError(t, m.Files().Create(ctx, &models.File{ID: "f3", OwnerID: 2, Name: "theirs.txt", CreatedAt: now.Add(-time.Minute)}))

	// File f3 is shared with user 1.
	require.NoError(t, m.Shares().Create(ctx, &models.Share{ID: "s1", FileID: "f3", OwnerID: 2, RecipientID: 1, Permission: models.PermissionView}))

	files, err := m.Files().ListVisible(ctx, 1)
	require.NoError(t, err)
	require.Len(t, files, 3)
	require.Equal(t, "f2", files[0].ID, "newest first")
	require.Equal(t, "f3", files[1].ID)
	require.Equal(t, "f1", files[2].ID)

	files, err = m.Files().ListVisible(ctx, 2)
	require.NoError(t, err)
	require.Len(t, files, 1)
}

func TestMemoryShares_UniquePerFileAndRecipient(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryManager()

	require.NoError(t, m.Shares().Create(ctx, &models.Share{ID: "s1", FileID: "f1", RecipientID: 2}))
	err := m.Shares().Create(ctx, &models.Share{ID: "s2", FileID: "f1", RecipientID: 2})
	require.ErrorIs(t, err, common.ErrorAlreadyExists)

	require.NoError(t, m.Shares().Create(ctx, &models.Share{ID: "s3", FileID: "f1", RecipientID: 3}))
}

func TestMemoryShares_DeleteByFile(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryManager()

	require.NoError(t, m.Shares().Create(ctx, &models.Share{ID: "s1", FileID: "f1", RecipientID: 2}))
	require.NoError(t, m.Shares().Create(ctx, &models.Share{ID: "s2", FileID: "f2", RecipientID: 2}))

	require.NoError(t, m.Shares().DeleteByFile(ctx, "f1"))

	_, err := m.Shares().GetByID(ctx, "s1")
	require.ErrorIs(t, err, common.ErrorNotFound)
	_, err = m.Shares().GetByID(ctx, "s2")
	require.NoError(t, err)
}

func TestMemoryLinks_IncrementAccess(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryManager()

	require.NoError(t, m.Links().Create(ctx, &models.Link{ID: "l1", FileID: "f1", OwnerID: 1}))
	require.NoError(t, m.Links().IncrementAccess(ctx, "l1"))
	require.NoError(t, m.Links().IncrementAccess(ctx, "l1"))

	l, err := m.Links().GetByID(ctx, "l1")
	require.NoError(t, err)
	require.Equal(t, 2, l.AccessCount)

	require.ErrorIs(t, m.Links().IncrementAccess(ctx, "missing"), common.ErrorNotFound)
}

func TestMemoryAudit_Record(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryManager()

	require.NoError(t, m.Audit().Record(ctx, &models.AuditEntry{UserID: 1, FileID: "f1", Action: models.AuditUpload}))
	require.NoError(t, m.Audit().Record(ctx, &models.AuditEntry{UserID: 2, FileID: "f1", Action: models.AuditDownload}))
	require.NoError(t, m.Audit().Record(ctx, &models.AuditEntry{UserID: 1, FileID: "f2", Action: models.AuditUpload}))

	entries, err := m.Audit().ListByFile(ctx, "f1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, models.AuditUpload, entries[0].Action)
	require.Equal(t, models.AuditDownload, entries[1].Action)
}
