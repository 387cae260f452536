package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avolkov/fileshare/internal/common"
	"github.com/avolkov/fileshare/internal/cryptox"
	"github.com/avolkov/fileshare/internal/server/models"
	"github.com/avolkov/fileshare/internal/server/repository"
	"github.com/avolkov/fileshare/internal/server/storage"
)

type fixture struct {
	repos  *repository.MemoryManager
	blobs  *storage.MemoryStore
	users  *UserService
	files  *FileService
	shares *ShareService
	links  *LinkService

	alice *models.User
	bob   *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	repos := repository.NewMemoryManager()
	blobs := storage.NewMemoryStore()
	masterKey := cryptox.DeriveMasterKey([]byte("test-secret"), []byte("fileshare-master-key"))

	f := &fixture{
		repos: repos,
		blobs: blobs,
		users: NewUserService(repos.Users(), testConfig()),
		files: NewFileService(repos, blobs, masterKey),
	}
	f.shares = NewShareService(repos)
	f.links = NewLinkService(repos, f.files)

	var err error
	f.alice, err = f.users.Register(ctx, "alice", "alice@example.com", "Secret123")
	require.NoError(t, err)
	f.bob, err = f.users.Register(ctx, "bob", "bob@example.com", "Secret123")
	require.NoError(t, err)

	return f
}

// uploadEncrypted encrypts plaintext client-side and uploads it, returning
// the stored file.
func (f *fixture) uploadEncrypted(t *testing.T, owner *models.User, name string, plaintext []byte) *models.File {
	t.Helper()
	ctx := context.Background()

	key := cryptox.NewDataKey()
	blob, err := cryptox.Encrypt(plaintext, key)
	require.NoError(t, err)

	file, err := f.files.Upload(ctx, owner, name, bytes.NewReader(blob), key, int64(len(plaintext)), "text/plain")
	require.NoError(t, err)
	return file
}

func TestFileService_UploadStoresWrappedKey(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	file := f.uploadEncrypted(t, f.alice, "notes.txt", []byte("hello"))
	require.NotEmpty(t, file.ID)
	require.Equal(t, f.alice.ID, file.OwnerID)
	require.Equal(t, int64(5), file.Size)

	// The persisted key is wrapped, not the raw data key.
	stored, err := f.repos.Files().GetByID(ctx, file.ID)
	require.NoError(t, err)
	require.NotEmpty(t, stored.WrappedKey)
	require.NotEqual(t, cryptox.KeySize, len(stored.WrappedKey))

	rc, err := f.blobs.Download(ctx, stored.ObjectKey)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
}

func TestFileService_DownloadByOwnerRoundTrips(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	file := f.uploadEncrypted(t, f.alice, "notes.txt", []byte("hello world"))

	_, content, key, err := f.files.Download(ctx, f.alice, file.ID)
	require.NoError(t, err)

	plaintext, err := cryptox.Decrypt(content, key)
	require.NoError(t, err)
	require.Equal(t, []byte("hello world"), plaintext)
}

func TestFileService_DownloadPermissions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	file := f.uploadEncrypted(t, f.alice, "notes.txt", []byte("hello"))

	// A stranger sees not-found, not forbidden.
	_, _, _, err := f.files.Download(ctx, f.bob, file.ID)
	require.ErrorIs(t, err, common.ErrorNotFound)

	// A view-only share is not enough to download.
	_, err = f.shares.Create(ctx, f.alice, file.ID, "bob", models.PermissionView)
	require.NoError(t, err)
	_, _, _, err = f.files.Download(ctx, f.bob, file.ID)
	require.ErrorIs(t, err, common.ErrorForbidden)
}

func TestFileService_DownloadViaShare(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	file := f.uploadEncrypted(t, f.alice, "notes.txt", []byte("for bob"))

	_, err := f.shares.Create(ctx, f.alice, file.ID, "bob", models.PermissionDownload)
	require.NoError(t, err)

	_, content, key, err := f.files.Download(ctx, f.bob, file.ID)
	require.NoError(t, err)

	plaintext, err := cryptox.Decrypt(content, key)
	require.NoError(t, err)
	require.Equal(t, []byte("for bob"), plaintext)
}

func TestFileService_ListVisible(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	mine := f.uploadEncrypted(t, f.alice, "mine.txt", []byte("a"))
	theirs := f.uploadEncrypted(t, f.bob, "theirs.txt", []byte("b"))
	f.uploadEncrypted(t, f.bob, "private.txt", []byte("c"))

	_, err := f.shares.Create(ctx, f.bob, theirs.ID, "alice", models.PermissionView)
	require.NoError(t, err)

	files, err := f.files.List(ctx, f.alice.ID)
	require.NoError(t, err)
	require.Len(t, files, 2)

	ids := []string{files[0].ID, files[1].ID}
	require.Contains(t, ids, mine.ID)
	require.Contains(t, ids, theirs.ID)
}

func TestFileService_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	file := f.uploadEncrypted(t, f.alice, "notes.txt", []byte("x"))

	_, err := f.shares.Create(ctx, f.alice, file.ID, "bob", models.PermissionDownload)
	require.NoError(t, err)

	// Bob cannot delete Alice's file.
	require.ErrorIs(t, f.files.Delete(ctx, f.bob, file.ID), common.ErrorForbidden)

	objectKey := file.ObjectKey
	require.NoError(t, f.files.Delete(ctx, f.alice, file.ID))

	_, err = f.repos.Files().GetByID(ctx, file.ID)
	require.ErrorIs(t, err, common.ErrorNotFound)

	shares, err := f.repos.Shares().ListByRecipient(ctx, f.bob.ID)
	require.NoError(t, err)
	require.Empty(t, shares)

	_, err = f.blobs.Download(ctx, objectKey)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestFileService_AuditTrail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	file := f.uploadEncrypted(t, f.alice, "notes.txt", []byte("x"))
	_, _, _, err := f.files.Download(ctx, f.alice, file.ID)
	require.NoError(t, err)

	entries, err := f.repos.Audit().ListByFile(ctx, file.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, models.AuditUpload, entries[0].Action)
	require.Equal(t, models.AuditDownload, entries[1].Action)
}
