package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avolkov/fileshare/internal/common"
	"github.com/avolkov/fileshare/internal/server/models"
)

func TestShareService_CreateResolvesRecipient(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	file := f.uploadEncrypted(t, f.alice, "notes.txt", []byte("x"))

	info, err := f.shares.Create(ctx, f.alice, file.ID, "bob", models.PermissionDownload)
	require.NoError(t, err)
	require.Equal(t, file.ID, info.Share.FileID)
	require.Equal(t, f.bob.ID, info.Share.RecipientID)
	require.Equal(t, "bob", info.Recipient.Username)
	require.Equal(t, "notes.txt", info.File.Name)
}

func TestShareService_CreateRejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	file := f.uploadEncrypted(t, f.alice, "notes.txt", []byte("x"))

	// Unknown recipient.
	_, err := f.shares.Create(ctx, f.alice, file.ID, "nobody", models.PermissionView)
	require.ErrorIs(t, err, common.ErrorNotFound)

	// Not the owner.
	_, err = f.shares.Create(ctx, f.bob, file.ID, "bob", models.PermissionView)
	require.ErrorIs(t, err, common.ErrorForbidden)

	// Self-share.
	_, err = f.shares.Create(ctx, f.alice, file.ID, "alice", models.PermissionView)
	require.ErrorIs(t, err, common.ErrorAlreadyExists)

	// Duplicate recipient.
	_, err = f.shares.Create(ctx, f.alice, file.ID, "bob", models.PermissionView)
	require.NoError(t, err)
	_, err = f.shares.Create(ctx, f.alice, file.ID, "bob", models.PermissionDownload)
	require.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestShareService_ListReceived(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	file := f.uploadEncrypted(t, f.alice, "notes.txt", []byte("x"))
	_, err := f.shares.Create(ctx, f.alice, file.ID, "bob", models.PermissionView)
	require.NoError(t, err)

	received, err := f.shares.ListReceived(ctx, f.bob)
	require.NoError(t, err)
	require.Len(t, received, 1)
	require.Equal(t, "notes.txt", received[0].File.Name)
	require.Equal(t, models.PermissionView, received[0].Share.Permission)

	// The owner has received nothing.
	received, err = f.shares.ListReceived(ctx, f.alice)
	require.NoError(t, err)
	require.Empty(t, received)
}

func TestShareService_DeleteOwnerOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	file := f.uploadEncrypted(t, f.alice, "notes.txt", []byte("x"))
	info, err := f.shares.Create(ctx, f.alice, file.ID, "bob", models.PermissionView)
	require.NoError(t, err)

	// The recipient cannot revoke the grant.
	require.ErrorIs(t, f.shares.Delete(ctx, f.bob, info.Share.ID), common.ErrorForbidden)

	require.NoError(t, f.shares.Delete(ctx, f.alice, info.Share.ID))
	require.ErrorIs(t, f.shares.Delete(ctx, f.alice, info.Share.ID), common.ErrorNotFound)
}
