package shares

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/avolkov/fileshare/internal/client/api"
)

type fakeSharesAPI struct {
	CreateShareRes *api.ShareRecord
	CreateShareErr error

	ListSharesRes []api.ShareRecord
	ListSharesErr error

	CreateLinkRes *api.ShareLink
	CreateLinkErr error

	ListLinksRes []api.ShareLink

	DeleteLinkErr  error
	DeleteShareErr error

	LastShareFileID   string
	LastShareUsername string
	LastSharePerm     api.Permission
	LastLinkExpires   time.Time
}

func (f *fakeSharesAPI) CreateShare(ctx context.Context, fileID, username string, permission api.Permission) (*api.ShareRecord, error) {
	f.LastShareFileID = fileID
	f.LastShareUsername = username
	f.LastSharePerm = permission
	return f.CreateShareRes, f.CreateShareErr
}

func (f *fakeSharesAPI) ListShares(ctx context.Context) ([]api.ShareRecord, error) {
	return f.ListSharesRes, f.ListSharesErr
}

func (f *fakeSharesAPI) DeleteShare(ctx context.Context, id string) error {
	return f.DeleteShareErr
}

func (f *fakeSharesAPI) CreateLink(ctx context.Context, fileID string, expiresAt time.Time, permission api.Permission) (*api.ShareLink, error) {
	f.LastLinkExpires = expiresAt
	return f.CreateLinkRes, f.CreateLinkErr
}

func (f *fakeSharesAPI) ListLinks(ctx context.Context) ([]api.ShareLink, error) {
	return f.ListLinksRes, nil
}

func (f *fakeSharesAPI) DeleteLink(ctx context.Context, id string) error {
	return f.DeleteLinkErr
}

func TestCreateLink_Appends(t *testing.T) {
	expires := time.Now().Add(7 * 24 * time.Hour)
	a := &fakeSharesAPI{CreateLinkRes: &api.ShareLink{ID: "l1", FileID: "f1", ExpiresAt: expires}}
	s := New(a)

	link, err := s.CreateLink(context.Background(), "f1", expires, api.PermissionDownload)
	require.NoError(t, err)
	require.Equal(t, "l1", link.ID)
	require.Equal(t, expires, a.LastLinkExpires)

	snap := s.Snapshot()
	require.Len(t, snap.Links, 1)
	require.Empty(t, snap.Error)
}

func TestCreateShare_PassesFields(t *testing.T) {
	a := &fakeSharesAPI{CreateShareRes: &api.ShareRecord{ID: "s1"}}
	s := New(a)

	_, err := s.CreateShare(context.Background(), "f1", "bob", api.PermissionView)
	require.NoError(t, err)
	require.Equal(t, "f1", a.LastShareFileID)
	require.Equal(t, "bob", a.LastShareUsername)
	require.Equal(t, api.PermissionView, a.LastSharePerm)
}

func TestCreateShare_ErrorSharedSlot(t *testing.T) {
	a := &fakeSharesAPI{CreateShareErr: &api.Error{Status: 404, Message: "User not found"}}
	s := New(a)

	_, err := s.CreateShare(context.Background(), "f1", "ghost", api.PermissionView)
	require.Error(t, err)

	snap := s.Snapshot()
	require.False(t, snap.Loading)
	require.Equal(t, "User not found", snap.Error)

	// A later successful link operation clears the shared error slot.
	a.CreateLinkRes = &api.ShareLink{ID: "l1"}
	_, err = s.CreateLink(context.Background(), "f1", time.Now(), api.PermissionView)
	require.NoError(t, err)
	require.Empty(t, s.Snapshot().Error)
}

func TestListReceived(t *testing.T) {
	a := &fakeSharesAPI{ListSharesRes: []api.ShareRecord{{ID: "s1"}, {ID: "s2"}}}
	s := New(a)

	require.NoError(t, s.ListReceived(context.Background()))
	require.Len(t, s.Snapshot().Received, 2)
}

func TestDeleteLink_RemovesFromCollection(t *testing.T) {
	a := &fakeSharesAPI{ListLinksRes: []api.ShareLink{{ID: "l1"}, {ID: "l2"}}}
	s := New(a)
	require.NoError(t, s.ListLinks(context.Background()))

	require.NoError(t, s.DeleteLink(context.Background(), "l1"))

	snap := s.Snapshot()
	require.Len(t, snap.Links, 1)
	require.Equal(t, "l2", snap.Links[0].ID)
}
