package cli

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/avolkov/fileshare/internal/client/api"
	"github.com/avolkov/fileshare/internal/client/shares"
)

type fakeShareAPI struct {
	rec *api.ShareRecord
}

func (f *fakeShareAPI) CreateShare(ctx context.Context, fileID, username string, permission api.Permission) (*api.ShareRecord, error) {
	return f.rec, nil
}
func (f *fakeShareAPI) ListShares(ctx context.Context) ([]api.ShareRecord, error) { return nil, nil }
func (f *fakeShareAPI) DeleteShare(ctx context.Context, id string) error          { return nil }
func (f *fakeShareAPI) CreateLink(ctx context.Context, fileID string, expiresAt time.Time, permission api.Permission) (*api.ShareLink, error) {
	return nil, nil
}
func (f *fakeShareAPI) ListLinks(ctx context.Context) ([]api.ShareLink, error) { return nil, nil }
func (f *fakeShareAPI) DeleteLink(ctx context.Context, id string) error        { return nil }

func TestShare_PrintsRecipientUsername(t *testing.T) {
	rec := &api.ShareRecord{
		ID:         "s1",
		File:       api.FileRecord{ID: "f1", Name: "notes.txt"},
		SharedWith: api.User{ID: 2, Username: "bob"},
		Permission: api.PermissionView,
	}
	var out bytes.Buffer
	a := &App{
		shares: shares.New(&fakeShareAPI{rec: rec}),
		reader: bufio.NewReader(strings.NewReader("f1\nbob\nview\n")),
		out:    &out,
	}

	require.NoError(t, a.Share(context.Background()))
	require.Contains(t, out.String(), "Shared notes.txt with bob (view)")
}
