// Package cli is the interactive front end of the file-share client. It
// only renders store state and dispatches store actions; all behavior lives
// in the session, files, and shares stores.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/avolkov/fileshare/internal/client/api"
	"github.com/avolkov/fileshare/internal/client/config"
	"github.com/avolkov/fileshare/internal/client/files"
	"github.com/avolkov/fileshare/internal/client/session"
	"github.com/avolkov/fileshare/internal/client/shares"
	"github.com/avolkov/fileshare/internal/client/tokenstore"
)

type App struct {
	config  *config.Config
	api     *api.Client
	session *session.Store
	files   *files.Store
	shares  *shares.Store

	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	tokens, err := tokenstore.Open(c.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("opening token store: %w", err)
	}

	apiClient := api.New(c.ServerURL, tokens)
	sess := session.New(apiClient, tokens)

	a := &App{
		config:  c,
		api:     apiClient,
		session: sess,
		files:   files.New(apiClient),
		shares:  shares.New(apiClient),
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}

	// Any protected request failing with an invalid token tears the session
	// down; the observer is idempotent so overlapping requests are fine.
	apiClient.OnUnauthorized(func() {
		if sess.Snapshot().IsAuthenticated {
			fmt.Fprintln(a.out, "Session expired, please log in again")
		}
		sess.Logout()
	})

	return a, nil
}

func (a *App) isLoggedIn() bool {
	return a.session.Snapshot().IsAuthenticated
}

// status renders the REPL prompt segment for the current session state.
func (a *App) status() string {
	snap := a.session.Snapshot()
	switch {
	case snap.IsAuthenticated:
		return snap.User.Username
	case snap.State == session.StateRestoring:
		return "restoring"
	default:
		return "not logged in"
	}
}

func (a *App) Run(ctx context.Context) {
	// A token persisted from a previous run is validated before the first
	// prompt; failure silently returns to anonymous.
	if a.session.Snapshot().State == session.StateRestoring {
		if err := a.session.Restore(ctx); err == nil {
			if u := a.session.Snapshot().User; u != nil {
				fmt.Fprintf(a.out, "Welcome back, %s\n", u.Username)
			}
		}
	}

	runREPL(ctx, a, a.status, bufio.NewScanner(os.Stdin), a.out)
}
