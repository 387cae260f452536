package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/avolkov/fileshare/internal/client/api"
)

func (a *App) promptPermission() (api.Permission, error) {
	p, err := GetSimpleText(a.reader, "Enter permission (view/download, blank for view)", a.out)
	if err != nil {
		return "", err
	}
	switch p {
	case "", "view":
		return api.PermissionView, nil
	case "download":
		return api.PermissionDownload, nil
	default:
		return "", fmt.Errorf("unknown permission %q", p)
	}
}

func (a *App) Share(ctx context.Context) error {
	fileID, err := GetSimpleText(a.reader, "Enter file id", a.out)
	if err != nil {
		return err
	}
	username, err := GetSimpleText(a.reader, "Enter recipient username", a.out)
	if err != nil {
		return err
	}
	permission, err := a.promptPermission()
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return err
	}

	rec, err := a.shares.CreateShare(ctx, fileID, username, permission)
	if err != nil {
		fmt.Fprintf(a.out, "Share unsuccessful: %v\n", err)
		return err
	}
	fmt.Fprintf(a.out, "Shared %s with %s (%s)\n", rec.File.Name, rec.SharedWith.Username, rec.Permission)
	return nil
}

func (a *App) SharedWithMe(ctx context.Context) error {
	if err := a.shares.ListReceived(ctx); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return err
	}

	snap := a.shares.Snapshot()
	if len(snap.Received) == 0 {
		fmt.Fprintln(a.out, "Nothing has been shared with you")
		return nil
	}
	for _, r := range snap.Received {
		fmt.Fprintf(a.out, "%s  %-30s %-10s %s\n", r.File.ID, r.File.Name, r.Permission, r.CreatedAt)
	}
	return nil
}

func (a *App) Link(ctx context.Context) error {
	fileID, err := GetSimpleText(a.reader, "Enter file id", a.out)
	if err != nil {
		return err
	}
	days, err := GetSimpleText(a.reader, "Enter expiry in days (blank for 7)", a.out)
	if err != nil {
		return err
	}
	n := 7
	if days != "" {
		n, err = strconv.Atoi(days)
		if err != nil || n <= 0 {
			fmt.Fprintln(a.out, "Expiry must be a positive number of days")
			return fmt.Errorf("invalid expiry %q", days)
		}
	}
	permission, err := a.promptPermission()
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return err
	}

	link, err := a.shares.CreateLink(ctx, fileID, time.Now().AddDate(0, 0, n), permission)
	if err != nil {
		fmt.Fprintf(a.out, "Link unsuccessful: %v\n", err)
		return err
	}
	fmt.Fprintf(a.out, "Link created: %s (expires %s)\n", link.URL, link.ExpiresAt)
	return nil
}

func (a *App) Links(ctx context.Context) error {
	if err := a.shares.ListLinks(ctx); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return err
	}

	snap := a.shares.Snapshot()
	if len(snap.Links) == 0 {
		fmt.Fprintln(a.out, "No links yet")
		return nil
	}
	for _, l := range snap.Links {
		fmt.Fprintf(a.out, "%s  file %s  %-10s expires %s  used %d times\n",
			l.ID, l.FileID, l.Permission, l.ExpiresAt, l.AccessCount)
	}
	return nil
}

func (a *App) Unlink(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Enter link id", a.out)
	if err != nil {
		return err
	}
	if err := a.shares.DeleteLink(ctx, id); err != nil {
		fmt.Fprintf(a.out, "Revoke unsuccessful: %v\n", err)
		return err
	}
	fmt.Fprintln(a.out, "Link revoked")
	return nil
}

// Resolve downloads a file through a public link. It works without a
// session, so it talks to the REST client directly rather than through the
// files store.
func (a *App) Resolve(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Enter link id", a.out)
	if err != nil {
		return err
	}

	name, content, err := a.api.ResolveLink(ctx, id)
	if err != nil {
		fmt.Fprintf(a.out, "Resolve unsuccessful: %v\n", err)
		return err
	}
	if err := os.WriteFile(name, content, 0o600); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return err
	}
	fmt.Fprintf(a.out, "Saved %s (%d bytes)\n", name, len(content))
	return nil
}
