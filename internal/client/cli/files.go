package cli

import (
	"context"
	"fmt"
	"os"
)

func (a *App) List(ctx context.Context) error {
	if err := a.files.List(ctx); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return err
	}

	snap := a.files.Snapshot()
	if len(snap.Files) == 0 {
		fmt.Fprintln(a.out, "No files yet")
		return nil
	}
	for _, f := range snap.Files {
		fmt.Fprintf(a.out, "%s  %-30s %10d  %s\n", f.ID, f.Name, f.Size, f.UploadedAt)
	}
	return nil
}

func (a *App) Upload(ctx context.Context) error {
	path, err := GetSimpleText(a.reader, "Enter path to local file", a.out)
	if err != nil {
		return err
	}
	contentType, err := GetSimpleText(a.reader, "Enter content type (blank for application/octet-stream)", a.out)
	if err != nil {
		return err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	rec, err := a.files.UploadPath(ctx, path, contentType)
	if err != nil {
		fmt.Fprintf(a.out, "Upload unsuccessful: %v\n", err)
		return err
	}
	fmt.Fprintf(a.out, "Uploaded %s (id %s)\n", rec.Name, rec.ID)
	return nil
}

func (a *App) Download(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Enter file id", a.out)
	if err != nil {
		return err
	}
	dest, err := GetSimpleText(a.reader, "Enter destination path", a.out)
	if err != nil {
		return err
	}

	plaintext, err := a.files.Download(ctx, id)
	if err != nil {
		fmt.Fprintf(a.out, "Download unsuccessful: %v\n", err)
		return err
	}
	if err := os.WriteFile(dest, plaintext, 0o600); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return err
	}
	fmt.Fprintf(a.out, "Saved %d bytes to %s\n", len(plaintext), dest)
	return nil
}

func (a *App) Delete(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Enter file id", a.out)
	if err != nil {
		return err
	}
	if err := a.files.Delete(ctx, id); err != nil {
		fmt.Fprintf(a.out, "Delete unsuccessful: %v\n", err)
		return err
	}
	fmt.Fprintln(a.out, "Deleted")
	return nil
}
