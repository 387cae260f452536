package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
)

// ListFiles fetches all files owned by or shared with the current user, in
// the order the server returns them.
func (c *Client) ListFiles(ctx context.Context) ([]FileRecord, error) {
	var files []FileRecord
	if err := c.doJSON(ctx, "GET", filesPath, nil, &files, "Failed to fetch files"); err != nil {
		return nil, err
	}
	return files, nil
}

// UploadFile submits already-encrypted content together with the per-file
// data key. The size argument is the plaintext size, kept as display
// metadata. The response is the canonical record shape used by ListFiles.
func (c *Client) UploadFile(ctx context.Context, name string, content, key []byte, size int64, contentType string) (*FileRecord, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("name", name); err != nil {
		return nil, err
	}
	if err := w.WriteField("key", base64.StdEncoding.EncodeToString(key)); err != nil {
		return nil, err
	}
	if err := w.WriteField("size", strconv.FormatInt(size, 10)); err != nil {
		return nil, err
	}
	if err := w.WriteField("content_type", contentType); err != nil {
		return nil, err
	}
	part, err := w.CreateFormFile("file", name)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(content); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	resp, err := c.doRaw(ctx, "POST", filesPath, &buf, w.FormDataContentType(), "Failed to upload file")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var rec FileRecord
	if err := decodeJSONBody(resp, &rec); err != nil {
		return nil, fmt.Errorf("Failed to upload file: %w", err)
	}
	return &rec, nil
}

// DeleteFile removes a file by id.
func (c *Client) DeleteFile(ctx context.Context, id string) error {
	return c.doJSON(ctx, "DELETE", filesPath+id+"/", nil, nil, "Failed to delete file")
}

// DownloadFile fetches a file's ciphertext and its data key. The caller is
// responsible for decrypting with cryptox.Decrypt.
func (c *Client) DownloadFile(ctx context.Context, id string) (content, key []byte, err error) {
	resp, err := c.doRaw(ctx, "GET", filesPath+id+"/download/", nil, "", "Failed to download file")
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	content, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("Failed to download file: %w", err)
	}

	encoded := resp.Header.Get("X-Encryption-Key")
	if encoded == "" {
		return nil, nil, fmt.Errorf("Failed to download file: missing encryption key header")
	}
	key, err = base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, nil, fmt.Errorf("Failed to download file: bad encryption key header: %w", err)
	}
	return content, key, nil
}

// ResolveLink performs the unauthenticated public-link download and returns
// the plaintext content and the filename advertised by the server. The
// filename is reduced to its base component; the server does not get to pick
// where the caller writes.
func (c *Client) ResolveLink(ctx context.Context, linkID string) (name string, content []byte, err error) {
	resp, err := c.doRaw(ctx, "GET", linksPath+linkID+"/download/", nil, "", "Failed to resolve link")
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	content, err = io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("Failed to resolve link: %w", err)
	}

	name = "download"
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			if base := sanitizeFilename(params["filename"]); base != "" {
				name = base
			}
		}
	}
	return name, content, nil
}

// sanitizeFilename strips any directory part from a server-supplied filename.
// Both separator styles are treated as separators regardless of platform.
// Returns "" when nothing usable remains.
func sanitizeFilename(raw string) string {
	base := filepath.Base(strings.ReplaceAll(raw, `\`, "/"))
	if base == "." || base == ".." || base == "/" {
		return ""
	}
	return base
}

func decodeJSONBody(resp *http.Response, out any) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
