package api

import (
	"context"
	"time"
)

type createShareRequest struct {
	FileID             string     `json:"file_id"`
	SharedWithUsername string     `json:"shared_with_username"`
	Permission         Permission `json:"permission"`
}

type createLinkRequest struct {
	FileID     string     `json:"file_id"`
	ExpiresAt  time.Time  `json:"expires_at"`
	Permission Permission `json:"permission"`
}

// CreateShare grants a named recipient access to one of the caller's files.
func (c *Client) CreateShare(ctx context.Context, fileID, username string, permission Permission) (*ShareRecord, error) {
	var rec ShareRecord
	req := createShareRequest{FileID: fileID, SharedWithUsername: username, Permission: permission}
	if err := c.doJSON(ctx, "POST", sharesPath, req, &rec, "Failed to share file"); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListShares returns the shares granted to the current user by others.
func (c *Client) ListShares(ctx context.Context) ([]ShareRecord, error) {
	var shares []ShareRecord
	if err := c.doJSON(ctx, "GET", sharesPath, nil, &shares, "Failed to fetch shared files"); err != nil {
		return nil, err
	}
	return shares, nil
}

// DeleteShare revokes a direct share. Only the file owner may do this.
func (c *Client) DeleteShare(ctx context.Context, id string) error {
	return c.doJSON(ctx, "DELETE", sharesPath+id+"/", nil, nil, "Failed to revoke share")
}

// CreateLink creates an expiring shareable link for a file.
func (c *Client) CreateLink(ctx context.Context, fileID string, expiresAt time.Time, permission Permission) (*ShareLink, error) {
	var link ShareLink
	req := createLinkRequest{FileID: fileID, ExpiresAt: expiresAt, Permission: permission}
	if err := c.doJSON(ctx, "POST", linksPath, req, &link, "Failed to create shareable link"); err != nil {
		return nil, err
	}
	return &link, nil
}

// ListLinks returns the caller's own shareable links.
func (c *Client) ListLinks(ctx context.Context) ([]ShareLink, error) {
	var links []ShareLink
	if err := c.doJSON(ctx, "GET", linksPath, nil, &links, "Failed to fetch links"); err != nil {
		return nil, err
	}
	return links, nil
}

// DeleteLink removes a shareable link, revoking access for anyone holding it.
func (c *Client) DeleteLink(ctx context.Context, id string) error {
	return c.doJSON(ctx, "DELETE", linksPath+id+"/", nil, nil, "Failed to delete link")
}
