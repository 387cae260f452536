package models

import "time"

const (
	PermissionView     = "view"
	PermissionDownload = "download"
)

// Share grants one recipient access to one file. At most one share exists
// per (file, recipient) pair.
type Share struct {
	ID          string
	FileID      string
	OwnerID     int64
	RecipientID int64
	Permission  string
	CreatedAt   time.Time
}
