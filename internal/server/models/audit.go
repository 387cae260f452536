package models

import "time"

const (
	AuditUpload     = "upload"
	AuditDownload   = "download"
	AuditDelete     = "delete"
	AuditShare      = "share"
	AuditLinkAccess = "link_access"
)

// AuditEntry records a file-affecting action. UserID is zero for anonymous
// link accesses.
type AuditEntry struct {
	ID        int64
	UserID    int64
	FileID    string
	Action    string
	CreatedAt time.Time
}
