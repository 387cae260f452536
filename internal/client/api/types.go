package api

import "time"

// Permission scopes what the holder of a share or link may do with a file.
type Permission string

const (
	PermissionView     Permission = "view"
	PermissionDownload Permission = "download"
)

// User is the server's representation of an account, opaque to the client
// beyond display.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// FileRecord is the canonical file shape returned by both list and upload,
// so an upload response can be appended to a listed collection directly.
type FileRecord struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type,omitempty"`
	UploadedAt  time.Time `json:"uploaded_at"`
	DownloadURL string    `json:"download_url,omitempty"`
}

// ShareRecord is a grant of one file to a named recipient.
type ShareRecord struct {
	ID         string     `json:"id"`
	File       FileRecord `json:"file"`
	SharedWith User       `json:"shared_with"`
	Permission Permission `json:"permission"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ShareLink is a token-bearing URL granting time-limited access to one file
// without recipient authentication.
type ShareLink struct {
	ID          string     `json:"id"`
	FileID      string     `json:"file_id"`
	ExpiresAt   time.Time  `json:"expires_at"`
	Permission  Permission `json:"permission"`
	AccessCount int        `json:"access_count"`
	URL         string     `json:"url,omitempty"`
}

// LoginResult is the successful login payload.
type LoginResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// RegisterResult is the account-creation payload. A non-nil User signals
// that the account was created and an automatic login should follow.
type RegisterResult struct {
	Message string `json:"message"`
	User    *User  `json:"user"`
}
