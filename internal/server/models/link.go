package models

import "time"

// Link is an unauthenticated, expiring grant to one file. MaxAccess of zero
// means unlimited; AccessCount counts successful resolutions.
type Link struct {
	ID          string
	FileID      string
	OwnerID     int64
	Permission  string
	ExpiresAt   time.Time
	MaxAccess   int
	AccessCount int
	CreatedAt   time.Time
}

// Exhausted reports whether the link has reached its access limit.
func (l *Link) Exhausted() bool {
	return l.MaxAccess > 0 && l.AccessCount >= l.MaxAccess
}

// Expired reports whether the link is past its expiry at the given instant.
func (l *Link) Expired(now time.Time) bool {
	return now.After(l.ExpiresAt)
}
