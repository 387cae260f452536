package rest

import (
	"fmt"
	"time"

	"github.com/avolkov/fileshare/internal/server/models"
	"github.com/avolkov/fileshare/internal/server/service"
)

// The response shapes below are the API contract consumed by the client.

type userDTO struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type fileDTO struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type,omitempty"`
	UploadedAt  time.Time `json:"uploaded_at"`
	DownloadURL string    `json:"download_url,omitempty"`
}

type shareDTO struct {
	ID         string    `json:"id"`
	File       fileDTO   `json:"file"`
	SharedWith userDTO   `json:"shared_with"`
	Permission string    `json:"permission"`
	CreatedAt  time.Time `json:"created_at"`
}

type linkDTO struct {
	ID          string    `json:"id"`
	FileID      string    `json:"file_id"`
	ExpiresAt   time.Time `json:"expires_at"`
	Permission  string    `json:"permission"`
	AccessCount int       `json:"access_count"`
	URL         string    `json:"url,omitempty"`
}

func toUserDTO(u *models.User) userDTO {
	return userDTO{ID: u.ID, Username: u.Username, Email: u.Email}
}

func (h *Handler) toFileDTO(f *models.File) fileDTO {
	return fileDTO{
		ID:          f.ID,
		Name:        f.Name,
		Size:        f.Size,
		ContentType: f.ContentType,
		UploadedAt:  f.CreatedAt,
		DownloadURL: fmt.Sprintf("%s/api/files/%s/download/", h.baseURL, f.ID),
	}
}

func (h *Handler) toShareDTO(info *service.ShareInfo) shareDTO {
	return shareDTO{
		ID:         info.Share.ID,
		File:       h.toFileDTO(info.File),
		SharedWith: toUserDTO(info.Recipient),
		Permission: info.Share.Permission,
		CreatedAt:  info.Share.CreatedAt,
	}
}

func (h *Handler) toLinkDTO(l *models.Link) linkDTO {
	return linkDTO{
		ID:          l.ID,
		FileID:      l.FileID,
		ExpiresAt:   l.ExpiresAt,
		Permission:  l.Permission,
		AccessCount: l.AccessCount,
		URL:         fmt.Sprintf("%s/api/links/%s/download/", h.baseURL, l.ID),
	}
}
