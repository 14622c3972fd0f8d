package model

import "time"

type TargetType string

const (
	TargetFile   TargetType = "FILE"
	TargetFolder TargetType = "FOLDER"
)

// ShareLink is a bearer token granting bounded access to one file or one folder.
type ShareLink struct {
	ID             string     `json:"id"`
	Token          string     `json:"-"`
	TargetType     TargetType `json:"target_type"`
	TargetID       string     `json:"target_id"`
	RoomID         string     `json:"room_id"`
	CreatedBy      string     `json:"created_by"`
	RecipientEmail string     `json:"recipient_email,omitempty"`
	RecipientName  string     `json:"recipient_name,omitempty"`
	Message        string     `json:"message,omitempty"`
	IsActive       bool       `json:"is_active"`
	MaxViews       *int       `json:"max_views,omitempty"`
	CurrentViews   int        `json:"current_views"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	PasswordHash   string     `json:"-"`
	AllowDownload  bool       `json:"allow_download"`
	AllowPrint     bool       `json:"allow_print"`
	RequireAuth    bool       `json:"require_auth"`
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	RevokedAt      *time.Time `json:"revoked_at,omitempty"`
	RevokedBy      string     `json:"revoked_by,omitempty"`
}

// HasPassword reports whether the link is protected by a secret.
func (l *ShareLink) HasPassword() bool {
	return l.PasswordHash != ""
}

// Directed reports whether the link was issued to a named recipient.
func (l *ShareLink) Directed() bool {
	return l.RecipientEmail != ""
}
