package model

import "time"

type RoomStatus string

const (
	RoomStatusActive   RoomStatus = "ACTIVE"
	RoomStatusArchived RoomStatus = "ARCHIVED"
	RoomStatusClosed   RoomStatus = "CLOSED"
)

// Room carries the room-wide security policy that every capability is intersected with.
type Room struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	AllowDownload    bool       `json:"allow_download"`
	AllowPrint       bool       `json:"allow_print"`
	AllowCopyPaste   bool       `json:"allow_copy_paste"`
	WatermarkEnabled bool       `json:"watermark_enabled"`
	RequireNDA       bool       `json:"require_nda"`
	Status           RoomStatus `json:"status"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Open reports whether the room is active and not past its expiry at the given instant.
func (r *Room) Open(now time.Time) bool {
	if r.Status != RoomStatusActive {
		return false
	}
	return r.ExpiresAt == nil || now.Before(*r.ExpiresAt)
}
