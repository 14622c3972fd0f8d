package model

import "time"

// RenderArtifact is the durable scheduled-deletion record of a temporary watermarked rendition.
type RenderArtifact struct {
	ID          string     `json:"id"`
	StorageKey  string     `json:"storage_key"`
	FileID      string     `json:"file_id"`
	ViewerID    string     `json:"viewer_id"`
	RoomID      string     `json:"room_id"`
	Checksum    string     `json:"checksum"`
	DeleteAfter time.Time  `json:"delete_after"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
