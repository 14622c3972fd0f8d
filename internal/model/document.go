package model

import "time"

// File represents a stored document inside a room.
// This is a pure domain model with no database-specific dependencies or tags.
type File struct {
	ID          string    `json:"id"`
	RoomID      string    `json:"room_id"`
	FolderID    string    `json:"folder_id,omitempty"`
	Name        string    `json:"name"`
	StorageKey  string    `json:"-"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Checksum    string    `json:"checksum"`
	CreatedAt   time.Time `json:"created_at"`
}

// Folder is a node of a room's folder tree. Root folders have an empty ParentID.
type Folder struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"room_id"`
	ParentID  string    `json:"parent_id,omitempty"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
