package model

import "time"

type AccessRequestStatus string

const (
	AccessRequestPending  AccessRequestStatus = "PENDING"
	AccessRequestApproved AccessRequestStatus = "APPROVED"
	AccessRequestDenied   AccessRequestStatus = "DENIED"
)

type ReviewDecision string

const (
	DecisionApprove ReviewDecision = "APPROVE"
	DecisionDeny    ReviewDecision = "DENY"
)

// AccessRequest is a user's request to join a room (or one of its folders).
// It is terminal once reviewed.
type AccessRequest struct {
	ID          string              `json:"id"`
	UserID      string              `json:"user_id"`
	RoomID      string              `json:"room_id"`
	FolderID    string              `json:"folder_id,omitempty"`
	Reason      string              `json:"reason,omitempty"`
	Status      AccessRequestStatus `json:"status"`
	ReviewedBy  string              `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time          `json:"reviewed_at,omitempty"`
	ReviewNote  string              `json:"review_note,omitempty"`
	GrantedRole Role                `json:"granted_role,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}
