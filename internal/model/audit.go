package model

import "time"

type AuditAction string

const (
	AuditView              AuditAction = "VIEW"
	AuditDownload          AuditAction = "DOWNLOAD"
	AuditPermissionChange  AuditAction = "PERMISSION_CHANGE"
	AuditAccessRequested   AuditAction = "ACCESS_REQUESTED"
	AuditAccessReviewed    AuditAction = "ACCESS_REVIEWED"
	AuditShareLinkIssued   AuditAction = "SHARE_LINK_ISSUED"
	AuditShareLinkConsumed AuditAction = "SHARE_LINK_CONSUMED"
	AuditShareLinkFileView AuditAction = "SHARE_LINK_FILE_VIEW"
	AuditShareLinkRevoked  AuditAction = "SHARE_LINK_REVOKED"
	AuditWatermarkSkipped  AuditAction = "WATERMARK_SKIPPED"
	AuditWatermarkDegraded AuditAction = "WATERMARK_DEGRADED"
	AuditImpersonation     AuditAction = "IMPERSONATION"
	AuditLogin             AuditAction = "LOGIN"
	AuditAuditExport       AuditAction = "AUDIT_EXPORT"
)

type AuditOutcome string

const (
	OutcomeSuccess AuditOutcome = "SUCCESS"
	OutcomeDenied  AuditOutcome = "DENIED"
	OutcomeError   AuditOutcome = "ERROR"
)

// Audit resource types.
const (
	ResourceFile          = "file"
	ResourceFolder        = "folder"
	ResourceRoom          = "room"
	ResourceShareLink     = "share_link"
	ResourceAccessRequest = "access_request"
)

// AuditEvent is an immutable record of a security-relevant action.
type AuditEvent struct {
	ID           string         `json:"id"`
	ActorID      string         `json:"actor_id,omitempty"`
	Action       AuditAction    `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	RoomID       string         `json:"room_id,omitempty"`
	Outcome      AuditOutcome   `json:"outcome"`
	IPAddress    string         `json:"ip_address,omitempty"`
	UserAgent    string         `json:"user_agent,omitempty"`
	RequestID    string         `json:"request_id,omitempty"`
	Details      map[string]any `json:"details,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// AuditFilter selects events for export and aggregation.
type AuditFilter struct {
	RoomID       string
	ActorID      string
	Action       AuditAction
	ResourceType string
	ResourceID   string
	From         *time.Time
	To           *time.Time
	Limit        int
	Offset       int
}

type AuditGroupBy string

const (
	GroupByAction AuditGroupBy = "action"
	GroupByDay    AuditGroupBy = "day"
	GroupByUser   AuditGroupBy = "user"
	GroupByFile   AuditGroupBy = "file"
)

// AuditAggregate is one bucket of an aggregation query.
type AuditAggregate struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}
