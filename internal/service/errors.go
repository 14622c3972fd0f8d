package service

import "errors"

var (
	ErrAuthentication   = errors.New("authentication failed")
	ErrPermissionDenied = errors.New("permission denied")
	ErrLinkInvalid      = errors.New("invalid or expired link")
	ErrInvalidState     = errors.New("invalid state")
	ErrDuplicateRequest = errors.New("a pending request already exists")
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("not found")
)

// Internal denial reasons. They are logged and audited but never returned to callers.
const (
	reasonRoomMissing        = "room_missing"
	reasonRoomInactive       = "room_inactive"
	reasonRoomExpired        = "room_expired"
	reasonNoAccess           = "no_access"
	reasonViewDisabled       = "view_disabled"
	reasonAccessExpired      = "access_expired"
	reasonIPNotAllowed       = "ip_not_allowed"
	reasonCountryNotAllowed  = "country_not_allowed"
	reasonScopeNotFound      = "scope_not_found"
	reasonFolderViewDenied   = "folder_view_denied"
	reasonFileNotFound       = "file_not_found"
	reasonDownloadNotAllowed = "download_not_allowed"
	reasonInviteNotAllowed   = "invite_not_allowed"
	reasonNotManager         = "not_room_manager"
	reasonNotCreator         = "not_creator_or_manager"
	reasonAuditNotAllowed    = "view_audit_not_allowed"

	reasonRateLimited       = "rate_limited"
	reasonLinkNotFound      = "link_not_found"
	reasonLinkRevoked       = "link_revoked"
	reasonLinkExpired       = "link_expired"
	reasonViewLimitReached  = "view_limit_reached"
	reasonPasswordRequired  = "password_required"
	reasonPasswordMismatch  = "password_mismatch"
	reasonAuthRequired      = "auth_required"
	reasonRecipientMismatch = "recipient_mismatch"
	reasonRoomClosed        = "room_closed"
	reasonTargetMissing     = "target_missing"
	reasonWrongLinkType     = "wrong_link_type"
	reasonFileOutsideFolder = "file_outside_folder"
	reasonMalformedRequest  = "malformed_request"
)

// denial carries the internal reason of a refusal while presenting only the public sentinel.
type denial struct {
	public error
	reason string
}

func (d *denial) Error() string { return d.public.Error() }
func (d *denial) Unwrap() error { return d.public }

func deny(public error, reason string) error {
	return &denial{public: public, reason: reason}
}

// Reason returns the internal cause of a denial, or "" for other errors.
func Reason(err error) string {
	var d *denial
	if errors.As(err, &d) {
		return d.reason
	}
	return ""
}

// IsDenial reports whether err is a refusal rather than a failure.
func IsDenial(err error) bool {
	return errors.Is(err, ErrPermissionDenied) ||
		errors.Is(err, ErrLinkInvalid) ||
		errors.Is(err, ErrAuthentication)
}
