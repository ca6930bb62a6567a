package dispatch

import (
	"errors"
)

// Error is a rejection that can be shown to the client as-is.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrMissingToken    = &Error{Code: "missing_token", Message: "authentication token is required"}
	ErrInvalidToken    = &Error{Code: "invalid_token", Message: "invalid or expired token"}
	ErrUserUnavailable = &Error{Code: "user_unavailable", Message: "user does not exist or is disabled"}

	ErrInvalidMessage        = &Error{Code: "invalid_message", Message: "invalid message format"}
	ErrMessageTooLong        = &Error{Code: "message_too_long", Message: "message content is too long"}
	ErrInvalidTarget         = &Error{Code: "invalid_target", Message: "invalid message target"}
	ErrInvalidFilePayload    = &Error{Code: "invalid_file_payload", Message: "invalid file message payload"}
	ErrChannelTargetConflict = &Error{Code: "channel_target_conflict", Message: "channel messages cannot also target a user"}
	ErrNotChannelMember      = &Error{Code: "not_channel_member", Message: "you are not a member of this channel"}
	ErrSelfPrivateMessage    = &Error{Code: "self_private_message", Message: "cannot send a private message to yourself"}
	ErrInvalidReply          = &Error{Code: "invalid_reply", Message: "the quoted message is unavailable"}
	ErrInvalidEdit           = &Error{Code: "invalid_edit", Message: "invalid edit parameters"}

	ErrMessageNotFound = &Error{Code: "message_not_found", Message: "message not found"}
	ErrNotEditable     = &Error{Code: "not_editable", Message: "this message cannot be edited"}
	ErrForbidden       = &Error{Code: "forbidden", Message: "you may only change your own messages"}
	ErrWindowExpired   = &Error{Code: "window_expired", Message: "the time limit for this action has passed"}

	ErrPersistence = &Error{Code: "persistence_failed", Message: "message could not be saved, please retry"}
)

// persistenceError keeps the underlying cause for logs while presenting
// ErrPersistence to callers.
func persistenceError(cause error) error {
	return errors.Join(ErrPersistence, cause)
}

// CodeOf returns the rejection code carried by err, or "internal_error".
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "internal_error"
}

// PublicMessage returns the client-safe text for err. Causes wrapped behind
// a dispatch Error are never exposed.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}

// IsAuthError reports whether err is one of the handshake rejections.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrMissingToken) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrUserUnavailable)
}
