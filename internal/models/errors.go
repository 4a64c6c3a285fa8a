package models

import (
	"errors"
	"fmt"
)

// ErrorKind 將領域錯誤分成四類，路由層依此決定回應方式
type ErrorKind int

const (
	KindNotFound ErrorKind = iota + 1
	KindPreconditionFailed
	KindInvalidInput
	KindIdentity
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindPreconditionFailed:
		return "PreconditionFailed"
	case KindInvalidInput:
		return "InvalidInput"
	case KindIdentity:
		return "IdentityError"
	default:
		return "Unknown"
	}
}

// Error 是可被 errors.Is 比對的領域錯誤
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrRoomNotFound   = &Error{KindNotFound, "ROOM_NOT_FOUND", "room could not be found"}
	ErrNoCurrentRound = &Error{KindNotFound, "NO_CURRENT_ROUND", "no round has been started"}
	ErrUserNotFound   = &Error{KindNotFound, "USER_NOT_FOUND", "user could not be found"}

	ErrRoundNotDone    = &Error{KindPreconditionFailed, "ROUND_NOT_DONE", "the current round is not done"}
	ErrNoVotes         = &Error{KindPreconditionFailed, "NO_VOTES", "no votes for round"}
	ErrIncompleteVotes = &Error{KindPreconditionFailed, "INCOMPLETE_VOTES", "not every member has voted"}
	ErrNotInRoom       = &Error{KindPreconditionFailed, "NOT_IN_ROOM", "connection has not joined the room"}

	ErrInvalidScore   = &Error{KindInvalidInput, "INVALID_SCORE", "invalid score"}
	ErrInvalidMode    = &Error{KindInvalidInput, "INVALID_MODE", "invalid room mode"}
	ErrMalformedToken = &Error{KindInvalidInput, "MALFORMED_TOKEN", "malformed identity token"}
	ErrExpiredToken   = &Error{KindInvalidInput, "EXPIRED_TOKEN", "session token expired"}
	ErrInvalidPayload = &Error{KindInvalidInput, "INVALID_PAYLOAD", "invalid request payload"}
	ErrEmptyMessage   = &Error{KindInvalidInput, "EMPTY_MESSAGE", "message content is empty"}

	ErrUnknownSession = &Error{KindIdentity, "UNKNOWN_SESSION", "session could not be resolved"}
)

// IdentityError 包裝連線時身分解析失敗的原因，連線會被關閉
func IdentityError(err error) error {
	return fmt.Errorf("identity: %w", &identityError{cause: err})
}

type identityError struct {
	cause error
}

func (e *identityError) Error() string { return e.cause.Error() }
func (e *identityError) Unwrap() error { return e.cause }

// KindOf 找出錯誤鏈中的分類；identity 包裝優先
func KindOf(err error) ErrorKind {
	var idErr *identityError
	if errors.As(err, &idErr) {
		return KindIdentity
	}
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	return 0
}

// CodeOf 回傳錯誤代碼，非領域錯誤時為 INTERNAL
func CodeOf(err error) string {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return "INTERNAL"
}
