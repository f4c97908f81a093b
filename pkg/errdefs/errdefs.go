// Package errdefs defines the error taxonomy shared by all core packages.
//
// Every operation exposed to the routing layer returns either a result or an
// *Error carrying a Kind. Callers branch on the kind (via the Is* helpers or
// errors.Is against the sentinel kinds) instead of matching message text.
package errdefs

import (
	"errors"
	"fmt"
)

// Kind classifies an error so callers can map it to the right signal.
type Kind string

const (
	KindValidation         Kind = "validation_failed"
	KindNotFound           Kind = "not_found"
	KindAlreadyExists      Kind = "already_exists"
	KindNotAuthenticated   Kind = "not_authenticated"
	KindNotAuthorized      Kind = "not_authorized"
	KindInvalidTransition  Kind = "invalid_state_transition"
	KindConflictOfInterest Kind = "conflict_of_interest"
	KindAnswerIncorrect    Kind = "answer_incorrect"
	KindAlreadyDecided     Kind = "already_decided"
	KindStorage            Kind = "storage_failure"
)

// Reason refines a NotAuthorized error so the caller can tell a missing role
// from a failed ownership or state check.
type Reason string

const (
	ReasonNotAuthenticated Reason = "NotAuthenticated"
	ReasonRoleMissing      Reason = "RoleMissing"
	ReasonNotOwner         Reason = "NotOwner"
	ReasonInvalidState     Reason = "InvalidState"
)

// Error is the concrete error type returned by core operations.
type Error struct {
	Kind   Kind
	Reason Reason // set for NotAuthorized errors
	Msg    string
	Err    error // wrapped cause, never exposed for storage failures
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs an error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf constructs an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to an error of the given kind. The cause is preserved
// for internal logging but the caller-facing message stays at msg.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Validation reports a malformed input, caught before any mutation.
func Validation(format string, args ...interface{}) *Error {
	return Newf(KindValidation, format, args...)
}

// NotFound reports a missing entity.
func NotFound(format string, args ...interface{}) *Error {
	return Newf(KindNotFound, format, args...)
}

// AlreadyExists reports a uniqueness violation.
func AlreadyExists(format string, args ...interface{}) *Error {
	return Newf(KindAlreadyExists, format, args...)
}

// NotAuthenticated reports a missing, invalid, or expired credential. The
// message is deliberately generic: "user not found" and "wrong password"
// both surface as the same denial to prevent username enumeration.
func NotAuthenticated(format string, args ...interface{}) *Error {
	return Newf(KindNotAuthenticated, format, args...)
}

// Denied reports an authorization denial with a reason subtype.
func Denied(reason Reason, format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotAuthorized, Reason: reason, Msg: fmt.Sprintf(format, args...)}
}

// InvalidTransition reports a workflow precondition that was not met.
func InvalidTransition(format string, args ...interface{}) *Error {
	return Newf(KindInvalidTransition, format, args...)
}

// ConflictOfInterest reports a reviewer/paper conflict.
func ConflictOfInterest(format string, args ...interface{}) *Error {
	return Newf(KindConflictOfInterest, format, args...)
}

// AnswerIncorrect reports a failed security-question comparison.
func AnswerIncorrect(format string, args ...interface{}) *Error {
	return Newf(KindAnswerIncorrect, format, args...)
}

// AlreadyDecided reports a decision re-submission on a decided paper.
func AlreadyDecided(format string, args ...interface{}) *Error {
	return Newf(KindAlreadyDecided, format, args...)
}

// Storage wraps a collaborator failure. The cause is kept for internal
// logging; callers only ever see the opaque kind.
func Storage(err error) *Error {
	return &Error{Kind: KindStorage, Msg: "storage failure", Err: err}
}

// KindOf returns the kind of err, or "" if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// ReasonOf returns the denial reason of err, or "" if none is set.
func ReasonOf(err error) Reason {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ""
}

func IsValidation(err error) bool         { return KindOf(err) == KindValidation }
func IsNotFound(err error) bool           { return KindOf(err) == KindNotFound }
func IsAlreadyExists(err error) bool      { return KindOf(err) == KindAlreadyExists }
func IsNotAuthenticated(err error) bool   { return KindOf(err) == KindNotAuthenticated }
func IsNotAuthorized(err error) bool      { return KindOf(err) == KindNotAuthorized }
func IsInvalidTransition(err error) bool  { return KindOf(err) == KindInvalidTransition }
func IsConflictOfInterest(err error) bool { return KindOf(err) == KindConflictOfInterest }
func IsAnswerIncorrect(err error) bool    { return KindOf(err) == KindAnswerIncorrect }
func IsAlreadyDecided(err error) bool     { return KindOf(err) == KindAlreadyDecided }
func IsStorage(err error) bool            { return KindOf(err) == KindStorage }
