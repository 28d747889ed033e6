package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a business error so the HTTP layer can pick a status code
// without knowing about individual rules.
type Kind string

const (
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindNotFound   Kind = "not_found"
	KindAuth       Kind = "auth"
	KindForbidden  Kind = "forbidden"
)

// Error carries a message that is safe to show to the end user.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) error { return newf(KindValidation, format, args...) }
func Conflict(format string, args ...any) error   { return newf(KindConflict, format, args...) }
func NotFound(format string, args ...any) error   { return newf(KindNotFound, format, args...) }
func Auth(format string, args ...any) error       { return newf(KindAuth, format, args...) }
func Forbidden(format string, args ...any) error  { return newf(KindForbidden, format, args...) }

// KindOf returns the kind of the first *Error in err's chain, or "" when err
// is not a business error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsValidation(err error) bool { return KindOf(err) == KindValidation }
func IsConflict(err error) bool   { return KindOf(err) == KindConflict }
func IsNotFound(err error) bool   { return KindOf(err) == KindNotFound }
func IsAuth(err error) bool       { return KindOf(err) == KindAuth }
func IsForbidden(err error) bool  { return KindOf(err) == KindForbidden }
