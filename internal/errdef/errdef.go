// Package errdef defines the kinds of errors the service distinguishes between. Errors are
// classified by wrapping them, callers check the kind using the IsX functions which unwrap using
// [errors.As].
package errdef

import (
	"errors"
	"fmt"
)

type kind int

const (
	kindBadRequest kind = iota
	kindForbidden
	kindDuplicated
	kindUnauthorized
	kindNotFound
	kindConflict
	kindUnsupportedMediaType
)

type classified struct {
	kind kind
	err  error
}

func (c classified) Error() string { return c.err.Error() }

func (c classified) Unwrap() error { return c.err }

func newError(k kind, format string, a ...any) error {
	return classified{kind: k, err: fmt.Errorf(format, a...)}
}

func is(err error, k kind) bool {
	var c classified
	return errors.As(err, &c) && c.kind == k
}

func NewForbidden(format string, a ...any) error { return newError(kindForbidden, format, a...) }

func IsForbidden(err error) bool { return is(err, kindForbidden) }

func NewBadRequest(format string, a ...any) error { return newError(kindBadRequest, format, a...) }

func IsBadRequest(err error) bool { return is(err, kindBadRequest) }

func NewDuplicated(format string, a ...any) error { return newError(kindDuplicated, format, a...) }

func IsDuplicated(err error) bool { return is(err, kindDuplicated) }

func NewUnauthorized(format string, a ...any) error {
	return newError(kindUnauthorized, format, a...)
}

func IsUnauthorized(err error) bool { return is(err, kindUnauthorized) }

// NewNotFound creates an error representing a resource that could not be found.
func NewNotFound(format string, a ...any) error { return newError(kindNotFound, format, a...) }

// IsNotFound returns true if err is an error representing a resource that could not be found and false otherwise.
func IsNotFound(err error) bool { return is(err, kindNotFound) }

// NewConflict creates an error representing a conflicting state, like a second active cluster
// for the same event and team.
func NewConflict(format string, a ...any) error { return newError(kindConflict, format, a...) }

// IsConflict returns true if err is an error representing a conflict and false otherwise.
func IsConflict(err error) bool { return is(err, kindConflict) }

func NewUnsupportedMediaType(format string, a ...any) error {
	return newError(kindUnsupportedMediaType, format, a...)
}

func IsUnsupportedMediaType(err error) bool { return is(err, kindUnsupportedMediaType) }
