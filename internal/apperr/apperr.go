// Package apperr defines the error kinds shared by the café services.
// Callers classify errors with errors.Is against the sentinels below.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation     = errors.New("invalid input")
	ErrNotFound       = errors.New("not found")
	ErrForbidden      = errors.New("not allowed")
	ErrAuthFailed     = errors.New("invalid login or password")
	ErrDatabase       = errors.New("database error")
	ErrReauthRequired = errors.New("credentials changed, please log in again")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

// Validationf reports input outside its declared bounds.
func Validationf(format string, args ...any) error {
	return &kindError{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

// NotFoundf reports a missing order, item or user.
func NotFoundf(format string, args ...any) error {
	return &kindError{kind: ErrNotFound, msg: fmt.Sprintf(format, args...)}
}

// Forbiddenf reports an operation the session role may not perform.
func Forbiddenf(format string, args ...any) error {
	return &kindError{kind: ErrForbidden, msg: fmt.Sprintf(format, args...)}
}

// Database wraps a storage failure. Errors that already carry one of the
// package kinds pass through untouched so a repository can return
// ErrNotFound without it being reclassified.
func Database(op string, err error) error {
	if err == nil {
		return nil
	}
	if Classified(err) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, ErrDatabase, err)
}

// Classified reports whether err already maps to one of the package kinds.
func Classified(err error) bool {
	for _, k := range []error{ErrValidation, ErrNotFound, ErrForbidden, ErrAuthFailed, ErrDatabase, ErrReauthRequired} {
		if errors.Is(err, k) {
			return true
		}
	}
	return false
}
