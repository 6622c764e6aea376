// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Extraction errors.
	ErrNoPeriodHeader  = errors.New("no statement period header found")
	ErrUnresolvedYear  = errors.New("cannot resolve year for month")
	ErrMalformedRow    = errors.New("malformed row")
	ErrAmbiguousRecord = errors.New("record closed without an amount")

	// Run-level errors.
	ErrNoSources = errors.New("no source files found")

	// Configuration errors.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
