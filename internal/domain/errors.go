package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound signals an unknown or expired search session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidArgument signals a rejected request argument.
	ErrInvalidArgument = errors.New("invalid argument")
)

// InvalidArgumentError wraps ErrInvalidArgument with the offending argument name.
type InvalidArgumentError struct {
	Argument string
	Reason   string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidArgument.Error(), e.Argument, e.Reason)
}

func (e *InvalidArgumentError) Unwrap() error { return ErrInvalidArgument }

// NewInvalidArgument creates an invalid argument error.
func NewInvalidArgument(argument, reason string) error {
	return &InvalidArgumentError{Argument: argument, Reason: reason}
}
