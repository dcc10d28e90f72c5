package client

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned before any request is sent when the
	// table specification is incomplete.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrTimeout is returned when the deadline passes while submitting or
	// while waiting for the table. The table may still have been created.
	ErrTimeout = errors.New("timed out")
)

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// asTimeout tags deadline expiry with ErrTimeout, leaving other errors as is.
func asTimeout(err error) error {
	if err == nil || errors.Is(err, ErrTimeout) || !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrTimeout, err)
}
