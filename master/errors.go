package master

import (
	"errors"
	"fmt"
)

// Code classifies an error returned by the catalog.
type Code int

const (
	CodeUnknown Code = iota
	CodeAlreadyPresent
	CodeNotFound
	CodeInvalidArgument
	CodeServiceUnavailable
	CodeInternal
)

func (c Code) String() string {
	switch c {
	case CodeAlreadyPresent:
		return "Already present"
	case CodeNotFound:
		return "Not found"
	case CodeInvalidArgument:
		return "Invalid argument"
	case CodeServiceUnavailable:
		return "Service unavailable"
	case CodeInternal:
		return "Internal error"
	default:
		return "Unknown error"
	}
}

// Error is a typed catalog failure.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Errorf builds an *Error with a formatted message.
func Errorf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the catalog code carried by err, or CodeUnknown.
func CodeOf(err error) Code {
	var merr *Error
	if errors.As(err, &merr) {
		return merr.Code
	}
	return CodeUnknown
}

// IsAlreadyPresent reports whether err says the object already exists.
func IsAlreadyPresent(err error) bool {
	return CodeOf(err) == CodeAlreadyPresent
}

// IsNotFound reports whether err says the object does not exist.
func IsNotFound(err error) bool {
	return CodeOf(err) == CodeNotFound
}
