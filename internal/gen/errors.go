package gen

import (
	"errors"
	"fmt"
)

// Error represents a problem detected while building a kernel.
//
// Generation errors include:
//   - Invalid direction: a direction outside 0..7
//   - Invalid config: a configuration that violates a generation invariant
//   - Algebra: a projector without the rank-2 structure the emitter needs
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Field names the offending configuration field (config errors).
	Field string

	// Direction is the affected direction, or -1.
	Direction int

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes generation errors.
type ErrorCode string

const (
	// ErrInvalidDirection indicates a direction outside 0..7.
	ErrInvalidDirection ErrorCode = "INVALID_DIRECTION"

	// ErrInvalidConfig indicates an inconsistent configuration.
	ErrInvalidConfig ErrorCode = "INVALID_CONFIG"

	// ErrAlgebra indicates a projector failed structural verification.
	ErrAlgebra ErrorCode = "ALGEBRA"
)

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Field != "":
		return fmt.Sprintf("%s: %s (field=%s)", e.Code, e.Message, e.Field)
	case e.Direction >= 0 && e.Err != nil:
		return fmt.Sprintf("%s: %s (direction=%d): %v", e.Code, e.Message, e.Direction, e.Err)
	case e.Direction >= 0:
		return fmt.Sprintf("%s: %s (direction=%d)", e.Code, e.Message, e.Direction)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

func configError(field, format string, args ...any) *Error {
	return &Error{Code: ErrInvalidConfig, Field: field, Direction: -1, Message: fmt.Sprintf(format, args...)}
}

func directionError(dir int) *Error {
	return &Error{Code: ErrInvalidDirection, Direction: dir, Message: "direction must be in 0..7"}
}

func algebraError(dir int, err error) *Error {
	return &Error{Code: ErrAlgebra, Direction: dir, Message: "projector structure check failed", Err: err}
}

func hasCode(err error, code ErrorCode) bool {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Code == code
	}
	return false
}

// IsConfigError reports whether err is an invalid configuration error.
// Uses errors.As to handle wrapped errors.
func IsConfigError(err error) bool {
	return hasCode(err, ErrInvalidConfig)
}

// IsDirectionError reports whether err is an invalid direction error.
func IsDirectionError(err error) bool {
	return hasCode(err, ErrInvalidDirection)
}

// IsAlgebraError reports whether err is a projector structure error.
func IsAlgebraError(err error) bool {
	return hasCode(err, ErrAlgebra)
}
