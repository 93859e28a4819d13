package solana

import (
	"errors"
	"fmt"
)

var (
	ErrAccountNotFound      = errors.New("account not found")
	ErrTokenAccountNotFound = errors.New("could not find a token account")
	ErrNoViableBump         = errors.New("unable to find a viable program address bump seed")
)

// PreconditionError reports a condition detected by the client before anything
// was submitted.
type PreconditionError struct {
	Op  string
	Err error
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}

// Precondition wraps err as a PreconditionError for op.
func Precondition(op string, err error) error {
	return &PreconditionError{Op: op, Err: err}
}

// RejectionError carries the reason a program refused a transaction. Reason is
// the program's own message, untouched.
type RejectionError struct {
	Reason string
	Logs   []string
	Err    error
}

func (e *RejectionError) Error() string {
	return "transaction rejected: " + e.Reason
}

func (e *RejectionError) Unwrap() error {
	return e.Err
}

// IsPrecondition reports whether err was raised before submission.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}

// IsRejection reports whether err is a program rejection.
func IsRejection(err error) bool {
	var re *RejectionError
	return errors.As(err, &re)
}
