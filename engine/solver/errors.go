package solver

import (
	"errors"
	"fmt"
)

type Kind uint8

const (
	KindUnknown Kind = iota
	KindUnlicensed
	KindInvalidArgument
)

func (k Kind) String() string {
	switch k {
	case KindUnlicensed:
		return "unlicensed"
	case KindInvalidArgument:
		return "invalid argument"
	default:
		return "unknown"
	}
}

// Error is a classified solver failure.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("solver %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("solver %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf classifies err. Errors that are not solver errors are unknown.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}

func IsUnlicensed(err error) bool {
	return err != nil && KindOf(err) == KindUnlicensed
}
