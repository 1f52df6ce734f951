package gateway

import (
	"errors"
	"fmt"
)

// Kind classifies gateway failures.
type Kind int

const (
	KindUnavailable Kind = iota + 1
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindUnavailable:
		return "unavailable"
	case KindNotFound:
		return "not found"
	default:
		return "unknown"
	}
}

var (
	ErrUnavailable = errors.New("gateway unavailable")
	ErrNotFound    = errors.New("not found")
)

// Error is returned by every Gateway adapter.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s > %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnavailable:
		return e.Kind == KindUnavailable
	case ErrNotFound:
		return e.Kind == KindNotFound
	}
	return false
}

// Unavailable wraps a network or remote failure.
func Unavailable(op string, err error) error {
	return &Error{Kind: KindUnavailable, Op: op, Err: err}
}

// NotFound reports a missing shared deck.
func NotFound(op string, err error) error {
	return &Error{Kind: KindNotFound, Op: op, Err: err}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
