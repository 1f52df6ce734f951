package deck

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a ValidationError.
type ErrorKind int

const (
	KindInvalidFormat ErrorKind = iota + 1
	KindTooManyCards
	KindPayloadTooLarge
	KindEmptyField
	KindFieldTooLong
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidFormat:
		return "invalid_format"
	case KindTooManyCards:
		return "too_many_cards"
	case KindPayloadTooLarge:
		return "payload_too_large"
	case KindEmptyField:
		return "empty_field"
	case KindFieldTooLong:
		return "field_too_long"
	default:
		return "unknown"
	}
}

var (
	ErrInvalidFormat   = errors.New("invalid format")
	ErrTooManyCards    = errors.New("too many cards")
	ErrPayloadTooLarge = errors.New("payload too large")
	ErrEmptyField      = errors.New("empty field")
	ErrFieldTooLong    = errors.New("field too long")
)

// UnsavedWarning is shown to the user when a StorageError is reported.
const UnsavedWarning = "Unable to save your sets because storage is full or unavailable. Your latest changes may not be saved."

// ValidationError is returned when a deck, card, or import payload is rejected.
// Message is suitable for display.
type ValidationError struct {
	Kind    ErrorKind
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is matches the kind sentinels so callers can use errors.Is.
func (e *ValidationError) Is(target error) bool {
	switch target {
	case ErrInvalidFormat:
		return e.Kind == KindInvalidFormat
	case ErrTooManyCards:
		return e.Kind == KindTooManyCards
	case ErrPayloadTooLarge:
		return e.Kind == KindPayloadTooLarge
	case ErrEmptyField:
		return e.Kind == KindEmptyField
	case ErrFieldTooLong:
		return e.Kind == KindFieldTooLong
	}
	return false
}

// NewValidationError returns a ValidationError of the given kind.
func NewValidationError(kind ErrorKind, message string) *ValidationError {
	return &ValidationError{Kind: kind, Message: message}
}

// TooManyCardsError reports a card count over MaxCards.
func TooManyCardsError(count int) *ValidationError {
	return NewValidationError(KindTooManyCards,
		fmt.Sprintf("This set has too many cards (%d). Maximum allowed is %d cards.", count, MaxCards))
}

// StorageError is returned when the local slot cannot be written.
// It is not fatal: the in-memory library keeps the change.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s > %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
