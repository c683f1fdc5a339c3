package billing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mmynk/billsplit/internal/calculator"
	"github.com/mmynk/billsplit/internal/storage"
)

var (
	// ErrNotFound covers both missing entities and entities the actor may not act
	// on, so callers cannot probe for bills they do not own.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState is returned when the bill's lifecycle status does not allow
	// the requested operation.
	ErrInvalidState = errors.New("invalid bill state")

	// ErrOvercommitted is returned when proposed or accepted shares exceed the total.
	ErrOvercommitted = calculator.ErrOvercommitted
)

// ValidationError reports client input that was rejected before any mutation.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(e.Err, &fieldErrs) {
		return e.Err.Error()
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describeField(fe))
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(format string, args ...any) error {
	return &ValidationError{Err: fmt.Errorf(format, args...)}
}

func describeField(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "gt":
		return field + " must be greater than " + fe.Param()
	case "gte":
		return field + " must be at least " + fe.Param()
	case "datetime":
		return field + " must be a date in YYYY-MM-DD format"
	case "oneof":
		return field + " must be one of: " + fe.Param()
	case "unique":
		return field + " must not contain duplicates"
	case "min":
		return field + " must have at least " + fe.Param() + " entries"
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// notFound translates storage.ErrNotFound into ErrNotFound and wraps anything
// else as a storage fault.
func notFound(err error, what string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("failed to load %s: %w", what, err)
}
