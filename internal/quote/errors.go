package quote

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedResponse   = errors.New("malformed model response")
	ErrInvalidNumericField = errors.New("invalid numeric field")
	ErrImplausibleValue    = errors.New("implausible value")
)

// FieldError identifies which field failed numeric coercion.
type FieldError struct {
	Field string
	Value any
	Err   error
}

func (e *FieldError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s=%#v: %v", ErrInvalidNumericField, e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("%s: %s=%#v", ErrInvalidNumericField, e.Field, e.Value)
}

func (e *FieldError) Is(target error) bool { return target == ErrInvalidNumericField }

func (e *FieldError) Unwrap() error { return e.Err }
