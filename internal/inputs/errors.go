package inputs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMalformedInput = errors.New("request body is not a valid hook request")
	ErrMissingField   = errors.New("required field is missing from the request")
)

// MissingFieldError names a required key that is absent from the request.
type MissingFieldError struct {
	// Field is the dotted path of the missing key, e.g. "parent.spec.routeConfigMap".
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing field %q", e.Field)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// MissingField returns a *MissingFieldError for the given dotted path.
func MissingField(path ...string) error {
	return &MissingFieldError{Field: strings.Join(path, ".")}
}
