package domain

import "errors"

var (
	ErrSerializationFailure = errors.New("serialization failure")
	ErrNotFound             = errors.New("not found")
	ErrConflict             = errors.New("conflict")
	ErrInvalidInput         = errors.New("invalid input")
	ErrUnauthorized         = errors.New("unauthorized action")
	ErrInvalidTransition    = errors.New("invalid status transition")
)

// ValidationErrors is field-keyed so the client can render inline errors.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	return "validation failed"
}

func (v ValidationErrors) Empty() bool {
	return len(v) == 0
}

func AsValidation(err error) (ValidationErrors, bool) {
	var v ValidationErrors
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
