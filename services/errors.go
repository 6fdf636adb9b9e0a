// services/errors.go - Error taxonomy shared by all services
package services

import (
	"errors"
	"fmt"
)

var (
	// ErrForbidden: the actor lacks the role the action requires.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidState: the operation does not apply in the task's
	// current lifecycle state (double start, stop before start).
	ErrInvalidState = errors.New("invalid state")
	// ErrNotFound: referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInUse: deletion blocked by a referencing entity.
	ErrInUse = errors.New("in use")
	// ErrDuplicateName: name already taken within the team.
	ErrDuplicateName = errors.New("duplicate name")
)

// ValidationError carries a user-facing message describing the
// violated rule.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
