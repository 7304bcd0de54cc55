package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")

	ErrInvalidRequest = errors.New("invalid request body")
	ErrValidation     = errors.New("validation failed")
	ErrMissingField   = errors.New("required field is missing")
	ErrInvalidRating  = errors.New("rating must be between 1 and 5")

	ErrInvalidTransition = errors.New("action is not allowed in current status")
	ErrResolutionFailure = errors.New("no moderator group covers request region, city and category")
	ErrForbidden         = errors.New("action is not permitted for this user")

	ErrStorage = errors.New("storage failure")
)

type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id '%d' not found", e.Entity, e.ID)
}
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

type MissingFieldError struct{ Field string }

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("field '%s' is required", e.Field)
}
func (e *MissingFieldError) Is(target error) bool { return target == ErrMissingField }

// InvalidTransitionError reports the status an action expected and the one it found.
// Entity defaults to "request".
type InvalidTransitionError struct {
	Entity   string
	Action   string
	Expected []string
	Actual   string
}

func (e *InvalidTransitionError) Error() string {
	entity := e.Entity
	if entity == "" {
		entity = "request"
	}

	return fmt.Sprintf("cannot %s %s: expected status %v, got '%s'", e.Action, entity, e.Expected, e.Actual)
}
func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }

type AlreadyExistsError struct {
	Entity string
	Key    string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s '%s' already exists", e.Entity, e.Key)
}
func (e *AlreadyExistsError) Is(target error) bool { return target == ErrAlreadyExists }

// Storage wraps a persistence failure so callers can tell it apart from business-rule errors.
// Errors that already carry a domain kind are returned unchanged.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}

	for _, kind := range []error{
		ErrNotFound, ErrAlreadyExists, ErrInvalidTransition, ErrResolutionFailure,
		ErrForbidden, ErrMissingField, ErrInvalidRating, ErrStorage,
	} {
		if errors.Is(err, kind) {
			return err
		}
	}

	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}
