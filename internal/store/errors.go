package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNotFound matches every NotFoundError via errors.Is.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a unique attribute (room name, user email,
// subscription endpoint owner) is already taken.
var ErrDuplicate = errors.New("duplicate")

// NotFoundError names the missing entity and the key it was looked up by.
type NotFoundError struct {
	Entity string
	Key    any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %v", e.Entity, e.Key)
}

// Is makes errors.Is(err, ErrNotFound) true for any NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NotFound builds a NotFoundError.
func NotFound(entity string, key any) error {
	return &NotFoundError{Entity: entity, Key: key}
}

// translate maps gorm errors onto the package's error vocabulary.
func translate(err error, entity string, key any) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFound(entity, key)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s %v: %w", entity, key, ErrDuplicate)
	}
	return err
}
