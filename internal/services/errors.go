package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Business errors. Services wrap them with context; handlers match with errors.Is.
var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrUnprocessable = errors.New("unprocessable")
	ErrValidation    = errors.New("validation failed")
	ErrUnauthorized  = errors.New("invalid credentials")
)

func notFound(what string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, what)
}

// storageError keeps gorm types out of the service contract.
func storageError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %s: duplicate entry", ErrConflict, op)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, op)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
