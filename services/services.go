// Package services holds the business rules behind every HTTP operation.
// Handlers translate requests into these calls and map the returned errors.
package services

import (
	"errors"
	"fmt"

	"food-ordering-api/store"

	"github.com/google/uuid"
)

func validateID(id, what string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%s %q: %w", what, id, ErrInvalidID)
	}
	return nil
}

// lookupErr maps store.ErrNotFound onto ErrNotFound and leaves other errors untouched.
func lookupErr(err error, what string) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("load %s: %w", what, err)
}
