// Package uuid provides UUID v4 generation and validation utilities.
package uuid

import (
	"fmt"

	"github.com/google/uuid"
)

// New generates a new UUID v4 string.
func New() string {
	return uuid.New().String()
}

// IsValid checks if a string is a valid UUID.
func IsValid(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// Validate returns an error if the string is not a valid UUID.
func Validate(s string) error {
	if _, err := uuid.Parse(s); err != nil {
		return fmt.Errorf("invalid UUID %q: %w", s, err)
	}
	return nil
}
