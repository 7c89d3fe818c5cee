package id

import (
	"fmt"

	"github.com/google/uuid"
)

// New returns a fresh random transaction ID like "9b2f6c1e-...".
func New() string {
	return uuid.NewString()
}

// Validate checks that s is a canonical UUID transaction ID.
func Validate(s string) error {
	u, err := uuid.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid transaction ID %q: %w", s, err)
	}
	if u.String() != s {
		return fmt.Errorf("invalid transaction ID %q: not in canonical form", s)
	}
	return nil
}

// Short returns the first 8 characters of an ID for display.
// "9b2f6c1e-4a7d-..." -> "9b2f6c1e"
func Short(s string) string {
	if len(s) <= 8 {
		return s
	}
	return s[:8]
}
