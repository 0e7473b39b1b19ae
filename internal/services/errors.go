package services

import (
	"fmt"
	"sort"
	"strings"

	"catalog/internal/repositories"
	"catalog/internal/validation"
)

// ValidationError reports a product payload that failed validation. No
// write happens when it is returned.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Message)
	}
	sort.Strings(parts)
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields returns the violations keyed by field name.
func (e *ValidationError) Fields() map[string]string {
	return e.Violations.Fields()
}

// NotFoundError reports that no product has the requested ID.
type NotFoundError struct {
	ID uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Product not found with id: %d", e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return repositories.ErrProductNotFound
}
