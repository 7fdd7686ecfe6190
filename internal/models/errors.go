package models

import (
	"fmt"

	"github.com/islandpros/directory_api/internal/utils"
)

// ValidationError reports an unrecognised enum value in a request or in a
// fetched row. It matches utils.ErrValidation via errors.Is.
type ValidationError struct {
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

// Unwrap exposes the shared validation sentinel.
func (e *ValidationError) Unwrap() error {
	return utils.ErrValidation
}
