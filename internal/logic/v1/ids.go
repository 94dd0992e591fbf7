package v1

import (
	"fmt"

	"github.com/duynhne/connectspark-service/internal/core/domain"
	"github.com/google/uuid"
)

// validateID rejects ids that are not UUIDs before they reach the database
func validateID(kind, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%s id %q: %w", kind, id, domain.ErrInvalidID)
	}
	return nil
}
