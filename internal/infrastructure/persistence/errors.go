package persistence

import (
	"errors"
	"strings"

	"github.com/rentroll/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// mapError translates driver-level errors into domain errors. Unique
// violations matter here: the billing tables carry unique indexes that
// back idempotent generation, so callers need shared.ErrAlreadyExists
// rather than a raw SQLSTATE.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
		return shared.ErrAlreadyExists
	}
	return err
}

// isUniqueViolation matches Postgres (SQLSTATE 23505) and SQLite unique
// violations by message, the way gorm surfaces them
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "23505") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint")
}
