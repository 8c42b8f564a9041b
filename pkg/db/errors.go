package db

import "strings"

// IsUniqueViolation reports whether the provided error references a unique
// constraint violation. Postgres messages name the constraint, so when
// constraintName is provided the helper requires it; sqlite reports the
// column instead and is matched generically.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		return true
	}
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return strings.Contains(msg, "duplicate key value")
}
