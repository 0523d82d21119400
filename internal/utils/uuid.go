package utils

import "github.com/google/uuid"

// IsUUID reports whether s parses as a UUID. Route params are checked before
// hitting the DB so malformed ids come back as 400 rather than a scan error.
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
