// Package types holds the persistent records shared across the application:
// students, products and the consumption records that link them.
// Keeping them in one place prevents import cycles: handlers, storage,
// and utils can all import types without depending on each other.
//
// Records are plain value holders. They do not validate themselves and they
// know nothing about the database; storage.Storage persists them and the
// HTTP layer checks incoming requests before they reach this package.
package types

import "time"

// formatTimestamp renders t as an RFC 3339 (ISO-8601) string in UTC.
// The zero time means "never set" and renders as nil, never as "".
func formatTimestamp(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}
