// Package session tracks the pill most recently identified for each
// session, so follow-up questions stay grounded in it.
package session

import "context"

// Store maps a session id to the identified pill name. Last write for a
// session wins; there is no eviction.
type Store interface {
	// Set records the pill name for a session, overwriting any previous one.
	Set(ctx context.Context, sessionID, pillName string) error

	// Get returns the pill name for a session and whether one exists.
	Get(ctx context.Context, sessionID string) (string, bool, error)

	// Close releases backend resources.
	Close() error
}
