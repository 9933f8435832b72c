// Package sentinel holds store-level facts. Stores return these (optionally
// wrapped) and the registry translates them into domain errors.
package sentinel

import "errors"

var (
	// ErrNotFound: no registry entry exists for the identity.
	ErrNotFound = errors.New("not found")
	// ErrStale: a conditional write was refused because the stored
	// timestamp is newer.
	ErrStale = errors.New("stale")
)
