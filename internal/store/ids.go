package store

import (
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a system or impact does not exist.
var ErrNotFound = errors.New("not found")

// IDGenerator generates unique impact IDs.
// Implemented by UUIDv7Generator (production) and testutil.SequentialIDs (tests).
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 impact IDs.
//
// UUIDv7 embeds a timestamp in the most significant bits, so IDs sort roughly
// by creation time. Seq remains the authoritative order.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
