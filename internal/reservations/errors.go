package reservations

import "errors"

var (
	// ErrNotFound is returned when an order reference does not match any
	// persisted reservation.
	ErrNotFound = errors.New("reservation not found")

	// ErrTableConflict is returned when a create or update would claim a
	// table already held by another reservation in the same slot.
	ErrTableConflict = errors.New("table already reserved for this slot")
)

// ValidationError reports a single failed field check. Validation runs before
// any store call; a request that fails validation never reaches MongoDB.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
