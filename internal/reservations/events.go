package reservations

import "time"

const (
	// ReservationStatusTopic delivers reservation lifecycle changes.
	ReservationStatusTopic = "reservations.status"

	EventReservationCreated   = "reservation.created"
	EventReservationUpdated   = "reservation.updated"
	EventReservationCancelled = "reservation.cancelled"
)

// ReservationStatusEvent is the payload published on every lifecycle change.
type ReservationStatusEvent struct {
	EventType  string    `json:"event_type"`
	OrderID    string    `json:"order_id"`
	Date       string    `json:"date"`
	TimeSlot   string    `json:"time_slot"`
	TableIDs   []string  `json:"table_ids,omitempty"`
	GuestCount int       `json:"guest_count,omitempty"`
	Source     string    `json:"source,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
