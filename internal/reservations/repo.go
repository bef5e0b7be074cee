package reservations

import (
	"context"

	"github.com/google/uuid"
)

type TableRepo interface {
	Create(ctx context.Context, table *Table) error
	Get(ctx context.Context, id uuid.UUID) (*Table, error)
	GetByNumber(ctx context.Context, number int) (*Table, error)
	List(ctx context.Context) ([]*Table, error)
}

type ReservationRepo interface {
	Create(ctx context.Context, reservation *Reservation) error
	Get(ctx context.Context, id uuid.UUID) (*Reservation, error)
	ListByPhone(ctx context.Context, phone string) ([]*Reservation, error)
	Save(ctx context.Context, reservation *Reservation) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AllocationRepo owns the per-table claims behind the disjointness invariant.
// Implementations must reject a claim whose (date, time slot, table) triple
// is already held by another order, atomically at the store, and must map
// that rejection to ErrTableConflict.
type AllocationRepo interface {
	// Reserve claims every table for the order. On conflict nothing from
	// this call survives and ErrTableConflict is returned.
	Reserve(ctx context.Context, orderID uuid.UUID, date, timeSlot string, tableIDs []string) error

	// Rebind replaces the order's claims with the given set, keeping claims
	// that appear in both. On conflict the previous claims survive intact.
	Rebind(ctx context.Context, orderID uuid.UUID, date, timeSlot string, tableIDs []string) error

	// Release drops every claim held by the order.
	Release(ctx context.Context, orderID uuid.UUID) error

	// ReservedTableIDs returns the tables claimed for the slot. Claims held
	// by exclude are omitted, which is what lets a customer edit a
	// reservation without seeing their own tables as taken.
	ReservedTableIDs(ctx context.Context, date, timeSlot string, exclude uuid.UUID) ([]string, error)
}
