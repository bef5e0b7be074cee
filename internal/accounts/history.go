package accounts

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/tavolaclub/tavola/internal/reservations"
	"github.com/tavolaclub/tavola/internal/takeaway"
)

const (
	HistoryKindReservation = "reservation"
	HistoryKindTakeaway    = "takeaway"
)

// HistoryEntry is one order in a customer's combined history. Exactly one of
// Reservation or Takeaway is set, matching Kind.
type HistoryEntry struct {
	Kind        string                    `json:"kind"`
	CreatedAt   time.Time                 `json:"created_at"`
	Reservation *reservations.Reservation `json:"reservation,omitempty"`
	Takeaway    *takeaway.Order           `json:"takeaway,omitempty"`
}

// OrderHistory merges the reservation and takeaway orders placed under one
// phone number, newest first. Records that never got a creation timestamp
// sort last.
func OrderHistory(ctx context.Context, resRepo reservations.ReservationRepo, orderRepo takeaway.OrderRepo, phone string) ([]HistoryEntry, error) {
	bookings, err := resRepo.ListByPhone(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}

	orders, err := orderRepo.ListByPhone(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("list takeaway orders: %w", err)
	}

	entries := make([]HistoryEntry, 0, len(bookings)+len(orders))
	for _, b := range bookings {
		entries = append(entries, HistoryEntry{
			Kind:        HistoryKindReservation,
			CreatedAt:   b.CreatedAt,
			Reservation: b,
		})
	}
	for _, o := range orders {
		entries = append(entries, HistoryEntry{
			Kind:      HistoryKindTakeaway,
			CreatedAt: o.CreatedAt,
			Takeaway:  o,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})

	return entries, nil
}
