package reservations

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	aqm "github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/google/uuid"
)

const bookingEventSource = "reservations"

// BookingService coordinates the reservation store and the allocation store.
// All mutation of reservation state goes through it; nothing caches
// reservation state across requests.
type BookingService struct {
	reservations ReservationRepo
	allocations  AllocationRepo
	logger       aqm.Logger
	publisher    events.Publisher
}

func NewBookingService(reservationRepo ReservationRepo, allocationRepo AllocationRepo, logger aqm.Logger, publisher events.Publisher) *BookingService {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &BookingService{
		reservations: reservationRepo,
		allocations:  allocationRepo,
		logger:       logger,
		publisher:    publisher,
	}
}

// ReservedTables resolves which tables are taken for the slot. When exclude
// is a non-nil order id, claims held by that order are left out so the
// editing customer can keep their own tables.
func (s *BookingService) ReservedTables(ctx context.Context, date, timeSlot string, exclude uuid.UUID) ([]string, error) {
	if date == "" || timeSlot == "" {
		return nil, fmt.Errorf("date and time slot are required")
	}
	return s.allocations.ReservedTableIDs(ctx, date, timeSlot, exclude)
}

// Create persists a new reservation. Table claims are committed first; the
// reservation document is only written once every claim held, so a conflict
// never leaves a partially applied booking behind.
func (s *BookingService) Create(ctx context.Context, reservation *Reservation) error {
	reservation.BeforeCreate()

	if err := s.allocations.Reserve(ctx, reservation.ID, reservation.Date, reservation.TimeSlot, reservation.TableIDs); err != nil {
		return err
	}

	if err := s.reservations.Create(ctx, reservation); err != nil {
		if relErr := s.allocations.Release(ctx, reservation.ID); relErr != nil {
			s.logger.Error("cannot release allocations after failed create", "error", relErr, "order_id", reservation.ID.String())
		}
		return fmt.Errorf("cannot create reservation: %w", err)
	}

	s.publishStatus(ctx, reservation, EventReservationCreated)
	return nil
}

// Update applies an in-place update under the same order id. The allocation
// rebind detects table conflicts before the document is touched.
func (s *BookingService) Update(ctx context.Context, reservation *Reservation) error {
	if err := s.allocations.Rebind(ctx, reservation.ID, reservation.Date, reservation.TimeSlot, reservation.TableIDs); err != nil {
		return err
	}

	reservation.BeforeUpdate()
	if err := s.reservations.Save(ctx, reservation); err != nil {
		return fmt.Errorf("cannot update reservation: %w", err)
	}

	s.publishStatus(ctx, reservation, EventReservationUpdated)
	return nil
}

func (s *BookingService) Get(ctx context.Context, orderID uuid.UUID) (*Reservation, error) {
	reservation, err := s.reservations.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if reservation == nil {
		return nil, ErrNotFound
	}
	return reservation, nil
}

// Cancel removes the reservation and drops its table claims. Cancelling an
// unknown order id reports ErrNotFound; a second cancel of the same id does
// the same, never a duplicate side effect.
func (s *BookingService) Cancel(ctx context.Context, orderID uuid.UUID) error {
	reservation, err := s.reservations.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if reservation == nil {
		return ErrNotFound
	}

	if err := s.reservations.Delete(ctx, orderID); err != nil {
		return err
	}

	if err := s.allocations.Release(ctx, orderID); err != nil {
		s.logger.Error("cannot release allocations for cancelled reservation", "error", err, "order_id", orderID.String())
	}

	s.publishStatus(ctx, reservation, EventReservationCancelled)
	return nil
}

func (s *BookingService) ListByPhone(ctx context.Context, phone string) ([]*Reservation, error) {
	return s.reservations.ListByPhone(ctx, phone)
}

func (s *BookingService) publishStatus(ctx context.Context, reservation *Reservation, eventType string) {
	if s.publisher == nil || reservation == nil {
		return
	}

	event := ReservationStatusEvent{
		EventType:  eventType,
		OrderID:    reservation.ID.String(),
		Date:       reservation.Date,
		TimeSlot:   reservation.TimeSlot,
		TableIDs:   reservation.TableIDs,
		GuestCount: reservation.GuestCount,
		Source:     bookingEventSource,
		OccurredAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("cannot marshal reservation status event", "error", err, "order_id", reservation.ID.String())
		return
	}

	if err := s.publisher.Publish(ctx, ReservationStatusTopic, payload); err != nil {
		s.logger.Error("cannot publish reservation status event", "error", err, "order_id", reservation.ID.String())
	}
}
