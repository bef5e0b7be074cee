package reservations

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// WorkflowState names a stage of the booking flow.
type WorkflowState string

const (
	StateSelectingDateTime WorkflowState = "selecting_date_time"
	StateSelectingTables   WorkflowState = "selecting_tables"
	StateEnteringDetails   WorkflowState = "entering_details"
	StateSubmitting        WorkflowState = "submitting"
	StateConfirmed         WorkflowState = "confirmed"
	StateFailed            WorkflowState = "failed"
)

// Session is the authenticated context a workflow runs under. It is created
// at login, cleared at logout, and read-only for the duration of one run. A
// zero Session means an anonymous booking.
type Session struct {
	UserID uuid.UUID
	Name   string
	Email  string
}

// CustomerDetails is what the customer fills in during EnteringDetails.
type CustomerDetails struct {
	FullName string
	Phone    string
	Email    string
	Agreed   bool
}

// ValidationFailure carries the per-field checks that kept a transition from
// happening. The workflow state is unchanged when one is returned.
type ValidationFailure struct {
	Errors []ValidationError
}

func (f *ValidationFailure) Error() string {
	if len(f.Errors) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", f.Errors[0].Message)
}

// Workflow is the booking state machine. Each instance handles a single
// booking attempt: either a fresh reservation or an edit of an existing one.
// Transition methods return an error and leave the state untouched when the
// transition's preconditions fail; every failure path lands the workflow in
// an inspectable state.
type Workflow struct {
	svc     *BookingService
	session Session

	state     WorkflowState
	editing   bool
	orderID   uuid.UUID
	createdAt time.Time
	owner     *uuid.UUID
	date      string
	timeSlot  string
	guests    int

	reserved map[string]bool
	selected map[string]bool
	details  CustomerDetails

	result  *Reservation
	lastErr error
}

// NewWorkflow starts a fresh booking in SelectingDateTime.
func NewWorkflow(svc *BookingService, session Session) *Workflow {
	return &Workflow{
		svc:      svc,
		session:  session,
		state:    StateSelectingDateTime,
		reserved: map[string]bool{},
		selected: map[string]bool{},
	}
}

// NewEditWorkflow starts an update of an existing reservation. It enters
// directly at SelectingTables with the reservation's slot, tables and
// customer details pre-populated, and its availability view excludes the
// tables the reservation itself still holds.
func NewEditWorkflow(ctx context.Context, svc *BookingService, session Session, existing *Reservation) (*Workflow, error) {
	if existing == nil {
		return nil, ErrNotFound
	}

	w := &Workflow{
		svc:       svc,
		session:   session,
		state:     StateSelectingTables,
		editing:   true,
		orderID:   existing.ID,
		createdAt: existing.CreatedAt,
		owner:     existing.OwnerID,
		date:      existing.Date,
		timeSlot:  existing.TimeSlot,
		guests:    existing.GuestCount,
		reserved: map[string]bool{},
		selected: map[string]bool{},
		details: CustomerDetails{
			FullName: existing.FullName,
			Phone:    existing.Phone,
			Email:    existing.Email,
			Agreed:   true,
		},
	}

	for _, id := range existing.TableIDs {
		w.selected[id] = true
	}

	if err := w.refreshAvailability(ctx); err != nil {
		return nil, err
	}

	return w, nil
}

func (w *Workflow) State() WorkflowState { return w.state }
func (w *Workflow) Editing() bool        { return w.editing }
func (w *Workflow) Err() error           { return w.lastErr }

// Result returns the confirmed reservation, nil unless state is Confirmed.
func (w *Workflow) Result() *Reservation {
	if w.state != StateConfirmed {
		return nil
	}
	return w.result
}

// SelectDateTime validates the slot choice and, when it holds, fetches the
// reserved set for rendering and moves to SelectingTables.
func (w *Workflow) SelectDateTime(ctx context.Context, date, timeSlot string, guests int) error {
	if w.state != StateSelectingDateTime {
		return fmt.Errorf("cannot select date/time in state %s", w.state)
	}

	if errs := validateDateTime(date, timeSlot, guests); len(errs) > 0 {
		return &ValidationFailure{Errors: errs}
	}

	w.date = date
	w.timeSlot = timeSlot
	w.guests = guests

	if err := w.refreshAvailability(ctx); err != nil {
		return err
	}

	w.state = StateSelectingTables
	return nil
}

// Reserved reports whether a table is taken by someone else for the slot.
func (w *Workflow) Reserved(tableID string) bool {
	return w.reserved[tableID]
}

// SelectedTables returns the pending selection in a stable order.
func (w *Workflow) SelectedTables() []string {
	ids := make([]string, 0, len(w.selected))
	for id := range w.selected {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ToggleTable flips a table in and out of the pending selection. Toggling a
// reserved table is a no-op: no state changes at all.
func (w *Workflow) ToggleTable(tableID string) {
	if w.state != StateSelectingTables {
		return
	}
	if w.reserved[tableID] {
		return
	}
	if w.selected[tableID] {
		delete(w.selected, tableID)
		return
	}
	w.selected[tableID] = true
}

// ChooseTables replaces the pending selection wholesale, the way the HTTP
// flow supplies it. Unlike ToggleTable it rejects reserved tables loudly so
// a request never silently books fewer tables than it asked for.
func (w *Workflow) ChooseTables(tableIDs []string) error {
	if w.state != StateSelectingTables {
		return fmt.Errorf("cannot choose tables in state %s", w.state)
	}

	next := map[string]bool{}
	for _, id := range tableIDs {
		if w.reserved[id] {
			return fmt.Errorf("table %s: %w", id, ErrTableConflict)
		}
		next[id] = true
	}

	if len(next) == 0 {
		return &ValidationFailure{Errors: []ValidationError{
			{Field: "tables", Message: "at least one table is required"},
		}}
	}

	w.selected = next
	w.state = StateEnteringDetails
	return nil
}

// ConfirmTables moves on with the toggled selection.
func (w *Workflow) ConfirmTables() error {
	return w.ChooseTables(w.SelectedTables())
}

// EnterDetails captures and validates the customer contact fields. On any
// failure the state is unchanged and the failing fields are reported.
func (w *Workflow) EnterDetails(details CustomerDetails) error {
	if w.state != StateEnteringDetails {
		return fmt.Errorf("cannot enter details in state %s", w.state)
	}

	if errs := validateDetails(details); len(errs) > 0 {
		return &ValidationFailure{Errors: errs}
	}

	details.Phone = NormalizePhone(details.Phone)
	w.details = details
	return nil
}

// Submit issues the create or update command. On success the workflow is
// Confirmed and Result carries the persisted reservation, including the
// order id the caller needs for lookup and cancellation. On failure the
// workflow is Failed and the attempt can be retried via BackToTables.
func (w *Workflow) Submit(ctx context.Context) error {
	if w.state != StateEnteringDetails {
		return fmt.Errorf("cannot submit in state %s", w.state)
	}
	if w.details.FullName == "" {
		return &ValidationFailure{Errors: []ValidationError{
			{Field: "full_name", Message: "customer details are required before submitting"},
		}}
	}

	w.state = StateSubmitting

	reservation := w.buildReservation()

	var err error
	if w.editing {
		err = w.svc.Update(ctx, reservation)
	} else {
		err = w.svc.Create(ctx, reservation)
	}

	if err != nil {
		w.state = StateFailed
		w.lastErr = err
		return err
	}

	w.state = StateConfirmed
	w.result = reservation
	w.lastErr = nil
	return nil
}

// BackToTables returns a failed workflow to table selection with a fresh
// availability view, dropping any table from the selection that has been
// taken in the meantime.
func (w *Workflow) BackToTables(ctx context.Context) error {
	if w.state != StateFailed {
		return fmt.Errorf("cannot go back to tables in state %s", w.state)
	}

	if err := w.refreshAvailability(ctx); err != nil {
		return err
	}

	for id := range w.selected {
		if w.reserved[id] {
			delete(w.selected, id)
		}
	}

	w.state = StateSelectingTables
	return nil
}

func (w *Workflow) buildReservation() *Reservation {
	reservation := NewReservation()
	if w.editing {
		reservation.ID = w.orderID
		reservation.CreatedAt = w.createdAt
		reservation.OwnerID = w.owner
	}
	reservation.FullName = w.details.FullName
	reservation.Phone = w.details.Phone
	reservation.Email = w.details.Email
	reservation.Date = w.date
	reservation.TimeSlot = w.timeSlot
	reservation.GuestCount = w.guests
	reservation.TableIDs = w.SelectedTables()
	if !w.editing && w.session.UserID != uuid.Nil {
		owner := w.session.UserID
		reservation.OwnerID = &owner
	}
	return reservation
}

func (w *Workflow) refreshAvailability(ctx context.Context) error {
	exclude := uuid.Nil
	if w.editing {
		exclude = w.orderID
	}

	taken, err := w.svc.ReservedTables(ctx, w.date, w.timeSlot, exclude)
	if err != nil {
		return fmt.Errorf("cannot resolve table availability: %w", err)
	}

	w.reserved = map[string]bool{}
	for _, id := range taken {
		w.reserved[id] = true
	}
	return nil
}

// IsValidationFailure reports whether err carries field-level validation
// errors rather than a store or conflict condition.
func IsValidationFailure(err error) bool {
	var vf *ValidationFailure
	return errors.As(err, &vf)
}
