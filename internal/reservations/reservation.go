package reservations

import (
	"fmt"
	"time"

	aqm "github.com/appetiteclub/apt"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// TimeSlots is the fixed set of service periods a table can be reserved for.
// Matching on a slot is exact label equality; there is no adjacent-slot or
// overlap logic.
var TimeSlots = []string{
	"09:00 AM",
	"11:00 AM",
	"01:00 PM",
	"03:00 PM",
	"05:00 PM",
	"07:00 PM",
}

// DateLayout is the calendar-date format reservations are keyed by. There is
// no time-of-day component; the slot label carries that.
const DateLayout = "2006-01-02"

func ValidTimeSlot(slot string) bool {
	for _, s := range TimeSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// Reservation is the aggregate for a booking of one or more tables for a
// specific date and time slot. The ID doubles as the customer-facing order
// reference; it is generated once at creation and never reused.
type Reservation struct {
	ID         uuid.UUID  `json:"order_id" bson:"_id"`
	FullName   string     `json:"full_name" bson:"full_name"`
	Phone      string     `json:"phone" bson:"phone"`
	Email      string     `json:"email" bson:"email"`
	Date       string     `json:"date" bson:"date"`
	TimeSlot   string     `json:"time" bson:"time_slot"`
	GuestCount int        `json:"guests" bson:"guest_count"`
	TableIDs   []string   `json:"tables" bson:"table_ids"`
	OwnerID    *uuid.UUID `json:"owner_id,omitempty" bson:"owner_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" bson:"updated_at"`
}

func (r *Reservation) GetID() uuid.UUID {
	return r.ID
}

func (r *Reservation) ResourceType() string {
	return "reservation"
}

func (r *Reservation) SetID(id uuid.UUID) {
	r.ID = id
}

func NewReservation() *Reservation {
	return &Reservation{
		ID: aqm.GenerateNewID(),
	}
}

func (r *Reservation) EnsureID() {
	if r.ID == uuid.Nil {
		r.ID = aqm.GenerateNewID()
	}
}

func (r *Reservation) BeforeCreate() {
	r.EnsureID()
	r.CreatedAt = time.Now()
	r.UpdatedAt = time.Now()
}

func (r *Reservation) BeforeUpdate() {
	r.UpdatedAt = time.Now()
}

// HoldsTable reports whether the reservation currently includes the table.
func (r *Reservation) HoldsTable(tableID string) bool {
	for _, id := range r.TableIDs {
		if id == tableID {
			return true
		}
	}
	return false
}

type reservationDoc struct {
	ID         string    `bson:"_id"`
	FullName   string    `bson:"full_name"`
	Phone      string    `bson:"phone"`
	Email      string    `bson:"email"`
	Date       string    `bson:"date"`
	TimeSlot   string    `bson:"time_slot"`
	GuestCount int       `bson:"guest_count"`
	TableIDs   []string  `bson:"table_ids"`
	OwnerID    string    `bson:"owner_id,omitempty"`
	CreatedAt  time.Time `bson:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

// MarshalBSON custom BSON marshaling for UUID handling. Ids are stored as
// strings so repository filters built from uuid.String() match the documents.
func (r *Reservation) MarshalBSON() ([]byte, error) {
	doc := reservationDoc{
		ID:         r.ID.String(),
		FullName:   r.FullName,
		Phone:      r.Phone,
		Email:      r.Email,
		Date:       r.Date,
		TimeSlot:   r.TimeSlot,
		GuestCount: r.GuestCount,
		TableIDs:   r.TableIDs,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	if r.OwnerID != nil {
		doc.OwnerID = r.OwnerID.String()
	}
	return bson.Marshal(doc)
}

// UnmarshalBSON custom BSON unmarshaling for UUID handling.
func (r *Reservation) UnmarshalBSON(data []byte) error {
	var doc reservationDoc
	if err := bson.Unmarshal(data, &doc); err != nil {
		return err
	}

	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return fmt.Errorf("invalid UUID format for _id: %w", err)
	}

	r.ID = id
	r.FullName = doc.FullName
	r.Phone = doc.Phone
	r.Email = doc.Email
	r.Date = doc.Date
	r.TimeSlot = doc.TimeSlot
	r.GuestCount = doc.GuestCount
	r.TableIDs = doc.TableIDs
	r.CreatedAt = doc.CreatedAt
	r.UpdatedAt = doc.UpdatedAt
	r.OwnerID = nil

	if doc.OwnerID != "" {
		owner, err := uuid.Parse(doc.OwnerID)
		if err != nil {
			return fmt.Errorf("invalid UUID format for owner_id: %w", err)
		}
		r.OwnerID = &owner
	}

	return nil
}

// TableAllocation is one persisted (date, time slot, table) claim belonging
// to a reservation. The store keeps a unique index over the triple, which is
// what makes the disjointness invariant hold under concurrent bookings.
type TableAllocation struct {
	ID        uuid.UUID `json:"id" bson:"_id"`
	OrderID   uuid.UUID `json:"order_id" bson:"order_id"`
	Date      string    `json:"date" bson:"date"`
	TimeSlot  string    `json:"time_slot" bson:"time_slot"`
	TableID   string    `json:"table_id" bson:"table_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

func NewTableAllocation(orderID uuid.UUID, date, timeSlot, tableID string) *TableAllocation {
	return &TableAllocation{
		ID:        aqm.GenerateNewID(),
		OrderID:   orderID,
		Date:      date,
		TimeSlot:  timeSlot,
		TableID:   tableID,
		CreatedAt: time.Now(),
	}
}

type tableAllocationDoc struct {
	ID        string    `bson:"_id"`
	OrderID   string    `bson:"order_id"`
	Date      string    `bson:"date"`
	TimeSlot  string    `bson:"time_slot"`
	TableID   string    `bson:"table_id"`
	CreatedAt time.Time `bson:"created_at"`
}

// MarshalBSON custom BSON marshaling for UUID handling.
func (a *TableAllocation) MarshalBSON() ([]byte, error) {
	return bson.Marshal(tableAllocationDoc{
		ID:        a.ID.String(),
		OrderID:   a.OrderID.String(),
		Date:      a.Date,
		TimeSlot:  a.TimeSlot,
		TableID:   a.TableID,
		CreatedAt: a.CreatedAt,
	})
}

// UnmarshalBSON custom BSON unmarshaling for UUID handling.
func (a *TableAllocation) UnmarshalBSON(data []byte) error {
	var doc tableAllocationDoc
	if err := bson.Unmarshal(data, &doc); err != nil {
		return err
	}

	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return fmt.Errorf("invalid UUID format for _id: %w", err)
	}
	orderID, err := uuid.Parse(doc.OrderID)
	if err != nil {
		return fmt.Errorf("invalid UUID format for order_id: %w", err)
	}

	a.ID = id
	a.OrderID = orderID
	a.Date = doc.Date
	a.TimeSlot = doc.TimeSlot
	a.TableID = doc.TableID
	a.CreatedAt = doc.CreatedAt

	return nil
}
