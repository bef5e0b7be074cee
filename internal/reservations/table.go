package reservations

import (
	"fmt"
	"time"

	aqm "github.com/appetiteclub/apt"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// Table is reference data for a physical seating unit. Tables are created at
// provisioning time (seeding) and never mutated by the booking flow.
type Table struct {
	ID        uuid.UUID `json:"id" bson:"_id"`
	Number    int       `json:"number" bson:"number"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	CreatedBy string    `json:"created_by" bson:"created_by"`
}

func (t *Table) GetID() uuid.UUID {
	return t.ID
}

func (t *Table) ResourceType() string {
	return "table"
}

func (t *Table) SetID(id uuid.UUID) {
	t.ID = id
}

func NewTable() *Table {
	return &Table{
		ID: aqm.GenerateNewID(),
	}
}

func (t *Table) EnsureID() {
	if t.ID == uuid.Nil {
		t.ID = aqm.GenerateNewID()
	}
}

func (t *Table) BeforeCreate() {
	t.EnsureID()
	t.CreatedAt = time.Now()
}

type tableDoc struct {
	ID        string    `bson:"_id"`
	Number    int       `bson:"number"`
	CreatedAt time.Time `bson:"created_at"`
	CreatedBy string    `bson:"created_by"`
}

// MarshalBSON custom BSON marshaling for UUID handling.
func (t *Table) MarshalBSON() ([]byte, error) {
	return bson.Marshal(tableDoc{
		ID:        t.ID.String(),
		Number:    t.Number,
		CreatedAt: t.CreatedAt,
		CreatedBy: t.CreatedBy,
	})
}

// UnmarshalBSON custom BSON unmarshaling for UUID handling.
func (t *Table) UnmarshalBSON(data []byte) error {
	var doc tableDoc
	if err := bson.Unmarshal(data, &doc); err != nil {
		return err
	}

	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return fmt.Errorf("invalid UUID format for _id: %w", err)
	}

	t.ID = id
	t.Number = doc.Number
	t.CreatedAt = doc.CreatedAt
	t.CreatedBy = doc.CreatedBy

	return nil
}
