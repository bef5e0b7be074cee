package menu

import (
	"fmt"
	"time"

	aqm "github.com/appetiteclub/apt"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// MenuItem is a dish offered on the site's menu. Category is one of the
// fixed section labels (brunch, lunch, dinner, dessert, drinks).
type MenuItem struct {
	ID          uuid.UUID `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description" bson:"description"`
	Price       float64   `json:"price" bson:"price"`
	Category    string    `json:"category" bson:"category"`
	Active      bool      `json:"active" bson:"active"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	CreatedBy   string    `json:"created_by" bson:"created_by"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
	UpdatedBy   string    `json:"updated_by" bson:"updated_by"`
}

func (m *MenuItem) GetID() uuid.UUID {
	return m.ID
}

func (m *MenuItem) ResourceType() string {
	return "menu-item"
}

func (m *MenuItem) SetID(id uuid.UUID) {
	m.ID = id
}

func NewMenuItem() *MenuItem {
	return &MenuItem{
		ID:     aqm.GenerateNewID(),
		Active: true,
	}
}

func (m *MenuItem) EnsureID() {
	if m.ID == uuid.Nil {
		m.ID = aqm.GenerateNewID()
	}
}

func (m *MenuItem) BeforeCreate() {
	m.EnsureID()
	m.CreatedAt = time.Now()
	m.UpdatedAt = time.Now()
}

func (m *MenuItem) BeforeUpdate() {
	m.UpdatedAt = time.Now()
}

type menuItemDoc struct {
	ID          string    `bson:"_id"`
	Name        string    `bson:"name"`
	Description string    `bson:"description"`
	Price       float64   `bson:"price"`
	Category    string    `bson:"category"`
	Active      bool      `bson:"active"`
	CreatedAt   time.Time `bson:"created_at"`
	CreatedBy   string    `bson:"created_by"`
	UpdatedAt   time.Time `bson:"updated_at"`
	UpdatedBy   string    `bson:"updated_by"`
}

// MarshalBSON custom BSON marshaling for UUID handling. The id is stored as
// a string so repository filters built from uuid.String() match the document.
func (m *MenuItem) MarshalBSON() ([]byte, error) {
	return bson.Marshal(menuItemDoc{
		ID:          m.ID.String(),
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		Category:    m.Category,
		Active:      m.Active,
		CreatedAt:   m.CreatedAt,
		CreatedBy:   m.CreatedBy,
		UpdatedAt:   m.UpdatedAt,
		UpdatedBy:   m.UpdatedBy,
	})
}

// UnmarshalBSON custom BSON unmarshaling for UUID handling.
func (m *MenuItem) UnmarshalBSON(data []byte) error {
	var doc menuItemDoc
	if err := bson.Unmarshal(data, &doc); err != nil {
		return err
	}

	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return fmt.Errorf("invalid UUID format for _id: %w", err)
	}

	m.ID = id
	m.Name = doc.Name
	m.Description = doc.Description
	m.Price = doc.Price
	m.Category = doc.Category
	m.Active = doc.Active
	m.CreatedAt = doc.CreatedAt
	m.CreatedBy = doc.CreatedBy
	m.UpdatedAt = doc.UpdatedAt
	m.UpdatedBy = doc.UpdatedBy

	return nil
}
