package takeaway

import (
	"fmt"
	"time"

	aqm "github.com/appetiteclub/apt"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	// OrderTopic delivers takeaway order lifecycle events.
	OrderTopic = "takeaway.orders"

	EventOrderPlaced    = "takeaway.order.placed"
	EventOrderCancelled = "takeaway.order.cancelled"
)

// Bill rates applied to every takeaway order. The bill is always computed
// server-side from the item lines; totals sent by clients are ignored.
const (
	TaxRate               = 0.05
	ACTaxRate             = 0.02
	GSTRate               = 0.08
	DeliveryCharge        = 50.0
	FreeDeliveryThreshold = 500.0
)

type Item struct {
	Name     string  `json:"name" bson:"name"`
	Quantity int     `json:"quantity" bson:"quantity"`
	Price    float64 `json:"price" bson:"price"`
}

type Bill struct {
	Subtotal       float64 `json:"subtotal" bson:"subtotal"`
	Tax            float64 `json:"tax" bson:"tax"`
	ACTax          float64 `json:"ac_tax" bson:"ac_tax"`
	GST            float64 `json:"gst" bson:"gst"`
	DeliveryCharge float64 `json:"delivery_charge" bson:"delivery_charge"`
	Total          float64 `json:"total" bson:"total"`
}

// ComputeBill derives the full bill from the item lines. Delivery is free
// above the threshold.
func ComputeBill(items []Item) Bill {
	var subtotal float64
	for _, item := range items {
		subtotal += float64(item.Quantity) * item.Price
	}

	bill := Bill{
		Subtotal: subtotal,
		Tax:      subtotal * TaxRate,
		ACTax:    subtotal * ACTaxRate,
		GST:      subtotal * GSTRate,
	}
	if subtotal <= FreeDeliveryThreshold {
		bill.DeliveryCharge = DeliveryCharge
	}
	bill.Total = bill.Subtotal + bill.Tax + bill.ACTax + bill.GST + bill.DeliveryCharge

	return bill
}

// Order is a takeaway order with its computed bill. The ID doubles as the
// customer-facing order reference.
type Order struct {
	ID        uuid.UUID `json:"order_id" bson:"_id"`
	FullName  string    `json:"full_name" bson:"full_name"`
	Phone     string    `json:"phone" bson:"phone"`
	Address   string    `json:"address" bson:"address"`
	Items     []Item    `json:"items" bson:"items"`
	Bill      Bill      `json:"bill" bson:"bill"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

func (o *Order) GetID() uuid.UUID {
	return o.ID
}

func (o *Order) ResourceType() string {
	return "takeaway-order"
}

func (o *Order) SetID(id uuid.UUID) {
	o.ID = id
}

func NewOrder() *Order {
	return &Order{
		ID: aqm.GenerateNewID(),
	}
}

func (o *Order) EnsureID() {
	if o.ID == uuid.Nil {
		o.ID = aqm.GenerateNewID()
	}
}

func (o *Order) BeforeCreate() {
	o.EnsureID()
	o.CreatedAt = time.Now()
	o.UpdatedAt = time.Now()
}

func (o *Order) BeforeUpdate() {
	o.UpdatedAt = time.Now()
}

type orderDoc struct {
	ID        string    `bson:"_id"`
	FullName  string    `bson:"full_name"`
	Phone     string    `bson:"phone"`
	Address   string    `bson:"address"`
	Items     []Item    `bson:"items"`
	Bill      Bill      `bson:"bill"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MarshalBSON custom BSON marshaling for UUID handling. The id is stored as
// a string so repository filters built from uuid.String() match the document.
func (o *Order) MarshalBSON() ([]byte, error) {
	return bson.Marshal(orderDoc{
		ID:        o.ID.String(),
		FullName:  o.FullName,
		Phone:     o.Phone,
		Address:   o.Address,
		Items:     o.Items,
		Bill:      o.Bill,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	})
}

// UnmarshalBSON custom BSON unmarshaling for UUID handling.
func (o *Order) UnmarshalBSON(data []byte) error {
	var doc orderDoc
	if err := bson.Unmarshal(data, &doc); err != nil {
		return err
	}

	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return fmt.Errorf("invalid UUID format for _id: %w", err)
	}

	o.ID = id
	o.FullName = doc.FullName
	o.Phone = doc.Phone
	o.Address = doc.Address
	o.Items = doc.Items
	o.Bill = doc.Bill
	o.CreatedAt = doc.CreatedAt
	o.UpdatedAt = doc.UpdatedAt

	return nil
}

// OrderEvent is the payload published when an order changes state.
type OrderEvent struct {
	EventType  string    `json:"event_type"`
	OrderID    string    `json:"order_id"`
	Total      float64   `json:"total,omitempty"`
	Source     string    `json:"source,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
