package takeaway

import (
	"context"

	"github.com/google/uuid"
)

type OrderRepo interface {
	Create(ctx context.Context, order *Order) error
	Get(ctx context.Context, id uuid.UUID) (*Order, error)
	List(ctx context.Context) ([]*Order, error)
	ListByPhone(ctx context.Context, phone string) ([]*Order, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
