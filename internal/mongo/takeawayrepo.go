package mongo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tavolaclub/tavola/internal/takeaway"
)

type TakeawayOrderRepo struct {
	collection *mongo.Collection
}

func NewTakeawayOrderRepo(db *mongo.Database) *TakeawayOrderRepo {
	return &TakeawayOrderRepo{
		collection: db.Collection("takeaway_orders"),
	}
}

func (r *TakeawayOrderRepo) Create(ctx context.Context, order *takeaway.Order) error {
	if order == nil {
		return fmt.Errorf("order is nil")
	}

	if _, err := r.collection.InsertOne(ctx, order); err != nil {
		return fmt.Errorf("cannot create takeaway order: %w", err)
	}

	return nil
}

func (r *TakeawayOrderRepo) Get(ctx context.Context, id uuid.UUID) (*takeaway.Order, error) {
	var order takeaway.Order
	err := r.collection.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&order)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get takeaway order: %w", err)
	}
	return &order, nil
}

func (r *TakeawayOrderRepo) List(ctx context.Context) ([]*takeaway.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot list takeaway orders: %w", err)
	}
	defer cursor.Close(ctx)

	var result []*takeaway.Order
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode takeaway orders: %w", err)
	}

	return result, nil
}

func (r *TakeawayOrderRepo) ListByPhone(ctx context.Context, phone string) ([]*takeaway.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"phone": phone}, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot list takeaway orders by phone: %w", err)
	}
	defer cursor.Close(ctx)

	var result []*takeaway.Order
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode takeaway orders: %w", err)
	}

	return result, nil
}

func (r *TakeawayOrderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("cannot delete takeaway order: %w", err)
	}

	if result.DeletedCount == 0 {
		return takeaway.ErrNotFound
	}

	return nil
}
