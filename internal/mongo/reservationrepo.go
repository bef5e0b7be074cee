package mongo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tavolaclub/tavola/internal/reservations"
)

type ReservationRepo struct {
	collection *mongo.Collection
}

func NewReservationRepo(db *mongo.Database) *ReservationRepo {
	return &ReservationRepo{
		collection: db.Collection("reservations"),
	}
}

func (r *ReservationRepo) Create(ctx context.Context, reservation *reservations.Reservation) error {
	if reservation == nil {
		return fmt.Errorf("reservation is nil")
	}

	if _, err := r.collection.InsertOne(ctx, reservation); err != nil {
		return fmt.Errorf("cannot create reservation: %w", err)
	}

	return nil
}

func (r *ReservationRepo) Get(ctx context.Context, id uuid.UUID) (*reservations.Reservation, error) {
	var reservation reservations.Reservation
	err := r.collection.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&reservation)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get reservation: %w", err)
	}
	return &reservation, nil
}

func (r *ReservationRepo) ListByPhone(ctx context.Context, phone string) ([]*reservations.Reservation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"phone": phone}, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot list reservations by phone: %w", err)
	}
	defer cursor.Close(ctx)

	var result []*reservations.Reservation
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode reservations: %w", err)
	}

	return result, nil
}

func (r *ReservationRepo) Save(ctx context.Context, reservation *reservations.Reservation) error {
	if reservation == nil {
		return fmt.Errorf("reservation is nil")
	}

	filter := bson.M{"_id": reservation.ID.String()}
	update := bson.M{"$set": reservation}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("cannot update reservation: %w", err)
	}

	if result.MatchedCount == 0 {
		return reservations.ErrNotFound
	}

	return nil
}

func (r *ReservationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("cannot delete reservation: %w", err)
	}

	if result.DeletedCount == 0 {
		return reservations.ErrNotFound
	}

	return nil
}
