package mongo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tavolaclub/tavola/internal/accounts"
)

type UserRepo struct {
	collection *mongo.Collection
}

func NewUserRepo(db *mongo.Database) *UserRepo {
	return &UserRepo{
		collection: db.Collection("users"),
	}
}

// EnsureIndexes creates the unique email index so two accounts can never
// share an address.
func (r *UserRepo) EnsureIndexes(ctx context.Context) error {
	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}

	if _, err := r.collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		return fmt.Errorf("cannot create unique index on user email: %w", err)
	}

	return nil
}

func (r *UserRepo) Create(ctx context.Context, user *accounts.User) error {
	if user == nil {
		return fmt.Errorf("user is nil")
	}

	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return accounts.ErrUserExists
		}
		return fmt.Errorf("cannot create user: %w", err)
	}

	return nil
}

func (r *UserRepo) Get(ctx context.Context, id uuid.UUID) (*accounts.User, error) {
	var user accounts.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get user: %w", err)
	}
	return &user, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*accounts.User, error) {
	var user accounts.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get user by email: %w", err)
	}
	return &user, nil
}

func (r *UserRepo) Save(ctx context.Context, user *accounts.User) error {
	if user == nil {
		return fmt.Errorf("user is nil")
	}

	filter := bson.M{"_id": user.ID.String()}
	update := bson.M{"$set": user}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("cannot update user: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}
