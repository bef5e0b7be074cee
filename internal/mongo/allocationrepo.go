package mongo

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tavolaclub/tavola/internal/reservations"
)

// AllocationRepo persists one document per (reservation, table) claim. The
// unique compound index over (date, time_slot, table_id) is what turns the
// client-side availability check into a store-enforced invariant: two
// reservations can race past the pre-check, but only one insert commits.
type AllocationRepo struct {
	collection *mongo.Collection
}

func NewAllocationRepo(db *mongo.Database) *AllocationRepo {
	return &AllocationRepo{
		collection: db.Collection("table_allocations"),
	}
}

// EnsureIndexes creates the uniqueness constraint. Must run before the first
// booking is accepted.
func (r *AllocationRepo) EnsureIndexes(ctx context.Context) error {
	indexModel := mongo.IndexModel{
		Keys: bson.D{
			{Key: "date", Value: 1},
			{Key: "time_slot", Value: 1},
			{Key: "table_id", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	}
	if _, err := r.collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		return fmt.Errorf("cannot create allocation index: %w", err)
	}
	return nil
}

func (r *AllocationRepo) Reserve(ctx context.Context, orderID uuid.UUID, date, timeSlot string, tableIDs []string) error {
	if len(tableIDs) == 0 {
		return fmt.Errorf("at least one table is required")
	}

	docs := make([]interface{}, 0, len(tableIDs))
	for _, tableID := range tableIDs {
		docs = append(docs, reservations.NewTableAllocation(orderID, date, timeSlot, tableID))
	}

	_, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err == nil {
		return nil
	}

	// Unordered insert commits the non-conflicting claims before reporting
	// the duplicates, so roll those back before surfacing the conflict.
	if _, delErr := r.collection.DeleteMany(ctx, bson.M{"order_id": orderID.String()}); delErr != nil {
		return fmt.Errorf("cannot roll back allocations: %v (after %w)", delErr, err)
	}

	if mongo.IsDuplicateKeyError(err) {
		return reservations.ErrTableConflict
	}
	return fmt.Errorf("cannot reserve tables: %w", err)
}

func (r *AllocationRepo) Rebind(ctx context.Context, orderID uuid.UUID, date, timeSlot string, tableIDs []string) error {
	if len(tableIDs) == 0 {
		return fmt.Errorf("at least one table is required")
	}

	current, err := r.listByOrder(ctx, orderID)
	if err != nil {
		return err
	}

	requested := make(map[string]bool, len(tableIDs))
	for _, id := range tableIDs {
		requested[id] = true
	}

	kept := make(map[string]bool, len(current))
	var stale []uuid.UUID
	for _, alloc := range current {
		if alloc.Date == date && alloc.TimeSlot == timeSlot && requested[alloc.TableID] {
			kept[alloc.TableID] = true
			continue
		}
		stale = append(stale, alloc.ID)
	}

	var fresh []interface{}
	var freshIDs []string
	for _, tableID := range tableIDs {
		if kept[tableID] {
			continue
		}
		alloc := reservations.NewTableAllocation(orderID, date, timeSlot, tableID)
		fresh = append(fresh, alloc)
		freshIDs = append(freshIDs, alloc.ID.String())
	}

	if len(fresh) > 0 {
		if _, err := r.collection.InsertMany(ctx, fresh, options.InsertMany().SetOrdered(false)); err != nil {
			// Undo only what this call managed to insert; the order's
			// previous claims stay intact on conflict.
			if _, delErr := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": freshIDs}}); delErr != nil {
				return fmt.Errorf("cannot roll back rebind: %v (after %w)", delErr, err)
			}
			if mongo.IsDuplicateKeyError(err) {
				return reservations.ErrTableConflict
			}
			return fmt.Errorf("cannot rebind tables: %w", err)
		}
	}

	if len(stale) > 0 {
		staleIDs := make([]string, 0, len(stale))
		for _, id := range stale {
			staleIDs = append(staleIDs, id.String())
		}
		if _, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": staleIDs}}); err != nil {
			return fmt.Errorf("cannot drop stale allocations: %w", err)
		}
	}

	return nil
}

func (r *AllocationRepo) Release(ctx context.Context, orderID uuid.UUID) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{"order_id": orderID.String()}); err != nil {
		return fmt.Errorf("cannot release allocations: %w", err)
	}
	return nil
}

func (r *AllocationRepo) ReservedTableIDs(ctx context.Context, date, timeSlot string, exclude uuid.UUID) ([]string, error) {
	filter := bson.M{"date": date, "time_slot": timeSlot}
	if exclude != uuid.Nil {
		filter["order_id"] = bson.M{"$ne": exclude.String()}
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("cannot list allocations: %w", err)
	}
	defer cursor.Close(ctx)

	var allocs []*reservations.TableAllocation
	if err := cursor.All(ctx, &allocs); err != nil {
		return nil, fmt.Errorf("cannot decode allocations: %w", err)
	}

	seen := make(map[string]bool, len(allocs))
	var ids []string
	for _, alloc := range allocs {
		if !seen[alloc.TableID] {
			seen[alloc.TableID] = true
			ids = append(ids, alloc.TableID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *AllocationRepo) listByOrder(ctx context.Context, orderID uuid.UUID) ([]*reservations.TableAllocation, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"order_id": orderID.String()})
	if err != nil {
		return nil, fmt.Errorf("cannot list allocations by order: %w", err)
	}
	defer cursor.Close(ctx)

	var allocs []*reservations.TableAllocation
	if err := cursor.All(ctx, &allocs); err != nil {
		return nil, fmt.Errorf("cannot decode allocations: %w", err)
	}

	return allocs, nil
}
