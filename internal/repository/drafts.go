package repository

import (
	"context"
	"errors"
	"time"

	"github.com/guttosm/pack-assistant/internal/domain/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DraftsRepository persists in-progress packing drafts, one document per order.
// The packing-state map and the box list are written independently.
type DraftsRepository struct {
	collection *mongo.Collection
}

// NewDraftsRepository creates a new drafts repository.
func NewDraftsRepository(db *MongoDB) *DraftsRepository {
	return &DraftsRepository{
		collection: db.Drafts,
	}
}

// Get returns the order's draft, or nil when none was saved.
func (r *DraftsRepository) Get(ctx context.Context, orderID string) (*model.Draft, error) {
	var draft model.Draft
	err := r.collection.FindOne(ctx, bson.M{"_id": orderID}).Decode(&draft)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

// SaveState stores the packing-state map.
func (r *DraftsRepository) SaveState(ctx context.Context, orderID string, state model.PackingStateMap, savedBy string) error {
	return r.set(ctx, orderID, bson.M{
		"packing_state":  state,
		"state_saved_at": time.Now().UTC(),
		"updated_by":     savedBy,
	})
}

// SaveBoxes stores the derived box list.
func (r *DraftsRepository) SaveBoxes(ctx context.Context, orderID string, boxes []model.Box, savedBy string) error {
	return r.set(ctx, orderID, bson.M{
		"boxes":          boxes,
		"boxes_saved_at": time.Now().UTC(),
		"updated_by":     savedBy,
	})
}

// Delete removes the order's draft. Deleting a missing draft is not an error.
func (r *DraftsRepository) Delete(ctx context.Context, orderID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": orderID})
	return err
}

func (r *DraftsRepository) set(ctx context.Context, orderID string, fields bson.M) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": orderID},
		bson.M{"$set": fields},
		options.Update().SetUpsert(true),
	)
	return err
}
