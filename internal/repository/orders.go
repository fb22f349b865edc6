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

// OrdersRepository stores imported orders and their line items.
type OrdersRepository struct {
	collection *mongo.Collection
}

// NewOrdersRepository creates a new orders repository.
func NewOrdersRepository(db *MongoDB) *OrdersRepository {
	return &OrdersRepository{
		collection: db.Orders,
	}
}

// Get returns the order, or nil when it does not exist.
func (r *OrdersRepository) Get(ctx context.Context, orderID string) (*model.Order, error) {
	var order model.Order
	err := r.collection.FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Upsert replaces the order's line items, keeping the original creation time.
func (r *OrdersRepository) Upsert(ctx context.Context, order *model.Order) error {
	now := time.Now().UTC()
	order.UpdatedAt = now

	update := bson.M{
		"$set": bson.M{
			"customer":   order.Customer,
			"items":      order.Items,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{"created_at": now},
	}

	var stored model.Order
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": order.ID},
		update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&stored)
	if err != nil {
		return err
	}
	order.CreatedAt = stored.CreatedAt
	return nil
}
