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

// CapacitySettingsRepository stores max-per-box settings keyed by catalog number.
type CapacitySettingsRepository struct {
	collection *mongo.Collection
}

// NewCapacitySettingsRepository creates a new capacity settings repository.
func NewCapacitySettingsRepository(db *MongoDB) *CapacitySettingsRepository {
	return &CapacitySettingsRepository{
		collection: db.CapacitySettings,
	}
}

// GetAll returns every setting ordered by catalog number.
func (r *CapacitySettingsRepository) GetAll(ctx context.Context) ([]model.MaxPerBoxSetting, error) {
	return r.find(ctx, bson.M{})
}

// GetByCatalogNumber returns a single setting, or nil when none is stored.
func (r *CapacitySettingsRepository) GetByCatalogNumber(ctx context.Context, catalogNumber string) (*model.MaxPerBoxSetting, error) {
	var setting model.MaxPerBoxSetting
	err := r.collection.FindOne(ctx, bson.M{"_id": catalogNumber}).Decode(&setting)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

// GetByCatalogNumbers resolves many catalog numbers in one round trip.
// Catalog numbers without a setting are simply absent from the result.
func (r *CapacitySettingsRepository) GetByCatalogNumbers(ctx context.Context, catalogNumbers []string) ([]model.MaxPerBoxSetting, error) {
	if len(catalogNumbers) == 0 {
		return []model.MaxPerBoxSetting{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": catalogNumbers}})
}

// Upsert creates or replaces a setting.
func (r *CapacitySettingsRepository) Upsert(ctx context.Context, setting *model.MaxPerBoxSetting) error {
	if setting.UpdatedAt.IsZero() {
		setting.UpdatedAt = time.Now().UTC()
	}
	_, err := r.collection.ReplaceOne(
		ctx,
		bson.M{"_id": setting.CatalogNumber},
		setting,
		options.Replace().SetUpsert(true),
	)
	return err
}

// Delete removes a setting and reports whether one existed.
func (r *CapacitySettingsRepository) Delete(ctx context.Context, catalogNumber string) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": catalogNumber})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *CapacitySettingsRepository) find(ctx context.Context, filter bson.M) ([]model.MaxPerBoxSetting, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	settings := []model.MaxPerBoxSetting{}
	if err := cursor.All(ctx, &settings); err != nil {
		return nil, err
	}
	return settings, nil
}
