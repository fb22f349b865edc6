// Package repository provides the data access layer for orders, capacity
// settings, drafts and logs.
package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ordersCollection           = "orders"
	capacitySettingsCollection = "capacity_settings"
	draftsCollection           = "drafts"
	logsCollection             = "logs"

	logsTTLIndex = "logs_ttl"
)

// PoolOptions tunes the driver's connection pool and timeouts.
type PoolOptions struct {
	MaxSize          uint64
	MinSize          uint64
	IdleTimeout      time.Duration
	ConnectTimeout   time.Duration
	SelectionTimeout time.Duration
	SocketTimeout    time.Duration
	Compress         bool
}

// DefaultPoolOptions sizes the pool for one instance serving a warehouse floor.
func DefaultPoolOptions() PoolOptions {
	return PoolOptions{
		MaxSize:          50,
		MinSize:          5,
		IdleTimeout:      10 * time.Minute,
		ConnectTimeout:   10 * time.Second,
		SelectionTimeout: 5 * time.Second,
		SocketTimeout:    30 * time.Second,
		Compress:         true,
	}
}

func (p PoolOptions) clientOptions(uri string) *options.ClientOptions {
	opts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(p.MaxSize).
		SetMinPoolSize(min(p.MinSize, p.MaxSize)).
		SetMaxConnIdleTime(p.IdleTimeout).
		SetConnectTimeout(p.ConnectTimeout).
		SetServerSelectionTimeout(p.SelectionTimeout).
		SetSocketTimeout(p.SocketTimeout).
		SetRetryWrites(true).
		SetRetryReads(true)
	if p.Compress {
		opts.SetCompressors([]string{"zstd", "snappy", "zlib"})
	}
	return opts
}

// MongoDB is a connected client plus the collections the repositories use.
type MongoDB struct {
	client *mongo.Client
	name   string

	Orders           *mongo.Collection
	CapacitySettings *mongo.Collection
	Drafts           *mongo.Collection
	Logs             *mongo.Collection
}

// NewMongoDB connects with DefaultPoolOptions.
func NewMongoDB(uri, databaseName string) (*MongoDB, error) {
	return NewMongoDBWithOptions(uri, databaseName, DefaultPoolOptions())
}

// NewMongoDBWithOptions connects, pings and creates the secondary indexes.
// The client is disconnected again if any step fails.
func NewMongoDBWithOptions(uri, databaseName string, pool PoolOptions) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), pool.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, pool.clientOptions(uri))
	if err != nil {
		return nil, err
	}

	db := client.Database(databaseName)
	m := &MongoDB{
		client:           client,
		name:             databaseName,
		Orders:           db.Collection(ordersCollection),
		CapacitySettings: db.Collection(capacitySettingsCollection),
		Drafts:           db.Collection(draftsCollection),
		Logs:             db.Collection(logsCollection),
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	if err := m.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return m, nil
}

// Name returns the database name.
func (m *MongoDB) Name() string {
	return m.name
}

// ensureIndexes creates the secondary indexes. Orders, settings and drafts
// are read by _id; the logs TTL index is owned by SetLogsTTL.
func (m *MongoDB) ensureIndexes(ctx context.Context) error {
	if _, err := m.Drafts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "boxes_saved_at", Value: -1}},
	}); err != nil {
		return err
	}

	_, err := m.Logs.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "request_id", Value: 1}}},
		{Keys: bson.D{{Key: "order_id", Value: 1}, {Key: "action_type", Value: 1}, {Key: "timestamp", Value: -1}}},
	})
	return err
}

// SetLogsTTL makes MongoDB expire log entries ttl after their timestamp,
// replacing any earlier TTL. A non-positive ttl keeps logs forever.
func (m *MongoDB) SetLogsTTL(ctx context.Context, ttl time.Duration) error {
	if _, err := m.Logs.Indexes().DropOne(ctx, logsTTLIndex); err != nil && !isIndexNotFound(err) {
		return err
	}
	if ttl <= 0 {
		return nil
	}

	_, err := m.Logs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "timestamp", Value: 1}},
		Options: options.Index().
			SetName(logsTTLIndex).
			SetExpireAfterSeconds(int32(max(ttl/time.Second, 1))),
	})
	return err
}

func isIndexNotFound(err error) bool {
	var cmdErr mongo.CommandError
	return errors.As(err, &cmdErr) && (cmdErr.Name == "IndexNotFound" || cmdErr.Code == 27 || cmdErr.Name == "NamespaceNotFound" || cmdErr.Code == 26)
}

// Close disconnects the client.
func (m *MongoDB) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// HealthCheck pings the primary, giving up after two seconds.
func (m *MongoDB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return m.client.Ping(ctx, nil)
}
