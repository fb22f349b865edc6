//go:build integration

// Package testutil provides the MongoDB fixture shared by integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

const (
	defaultMongoImage = "mongo:7.0"
	// maxDBNameLen keeps generated names well under MongoDB's 64 byte limit.
	maxDBNameLen = 48
)

// MongoDBContainer wraps a MongoDB testcontainer. Container is nil when the
// URI comes from MONGODB_TEST_URI.
type MongoDBContainer struct {
	Container testcontainers.Container
	URI       string
}

// SetupMongoDB starts a MongoDB testcontainer. MONGODB_TEST_URI points the
// tests at an already running server instead, and MONGODB_TEST_IMAGE
// overrides the image.
func SetupMongoDB(ctx context.Context) (*MongoDBContainer, error) {
	if UsingExternalMongoDB() {
		return &MongoDBContainer{URI: os.Getenv("MONGODB_TEST_URI")}, nil
	}

	image := os.Getenv("MONGODB_TEST_IMAGE")
	if image == "" {
		image = defaultMongoImage
	}

	container, err := mongodb.Run(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("failed to start MongoDB container: %w", err)
	}

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	return &MongoDBContainer{Container: container, URI: uri}, nil
}

// UsingExternalMongoDB reports whether MONGODB_TEST_URI replaces the container.
func UsingExternalMongoDB() bool {
	return os.Getenv("MONGODB_TEST_URI") != ""
}

// Cleanup terminates the MongoDB container.
func (m *MongoDBContainer) Cleanup(ctx context.Context) error {
	if m.Container == nil {
		return nil
	}
	if err := m.Container.Terminate(ctx); err != nil {
		return fmt.Errorf("failed to terminate container: %w", err)
	}
	return nil
}

var (
	shared     *MongoDBContainer
	sharedErr  error
	sharedOnce sync.Once
)

// SetupTestMainWithMongoDB starts one MongoDB for the whole package, runs the
// tests and tears it down.
//
//	func TestMain(m *testing.M) {
//		os.Exit(testutil.SetupTestMainWithMongoDB(context.Background(), m))
//	}
func SetupTestMainWithMongoDB(ctx context.Context, m *testing.M) int {
	sharedOnce.Do(func() {
		shared, sharedErr = SetupMongoDB(ctx)
	})
	if sharedErr != nil {
		panic(sharedErr)
	}

	code := m.Run()

	if err := shared.Cleanup(ctx); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Warning: failed to cleanup shared MongoDB container: %v\n", err)
	}
	return code
}

// GetSharedContainerURI returns the URI of the package's MongoDB.
// Panics outside SetupTestMainWithMongoDB.
func GetSharedContainerURI() string {
	if shared == nil {
		panic("shared MongoDB container not initialized - call SetupTestMainWithMongoDB from TestMain")
	}
	return shared.URI
}

// SanitizeDBName turns a test name into a unique, valid database name.
// Characters MongoDB rejects in database names become underscores.
func SanitizeDBName(testName string) string {
	sanitized := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '.', ' ', '"', '$', '*', '<', '>', ':', '|', '?':
			return '_'
		}
		return r
	}, testName)

	if len(sanitized) > maxDBNameLen {
		sanitized = sanitized[:maxDBNameLen]
	}
	return fmt.Sprintf("%s_%d", sanitized, time.Now().UnixNano()%1000000)
}
