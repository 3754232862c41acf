package testutils

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	envMongoDBShard1PrimaryPort = "TEST_MONGODB_S1_PRIMARY_PORT"
	envMongoDBStandalonePort    = "TEST_MONGODB_STANDALONE_PORT"
	//
	envMongoDBUser     = "TEST_MONGODB_ADMIN_USERNAME"
	envMongoDBPassword = "TEST_MONGODB_ADMIN_PASSWORD"
)

var (
	MongoDBHost = "127.0.0.1"
	//
	MongoDBShard1PrimaryPort = os.Getenv(envMongoDBShard1PrimaryPort)
	MongoDBStandalonePort    = os.Getenv(envMongoDBStandalonePort)
	//
	MongoDBUser     = os.Getenv(envMongoDBUser)
	MongoDBPassword = os.Getenv(envMongoDBPassword)
	MongoDBTimeout  = time.Duration(10) * time.Second
)

// URI returns the connection string of the test server listening on port.
func URI(port string) string {
	if MongoDBUser == "" {
		return fmt.Sprintf("mongodb://%s:%s/?directConnection=true", MongoDBHost, port)
	}
	return fmt.Sprintf("mongodb://%s:%s@%s:%s/?directConnection=true", MongoDBUser, MongoDBPassword, MongoDBHost, port)
}

// TestPort returns the port of the first configured test server or skips the test.
func TestPort(t *testing.T) string {
	t.Helper()
	for _, port := range []string{MongoDBShard1PrimaryPort, MongoDBStandalonePort} {
		if port != "" {
			return port
		}
	}
	t.Skipf("%s or %s must be set to run tests against MongoDB", envMongoDBShard1PrimaryPort, envMongoDBStandalonePort)
	return ""
}

// TestClient returns a connected client for the test server on port.
func TestClient(ctx context.Context, port string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(URI(port)))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	return client, nil
}
