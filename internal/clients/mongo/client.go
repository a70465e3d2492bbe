package mongo

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"note-keep/internal/config"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const (
	connectTimeout    = 10 * time.Second
	disconnectTimeout = 5 * time.Second
)

var (
	client *mongo.Client
	db     *mongo.Database
	mu     sync.Mutex
)

// Init connects to the note store database. The first successful call wins;
// later calls return the already-established connection.
func Init(ctx context.Context, cfg config.Config, log *slog.Logger) (*mongo.Client, *mongo.Database, error) {
	mu.Lock()
	defer mu.Unlock()

	if client != nil && db != nil {
		return client, db, nil
	}

	opts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1)).
		SetConnectTimeout(connectTimeout).
		SetAppName("note-keep")

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	cli, err := mongo.Connect(opts)
	if err != nil {
		log.Error("mongo connect failed", "uri", cfg.MongoURI, "err", err)
		return nil, nil, err
	}

	if err := cli.Ping(ctx, readpref.Primary()); err != nil {
		log.Error("mongo ping failed", "err", err)
		return nil, nil, err
	}

	client = cli
	db = cli.Database(cfg.MongoDBName)

	log.Info("note store ready", "db", cfg.MongoDBName)
	return client, db, nil
}

// Client returns the singleton MongoDB client instance.
func Client() *mongo.Client {
	mu.Lock()
	defer mu.Unlock()
	return client
}

// DB returns the singleton MongoDB database instance.
func DB() *mongo.Database {
	mu.Lock()
	defer mu.Unlock()
	return db
}

// Shutdown disconnects from the note store. Safe to call more than once.
func Shutdown(ctx context.Context) error {
	mu.Lock()
	defer mu.Unlock()

	if client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, disconnectTimeout)
	defer cancel()

	err := client.Disconnect(ctx)

	client = nil
	db = nil

	return err
}
