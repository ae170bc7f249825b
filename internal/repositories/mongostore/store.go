// Package mongostore keeps the append-heavy documents (audit trail, direct
// messages and uploaded KYC files) in MongoDB, away from the transactional
// Postgres schema.
package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	auditCollection   = "audit_logs"
	messageCollection = "messages"
)

// Connect dials MongoDB and ensures the indexes the repositories rely on.
func Connect(ctx context.Context, uri, database string) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	db := client.Database(database)
	if err := ensureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}
	return client, db, nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(auditCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "at", Value: -1}}},
		{Keys: bson.D{{Key: "entity", Value: 1}, {Key: "entity_id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create audit indexes: %w", err)
	}
	_, err = db.Collection(messageCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "conversation_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "to_user_id", Value: 1}, {Key: "read_at", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create message indexes: %w", err)
	}
	return nil
}

// Ping reports whether the primary is reachable.
func Ping(ctx context.Context, client *mongo.Client) error {
	return client.Ping(ctx, readpref.Primary())
}
