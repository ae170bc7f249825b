package mongostore

import (
	"context"
	"fmt"

	"eventflex/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AuditRepository interface {
	Insert(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, f models.AuditFilter, limit, offset int) ([]models.AuditLog, int64, error)
}

type auditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) AuditRepository {
	return &auditRepository{coll: db.Collection(auditCollection)}
}

func (r *auditRepository) Insert(ctx context.Context, entry *models.AuditLog) error {
	res, err := r.coll.InsertOne(ctx, entry)
	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		entry.ID = id
	}
	return nil
}

func auditQuery(f models.AuditFilter) bson.M {
	q := bson.M{}
	if f.ActorID != 0 {
		q["actor_id"] = f.ActorID
	}
	if f.Action != "" {
		q["action"] = f.Action
	}
	if f.Entity != "" {
		q["entity"] = f.Entity
	}
	return q
}

func (r *auditRepository) List(ctx context.Context, f models.AuditFilter, limit, offset int) ([]models.AuditLog, int64, error) {
	q := auditQuery(f)
	total, err := r.coll.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cursor, err := r.coll.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query audit logs: %w", err)
	}
	defer cursor.Close(ctx)

	logs := []models.AuditLog{}
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode audit logs: %w", err)
	}
	return logs, total, nil
}
