package mongostore

import (
	"context"
	"fmt"
	"time"

	"eventflex/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MessageRepository interface {
	Insert(ctx context.Context, msg *models.Message) error
	ListConversation(ctx context.Context, conversationID string, limit, offset int) ([]models.Message, int64, error)
	ListConversations(ctx context.Context, userID uint) ([]models.Conversation, error)
	// MarkRead stamps every unread message addressed to userID in the conversation.
	MarkRead(ctx context.Context, conversationID string, userID uint) (int64, error)
}

type messageRepository struct {
	coll *mongo.Collection
}

func NewMessageRepository(db *mongo.Database) MessageRepository {
	return &messageRepository{coll: db.Collection(messageCollection)}
}

func (r *messageRepository) Insert(ctx context.Context, msg *models.Message) error {
	res, err := r.coll.InsertOne(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		msg.ID = id
	}
	return nil
}

func (r *messageRepository) ListConversation(ctx context.Context, conversationID string, limit, offset int) ([]models.Message, int64, error) {
	q := bson.M{"conversation_id": conversationID}
	total, err := r.coll.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count messages: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cursor, err := r.coll.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query messages: %w", err)
	}
	defer cursor.Close(ctx)

	msgs := []models.Message{}
	if err := cursor.All(ctx, &msgs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode messages: %w", err)
	}
	return msgs, total, nil
}

func (r *messageRepository) ListConversations(ctx context.Context, userID uint) ([]models.Conversation, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"$or": bson.A{
			bson.M{"from_user_id": userID},
			bson.M{"to_user_id": userID},
		}}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		{{Key: "$group", Value: bson.M{
			"_id":          "$conversation_id",
			"last_message": bson.M{"$first": "$$ROOT"},
			"unread": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$and": bson.A{
					bson.M{"$eq": bson.A{"$to_user_id", userID}},
					bson.M{"$not": bson.A{"$read_at"}},
				}},
				1, 0,
			}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "last_message.created_at", Value: -1}}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate conversations: %w", err)
	}
	defer cursor.Close(ctx)

	convs := []models.Conversation{}
	if err := cursor.All(ctx, &convs); err != nil {
		return nil, fmt.Errorf("failed to decode conversations: %w", err)
	}
	for i := range convs {
		last := convs[i].LastMessage
		if last.FromUserID == userID {
			convs[i].PartnerID = last.ToUserID
		} else {
			convs[i].PartnerID = last.FromUserID
		}
	}
	return convs, nil
}

func (r *messageRepository) MarkRead(ctx context.Context, conversationID string, userID uint) (int64, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"conversation_id": conversationID, "to_user_id": userID, "read_at": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"read_at": time.Now()}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark messages read: %w", err)
	}
	return res.ModifiedCount, nil
}
