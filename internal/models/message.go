package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Message struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ConversationID string             `bson:"conversation_id" json:"conversation_id"`
	FromUserID     uint               `bson:"from_user_id" json:"from_user_id"`
	ToUserID       uint               `bson:"to_user_id" json:"to_user_id"`
	Body           string             `bson:"body" json:"body"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	ReadAt         *time.Time         `bson:"read_at,omitempty" json:"read_at,omitempty"`
}

// Conversation summarizes a thread with one partner.
type Conversation struct {
	ConversationID string  `bson:"_id" json:"conversation_id"`
	PartnerID      uint    `bson:"-" json:"partner_id"`
	LastMessage    Message `bson:"last_message" json:"last_message"`
	Unread         int     `bson:"unread" json:"unread"`
}

// ConversationKey is the same for both directions between two users.
func ConversationKey(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}
