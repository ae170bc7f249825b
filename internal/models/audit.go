package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuditLog is stored in MongoDB; details vary per action.
type AuditLog struct {
	ID       primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	ActorID  uint                   `bson:"actor_id" json:"actor_id"`
	Action   string                 `bson:"action" json:"action"`
	Entity   string                 `bson:"entity" json:"entity"`
	EntityID uint                   `bson:"entity_id" json:"entity_id"`
	Details  map[string]interface{} `bson:"details,omitempty" json:"details,omitempty"`
	IP       string                 `bson:"ip,omitempty" json:"ip,omitempty"`
	At       time.Time              `bson:"at" json:"at"`
}

// AuditFilter narrows audit log listings. Zero values match everything.
type AuditFilter struct {
	ActorID uint
	Action  string
	Entity  string
}
