package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Event statuses
const (
	EventStatusDraft      = "draft"
	EventStatusPublished  = "published"
	EventStatusInProgress = "in_progress"
	EventStatusCompleted  = "completed"
	EventStatusCancelled  = "cancelled"
)

var eventTransitions = map[string][]string{
	EventStatusDraft:      {EventStatusPublished, EventStatusCancelled},
	EventStatusPublished:  {EventStatusInProgress, EventStatusCancelled},
	EventStatusInProgress: {EventStatusCompleted},
}

type Event struct {
	gorm.Model
	HostID       uint           `gorm:"not null;index" json:"host_id"`
	OrganizerID  *uint          `gorm:"index" json:"organizer_id"`
	Title        string         `gorm:"not null" json:"title"`
	Description  string         `json:"description"`
	Venue        string         `json:"venue"`
	City         string         `gorm:"index" json:"city"`
	StartsAt     time.Time      `gorm:"not null" json:"starts_at"`
	EndsAt       time.Time      `gorm:"not null" json:"ends_at"`
	Budget       int64          `json:"budget"`
	RequiredGigs int            `json:"required_gigs"`
	Skills       pq.StringArray `gorm:"type:text[]" json:"skills"`
	Status       string         `gorm:"default:'draft';index" json:"status"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
}

// CanTransition reports whether the event may move to the target status.
func (e *Event) CanTransition(to string) bool {
	for _, next := range eventTransitions[e.Status] {
		if next == to {
			return true
		}
	}
	return false
}

// Editable reports whether the event details may still change.
func (e *Event) Editable() bool {
	return e.Status == EventStatusDraft || e.Status == EventStatusPublished
}

// IsOrganizer reports whether userID is the assigned organizer.
func (e *Event) IsOrganizer(userID uint) bool {
	return e.OrganizerID != nil && *e.OrganizerID == userID
}
