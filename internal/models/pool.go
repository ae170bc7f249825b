package models

import (
	"time"

	"gorm.io/gorm"
)

// Pool statuses
const (
	PoolStatusOpen   = "open"
	PoolStatusClosed = "closed"
)

// Invitation statuses
const (
	InvitationInvited  = "invited"
	InvitationApplied  = "applied"
	InvitationAccepted = "accepted"
	InvitationDeclined = "declined"
	InvitationRejected = "rejected"
	InvitationExpired  = "expired"
)

// Pool is the set of gig workers an organizer recruits for one event.
type Pool struct {
	gorm.Model
	EventID     uint   `gorm:"not null;uniqueIndex" json:"event_id"`
	OrganizerID uint   `gorm:"not null;index" json:"organizer_id"`
	RoleTitle   string `gorm:"not null" json:"role_title"`
	Capacity    int    `gorm:"not null" json:"capacity"`
	PayNote     string `json:"pay_note"`
	Status      string `gorm:"default:'open'" json:"status"`
	Event       *Event `gorm:"foreignKey:EventID" json:"event,omitempty"`
}

// PoolInvitation links a gig to a pool, whether the organizer invited them or they applied.
type PoolInvitation struct {
	gorm.Model
	PoolID             uint       `gorm:"not null;uniqueIndex:idx_pool_gig" json:"pool_id"`
	GigID              uint       `gorm:"not null;uniqueIndex:idx_pool_gig;index" json:"gig_id"`
	Status             string     `gorm:"not null;index" json:"status"`
	Attended           bool       `gorm:"default:false" json:"attended"`
	AttendanceMarkedAt *time.Time `json:"attendance_marked_at,omitempty"`
	RespondedAt        *time.Time `json:"responded_at,omitempty"`
	Pool               *Pool      `gorm:"foreignKey:PoolID" json:"pool,omitempty"`
}

// Pending reports whether the invitation still awaits a decision.
func (i *PoolInvitation) Pending() bool {
	return i.Status == InvitationInvited || i.Status == InvitationApplied
}
