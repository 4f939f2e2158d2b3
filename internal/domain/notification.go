package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	NotificationConnectionRequested = "connection_requested"
	NotificationConnectionAccepted  = "connection_accepted"
	NotificationProfileViewed       = "profile_viewed"
	NotificationActivityRecorded    = "activity_recorded"
)

type Notification struct {
	NotificationID uuid.UUID         `json:"id"`
	UserID         uuid.UUID         `json:"userId"`
	Type           string            `json:"type"`
	Title          string            `json:"title"`
	Body           string            `json:"body"`
	Link           string            `json:"link,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
	ReadAt         *time.Time        `json:"readAt,omitempty"`
}

type NotificationFilter struct {
	UnreadOnly bool
	Limit      int
	Offset     int
}

func (n Notification) IsUnread() bool { return n.ReadAt == nil }

func (n *Notification) MarkRead(at time.Time) {
	if n.ReadAt == nil {
		t := at.UTC()
		n.ReadAt = &t
	}
}
