package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
)

type ProfileSearchQuery struct {
	Query          string
	Type           domain.ProfileType
	ExcludePrivate bool
	Limit          int
	Offset         int
}

type ProfileRepository interface {
	Create(ctx context.Context, profile domain.Profile) (domain.Profile, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (domain.Profile, error)
	Update(ctx context.Context, profile domain.Profile) (domain.Profile, error)
	SoftDeleteByUserID(ctx context.Context, userID uuid.UUID, deletedAt time.Time) error
	Search(ctx context.Context, query ProfileSearchQuery) ([]domain.Profile, int64, error)
}

type ProfileStatsRepository interface {
	IncrementViews(ctx context.Context, userID uuid.UUID) error
	Save(ctx context.Context, userID uuid.UUID, stats domain.ActivityStats, lastActiveAt *time.Time) error
}

type ActivityRepository interface {
	Append(ctx context.Context, item domain.ActivityItem) error
	// List returns items newest first.
	List(ctx context.Context, userID uuid.UUID, filter domain.ActivityFilter) ([]domain.ActivityItem, error)
}

type ContributionRepository interface {
	Increment(ctx context.Context, userID uuid.UUID, day string, delta int) error
	// ListRange returns counts keyed by day for days in [from, to].
	ListRange(ctx context.Context, userID uuid.UUID, from, to string) (map[string]int, error)
}

type ConnectionRepository interface {
	Create(ctx context.Context, conn domain.Connection) error
	GetByID(ctx context.Context, connectionID uuid.UUID) (domain.Connection, error)
	// GetBetween finds the connection linking a and b in either direction.
	GetBetween(ctx context.Context, a, b uuid.UUID) (domain.Connection, error)
	Update(ctx context.Context, conn domain.Connection) error
	Delete(ctx context.Context, connectionID uuid.UUID) error
	// ListByUserID returns pending and accepted connections involving userID.
	ListByUserID(ctx context.Context, userID uuid.UUID, acceptedOnly bool, limit, offset int) ([]domain.Connection, int64, error)
	CountAccepted(ctx context.Context, userID uuid.UUID) (int64, error)
}

type NotificationPage struct {
	Items  []domain.Notification
	Total  int64
	Unread int64
}

type NotificationRepository interface {
	Create(ctx context.Context, n domain.Notification) error
	GetByID(ctx context.Context, notificationID uuid.UUID) (domain.Notification, error)
	Update(ctx context.Context, n domain.Notification) error
	Delete(ctx context.Context, notificationID uuid.UUID) error
	ListByUserID(ctx context.Context, userID uuid.UUID, filter domain.NotificationFilter) (NotificationPage, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error)
}

type OutboxEvent struct {
	EventID          uuid.UUID
	EventType        string
	PartitionKey     string
	PartitionKeyPath string
	Payload          []byte
	OccurredAt       time.Time
	SchemaVersion    string
	TraceID          string
}

type OutboxRecord struct {
	OutboxID     uuid.UUID
	EventType    string
	PartitionKey string
	Payload      []byte
	RetryCount   int
	PublishedAt  *time.Time
	LastError    *string
	LastErrorAt  *time.Time
	FirstSeenAt  time.Time
}

type OutboxRepository interface {
	Enqueue(ctx context.Context, event OutboxEvent) error
	FetchUnpublished(ctx context.Context, limit int) ([]OutboxRecord, error)
	MarkPublished(ctx context.Context, outboxID uuid.UUID, at time.Time) error
	MarkFailed(ctx context.Context, outboxID uuid.UUID, errMsg string, at time.Time) error
	// PurgePublished deletes rows published before the cutoff.
	PurgePublished(ctx context.Context, before time.Time) (int64, error)
}

type EventDedupRepository interface {
	IsDuplicate(ctx context.Context, eventID string, now time.Time) (bool, error)
	MarkProcessed(ctx context.Context, eventID, eventType string, expiresAt time.Time) error
}

type IdempotencyRecord struct {
	Key          string
	RequestHash  string
	Status       string
	ResponseCode int
	ResponseBody []byte
	ExpiresAt    time.Time
}

type IdempotencyRepository interface {
	Get(ctx context.Context, key string) (*IdempotencyRecord, error)
	Reserve(ctx context.Context, key, requestHash string, expiresAt time.Time) error
	Complete(ctx context.Context, key string, responseCode int, responseBody []byte, at time.Time) error
}
