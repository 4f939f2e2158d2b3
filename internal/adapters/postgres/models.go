package postgres

import (
	"time"

	"github.com/google/uuid"
)

type profileModel struct {
	ProfileID             uuid.UUID  `gorm:"column:profile_id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID                uuid.UUID  `gorm:"column:user_id"`
	ProfileType           string     `gorm:"column:profile_type"`
	Username              string     `gorm:"column:username"`
	DisplayName           string     `gorm:"column:display_name"`
	Bio                   string     `gorm:"column:bio"`
	AvatarURL             string     `gorm:"column:avatar_url"`
	CoverURL              string     `gorm:"column:cover_url"`
	SchoolID              string     `gorm:"column:school_id"`
	ContactEmail          string     `gorm:"column:contact_email"`
	ContactPhoneEncrypted []byte     `gorm:"column:contact_phone_encrypted"`
	ContactAddress        string     `gorm:"column:contact_address"`
	ContactCity           string     `gorm:"column:contact_city"`
	ContactCountry        string     `gorm:"column:contact_country"`
	ContactWebsite        string     `gorm:"column:contact_website"`
	Settings              string     `gorm:"column:settings;type:jsonb"`
	Details               string     `gorm:"column:details;type:jsonb"`
	ViewsCount            int        `gorm:"column:views_count"`
	ConnectionsCount      int        `gorm:"column:connections_count"`
	PostsCount            int        `gorm:"column:posts_count"`
	StreakDays            int        `gorm:"column:streak_days"`
	LastActiveAt          *time.Time `gorm:"column:last_active_at"`
	CreatedAt             time.Time  `gorm:"column:created_at"`
	UpdatedAt             time.Time  `gorm:"column:updated_at"`
	DeletedAt             *time.Time `gorm:"column:deleted_at"`
}

func (profileModel) TableName() string { return "school_profiles" }

type activityModel struct {
	ActivityID   uuid.UUID `gorm:"column:activity_id;type:uuid;primaryKey"`
	UserID       uuid.UUID `gorm:"column:user_id"`
	ActivityType string    `gorm:"column:activity_type"`
	Title        string    `gorm:"column:title"`
	Description  string    `gorm:"column:description"`
	Metadata     string    `gorm:"column:metadata;type:jsonb"`
	Link         string    `gorm:"column:link"`
	OccurredAt   time.Time `gorm:"column:occurred_at"`
}

func (activityModel) TableName() string { return "profile_activities" }

type contributionModel struct {
	UserID uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	Day    string    `gorm:"column:day;primaryKey"`
	Count  int       `gorm:"column:count"`
}

func (contributionModel) TableName() string { return "profile_contributions" }

type connectionModel struct {
	ConnectionID uuid.UUID  `gorm:"column:connection_id;type:uuid;primaryKey"`
	RequesterID  uuid.UUID  `gorm:"column:requester_id"`
	TargetID     uuid.UUID  `gorm:"column:target_id"`
	State        string     `gorm:"column:state"`
	Message      string     `gorm:"column:message"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	RespondedAt  *time.Time `gorm:"column:responded_at"`
}

func (connectionModel) TableName() string { return "profile_connections" }

type notificationModel struct {
	NotificationID uuid.UUID  `gorm:"column:notification_id;type:uuid;primaryKey"`
	UserID         uuid.UUID  `gorm:"column:user_id"`
	Type           string     `gorm:"column:type"`
	Title          string     `gorm:"column:title"`
	Body           string     `gorm:"column:body"`
	Link           string     `gorm:"column:link"`
	Metadata       string     `gorm:"column:metadata;type:jsonb"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	ReadAt         *time.Time `gorm:"column:read_at"`
}

func (notificationModel) TableName() string { return "profile_notifications" }

type profileOutboxModel struct {
	OutboxID         uuid.UUID  `gorm:"column:outbox_id;type:uuid;primaryKey"`
	EventType        string     `gorm:"column:event_type"`
	PartitionKey     string     `gorm:"column:partition_key"`
	PartitionKeyPath string     `gorm:"column:partition_key_path"`
	Payload          string     `gorm:"column:payload"`
	SchemaVersion    string     `gorm:"column:schema_version"`
	TraceID          string     `gorm:"column:trace_id"`
	CreatedAt        time.Time  `gorm:"column:created_at"`
	FirstSeenAt      time.Time  `gorm:"column:first_seen_at"`
	PublishedAt      *time.Time `gorm:"column:published_at"`
	RetryCount       int        `gorm:"column:retry_count"`
	LastError        *string    `gorm:"column:last_error"`
	LastErrorAt      *time.Time `gorm:"column:last_error_at"`
}

func (profileOutboxModel) TableName() string { return "profile_outbox" }

type profileIdempotencyModel struct {
	IdempotencyKey string    `gorm:"column:idempotency_key;primaryKey"`
	RequestHash    string    `gorm:"column:request_hash"`
	Status         string    `gorm:"column:status"`
	ResponseCode   int       `gorm:"column:response_code"`
	ResponseBody   *string   `gorm:"column:response_body"`
	ExpiresAt      time.Time `gorm:"column:expires_at"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (profileIdempotencyModel) TableName() string { return "profile_idempotency" }

type profileEventDedupModel struct {
	EventID     string    `gorm:"column:event_id;primaryKey"`
	EventType   string    `gorm:"column:event_type"`
	ProcessedAt time.Time `gorm:"column:processed_at"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
}

func (profileEventDedupModel) TableName() string { return "profile_event_dedup" }
