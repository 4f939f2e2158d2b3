package application

import (
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
)

type Config struct {
	ServiceName      string
	ProfileCacheTTL  time.Duration
	IdempotencyTTL   time.Duration
	EventDedupTTL    time.Duration
	SearchRateLimit  int
	SearchRateWindow time.Duration
	DefaultPageSize  int
	MaxPageSize      int
	Location         *time.Location
}

type GetProfileRequest struct {
	Ref                  string
	Type                 string
	IncludeActivities    bool
	IncludeContributions bool
	IncludeConnections   bool
}

type ContactPatch struct {
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=200"`
	City    *string `json:"city,omitempty" validate:"omitempty,max=100"`
	Country *string `json:"country,omitempty" validate:"omitempty,max=100"`
	Website *string `json:"website,omitempty"`
}

// UpdateProfileRequest is a partial update. Role payloads may only be
// replaced by elevated callers and must match the profile type.
type UpdateProfileRequest struct {
	DisplayName *string                `json:"displayName,omitempty"`
	Username    *string                `json:"username,omitempty"`
	Bio         *string                `json:"bio,omitempty"`
	AvatarURL   *string                `json:"avatarUrl,omitempty" validate:"omitempty,url"`
	CoverURL    *string                `json:"coverUrl,omitempty" validate:"omitempty,url"`
	SchoolID    *string                `json:"schoolId,omitempty" validate:"omitempty,max=64"`
	Contact     *ContactPatch          `json:"contact,omitempty"`
	Student     *domain.StudentDetails `json:"student,omitempty"`
	Teacher     *domain.TeacherDetails `json:"teacher,omitempty"`
	Parent      *domain.ParentDetails  `json:"parent,omitempty"`
	Staff       *domain.StaffDetails   `json:"staff,omitempty"`
}

func (r UpdateProfileRequest) hasPayload() bool {
	return r.Student != nil || r.Teacher != nil || r.Parent != nil || r.Staff != nil
}

type UpdateSettingsRequest struct {
	Theme                   *string `json:"theme,omitempty" validate:"omitempty,oneof=light dark system"`
	Language                *string `json:"language,omitempty" validate:"omitempty,min=2,max=10"`
	EmailNotifications      *bool   `json:"emailNotifications,omitempty"`
	PushNotifications       *bool   `json:"pushNotifications,omitempty"`
	SMSNotifications        *bool   `json:"smsNotifications,omitempty"`
	Visibility              *string `json:"visibility,omitempty" validate:"omitempty,oneof=public school private"`
	ShowEmail               *bool   `json:"showEmail,omitempty"`
	ShowPhone               *bool   `json:"showPhone,omitempty"`
	AllowMessages           *bool   `json:"allowMessages,omitempty"`
	AllowConnectionRequests *bool   `json:"allowConnectionRequests,omitempty"`
}

type ConnectionRequest struct {
	TargetUserID string `json:"targetUserId" validate:"required,uuid"`
	Message      string `json:"message,omitempty" validate:"max=280"`
}

type ActivityQuery struct {
	Limit  int
	Offset int
	Type   string
}

type PageQuery struct {
	Limit  int
	Offset int
}

type NotificationQuery struct {
	UnreadOnly bool
	Limit      int
	Offset     int
}

type SearchRequest struct {
	Query  string `validate:"max=100"`
	Role   string `validate:"max=32"`
	Limit  int    `validate:"gte=0"`
	Offset int    `validate:"gte=0"`
}

type ProfileResponse struct {
	domain.Profile
	ConnectionStatus domain.ConnectionStatus  `json:"connectionStatus,omitempty"`
	Activities       []domain.ActivityItem    `json:"activities,omitempty"`
	Contributions    *domain.ContributionData `json:"contributions,omitempty"`
	Connections      []ConnectionView         `json:"connections,omitempty"`
}

type ActivityPage struct {
	Activities []domain.ActivityItem `json:"activities"`
	HasMore    bool                  `json:"hasMore"`
}

// ConnectionView describes the other participant of a connection, with the
// status as seen from the profile whose list is being read.
type ConnectionView struct {
	ConnectionID uuid.UUID               `json:"id"`
	UserID       uuid.UUID               `json:"userId"`
	Username     string                  `json:"username,omitempty"`
	DisplayName  string                  `json:"displayName,omitempty"`
	AvatarURL    string                  `json:"avatarUrl,omitempty"`
	Type         domain.ProfileType      `json:"type,omitempty"`
	Status       domain.ConnectionStatus `json:"status"`
	Message      string                  `json:"message,omitempty"`
	CreatedAt    time.Time               `json:"createdAt"`
}

type ConnectionPage struct {
	Connections []ConnectionView `json:"connections"`
	Total       int64            `json:"total"`
}

type ProfileSummary struct {
	UserID      uuid.UUID          `json:"userId"`
	Username    string             `json:"username"`
	DisplayName string             `json:"displayName"`
	AvatarURL   string             `json:"avatarUrl,omitempty"`
	Type        domain.ProfileType `json:"type"`
	SchoolID    string             `json:"schoolId,omitempty"`
}

type SearchResponse struct {
	Profiles []ProfileSummary `json:"profiles"`
	Total    int64            `json:"total"`
}

type NotificationPage struct {
	Notifications []domain.Notification `json:"notifications"`
	Total         int64                 `json:"total"`
	Unread        int64                 `json:"unread"`
}

type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

func toProfileSummary(p domain.Profile) ProfileSummary {
	return ProfileSummary{
		UserID:      p.UserID,
		Username:    p.Username,
		DisplayName: p.DisplayName,
		AvatarURL:   p.AvatarURL,
		Type:        p.Type,
		SchoolID:    p.SchoolID,
	}
}

// PageRequest selects the composed profile page.
type PageRequest struct {
	Ref              string
	Tab              string
	SidebarOpen      bool
	Lang             string
	Child            string
	Subject          string
	TimelineFilter   string
	TimelineExpanded bool
}
