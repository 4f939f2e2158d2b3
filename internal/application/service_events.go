package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
)

const (
	EventUserRegistered   = "user.registered"
	EventUserDeleted      = "user.deleted"
	EventActivityRecorded = "school.activity_recorded"
)

type userRegisteredEvent struct {
	EventID string `json:"event_id"`
	Data    struct {
		UserID      string `json:"user_id"`
		Email       string `json:"email"`
		Role        string `json:"role"`
		Username    string `json:"username"`
		DisplayName string `json:"display_name"`
		SchoolID    string `json:"school_id"`
	} `json:"data"`
}

type userDeletedEvent struct {
	EventID string `json:"event_id"`
	Data    struct {
		UserID string `json:"user_id"`
	} `json:"data"`
}

type activityRecordedEvent struct {
	EventID string `json:"event_id"`
	Data    struct {
		UserID       string            `json:"user_id"`
		ActivityID   string            `json:"activity_id"`
		ActivityType string            `json:"activity_type"`
		Title        string            `json:"title"`
		Description  string            `json:"description"`
		Link         string            `json:"link"`
		Metadata     map[string]string `json:"metadata"`
		OccurredAt   string            `json:"occurred_at"`
	} `json:"data"`
}

// notifiableActivities are the activity types that also notify the owner.
var notifiableActivities = map[domain.ActivityType]struct{}{
	domain.ActivityGradeReceived:      {},
	domain.ActivityAchievementEarned:  {},
	domain.ActivityPaymentMade:        {},
	domain.ActivityAnnouncementPosted: {},
}

// HandleEvent routes an inbound event by type. Unknown types are ignored.
func (s *Service) HandleEvent(ctx context.Context, eventType string, payload []byte) error {
	switch eventType {
	case EventUserRegistered:
		return s.HandleUserRegistered(ctx, payload)
	case EventUserDeleted:
		return s.HandleUserDeleted(ctx, payload)
	case EventActivityRecorded:
		return s.HandleActivityRecorded(ctx, payload)
	default:
		return nil
	}
}

func (s *Service) HandleUserRegistered(ctx context.Context, payload []byte) error {
	var evt userRegisteredEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return fmt.Errorf("%w: invalid user.registered payload", domain.ErrInvalidInput)
	}
	dup, err := s.eventDedup.IsDuplicate(ctx, evt.EventID, s.nowFn())
	if err != nil {
		return err
	}
	if dup {
		return nil
	}
	userID, err := uuid.Parse(evt.Data.UserID)
	if err != nil {
		return fmt.Errorf("%w: invalid user_id", domain.ErrInvalidInput)
	}

	typ, ok := domain.ProfileTypeForRole(domain.NormalizeRole(evt.Data.Role))
	if !ok {
		// users without a school role keep the setup-required state
		return s.eventDedup.MarkProcessed(ctx, evt.EventID, EventUserRegistered, s.nowFn().Add(s.cfg.EventDedupTTL))
	}
	now := s.nowFn()
	profile := domain.EmptyPayloadFor(domain.Profile{
		ProfileID:   uuid.New(),
		UserID:      userID,
		Username:    usernameFor(evt.Data.Username, evt.Data.Email, userID),
		DisplayName: displayNameFor(evt.Data.DisplayName, evt.Data.Email),
		SchoolID:    evt.Data.SchoolID,
		Contact:     domain.ContactInfo{Email: strings.TrimSpace(evt.Data.Email)},
		Settings:    domain.DefaultSettings(now),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, typ)

	created, err := s.profiles.Create(ctx, profile)
	if errors.Is(err, domain.ErrConflict) {
		if _, getErr := s.profiles.GetByUserID(ctx, userID); getErr == nil {
			// redelivery after the dedup record expired
			created, err = domain.Profile{}, nil
		} else {
			profile.Username = usernameWithSuffix(profile.Username, userID)
			created, err = s.profiles.Create(ctx, profile)
		}
	}
	if err != nil {
		return err
	}
	if err := s.eventDedup.MarkProcessed(ctx, evt.EventID, EventUserRegistered, now.Add(s.cfg.EventDedupTTL)); err != nil {
		return err
	}
	if created.UserID != uuid.Nil {
		s.enqueueProfileUpdated(ctx, created)
	}
	return nil
}

func (s *Service) HandleUserDeleted(ctx context.Context, payload []byte) error {
	var evt userDeletedEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return fmt.Errorf("%w: invalid user.deleted payload", domain.ErrInvalidInput)
	}
	dup, err := s.eventDedup.IsDuplicate(ctx, evt.EventID, s.nowFn())
	if err != nil {
		return err
	}
	if dup {
		return nil
	}
	userID, err := uuid.Parse(evt.Data.UserID)
	if err != nil {
		return fmt.Errorf("%w: invalid user_id", domain.ErrInvalidInput)
	}
	if err := s.profiles.SoftDeleteByUserID(ctx, userID, s.nowFn()); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	s.invalidateProfile(ctx, userID)
	return s.eventDedup.MarkProcessed(ctx, evt.EventID, EventUserDeleted, s.nowFn().Add(s.cfg.EventDedupTTL))
}

func (s *Service) HandleActivityRecorded(ctx context.Context, payload []byte) error {
	var evt activityRecordedEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return fmt.Errorf("%w: invalid school.activity_recorded payload", domain.ErrInvalidInput)
	}
	dup, err := s.eventDedup.IsDuplicate(ctx, evt.EventID, s.nowFn())
	if err != nil {
		return err
	}
	if dup {
		return nil
	}
	userID, err := uuid.Parse(evt.Data.UserID)
	if err != nil {
		return fmt.Errorf("%w: invalid user_id", domain.ErrInvalidInput)
	}
	activityType := domain.ActivityType(strings.ToLower(strings.TrimSpace(evt.Data.ActivityType)))
	title := strings.TrimSpace(evt.Data.Title)
	if activityType == "" || title == "" {
		return fmt.Errorf("%w: activity_type and title are required", domain.ErrInvalidInput)
	}
	item := domain.ActivityItem{
		UserID:      userID,
		Type:        activityType,
		Title:       title,
		Description: evt.Data.Description,
		Metadata:    evt.Data.Metadata,
		Link:        evt.Data.Link,
	}
	if evt.Data.ActivityID != "" {
		if id, err := uuid.Parse(evt.Data.ActivityID); err == nil {
			item.ActivityID = id
		}
	}
	if evt.Data.OccurredAt != "" {
		at, err := time.Parse(time.RFC3339, evt.Data.OccurredAt)
		if err != nil {
			return fmt.Errorf("%w: occurred_at must be RFC3339", domain.ErrInvalidInput)
		}
		item.OccurredAt = at
	}
	if err := s.recordActivity(ctx, item); err != nil {
		return err
	}
	if _, ok := notifiableActivities[activityType]; ok {
		s.notify(ctx, domain.Notification{
			UserID:   userID,
			Type:     domain.NotificationActivityRecorded,
			Title:    domain.LookupActivityStyle(activityType).Label,
			Body:     title,
			Link:     item.Link,
			Metadata: map[string]string{"activity_type": string(activityType)},
		})
	}
	return s.eventDedup.MarkProcessed(ctx, evt.EventID, EventActivityRecorded, s.nowFn().Add(s.cfg.EventDedupTTL))
}

var (
	unsafeDisplayRunes  = regexp.MustCompile(`[^\p{L}0-9 _-]+`)
	unsafeUsernameRunes = regexp.MustCompile(`[^a-z0-9_.]+`)
)

func displayNameFor(given, email string) string {
	if name := strings.TrimSpace(given); domain.ValidateDisplayName(name) == nil {
		return name
	}
	local := strings.TrimSpace(strings.Split(email, "@")[0])
	local = strings.TrimSpace(unsafeDisplayRunes.ReplaceAllString(local, " "))
	if len([]rune(local)) < 2 {
		local = "School member"
	}
	if runes := []rune(local); len(runes) > 60 {
		local = string(runes[:60])
	}
	return local
}

func usernameFor(given, email string, userID uuid.UUID) string {
	if name := domain.NormalizeUsername(given); domain.ValidateUsername(name) == nil {
		return name
	}
	local := domain.NormalizeUsername(strings.Split(email, "@")[0])
	local = unsafeUsernameRunes.ReplaceAllString(local, "")
	if len(local) > 23 {
		local = local[:23]
	}
	if len(local) < 3 {
		return usernameWithSuffix("user", userID)
	}
	return local
}

func usernameWithSuffix(base string, userID uuid.UUID) string {
	if len(base) > 23 {
		base = base[:23]
	}
	return base + "_" + strings.ReplaceAll(userID.String(), "-", "")[:6]
}
