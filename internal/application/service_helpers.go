package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/ports"
)

const (
	EventProfileUpdated    = "user.profile_updated"
	EventConnectionUpdated = "connection.updated"

	idempotencyCompleted = "completed"
)

type profileUpdatedEventData struct {
	UserID      string `json:"user_id"`
	ProfileType string `json:"profile_type"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	Visibility  string `json:"visibility,omitempty"`
	UpdatedAt   string `json:"updated_at"`
}

type connectionUpdatedEventData struct {
	ConnectionID string `json:"connection_id"`
	RequesterID  string `json:"requester_id"`
	TargetID     string `json:"target_id"`
	State        string `json:"state"`
	UpdatedAt    string `json:"updated_at"`
}

func (s *Service) enqueueEvent(ctx context.Context, eventType, partitionKey string, data any) error {
	occurredAt := s.nowFn()
	eventID := uuid.New()
	payload, err := json.Marshal(map[string]any{
		"event_id":           eventID.String(),
		"event_type":         eventType,
		"occurred_at":        occurredAt.Format(time.RFC3339),
		"source_service":     s.cfg.ServiceName,
		"trace_id":           "",
		"schema_version":     "1.0",
		"partition_key_path": "data.user_id",
		"partition_key":      partitionKey,
		"data":               data,
	})
	if err != nil {
		return err
	}
	return s.outbox.Enqueue(ctx, ports.OutboxEvent{
		EventID:          eventID,
		EventType:        eventType,
		PartitionKey:     partitionKey,
		PartitionKeyPath: "data.user_id",
		Payload:          payload,
		OccurredAt:       occurredAt,
		SchemaVersion:    "1.0",
	})
}

func (s *Service) enqueueProfileUpdated(ctx context.Context, profile domain.Profile) {
	err := s.enqueueEvent(ctx, EventProfileUpdated, profile.UserID.String(), profileUpdatedEventData{
		UserID:      profile.UserID.String(),
		ProfileType: string(profile.Type),
		Username:    profile.Username,
		DisplayName: profile.DisplayName,
		AvatarURL:   profile.AvatarURL,
		Visibility:  string(profile.Settings.Visibility),
		UpdatedAt:   s.nowFn().Format(time.RFC3339),
	})
	s.logIgnored(ctx, "enqueue_profile_updated", err)
}

func (s *Service) enqueueConnectionUpdated(ctx context.Context, conn domain.Connection) {
	err := s.enqueueEvent(ctx, EventConnectionUpdated, conn.RequesterID.String(), connectionUpdatedEventData{
		ConnectionID: conn.ConnectionID.String(),
		RequesterID:  conn.RequesterID.String(),
		TargetID:     conn.TargetID.String(),
		State:        string(conn.State),
		UpdatedAt:    s.nowFn().Format(time.RFC3339),
	})
	s.logIgnored(ctx, "enqueue_connection_updated", err)
}

// logIgnored records failures of side effects that must not fail the
// operation that triggered them.
func (s *Service) logIgnored(ctx context.Context, operation string, err error) {
	if err == nil {
		return
	}
	s.logger.WarnContext(ctx, "side effect failed",
		"module", "application",
		"layer", "service",
		"operation", operation,
		"outcome", "ignored",
		"error", err,
	)
}

func hashRequest(v any) string {
	raw, _ := json.Marshal(v)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

func idempotencyScope(actor Actor, key string) string {
	return actor.UserID.String() + ":" + key
}

// replayIdempotent decodes the stored response of a completed request made
// with the same key and body into out. A live key reused for a different
// body is a conflict.
func (s *Service) replayIdempotent(ctx context.Context, actor Actor, key string, request, out any) (bool, error) {
	if key == "" {
		return false, nil
	}
	rec, err := s.idempotency.Get(ctx, idempotencyScope(actor, key))
	if err != nil || rec == nil {
		return false, err
	}
	if !s.nowFn().Before(rec.ExpiresAt) {
		return false, nil
	}
	if rec.RequestHash != hashRequest(request) {
		return false, fmt.Errorf("%w: key was used for a different request", domain.ErrIdempotencyConflict)
	}
	if rec.Status != idempotencyCompleted || len(rec.ResponseBody) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(rec.ResponseBody, out); err != nil {
		return false, fmt.Errorf("decode stored response: %w", err)
	}
	return true, nil
}

func (s *Service) reserveIdempotency(ctx context.Context, actor Actor, key string, request any) error {
	if key == "" {
		return nil
	}
	err := s.idempotency.Reserve(ctx, idempotencyScope(actor, key), hashRequest(request), s.nowFn().Add(s.cfg.IdempotencyTTL))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIdempotencyConflict, err)
	}
	return nil
}

// completeIdempotency stores the response so later replays return it
// without running the mutation again.
func (s *Service) completeIdempotency(ctx context.Context, actor Actor, key string, code int, response any) {
	if key == "" {
		return
	}
	raw, err := json.Marshal(response)
	if err != nil {
		s.logIgnored(ctx, "complete_idempotency", err)
		return
	}
	s.logIgnored(ctx, "complete_idempotency", s.idempotency.Complete(ctx, idempotencyScope(actor, key), code, raw, s.nowFn()))
}

// resolveRef turns "current" (or an empty ref) into the caller's id and
// parses anything else as a user id.
func resolveRef(actor Actor, ref string) (uuid.UUID, error) {
	switch strings.ToLower(strings.TrimSpace(ref)) {
	case "", "current", "me":
		if actor.UserID == uuid.Nil {
			return uuid.Nil, domain.ErrUnauthorized
		}
		return actor.UserID, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(ref))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid user id", domain.ErrInvalidInput)
	}
	return id, nil
}

func cacheKeyProfile(userID uuid.UUID) string {
	return "profile:user:" + userID.String()
}

func cacheKeySearchRate(userID uuid.UUID) string {
	return "profile:search:rate:" + userID.String()
}

// loadProfile reads a profile through the cache.
func (s *Service) loadProfile(ctx context.Context, userID uuid.UUID) (domain.Profile, error) {
	key := cacheKeyProfile(userID)
	raw, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		var cached domain.Profile
		if jsonErr := json.Unmarshal([]byte(raw), &cached); jsonErr == nil {
			return cached, nil
		}
	case !errors.Is(err, ports.ErrCacheMiss):
		s.logIgnored(ctx, "cache_get_profile", err)
	}

	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return domain.Profile{}, err
	}
	if encoded, jsonErr := json.Marshal(profile); jsonErr == nil {
		s.logIgnored(ctx, "cache_set_profile", s.cache.Set(ctx, key, string(encoded), s.cfg.ProfileCacheTTL))
	}
	return profile, nil
}

func (s *Service) invalidateProfile(ctx context.Context, userIDs ...uuid.UUID) {
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, cacheKeyProfile(id))
	}
	s.logIgnored(ctx, "cache_delete_profile", s.cache.Delete(ctx, keys...))
}

// connectionStatus reports how viewer relates to target.
func (s *Service) connectionStatus(ctx context.Context, viewer, target uuid.UUID) (domain.ConnectionStatus, error) {
	if viewer == target || viewer == uuid.Nil {
		return domain.ConnectionStatusNone, nil
	}
	conn, err := s.connections.GetBetween(ctx, viewer, target)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ConnectionStatusNone, nil
	}
	if err != nil {
		return "", err
	}
	return conn.StatusFor(viewer), nil
}

// authorizeView loads the target profile and resolves what actor may see.
func (s *Service) authorizeView(ctx context.Context, actor Actor, userID uuid.UUID) (domain.Profile, domain.Permissions, domain.ConnectionStatus, error) {
	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return domain.Profile{}, domain.Permissions{}, "", err
	}
	status, err := s.connectionStatus(ctx, actor.UserID, userID)
	if err != nil {
		return domain.Profile{}, domain.Permissions{}, "", err
	}
	perms := domain.ResolvePermissions(actor.viewer(), profile, status == domain.ConnectionStatusConnected)
	if !perms.CanView {
		return domain.Profile{}, domain.Permissions{}, "", fmt.Errorf("%w: profile is not visible", domain.ErrForbidden)
	}
	return profile, perms, status, nil
}

func (s *Service) pageBounds(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = s.cfg.DefaultPageSize
	}
	if limit > s.cfg.MaxPageSize {
		limit = s.cfg.MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// recordActivity appends an activity and rolls it into the contribution
// graph and the profile counters.
func (s *Service) recordActivity(ctx context.Context, item domain.ActivityItem) error {
	if item.ActivityID == uuid.Nil {
		item.ActivityID = uuid.New()
	}
	if item.OccurredAt.IsZero() {
		item.OccurredAt = s.nowFn()
	}
	item.OccurredAt = item.OccurredAt.UTC()
	profile, err := s.profiles.GetByUserID(ctx, item.UserID)
	if err != nil {
		return err
	}
	if err := s.activities.Append(ctx, item); err != nil {
		return err
	}
	day := domain.DayKey(item.OccurredAt, s.cfg.Location)
	if err := s.contributions.Increment(ctx, item.UserID, day, 1); err != nil {
		return err
	}

	stats := profile.Stats
	stats.Posts++
	stats.Streak = domain.NextStreak(profile.LastActiveAt, stats.Streak, item.OccurredAt, s.cfg.Location)
	lastActive := item.OccurredAt
	if profile.LastActiveAt != nil && profile.LastActiveAt.After(lastActive) {
		lastActive = *profile.LastActiveAt
		stats.Streak = profile.Stats.Streak
	}
	if err := s.stats.Save(ctx, item.UserID, stats, &lastActive); err != nil {
		return err
	}
	s.invalidateProfile(ctx, item.UserID)
	return nil
}

func (s *Service) notify(ctx context.Context, n domain.Notification) {
	if n.NotificationID == uuid.Nil {
		n.NotificationID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.nowFn()
	}
	s.logIgnored(ctx, "create_notification", s.notifications.Create(ctx, n))
}

// refreshConnectionCount stores the accepted connection count on a profile.
func (s *Service) refreshConnectionCount(ctx context.Context, userID uuid.UUID) {
	count, err := s.connections.CountAccepted(ctx, userID)
	if err != nil {
		s.logIgnored(ctx, "count_connections", err)
		return
	}
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		s.logIgnored(ctx, "count_connections", err)
		return
	}
	stats := profile.Stats
	stats.Connections = int(count)
	s.logIgnored(ctx, "count_connections", s.stats.Save(ctx, userID, stats, nil))
	s.invalidateProfile(ctx, userID)
}
