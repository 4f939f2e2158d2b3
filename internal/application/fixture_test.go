package application_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/adapters/memory"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/application"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/ports"
)

var fixtureNow = time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

type staticVerifier map[string]ports.AuthClaims

func (v staticVerifier) Verify(_ context.Context, token string) (ports.AuthClaims, error) {
	claims, ok := v[token]
	if !ok {
		return ports.AuthClaims{}, errors.New("unknown token")
	}
	return claims, nil
}

type fixture struct {
	service *application.Service
	repos   *memory.Repositories
	tokens  staticVerifier
	now     time.Time
}

func newFixture() *fixture {
	f := &fixture{
		repos:  memory.NewRepositories(),
		tokens: staticVerifier{},
		now:    fixtureNow,
	}
	f.service = application.NewService(application.Dependencies{
		Config:        application.Config{SearchRateLimit: 3},
		Logger:        slog.New(slog.NewJSONHandler(io.Discard, nil)),
		Profiles:      f.repos.Profiles,
		Stats:         f.repos.Stats,
		Activities:    f.repos.Activities,
		Contributions: f.repos.Contributions,
		Connections:   f.repos.Connections,
		Notifications: f.repos.Notifications,
		Outbox:        f.repos.Outbox,
		EventDedup:    f.repos.EventDedup,
		Idempotency:   f.repos.Idempotency,
		Tokens:        f.tokens,
		Cache:         memory.NewCache(),
		Clock:         func() time.Time { return f.now },
	})
	return f
}

// register creates a profile through the user.registered consumer path.
func (f *fixture) register(t *testing.T, role, username string) application.Actor {
	t.Helper()
	userID := uuid.New()
	payload, _ := json.Marshal(map[string]any{
		"event_id": uuid.NewString(),
		"data": map[string]any{
			"user_id":      userID.String(),
			"email":        username + "@school.test",
			"role":         role,
			"username":     username,
			"display_name": "User " + username,
		},
	})
	if err := f.service.HandleEvent(context.Background(), application.EventUserRegistered, payload); err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return application.Actor{UserID: userID, Email: username + "@school.test", Role: domain.NormalizeRole(role)}
}

func (f *fixture) recordActivity(t *testing.T, userID uuid.UUID, kind domain.ActivityType, at time.Time) {
	t.Helper()
	payload, _ := json.Marshal(map[string]any{
		"event_id": uuid.NewString(),
		"data": map[string]any{
			"user_id":       userID.String(),
			"activity_type": string(kind),
			"title":         string(kind),
			"occurred_at":   at.Format(time.RFC3339),
		},
	})
	if err := f.service.HandleEvent(context.Background(), application.EventActivityRecorded, payload); err != nil {
		t.Fatalf("record activity: %v", err)
	}
}

func ptr[T any](v T) *T { return &v }
