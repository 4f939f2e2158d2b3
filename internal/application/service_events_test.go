package application_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/application"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
)

func TestActivityRecordedFeedsContributionsAndStreak(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	student := f.register(t, "STUDENT", "amina")

	yesterday := f.now.AddDate(0, 0, -1)
	f.recordActivity(t, student.UserID, domain.ActivityAssignmentSubmitted, yesterday)
	f.recordActivity(t, student.UserID, domain.ActivityExamTaken, f.now.Add(-2*time.Hour))
	f.recordActivity(t, student.UserID, domain.ActivityExamTaken, f.now.Add(-time.Hour))

	data, err := f.service.GetContributions(ctx, student, "current", 0)
	if err != nil {
		t.Fatalf("contributions: %v", err)
	}
	if len(data.Days) != domain.ContributionWindowDays {
		t.Fatalf("expected %d days, got %d", domain.ContributionWindowDays, len(data.Days))
	}
	if data.Total != 3 || data.CurrentStreak != 2 {
		t.Fatalf("unexpected contribution data: total=%d streak=%d", data.Total, data.CurrentStreak)
	}
	last := data.Days[len(data.Days)-1]
	if last.Date != "2026-10-19" || last.Count != 2 || last.Level != 1 {
		t.Fatalf("unexpected last day: %+v", last)
	}

	stored, _ := f.repos.Profiles.GetByUserID(ctx, student.UserID)
	if stored.Stats.Posts != 3 || stored.Stats.Streak != 2 {
		t.Fatalf("unexpected stats: %+v", stored.Stats)
	}

	if _, err := f.service.GetContributions(ctx, student, "current", 1999); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid year, got %v", err)
	}
}

func TestActivityRecordedIsDeduplicated(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	student := f.register(t, "STUDENT", "amina")

	payload, _ := json.Marshal(map[string]any{
		"event_id": "evt-1",
		"data": map[string]any{
			"user_id":       student.UserID.String(),
			"activity_type": "payment_made",
			"title":         "Term 1 fees",
		},
	})
	for i := 0; i < 2; i++ {
		if err := f.service.HandleEvent(ctx, application.EventActivityRecorded, payload); err != nil {
			t.Fatalf("handle event %d: %v", i, err)
		}
	}
	page, err := f.service.ListActivity(ctx, student, "current", application.ActivityQuery{})
	if err != nil {
		t.Fatalf("list activity: %v", err)
	}
	if len(page.Activities) != 1 {
		t.Fatalf("expected a single activity, got %d", len(page.Activities))
	}
}

func TestActivityRecordedRejectsBadPayload(t *testing.T) {
	t.Parallel()

	f := newFixture()
	payload, _ := json.Marshal(map[string]any{
		"event_id": "evt-2",
		"data":     map[string]any{"user_id": uuid.NewString()},
	})
	if err := f.service.HandleEvent(context.Background(), application.EventActivityRecorded, payload); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if err := f.service.HandleEvent(context.Background(), "unrelated.event", []byte("{}")); err != nil {
		t.Fatalf("unknown events must be ignored, got %v", err)
	}
}

func TestActivityPagination(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	student := f.register(t, "STUDENT", "amina")
	for i := 0; i < 25; i++ {
		f.recordActivity(t, student.UserID, domain.ActivityAttendanceMarked, f.now.Add(-time.Duration(i)*time.Minute))
	}

	first, err := f.service.ListActivity(ctx, student, "current", application.ActivityQuery{Limit: 20})
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(first.Activities) != 20 || !first.HasMore {
		t.Fatalf("unexpected first page: len=%d hasMore=%v", len(first.Activities), first.HasMore)
	}
	second, err := f.service.ListActivity(ctx, student, "current", application.ActivityQuery{Limit: 20, Offset: 20})
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(second.Activities) != 5 || second.HasMore {
		t.Fatalf("unexpected second page: len=%d hasMore=%v", len(second.Activities), second.HasMore)
	}
	if !first.Activities[0].OccurredAt.After(first.Activities[1].OccurredAt) {
		t.Fatalf("activities must be newest first")
	}
}

func TestUserDeletedHidesProfile(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	student := f.register(t, "STUDENT", "amina")
	if _, err := f.service.GetProfile(ctx, student, application.GetProfileRequest{}); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	payload, _ := json.Marshal(map[string]any{
		"event_id": "evt-del",
		"data":     map[string]any{"user_id": student.UserID.String()},
	})
	if err := f.service.HandleEvent(ctx, application.EventUserDeleted, payload); err != nil {
		t.Fatalf("handle delete: %v", err)
	}
	if _, err := f.service.GetProfile(ctx, student, application.GetProfileRequest{}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected deleted profile to be gone, got %v", err)
	}
}
