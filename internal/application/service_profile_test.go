package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/application"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
)

func TestUserRegisteredCreatesRoleProfile(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	teacher := f.register(t, "TEACHER", "mr.osei")

	resp, err := f.service.GetProfile(ctx, teacher, application.GetProfileRequest{Ref: "current"})
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if resp.Type != domain.ProfileTypeTeacher || resp.Teacher == nil {
		t.Fatalf("expected teacher payload, got type=%s", resp.Type)
	}
	if resp.Username != "mr.osei" {
		t.Fatalf("unexpected username %q", resp.Username)
	}
	if resp.Settings.Visibility != domain.VisibilitySchool {
		t.Fatalf("expected default visibility, got %s", resp.Settings.Visibility)
	}
}

func TestUserRegisteredSkipsRolesWithoutProfile(t *testing.T) {
	t.Parallel()

	f := newFixture()
	user := f.register(t, "USER", "plain.user")

	if _, err := f.service.GetProfile(context.Background(), user, application.GetProfileRequest{}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for USER role, got %v", err)
	}
}

func TestGetProfileRedactsAndCountsViews(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	owner := f.register(t, "STUDENT", "amina")
	visitor := f.register(t, "STUDENT", "kofi")

	resp, err := f.service.GetProfile(ctx, visitor, application.GetProfileRequest{Ref: owner.UserID.String()})
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if resp.Contact.Email != "" {
		t.Fatalf("expected email to be hidden from visitor")
	}
	if resp.ConnectionStatus != domain.ConnectionStatusNone {
		t.Fatalf("unexpected connection status %s", resp.ConnectionStatus)
	}
	stored, err := f.repos.Profiles.GetByUserID(ctx, owner.UserID)
	if err != nil {
		t.Fatalf("load stored profile: %v", err)
	}
	if stored.Stats.Views != 1 {
		t.Fatalf("expected one view, got %d", stored.Stats.Views)
	}

	own, err := f.service.GetProfile(ctx, owner, application.GetProfileRequest{Ref: "current"})
	if err != nil {
		t.Fatalf("get own profile: %v", err)
	}
	if own.Contact.Email == "" {
		t.Fatalf("owner should see own email")
	}
	stored, _ = f.repos.Profiles.GetByUserID(ctx, owner.UserID)
	if stored.Stats.Views != 1 {
		t.Fatalf("owner views must not count, got %d", stored.Stats.Views)
	}
}

func TestGetProfileTypeFilter(t *testing.T) {
	t.Parallel()

	f := newFixture()
	student := f.register(t, "STUDENT", "amina")

	_, err := f.service.GetProfile(context.Background(), student, application.GetProfileRequest{Type: "teacher"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for type mismatch, got %v", err)
	}
	_, err = f.service.GetProfile(context.Background(), student, application.GetProfileRequest{Type: "wizard"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for unknown type, got %v", err)
	}
}

func TestPrivateProfileHiddenFromOutsiders(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	owner := f.register(t, "STUDENT", "amina")
	outsider := f.register(t, "TEACHER", "mr.osei")
	admin := f.register(t, "ADMIN", "root.admin")

	if _, err := f.service.UpdateSettings(ctx, owner, application.UpdateSettingsRequest{Visibility: ptr("private")}, ""); err != nil {
		t.Fatalf("update settings: %v", err)
	}
	if _, err := f.service.GetProfile(ctx, outsider, application.GetProfileRequest{Ref: owner.UserID.String()}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := f.service.GetProfile(ctx, admin, application.GetProfileRequest{Ref: owner.UserID.String()}); err != nil {
		t.Fatalf("admin should see private profile: %v", err)
	}
}

func TestUpdateProfileOwnerOnly(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	owner := f.register(t, "STUDENT", "amina")
	other := f.register(t, "STUDENT", "kofi")
	before := len(f.repos.Outbox.Events())

	updated, err := f.service.UpdateProfile(ctx, owner, "current", application.UpdateProfileRequest{
		DisplayName: ptr("Amina Mensah"),
		Bio:         ptr("Science club"),
	}, "idem-1")
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.DisplayName != "Amina Mensah" || updated.Bio != "Science club" {
		t.Fatalf("unexpected profile after update: %+v", updated)
	}
	events := f.repos.Outbox.Events()
	if len(events) != before+1 || events[len(events)-1].EventType != "user.profile_updated" {
		t.Fatalf("expected a profile_updated outbox event")
	}
	page, err := f.service.ListActivity(ctx, owner, "current", application.ActivityQuery{})
	if err != nil {
		t.Fatalf("list activity: %v", err)
	}
	if len(page.Activities) != 1 || page.Activities[0].Type != domain.ActivityProfileUpdated {
		t.Fatalf("expected profile_updated activity, got %+v", page.Activities)
	}

	if _, err := f.service.UpdateProfile(ctx, other, owner.UserID.String(), application.UpdateProfileRequest{Bio: ptr("x")}, ""); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden for non-owner, got %v", err)
	}
	if _, err := f.service.UpdateProfile(ctx, owner, "current", application.UpdateProfileRequest{
		Student: &domain.StudentDetails{CurrentGPA: 4},
	}, ""); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden for payload change by owner, got %v", err)
	}
	if _, err := f.service.UpdateProfile(ctx, owner, "current", application.UpdateProfileRequest{DisplayName: ptr("x")}, ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid display name, got %v", err)
	}
	if _, err := f.service.UpdateProfile(ctx, owner, "current", application.UpdateProfileRequest{Bio: ptr("different")}, "idem-1"); !errors.Is(err, domain.ErrIdempotencyConflict) {
		t.Fatalf("expected idempotency conflict, got %v", err)
	}
}

func TestAdminReplacesPayload(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	student := f.register(t, "STUDENT", "amina")
	admin := f.register(t, "ADMIN", "root.admin")

	updated, err := f.service.UpdateProfile(ctx, admin, student.UserID.String(), application.UpdateProfileRequest{
		Student: &domain.StudentDetails{GradeLevel: "Grade 10", CurrentGPA: 3.6},
	}, "")
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if updated.Student == nil || updated.Student.CurrentGPA != 3.6 {
		t.Fatalf("expected replaced student payload")
	}

	_, err = f.service.UpdateProfile(ctx, admin, student.UserID.String(), application.UpdateProfileRequest{
		Teacher: &domain.TeacherDetails{},
	}, "")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected mismatched payload to be rejected, got %v", err)
	}
}

func TestSearchProfilesRateLimitAndPrivacy(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	searcher := f.register(t, "TEACHER", "mr.osei")
	hidden := f.register(t, "STUDENT", "amina.hidden")
	f.register(t, "STUDENT", "amina.visible")

	if _, err := f.service.UpdateSettings(ctx, hidden, application.UpdateSettingsRequest{Visibility: ptr("private")}, ""); err != nil {
		t.Fatalf("update settings: %v", err)
	}
	resp, err := f.service.SearchProfiles(ctx, searcher, application.SearchRequest{Query: "amina", Role: "student"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if resp.Total != 1 || len(resp.Profiles) != 1 || resp.Profiles[0].Username != "amina.visible" {
		t.Fatalf("unexpected search result: %+v", resp)
	}

	for i := 0; i < 2; i++ {
		if _, err := f.service.SearchProfiles(ctx, searcher, application.SearchRequest{Query: "amina"}); err != nil {
			t.Fatalf("search %d: %v", i, err)
		}
	}
	if _, err := f.service.SearchProfiles(ctx, searcher, application.SearchRequest{Query: "amina"}); !errors.Is(err, domain.ErrRateLimitExceeded) {
		t.Fatalf("expected rate limit, got %v", err)
	}
}

func TestSettingsThemeRoundTrip(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	owner := f.register(t, "GUARDIAN", "mama.ama")

	settings, err := f.service.UpdateSettings(ctx, owner, application.UpdateSettingsRequest{Theme: ptr("dark")}, "")
	if err != nil {
		t.Fatalf("update settings: %v", err)
	}
	if settings.Theme != domain.ThemeDark {
		t.Fatalf("expected dark theme, got %s", settings.Theme)
	}
	got, err := f.service.GetSettings(ctx, owner)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if got.Theme != domain.ThemeDark {
		t.Fatalf("settings not persisted: %s", got.Theme)
	}
	if _, err := f.service.UpdateSettings(ctx, owner, application.UpdateSettingsRequest{Theme: ptr("neon")}, ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid theme, got %v", err)
	}
}
