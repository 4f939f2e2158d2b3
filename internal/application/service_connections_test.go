package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/application"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
)

func TestConnectionLifecycle(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	alice := f.register(t, "STUDENT", "alice")
	bob := f.register(t, "TEACHER", "mr.bob")

	conn, err := f.service.RequestConnection(ctx, alice, application.ConnectionRequest{TargetUserID: bob.UserID.String(), Message: "Hi"}, "")
	if err != nil {
		t.Fatalf("request connection: %v", err)
	}
	if conn.State != domain.ConnectionStatePending {
		t.Fatalf("expected pending, got %s", conn.State)
	}

	fromAlice, err := f.service.GetProfile(ctx, alice, application.GetProfileRequest{Ref: bob.UserID.String()})
	if err != nil {
		t.Fatalf("get bob: %v", err)
	}
	if fromAlice.ConnectionStatus != domain.ConnectionStatusPending {
		t.Fatalf("requester should see pending, got %s", fromAlice.ConnectionStatus)
	}
	fromBob, err := f.service.GetProfile(ctx, bob, application.GetProfileRequest{Ref: alice.UserID.String()})
	if err != nil {
		t.Fatalf("get alice: %v", err)
	}
	if fromBob.ConnectionStatus != domain.ConnectionStatusRequested {
		t.Fatalf("target should see requested, got %s", fromBob.ConnectionStatus)
	}

	notes, err := f.service.ListNotifications(ctx, bob, application.NotificationQuery{})
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if notes.Unread != 1 || notes.Notifications[0].Type != domain.NotificationConnectionRequested {
		t.Fatalf("expected a connection request notification, got %+v", notes)
	}

	if _, err := f.service.RequestConnection(ctx, alice, application.ConnectionRequest{TargetUserID: bob.UserID.String()}, ""); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict on duplicate request, got %v", err)
	}
	if _, err := f.service.AcceptConnection(ctx, alice, conn.ConnectionID.String()); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("requester must not accept own request, got %v", err)
	}

	accepted, err := f.service.AcceptConnection(ctx, bob, conn.ConnectionID.String())
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.State != domain.ConnectionStateAccepted || accepted.RespondedAt == nil {
		t.Fatalf("unexpected accepted connection: %+v", accepted)
	}
	for _, actor := range []application.Actor{alice, bob} {
		stored, _ := f.repos.Profiles.GetByUserID(ctx, actor.UserID)
		if stored.Stats.Connections != 1 {
			t.Fatalf("expected one connection for %s, got %d", stored.Username, stored.Stats.Connections)
		}
	}

	page, err := f.service.ListConnections(ctx, alice, "current", application.PageQuery{})
	if err != nil {
		t.Fatalf("list connections: %v", err)
	}
	if page.Total != 1 || page.Connections[0].UserID != bob.UserID || page.Connections[0].Status != domain.ConnectionStatusConnected {
		t.Fatalf("unexpected connection page: %+v", page)
	}
	if page.Connections[0].Username != "mr.bob" {
		t.Fatalf("expected connection to carry the other profile, got %+v", page.Connections[0])
	}

	activity, err := f.service.ListActivity(ctx, alice, "current", application.ActivityQuery{Type: "connection_made"})
	if err != nil {
		t.Fatalf("list activity: %v", err)
	}
	if len(activity.Activities) != 1 {
		t.Fatalf("expected connection_made activity, got %d", len(activity.Activities))
	}

	if err := f.service.RemoveConnection(ctx, alice, bob.UserID.String()); err != nil {
		t.Fatalf("remove connection: %v", err)
	}
	stored, _ := f.repos.Profiles.GetByUserID(ctx, bob.UserID)
	if stored.Stats.Connections != 0 {
		t.Fatalf("expected connection count reset, got %d", stored.Stats.Connections)
	}
	if err := f.service.RemoveConnection(ctx, alice, bob.UserID.String()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on second removal, got %v", err)
	}
}

func TestRejectedRequestCanBeRenewed(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	alice := f.register(t, "STUDENT", "alice")
	bob := f.register(t, "STUDENT", "bob")

	conn, err := f.service.RequestConnection(ctx, alice, application.ConnectionRequest{TargetUserID: bob.UserID.String()}, "")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := f.service.RejectConnection(ctx, bob, conn.ConnectionID.String()); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if _, err := f.service.AcceptConnection(ctx, bob, conn.ConnectionID.String()); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict accepting rejected request, got %v", err)
	}
	renewed, err := f.service.RequestConnection(ctx, alice, application.ConnectionRequest{TargetUserID: bob.UserID.String()}, "")
	if err != nil {
		t.Fatalf("renew request: %v", err)
	}
	if renewed.ConnectionID == conn.ConnectionID {
		t.Fatalf("expected a new connection id")
	}
}

func TestConnectionRequestValidation(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	alice := f.register(t, "STUDENT", "alice")
	bob := f.register(t, "STUDENT", "bob")

	if _, err := f.service.RequestConnection(ctx, alice, application.ConnectionRequest{TargetUserID: "nope"}, ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid target, got %v", err)
	}
	if _, err := f.service.RequestConnection(ctx, alice, application.ConnectionRequest{TargetUserID: alice.UserID.String()}, ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected self connection to be rejected, got %v", err)
	}
	if _, err := f.service.UpdateSettings(ctx, bob, application.UpdateSettingsRequest{AllowConnectionRequests: ptr(false)}, ""); err != nil {
		t.Fatalf("update settings: %v", err)
	}
	if _, err := f.service.RequestConnection(ctx, alice, application.ConnectionRequest{TargetUserID: bob.UserID.String()}, ""); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden when requests are closed, got %v", err)
	}
}

func TestNotificationsOwnership(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	alice := f.register(t, "STUDENT", "alice")
	bob := f.register(t, "STUDENT", "bob")
	f.recordActivity(t, alice.UserID, domain.ActivityGradeReceived, f.now)
	f.recordActivity(t, alice.UserID, domain.ActivityAchievementEarned, f.now)
	f.recordActivity(t, alice.UserID, domain.ActivityMessageSent, f.now)

	page, err := f.service.ListNotifications(ctx, alice, application.NotificationQuery{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 2 || page.Unread != 2 {
		t.Fatalf("expected two unread notifications, got %+v", page)
	}
	id := page.Notifications[0].NotificationID.String()

	if _, err := f.service.MarkNotificationRead(ctx, bob, id); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("other users must not see the notification, got %v", err)
	}
	read, err := f.service.MarkNotificationRead(ctx, alice, id)
	if err != nil || read.ReadAt == nil {
		t.Fatalf("mark read: %v", err)
	}
	all, err := f.service.MarkAllNotificationsRead(ctx, alice)
	if err != nil || all.Updated != 1 {
		t.Fatalf("mark all read: updated=%d err=%v", all.Updated, err)
	}
	if err := f.service.DeleteNotification(ctx, alice, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	page, _ = f.service.ListNotifications(ctx, alice, application.NotificationQuery{})
	if page.Total != 1 || page.Unread != 0 {
		t.Fatalf("unexpected page after delete: %+v", page)
	}
}
