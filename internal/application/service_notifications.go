package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
)

func (s *Service) ListNotifications(ctx context.Context, actor Actor, query NotificationQuery) (NotificationPage, error) {
	limit, offset := s.pageBounds(query.Limit, query.Offset)
	page, err := s.notifications.ListByUserID(ctx, actor.UserID, domain.NotificationFilter{
		UnreadOnly: query.UnreadOnly,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return NotificationPage{}, err
	}
	items := page.Items
	if items == nil {
		items = []domain.Notification{}
	}
	return NotificationPage{Notifications: items, Total: page.Total, Unread: page.Unread}, nil
}

func (s *Service) MarkNotificationRead(ctx context.Context, actor Actor, notificationID string) (domain.Notification, error) {
	n, err := s.ownedNotification(ctx, actor, notificationID)
	if err != nil {
		return domain.Notification{}, err
	}
	if !n.IsUnread() {
		return n, nil
	}
	n.MarkRead(s.nowFn())
	if err := s.notifications.Update(ctx, n); err != nil {
		return domain.Notification{}, err
	}
	return n, nil
}

func (s *Service) MarkAllNotificationsRead(ctx context.Context, actor Actor) (MarkAllReadResponse, error) {
	updated, err := s.notifications.MarkAllRead(ctx, actor.UserID, s.nowFn())
	if err != nil {
		return MarkAllReadResponse{}, err
	}
	return MarkAllReadResponse{Updated: updated}, nil
}

func (s *Service) DeleteNotification(ctx context.Context, actor Actor, notificationID string) error {
	n, err := s.ownedNotification(ctx, actor, notificationID)
	if err != nil {
		return err
	}
	return s.notifications.Delete(ctx, n.NotificationID)
}

// ownedNotification hides notifications of other users behind ErrNotFound.
func (s *Service) ownedNotification(ctx context.Context, actor Actor, notificationID string) (domain.Notification, error) {
	id, err := uuid.Parse(strings.TrimSpace(notificationID))
	if err != nil {
		return domain.Notification{}, fmt.Errorf("%w: invalid notification id", domain.ErrInvalidInput)
	}
	n, err := s.notifications.GetByID(ctx, id)
	if err != nil {
		return domain.Notification{}, err
	}
	if n.UserID != actor.UserID {
		return domain.Notification{}, domain.ErrNotFound
	}
	return n, nil
}
