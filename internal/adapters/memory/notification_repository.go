package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/ports"
)

type NotificationRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]domain.Notification
}

func (r *NotificationRepo) Create(_ context.Context, n domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.rows[n.NotificationID]; exists {
		return domain.ErrConflict
	}
	r.rows[n.NotificationID] = n
	return nil
}

func (r *NotificationRepo) GetByID(_ context.Context, notificationID uuid.UUID) (domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[notificationID]
	if !ok {
		return domain.Notification{}, domain.ErrNotFound
	}
	return row, nil
}

func (r *NotificationRepo) Update(_ context.Context, n domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[n.NotificationID]; !ok {
		return domain.ErrNotFound
	}
	r.rows[n.NotificationID] = n
	return nil
}

func (r *NotificationRepo) Delete(_ context.Context, notificationID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[notificationID]; !ok {
		return domain.ErrNotFound
	}
	delete(r.rows, notificationID)
	return nil
}

func (r *NotificationRepo) ListByUserID(_ context.Context, userID uuid.UUID, filter domain.NotificationFilter) (ports.NotificationPage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]domain.Notification, 0)
	var unread int64
	for _, row := range r.rows {
		if row.UserID != userID {
			continue
		}
		if row.IsUnread() {
			unread++
		} else if filter.UnreadOnly {
			continue
		}
		items = append(items, row)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	start, end := paginate(len(items), filter.Limit, filter.Offset)
	return ports.NotificationPage{
		Items:  append([]domain.Notification(nil), items[start:end]...),
		Total:  int64(len(items)),
		Unread: unread,
	}, nil
}

func (r *NotificationRepo) MarkAllRead(_ context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, row := range r.rows {
		if row.UserID != userID || !row.IsUnread() {
			continue
		}
		row.MarkRead(at)
		r.rows[id] = row
		n++
	}
	return n, nil
}
