package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/ports"
	"gorm.io/gorm"
)

type notificationRepository struct {
	db *gorm.DB
}

func (r *notificationRepository) Create(ctx context.Context, n domain.Notification) error {
	rec := toNotificationModel(n)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *notificationRepository) GetByID(ctx context.Context, notificationID uuid.UUID) (domain.Notification, error) {
	var rec notificationModel
	if err := r.db.WithContext(ctx).Where("notification_id = ?", notificationID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Notification{}, domain.ErrNotFound
		}
		return domain.Notification{}, err
	}
	return toDomainNotification(rec), nil
}

func (r *notificationRepository) Update(ctx context.Context, n domain.Notification) error {
	res := r.db.WithContext(ctx).Model(&notificationModel{}).
		Where("notification_id = ?", n.NotificationID).
		Updates(map[string]any{
			"title":    n.Title,
			"body":     n.Body,
			"link":     n.Link,
			"metadata": encodeMetadata(n.Metadata),
			"read_at":  n.ReadAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *notificationRepository) Delete(ctx context.Context, notificationID uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("notification_id = ?", notificationID).Delete(&notificationModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *notificationRepository) ListByUserID(ctx context.Context, userID uuid.UUID, filter domain.NotificationFilter) (ports.NotificationPage, error) {
	var unread int64
	if err := r.db.WithContext(ctx).Model(&notificationModel{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&unread).Error; err != nil {
		return ports.NotificationPage{}, err
	}
	tx := r.db.WithContext(ctx).Model(&notificationModel{}).Where("user_id = ?", userID)
	if filter.UnreadOnly {
		tx = tx.Where("read_at IS NULL")
	}
	tx = tx.Session(&gorm.Session{})
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return ports.NotificationPage{}, err
	}
	q := tx.Order("created_at desc").Offset(filter.Offset)
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	var rows []notificationModel
	if err := q.Find(&rows).Error; err != nil {
		return ports.NotificationPage{}, err
	}
	items := make([]domain.Notification, 0, len(rows))
	for _, row := range rows {
		items = append(items, toDomainNotification(row))
	}
	return ports.NotificationPage{Items: items, Total: total, Unread: unread}, nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&notificationModel{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", at.UTC())
	return res.RowsAffected, res.Error
}

var _ ports.NotificationRepository = (*notificationRepository)(nil)
