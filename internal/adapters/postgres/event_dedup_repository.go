package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/ports"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type eventDedupRepository struct {
	db    *gorm.DB
	nowFn func() time.Time
}

// IsDuplicate reports whether eventID was processed and its marker has not
// expired yet.
func (r *eventDedupRepository) IsDuplicate(ctx context.Context, eventID string, now time.Time) (bool, error) {
	var row profileEventDedupModel
	err := r.db.WithContext(ctx).
		Select("event_id").
		Where("event_id = ? AND expires_at > ?", eventID, now.UTC()).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

// MarkProcessed upserts the marker; a redelivered event refreshes its expiry.
func (r *eventDedupRepository) MarkProcessed(ctx context.Context, eventID, eventType string, expiresAt time.Time) error {
	rec := profileEventDedupModel{
		EventID:     eventID,
		EventType:   eventType,
		ProcessedAt: r.nowFn().UTC(),
		ExpiresAt:   expiresAt.UTC(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"event_type", "processed_at", "expires_at"}),
		}).
		Create(&rec).Error
}

var _ ports.EventDedupRepository = (*eventDedupRepository)(nil)
