package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/ports"
	"gorm.io/gorm"
)

type profileStatsRepository struct {
	db *gorm.DB
}

func (r *profileStatsRepository) IncrementViews(ctx context.Context, userID uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&profileModel{}).
		Where("user_id = ? AND deleted_at IS NULL", userID).
		UpdateColumn("views_count", gorm.Expr("views_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *profileStatsRepository) Save(ctx context.Context, userID uuid.UUID, stats domain.ActivityStats, lastActiveAt *time.Time) error {
	updates := map[string]any{
		"views_count":       stats.Views,
		"connections_count": stats.Connections,
		"posts_count":       stats.Posts,
		"streak_days":       stats.Streak,
	}
	if lastActiveAt != nil {
		updates["last_active_at"] = lastActiveAt.UTC()
	}
	res := r.db.WithContext(ctx).Model(&profileModel{}).
		Where("user_id = ? AND deleted_at IS NULL", userID).
		UpdateColumns(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ ports.ProfileStatsRepository = (*profileStatsRepository)(nil)
