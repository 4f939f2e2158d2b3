package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/ports"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type activityRepository struct {
	db *gorm.DB
}

func (r *activityRepository) Append(ctx context.Context, item domain.ActivityItem) error {
	rec := activityModel{
		ActivityID:   item.ActivityID,
		UserID:       item.UserID,
		ActivityType: string(item.Type),
		Title:        item.Title,
		Description:  item.Description,
		Metadata:     encodeMetadata(item.Metadata),
		Link:         item.Link,
		OccurredAt:   item.OccurredAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *activityRepository) List(ctx context.Context, userID uuid.UUID, filter domain.ActivityFilter) ([]domain.ActivityItem, error) {
	tx := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if filter.Type != "" {
		tx = tx.Where("activity_type = ?", string(filter.Type))
	}
	tx = tx.Order("occurred_at desc").Offset(filter.Offset)
	if filter.Limit > 0 {
		tx = tx.Limit(filter.Limit)
	}
	var rows []activityModel
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.ActivityItem, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainActivity(row))
	}
	return out, nil
}

type contributionRepository struct {
	db *gorm.DB
}

func (r *contributionRepository) Increment(ctx context.Context, userID uuid.UUID, day string, delta int) error {
	rec := contributionModel{UserID: userID, Day: day, Count: delta}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "day"}},
		DoUpdates: clause.Assignments(map[string]any{"count": gorm.Expr("profile_contributions.count + ?", delta)}),
	}).Create(&rec).Error
}

func (r *contributionRepository) ListRange(ctx context.Context, userID uuid.UUID, from, to string) (map[string]int, error) {
	var rows []contributionModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND day >= ? AND day <= ?", userID, from, to).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.Day] = row.Count
	}
	return out, nil
}

var (
	_ ports.ActivityRepository     = (*activityRepository)(nil)
	_ ports.ContributionRepository = (*contributionRepository)(nil)
)
