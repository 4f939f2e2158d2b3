package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/ports"
	"gorm.io/gorm"
)

type connectionRepository struct {
	db *gorm.DB
}

func (r *connectionRepository) Create(ctx context.Context, conn domain.Connection) error {
	rec := toConnectionModel(conn)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *connectionRepository) GetByID(ctx context.Context, connectionID uuid.UUID) (domain.Connection, error) {
	var rec connectionModel
	if err := r.db.WithContext(ctx).Where("connection_id = ?", connectionID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Connection{}, domain.ErrNotFound
		}
		return domain.Connection{}, err
	}
	return toDomainConnection(rec), nil
}

func (r *connectionRepository) GetBetween(ctx context.Context, a, b uuid.UUID) (domain.Connection, error) {
	var rec connectionModel
	err := r.db.WithContext(ctx).
		Where("(requester_id = ? AND target_id = ?) OR (requester_id = ? AND target_id = ?)", a, b, b, a).
		Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Connection{}, domain.ErrNotFound
		}
		return domain.Connection{}, err
	}
	return toDomainConnection(rec), nil
}

func (r *connectionRepository) Update(ctx context.Context, conn domain.Connection) error {
	res := r.db.WithContext(ctx).Model(&connectionModel{}).
		Where("connection_id = ?", conn.ConnectionID).
		Updates(map[string]any{
			"state":        string(conn.State),
			"message":      conn.Message,
			"responded_at": conn.RespondedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *connectionRepository) Delete(ctx context.Context, connectionID uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("connection_id = ?", connectionID).Delete(&connectionModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *connectionRepository) ListByUserID(ctx context.Context, userID uuid.UUID, acceptedOnly bool, limit, offset int) ([]domain.Connection, int64, error) {
	states := []string{string(domain.ConnectionStatePending), string(domain.ConnectionStateAccepted)}
	if acceptedOnly {
		states = []string{string(domain.ConnectionStateAccepted)}
	}
	tx := r.db.WithContext(ctx).Model(&connectionModel{}).
		Where("(requester_id = ? OR target_id = ?) AND state IN ?", userID, userID, states).
		Session(&gorm.Session{})
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	q := tx.Order("created_at desc").Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []connectionModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]domain.Connection, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainConnection(row))
	}
	return out, total, nil
}

func (r *connectionRepository) CountAccepted(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&connectionModel{}).
		Where("(requester_id = ? OR target_id = ?) AND state = ?", userID, userID, string(domain.ConnectionStateAccepted)).
		Count(&count).Error
	return count, err
}

var _ ports.ConnectionRepository = (*connectionRepository)(nil)
