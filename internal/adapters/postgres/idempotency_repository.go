package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/ports"
	"gorm.io/gorm"
)

type idempotencyRepository struct {
	db *gorm.DB
}

func (r *idempotencyRepository) Get(ctx context.Context, key string) (*ports.IdempotencyRecord, error) {
	var rec profileIdempotencyModel
	if err := r.db.WithContext(ctx).Where("idempotency_key = ?", key).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	out := &ports.IdempotencyRecord{
		Key: rec.IdempotencyKey, RequestHash: rec.RequestHash, Status: rec.Status,
		ResponseCode: rec.ResponseCode, ExpiresAt: rec.ExpiresAt,
	}
	if rec.ResponseBody != nil {
		out.ResponseBody = []byte(*rec.ResponseBody)
	}
	return out, nil
}

// Reserve claims key for requestHash. A live reservation with the same hash
// succeeds so an unfinished request can be retried; an expired one is taken
// over.
func (r *idempotencyRepository) Reserve(ctx context.Context, key, requestHash string, expiresAt time.Time) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing profileIdempotencyModel
		err := tx.Where("idempotency_key = ?", key).Take(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			rec := profileIdempotencyModel{
				IdempotencyKey: key,
				RequestHash:    requestHash,
				Status:         "reserved",
				ExpiresAt:      expiresAt,
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			if err := tx.Create(&rec).Error; err != nil {
				if isUniqueViolation(err) {
					return domain.ErrIdempotencyConflict
				}
				return err
			}
			return nil
		case err != nil:
			return err
		}
		if now.Before(existing.ExpiresAt) {
			if existing.RequestHash != requestHash {
				return domain.ErrIdempotencyConflict
			}
			return nil
		}
		return tx.Model(&profileIdempotencyModel{}).
			Where("idempotency_key = ?", key).
			Updates(map[string]any{
				"request_hash":  requestHash,
				"status":        "reserved",
				"response_code": 0,
				"response_body": nil,
				"expires_at":    expiresAt,
				"updated_at":    now,
			}).Error
	})
}

func (r *idempotencyRepository) Complete(ctx context.Context, key string, responseCode int, responseBody []byte, at time.Time) error {
	payload := string(responseBody)
	return r.db.WithContext(ctx).Model(&profileIdempotencyModel{}).
		Where("idempotency_key = ?", key).
		Updates(map[string]any{
			"status":        "completed",
			"response_code": responseCode,
			"response_body": payload,
			"updated_at":    at,
		}).Error
}

var _ ports.IdempotencyRepository = (*idempotencyRepository)(nil)
