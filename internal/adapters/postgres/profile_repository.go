package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/ports"
	"gorm.io/gorm"
)

// profileRepository stores profiles with their counters in one row and
// seals the contact phone with the configured encryption.
type profileRepository struct {
	db  *gorm.DB
	enc ports.Encryption
}

func (r *profileRepository) Create(ctx context.Context, profile domain.Profile) (domain.Profile, error) {
	if profile.ProfileID == uuid.Nil {
		profile.ProfileID = uuid.New()
	}
	rec, err := r.toModel(profile)
	if err != nil {
		return domain.Profile{}, err
	}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// a soft-deleted row for the same user is replaced on re-registration
		if err := tx.Where("user_id = ? AND deleted_at IS NOT NULL", profile.UserID).Delete(&profileModel{}).Error; err != nil {
			return err
		}
		return tx.Create(&rec).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Profile{}, fmt.Errorf("%w: profile or username already exists", domain.ErrConflict)
		}
		return domain.Profile{}, err
	}
	return profile, nil
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (domain.Profile, error) {
	var rec profileModel
	if err := r.db.WithContext(ctx).Where("user_id = ? AND deleted_at IS NULL", userID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Profile{}, domain.ErrNotFound
		}
		return domain.Profile{}, err
	}
	return r.toDomain(rec)
}

func (r *profileRepository) Update(ctx context.Context, profile domain.Profile) (domain.Profile, error) {
	rec, err := r.toModel(profile)
	if err != nil {
		return domain.Profile{}, err
	}
	// counters belong to the stats methods and are left untouched here
	res := r.db.WithContext(ctx).Model(&profileModel{}).
		Where("user_id = ? AND deleted_at IS NULL", profile.UserID).
		Updates(map[string]any{
			"username":                rec.Username,
			"display_name":            rec.DisplayName,
			"bio":                     rec.Bio,
			"avatar_url":              rec.AvatarURL,
			"cover_url":               rec.CoverURL,
			"school_id":               rec.SchoolID,
			"contact_email":           rec.ContactEmail,
			"contact_phone_encrypted": rec.ContactPhoneEncrypted,
			"contact_address":         rec.ContactAddress,
			"contact_city":            rec.ContactCity,
			"contact_country":         rec.ContactCountry,
			"contact_website":         rec.ContactWebsite,
			"settings":                rec.Settings,
			"details":                 rec.Details,
			"updated_at":              rec.UpdatedAt,
		})
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return domain.Profile{}, fmt.Errorf("%w: username taken", domain.ErrConflict)
		}
		return domain.Profile{}, res.Error
	}
	if res.RowsAffected == 0 {
		return domain.Profile{}, domain.ErrNotFound
	}
	return r.GetByUserID(ctx, profile.UserID)
}

func (r *profileRepository) SoftDeleteByUserID(ctx context.Context, userID uuid.UUID, deletedAt time.Time) error {
	res := r.db.WithContext(ctx).Model(&profileModel{}).Where("user_id = ?", userID).Updates(map[string]any{
		"deleted_at":              deletedAt,
		"updated_at":              deletedAt,
		"display_name":            "deleted user",
		"bio":                     "",
		"avatar_url":              "",
		"cover_url":               "",
		"contact_email":           "",
		"contact_phone_encrypted": nil,
		"contact_address":         "",
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *profileRepository) Search(ctx context.Context, query ports.ProfileSearchQuery) ([]domain.Profile, int64, error) {
	tx := r.db.WithContext(ctx).Model(&profileModel{}).Where("deleted_at IS NULL")
	if query.Type != "" {
		tx = tx.Where("profile_type = ?", string(query.Type))
	}
	if query.ExcludePrivate {
		tx = tx.Where("settings->>'visibility' <> ?", string(domain.VisibilityPrivate))
	}
	if needle := strings.TrimSpace(query.Query); needle != "" {
		pattern := "%" + escapeLike(needle) + "%"
		tx = tx.Where("(display_name ILIKE ? OR username ILIKE ?)", pattern, pattern)
	}
	tx = tx.Session(&gorm.Session{})
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []profileModel
	q := tx.Order("display_name asc").Order("username asc").Offset(query.Offset)
	if query.Limit > 0 {
		q = q.Limit(query.Limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]domain.Profile, 0, len(rows))
	for _, row := range rows {
		p, err := r.toDomain(row)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, nil
}

func (r *profileRepository) toModel(p domain.Profile) (profileModel, error) {
	rec, err := toProfileModel(p)
	if err != nil {
		return profileModel{}, err
	}
	if p.Contact.Phone != "" {
		sealed, err := r.enc.Encrypt(p.UserID.String(), p.Contact.Phone)
		if err != nil {
			return profileModel{}, fmt.Errorf("encrypt phone: %w", err)
		}
		rec.ContactPhoneEncrypted = sealed
	}
	return rec, nil
}

func (r *profileRepository) toDomain(m profileModel) (domain.Profile, error) {
	var phone string
	if len(m.ContactPhoneEncrypted) > 0 {
		plain, err := r.enc.Decrypt(m.UserID.String(), m.ContactPhoneEncrypted)
		if err != nil {
			return domain.Profile{}, fmt.Errorf("decrypt phone: %w", err)
		}
		phone = plain
	}
	return toDomainProfile(m, phone)
}

var _ ports.ProfileRepository = (*profileRepository)(nil)
