package application

import (
	"context"

	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
)

func (s *Service) GetSettings(ctx context.Context, actor Actor) (domain.Settings, error) {
	profile, err := s.loadProfile(ctx, actor.UserID)
	if err != nil {
		return domain.Settings{}, err
	}
	return profile.Settings, nil
}

func (s *Service) UpdateSettings(ctx context.Context, actor Actor, req UpdateSettingsRequest, idempotencyKey string) (domain.Settings, error) {
	if err := validateRequest(req); err != nil {
		return domain.Settings{}, err
	}
	profile, err := s.profiles.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return domain.Settings{}, err
	}

	settings := profile.Settings
	if req.Theme != nil {
		theme, err := domain.ParseTheme(*req.Theme)
		if err != nil {
			return domain.Settings{}, err
		}
		settings.Theme = theme
	}
	if req.Visibility != nil {
		v := domain.Visibility(*req.Visibility)
		if err := domain.ValidateVisibility(v); err != nil {
			return domain.Settings{}, err
		}
		settings.Visibility = v
	}
	if req.Language != nil {
		settings.Language = *req.Language
	}
	setBool(&settings.EmailNotifications, req.EmailNotifications)
	setBool(&settings.PushNotifications, req.PushNotifications)
	setBool(&settings.SMSNotifications, req.SMSNotifications)
	setBool(&settings.ShowEmail, req.ShowEmail)
	setBool(&settings.ShowPhone, req.ShowPhone)
	setBool(&settings.AllowMessages, req.AllowMessages)
	setBool(&settings.AllowConnectionRequests, req.AllowConnectionRequests)

	var replay domain.Settings
	if ok, err := s.replayIdempotent(ctx, actor, idempotencyKey, req, &replay); err != nil {
		return domain.Settings{}, err
	} else if ok {
		return replay, nil
	}
	if err := s.reserveIdempotency(ctx, actor, idempotencyKey, req); err != nil {
		return domain.Settings{}, err
	}
	settings.UpdatedAt = s.nowFn()
	profile.Settings = settings
	profile.UpdatedAt = settings.UpdatedAt
	updated, err := s.profiles.Update(ctx, profile)
	if err != nil {
		return domain.Settings{}, err
	}
	s.invalidateProfile(ctx, actor.UserID)
	s.enqueueProfileUpdated(ctx, updated)
	s.completeIdempotency(ctx, actor, idempotencyKey, 200, updated.Settings)
	return updated.Settings, nil
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
