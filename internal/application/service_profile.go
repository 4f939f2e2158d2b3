package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/ports"
)

func (s *Service) GetProfile(ctx context.Context, actor Actor, req GetProfileRequest) (ProfileResponse, error) {
	userID, err := resolveRef(actor, req.Ref)
	if err != nil {
		return ProfileResponse{}, err
	}
	var wantType domain.ProfileType
	if strings.TrimSpace(req.Type) != "" {
		typ, ok := domain.ParseProfileType(req.Type)
		if !ok {
			return ProfileResponse{}, fmt.Errorf("%w: type must be student, teacher, parent or staff", domain.ErrInvalidInput)
		}
		wantType = typ
	}

	profile, perms, status, err := s.authorizeView(ctx, actor, userID)
	if err != nil {
		return ProfileResponse{}, err
	}
	if wantType != "" && profile.Type != wantType {
		return ProfileResponse{}, fmt.Errorf("%w: no %s profile for user", domain.ErrNotFound, wantType)
	}
	if !perms.IsOwner {
		s.logIgnored(ctx, "increment_views", s.stats.IncrementViews(ctx, userID))
	}

	resp := ProfileResponse{Profile: domain.Redact(profile, perms)}
	if !perms.IsOwner {
		resp.ConnectionStatus = status
	}
	if req.IncludeActivities {
		page, err := s.activityPage(ctx, userID, ActivityQuery{})
		if err != nil {
			return ProfileResponse{}, err
		}
		resp.Activities = page.Activities
	}
	if req.IncludeContributions {
		data, err := s.contributionData(ctx, userID, 0)
		if err != nil {
			return ProfileResponse{}, err
		}
		resp.Contributions = &data
	}
	if req.IncludeConnections {
		page, err := s.connectionPage(ctx, userID, !perms.IsOwner && !actor.Role.IsElevated(), PageQuery{})
		if err != nil {
			return ProfileResponse{}, err
		}
		resp.Connections = page.Connections
	}
	return resp, nil
}

func (s *Service) GetPermissions(ctx context.Context, actor Actor, ref string) (domain.Permissions, error) {
	userID, err := resolveRef(actor, ref)
	if err != nil {
		return domain.Permissions{}, err
	}
	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return domain.Permissions{}, err
	}
	status, err := s.connectionStatus(ctx, actor.UserID, userID)
	if err != nil {
		return domain.Permissions{}, err
	}
	return domain.ResolvePermissions(actor.viewer(), profile, status == domain.ConnectionStatusConnected), nil
}

func (s *Service) UpdateProfile(ctx context.Context, actor Actor, ref string, req UpdateProfileRequest, idempotencyKey string) (domain.Profile, error) {
	if err := validateUpdateProfile(req); err != nil {
		return domain.Profile{}, err
	}
	userID, err := resolveRef(actor, ref)
	if err != nil {
		return domain.Profile{}, err
	}
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return domain.Profile{}, err
	}
	isOwner := actor.UserID == profile.UserID
	if !isOwner && !actor.Role.IsElevated() {
		return domain.Profile{}, fmt.Errorf("%w: only the owner can edit this profile", domain.ErrForbidden)
	}
	if req.hasPayload() && !actor.Role.IsElevated() {
		return domain.Profile{}, fmt.Errorf("%w: role details are managed by school administrators", domain.ErrForbidden)
	}

	applyProfilePatch(&profile, req)
	if err := profile.Validate(); err != nil {
		return domain.Profile{}, fmt.Errorf("%w: role details do not match %s profile", domain.ErrInvalidInput, profile.Type)
	}
	var replay domain.Profile
	if ok, err := s.replayIdempotent(ctx, actor, idempotencyKey, req, &replay); err != nil {
		return domain.Profile{}, err
	} else if ok {
		return replay, nil
	}
	if err := s.reserveIdempotency(ctx, actor, idempotencyKey, req); err != nil {
		return domain.Profile{}, err
	}
	profile.UpdatedAt = s.nowFn()
	updated, err := s.profiles.Update(ctx, profile)
	if err != nil {
		return domain.Profile{}, err
	}
	s.invalidateProfile(ctx, userID)
	s.enqueueProfileUpdated(ctx, updated)
	s.logIgnored(ctx, "record_profile_updated", s.recordActivity(ctx, domain.ActivityItem{
		UserID: userID,
		Type:   domain.ActivityProfileUpdated,
		Title:  "Profile updated",
	}))
	s.completeIdempotency(ctx, actor, idempotencyKey, 200, updated)
	return updated, nil
}

func validateUpdateProfile(req UpdateProfileRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}
	if req.DisplayName != nil {
		if err := domain.ValidateDisplayName(*req.DisplayName); err != nil {
			return err
		}
	}
	if req.Username != nil {
		if err := domain.ValidateUsername(*req.Username); err != nil {
			return err
		}
	}
	if req.Bio != nil {
		if err := domain.ValidateBio(*req.Bio); err != nil {
			return err
		}
	}
	if req.Contact != nil {
		if req.Contact.Phone != nil {
			if err := domain.ValidatePhone(*req.Contact.Phone); err != nil {
				return err
			}
		}
		if req.Contact.Website != nil {
			if err := domain.ValidateWebsite(*req.Contact.Website); err != nil {
				return err
			}
		}
	}
	return nil
}

func applyProfilePatch(p *domain.Profile, req UpdateProfileRequest) {
	if req.DisplayName != nil {
		p.DisplayName = strings.TrimSpace(*req.DisplayName)
	}
	if req.Username != nil {
		p.Username = domain.NormalizeUsername(*req.Username)
	}
	if req.Bio != nil {
		p.Bio = *req.Bio
	}
	if req.AvatarURL != nil {
		p.AvatarURL = *req.AvatarURL
	}
	if req.CoverURL != nil {
		p.CoverURL = *req.CoverURL
	}
	if req.SchoolID != nil {
		p.SchoolID = *req.SchoolID
	}
	if c := req.Contact; c != nil {
		setString(&p.Contact.Email, c.Email)
		setString(&p.Contact.Phone, c.Phone)
		setString(&p.Contact.Address, c.Address)
		setString(&p.Contact.City, c.City)
		setString(&p.Contact.Country, c.Country)
		setString(&p.Contact.Website, c.Website)
	}
	if req.Student != nil {
		p.Student = req.Student
	}
	if req.Teacher != nil {
		p.Teacher = req.Teacher
	}
	if req.Parent != nil {
		p.Parent = req.Parent
	}
	if req.Staff != nil {
		p.Staff = req.Staff
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func (s *Service) SearchProfiles(ctx context.Context, actor Actor, req SearchRequest) (SearchResponse, error) {
	if err := validateRequest(req); err != nil {
		return SearchResponse{}, err
	}
	count, err := s.cache.IncrWithTTL(ctx, cacheKeySearchRate(actor.UserID), s.cfg.SearchRateWindow)
	if err != nil {
		s.logIgnored(ctx, "search_rate_limit", err)
	} else if count > int64(s.cfg.SearchRateLimit) {
		return SearchResponse{}, domain.ErrRateLimitExceeded
	}

	var typ domain.ProfileType
	if role := strings.TrimSpace(req.Role); role != "" && !strings.EqualFold(role, "all") {
		parsed, ok := domain.ParseProfileType(role)
		if !ok {
			parsed, ok = domain.ProfileTypeForRole(domain.NormalizeRole(role))
		}
		if !ok {
			return SearchResponse{}, fmt.Errorf("%w: unknown role filter %q", domain.ErrInvalidInput, role)
		}
		typ = parsed
	}
	limit, offset := s.pageBounds(req.Limit, req.Offset)
	rows, total, err := s.profiles.Search(ctx, ports.ProfileSearchQuery{
		Query:          req.Query,
		Type:           typ,
		ExcludePrivate: !actor.Role.IsElevated(),
		Limit:          limit,
		Offset:         offset,
	})
	if err != nil {
		return SearchResponse{}, err
	}
	out := SearchResponse{Profiles: make([]ProfileSummary, 0, len(rows)), Total: total}
	for _, p := range rows {
		out.Profiles = append(out.Profiles, toProfileSummary(p))
	}
	return out, nil
}
