package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
)

func (s *Service) ListActivity(ctx context.Context, actor Actor, ref string, query ActivityQuery) (ActivityPage, error) {
	userID, err := resolveRef(actor, ref)
	if err != nil {
		return ActivityPage{}, err
	}
	if _, _, _, err := s.authorizeView(ctx, actor, userID); err != nil {
		return ActivityPage{}, err
	}
	return s.activityPage(ctx, userID, query)
}

// activityPage reads one more row than requested to learn whether another
// page exists.
func (s *Service) activityPage(ctx context.Context, userID uuid.UUID, query ActivityQuery) (ActivityPage, error) {
	limit, offset := s.pageBounds(query.Limit, query.Offset)
	filter := domain.ActivityFilter{Limit: limit + 1, Offset: offset}
	if t := strings.TrimSpace(query.Type); t != "" && !strings.EqualFold(t, "all") {
		filter.Type = domain.ActivityType(strings.ToLower(t))
	}
	items, err := s.activities.List(ctx, userID, filter)
	if err != nil {
		return ActivityPage{}, err
	}
	page := ActivityPage{Activities: items, HasMore: len(items) > limit}
	if page.HasMore {
		page.Activities = items[:limit]
	}
	if page.Activities == nil {
		page.Activities = []domain.ActivityItem{}
	}
	return page, nil
}

func (s *Service) GetContributions(ctx context.Context, actor Actor, ref string, year int) (domain.ContributionData, error) {
	userID, err := resolveRef(actor, ref)
	if err != nil {
		return domain.ContributionData{}, err
	}
	now := s.nowFn()
	if year != 0 && (year < 2000 || year > now.In(s.cfg.Location).Year()) {
		return domain.ContributionData{}, fmt.Errorf("%w: year out of range", domain.ErrInvalidInput)
	}
	if _, _, _, err := s.authorizeView(ctx, actor, userID); err != nil {
		return domain.ContributionData{}, err
	}
	return s.contributionData(ctx, userID, year)
}

func (s *Service) contributionData(ctx context.Context, userID uuid.UUID, year int) (domain.ContributionData, error) {
	now := s.nowFn()
	start, end := domain.ContributionWindow(year, now, s.cfg.Location)
	counts, err := s.contributions.ListRange(ctx, userID, domain.DayKey(start, s.cfg.Location), domain.DayKey(end, s.cfg.Location))
	if err != nil {
		return domain.ContributionData{}, err
	}
	return domain.BuildContributionData(year, counts, now, s.cfg.Location), nil
}
