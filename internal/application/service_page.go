package application

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/presentation"
)

// ComposePage renders the role page for ref. actor is nil for anonymous
// callers. Load failures become the error panel rather than an error so
// the caller always has a page to show; only malformed input is returned
// as an error.
func (s *Service) ComposePage(ctx context.Context, actor *Actor, req PageRequest) (presentation.Page, error) {
	dict, ok := presentation.LookupDictionary(req.Lang)
	if !ok {
		dict, _ = presentation.LookupDictionary(presentation.DefaultLanguage)
	}

	var session *presentation.Session
	if actor != nil && actor.UserID != uuid.Nil {
		session = &presentation.Session{
			UserID: actor.UserID.String(),
			Email:  actor.Email,
			Role:   string(actor.Role),
		}
	}
	route := presentation.Dispatch(session, dict.Ready())
	switch route.State {
	case presentation.StateLoading:
		return presentation.LoadingPage(dict), nil
	case presentation.StateUnauthenticated:
		return presentation.UnauthenticatedPage(dict), nil
	case presentation.StateSetupRequired:
		return presentation.SetupRequiredPage(dict, *session), nil
	}

	userID, err := resolveRef(*actor, req.Ref)
	if err != nil {
		return presentation.Page{}, err
	}
	profile, perms, status, err := s.authorizeView(ctx, *actor, userID)
	if err != nil {
		s.logIgnored(ctx, "compose_page_load", err)
		return presentation.ErrorPage(dict, pageErrorMessage(err)), nil
	}

	composer := route.Composer
	if !perms.IsOwner {
		composer = profile.Type
		s.logIgnored(ctx, "increment_views", s.stats.IncrementViews(ctx, userID))
	}

	activities, err := s.activityPage(ctx, userID, ActivityQuery{Limit: s.cfg.MaxPageSize})
	if err != nil {
		s.logIgnored(ctx, "compose_page_activity", err)
		return presentation.ErrorPage(dict, pageErrorMessage(err)), nil
	}
	contributions, err := s.contributionData(ctx, userID, 0)
	if err != nil {
		s.logIgnored(ctx, "compose_page_contributions", err)
		return presentation.ErrorPage(dict, pageErrorMessage(err)), nil
	}

	var filter domain.ActivityType
	if t := domain.ActivityType(strings.ToLower(strings.TrimSpace(req.TimelineFilter))); domain.IsKnownActivityType(t) {
		filter = t
	}
	page, err := presentation.Compose(composer, domain.Redact(profile, perms), presentation.ComposeOptions{
		ActiveTab:        req.Tab,
		SidebarOpen:      req.SidebarOpen,
		IsOwner:          perms.IsOwner,
		Elevated:         route.Elevated,
		Permissions:      perms,
		ConnectionStatus: status,
		Dictionary:       dict,
		Child:            req.Child,
		Subject:          req.Subject,
		Activities:       activities.Activities,
		Contributions:    &contributions,
		TimelineFilter:   filter,
		TimelineExpanded: req.TimelineExpanded,
		Now:              s.nowFn(),
		Location:         s.cfg.Location,
	})
	if errors.Is(err, domain.ErrProfileUnconfigured) {
		return presentation.UnconfiguredPage(dict, composer), nil
	}
	if err != nil {
		return presentation.Page{}, err
	}
	return page, nil
}

func pageErrorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "Profile not found."
	case errors.Is(err, domain.ErrForbidden):
		return "You do not have access to this profile."
	default:
		return "Something went wrong while loading the profile."
	}
}
