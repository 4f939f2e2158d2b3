// Package presentation turns profiles into the role-specific page model:
// routing by session role, per-role composers, tab modules and the shared
// widgets they use. Everything here is a pure function of its inputs.
package presentation

import (
	"strings"

	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
)

type State string

const (
	StateLoading         State = "loading"
	StateUnauthenticated State = "unauthenticated"
	StateReady           State = "ready"
	StateSetupRequired   State = "setup_required"
	StateUnconfigured    State = "unconfigured"
	StateError           State = "error"
)

// Session is the authenticated user as seen by the router.
type Session struct {
	UserID string
	Email  string
	Role   string
}

// Route is the outcome of dispatching a session.
type Route struct {
	State    State
	Composer domain.ProfileType
	Elevated bool
	Role     domain.Role
}

// Dispatch resolves which composer renders the page for session. The
// dictionary check comes first so no panel renders without labels.
func Dispatch(session *Session, dictionaryReady bool) Route {
	if !dictionaryReady {
		return Route{State: StateLoading}
	}
	if session == nil || strings.TrimSpace(session.UserID) == "" {
		return Route{State: StateUnauthenticated}
	}
	role := domain.NormalizeRole(session.Role)
	switch role {
	case domain.RoleStudent:
		return Route{State: StateReady, Composer: domain.ProfileTypeStudent, Role: role}
	case domain.RoleTeacher:
		return Route{State: StateReady, Composer: domain.ProfileTypeTeacher, Role: role}
	case domain.RoleGuardian:
		return Route{State: StateReady, Composer: domain.ProfileTypeParent, Role: role}
	case domain.RoleStaff, domain.RoleAccountant:
		return Route{State: StateReady, Composer: domain.ProfileTypeStaff, Role: role}
	case domain.RoleAdmin, domain.RoleDeveloper:
		return Route{State: StateReady, Composer: domain.ProfileTypeStaff, Elevated: true, Role: role}
	default:
		return Route{State: StateSetupRequired, Role: role}
	}
}
