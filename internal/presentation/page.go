package presentation

import "github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"

// Page is the full view model of a profile page.
type Page struct {
	State            State                   `json:"state"`
	Lang             string                  `json:"lang"`
	Dir              string                  `json:"dir"`
	Composer         domain.ProfileType      `json:"composer,omitempty"`
	Elevated         bool                    `json:"elevated,omitempty"`
	IsOwner          bool                    `json:"isOwner"`
	Panel            *Panel                  `json:"panel,omitempty"`
	Header           *Header                 `json:"header,omitempty"`
	Sidebar          *Sidebar                `json:"sidebar,omitempty"`
	Tabs             []TabConfig             `json:"tabs,omitempty"`
	ActiveTab        string                  `json:"activeTab,omitempty"`
	Content          any                     `json:"content,omitempty"`
	Permissions      *domain.Permissions     `json:"permissions,omitempty"`
	ConnectionStatus domain.ConnectionStatus `json:"connectionStatus,omitempty"`
}

// Panel is a static full-page message used for every non-ready state.
type Panel struct {
	Title       string            `json:"title"`
	Message     string            `json:"message,omitempty"`
	Diagnostics map[string]string `json:"diagnostics,omitempty"`
}

func panelPage(state State, dict Dictionary, panel Panel) Page {
	return Page{State: state, Lang: dict.Lang, Dir: dict.Dir, Panel: &panel}
}

func LoadingPage(dict Dictionary) Page {
	return panelPage(StateLoading, dict, Panel{Title: dict.T("panel.loading")})
}

func UnauthenticatedPage(dict Dictionary) Page {
	return panelPage(StateUnauthenticated, dict, Panel{
		Title:   dict.T("panel.unauthenticated"),
		Message: dict.T("panel.unauthenticated.m"),
	})
}

// SetupRequiredPage shows the session fields so support can see why no
// composer matched.
func SetupRequiredPage(dict Dictionary, session Session) Page {
	return panelPage(StateSetupRequired, dict, Panel{
		Title:   dict.T("panel.setup"),
		Message: dict.T("panel.setup.m"),
		Diagnostics: map[string]string{
			"id":    session.UserID,
			"email": session.Email,
			"role":  session.Role,
		},
	})
}

func ErrorPage(dict Dictionary, message string) Page {
	return panelPage(StateError, dict, Panel{Title: dict.T("panel.error"), Message: message})
}

func UnconfiguredPage(dict Dictionary, composer domain.ProfileType) Page {
	page := panelPage(StateUnconfigured, dict, Panel{
		Title:       dict.T("panel.unconfigured"),
		Message:     dict.T("panel.unconfigured.m"),
		Diagnostics: map[string]string{"composer": string(composer)},
	})
	page.Composer = composer
	return page
}
