package presentation

import "github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"

type SettingsView struct {
	Settings     domain.Settings     `json:"settings"`
	Themes       []domain.Theme      `json:"themes"`
	Visibilities []domain.Visibility `json:"visibilities"`
	Languages    []string            `json:"languages"`
	CanEdit      bool                `json:"canEdit"`
}

func settingsTab(p domain.Profile, ctx tabContext) any {
	return SettingsView{
		Settings:     p.Settings,
		Themes:       []domain.Theme{domain.ThemeLight, domain.ThemeDark, domain.ThemeSystem},
		Visibilities: []domain.Visibility{domain.VisibilityPublic, domain.VisibilitySchool, domain.VisibilityPrivate},
		Languages:    Languages(),
		CanEdit:      ctx.isOwner,
	}
}
