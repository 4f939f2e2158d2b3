package presentation

import (
	"time"

	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
)

const defaultTimelineItems = 10

type ComposeOptions struct {
	ActiveTab        string
	SidebarOpen      bool
	IsOwner          bool
	Elevated         bool
	Permissions      domain.Permissions
	ConnectionStatus domain.ConnectionStatus
	Dictionary       Dictionary
	Child            string
	Subject          string
	Activities       []domain.ActivityItem
	Contributions    *domain.ContributionData
	TimelineFilter   domain.ActivityType
	TimelineMaxItems int
	TimelineExpanded bool
	Now              time.Time
	Location         *time.Location
}

// tabContext is what a tab module sees besides the profile.
type tabContext struct {
	isOwner bool
	now     time.Time
	loc     *time.Location
	dict    Dictionary
	child   string
	subject string
	opts    ComposeOptions
}

type tabRenderer func(p domain.Profile, ctx tabContext) any

var tabRenderers = map[string]tabRenderer{
	TabOverview:      overviewTab,
	TabAcademic:      academicTab,
	TabPayments:      paymentsTab,
	TabCommunication: communicationTab,
	TabDocuments:     documentsTab,
	TabTasks:         tasksTab,
	TabReports:       reportsTab,
	TabSchedule:      scheduleTab,
	TabSettings:      settingsTab,
}

// Compose assembles the ready page of p with the composer of the given
// type. A profile whose payload does not belong to that composer is
// reported as unconfigured.
func Compose(composer domain.ProfileType, p domain.Profile, opts ComposeOptions) (Page, error) {
	if _, ok := roleTabs[composer]; !ok || p.Type != composer || p.Validate() != nil {
		return Page{}, domain.ErrProfileUnconfigured
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	dict := opts.Dictionary
	if dict.Lang == "" {
		dict, _ = LookupDictionary(DefaultLanguage)
	}

	tabs := TabsFor(composer, dict, opts.IsOwner, Badges(p, now))
	active := ResolveActiveTab(tabs, opts.ActiveTab)
	header, sidebar := BuildHeader(p, opts.Permissions, opts.ConnectionStatus, opts.SidebarOpen, dict)
	perms := opts.Permissions

	ctx := tabContext{
		isOwner: opts.IsOwner,
		now:     now,
		loc:     loc,
		dict:    dict,
		child:   opts.Child,
		subject: opts.Subject,
		opts:    opts,
	}
	var content any
	if render, ok := tabRenderers[active]; ok {
		content = render(p, ctx)
	}

	return Page{
		State:            StateReady,
		Lang:             dict.Lang,
		Dir:              dict.Dir,
		Composer:         composer,
		Elevated:         opts.Elevated,
		IsOwner:          opts.IsOwner,
		Header:           &header,
		Sidebar:          sidebar,
		Tabs:             tabs,
		ActiveTab:        active,
		Content:          content,
		Permissions:      &perms,
		ConnectionStatus: opts.ConnectionStatus,
	}, nil
}
