package presentation

import (
	"time"

	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
)

const (
	TabOverview      = "overview"
	TabAcademic      = "academic"
	TabPayments      = "payments"
	TabCommunication = "communication"
	TabDocuments     = "documents"
	TabTasks         = "tasks"
	TabReports       = "reports"
	TabSchedule      = "schedule"
	TabSettings      = "settings"
)

type TabConfig struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
	Badge *int   `json:"badge,omitempty"`
}

var tabIcons = map[string]string{
	TabOverview:      "layout-dashboard",
	TabAcademic:      "graduation-cap",
	TabPayments:      "wallet",
	TabCommunication: "message-square",
	TabDocuments:     "folder",
	TabTasks:         "check-square",
	TabReports:       "bar-chart",
	TabSchedule:      "calendar",
	TabSettings:      "settings",
}

// roleTabs is the static tab order of each composer.
var roleTabs = map[domain.ProfileType][]string{
	domain.ProfileTypeStudent: {TabOverview, TabAcademic, TabSchedule, TabPayments, TabDocuments, TabSettings},
	domain.ProfileTypeTeacher: {TabOverview, TabAcademic, TabSchedule, TabTasks, TabDocuments, TabCommunication, TabSettings},
	domain.ProfileTypeParent:  {TabOverview, TabAcademic, TabPayments, TabCommunication, TabDocuments, TabSettings},
	domain.ProfileTypeStaff:   {TabOverview, TabTasks, TabReports, TabSchedule, TabDocuments, TabSettings},
}

// TabsFor builds the tab strip of a composer. The settings tab is only
// offered to the owner.
func TabsFor(composer domain.ProfileType, dict Dictionary, isOwner bool, badges map[string]int) []TabConfig {
	ids := roleTabs[composer]
	out := make([]TabConfig, 0, len(ids))
	for _, id := range ids {
		if id == TabSettings && !isOwner {
			continue
		}
		tab := TabConfig{ID: id, Label: dict.T("tab." + id), Icon: tabIcons[id]}
		if n := badges[id]; n > 0 {
			tab.Badge = &n
		}
		out = append(out, tab)
	}
	return out
}

// ResolveActiveTab keeps requested when it is one of tabs and falls back
// to the first tab otherwise.
func ResolveActiveTab(tabs []TabConfig, requested string) string {
	for _, tab := range tabs {
		if tab.ID == requested {
			return requested
		}
	}
	if len(tabs) == 0 {
		return ""
	}
	return tabs[0].ID
}

// Badges counts the items needing attention per tab.
func Badges(p domain.Profile, now time.Time) map[string]int {
	badges := map[string]int{}
	switch {
	case p.Student != nil:
		badges[TabAcademic] = countPendingAssignments(p.Student.Assignments)
		badges[TabPayments] = unsettledFees(p.Student.Fees)
	case p.Teacher != nil:
		badges[TabAcademic] = countByStatus(p.Teacher.Assignments, "submitted")
		badges[TabTasks] = countOpenTasks(p.Teacher.Tasks)
		badges[TabCommunication] = countUnread(p.Teacher.Messages)
	case p.Parent != nil:
		badges[TabPayments] = domain.SumFees(p.Parent.Financial.Fees, now).OverdueFees
		badges[TabCommunication] = countUnread(p.Parent.Messages)
	case p.Staff != nil:
		badges[TabTasks] = countOpenTasks(p.Staff.Tasks)
		badges[TabReports] = countReportsInProgress(p.Staff.Reports)
	}
	return badges
}

func countPendingAssignments(items []domain.Assignment) int {
	n := 0
	for _, a := range items {
		if a.Status == "pending" || a.Status == "" {
			n++
		}
	}
	return n
}

func countByStatus(items []domain.Assignment, status string) int {
	n := 0
	for _, a := range items {
		if a.Status == status {
			n++
		}
	}
	return n
}

func unsettledFees(fees []domain.FeeItem) int {
	n := 0
	for _, f := range fees {
		if f.Paid < f.Amount {
			n++
		}
	}
	return n
}

func countOpenTasks(tasks []domain.Task) int {
	n := 0
	for _, t := range tasks {
		if !t.IsDone() {
			n++
		}
	}
	return n
}

func countUnread(messages []domain.Message) int {
	n := 0
	for _, m := range messages {
		if !m.Read {
			n++
		}
	}
	return n
}

func countReportsInProgress(reports []domain.Report) int {
	n := 0
	for _, r := range reports {
		if r.Status != "published" {
			n++
		}
	}
	return n
}
