package presentation

import (
	"strconv"

	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
)

type OverviewView struct {
	Stats         domain.ActivityStats     `json:"stats"`
	Highlights    []Highlight              `json:"highlights"`
	Timeline      TimelineView             `json:"timeline"`
	Contributions *domain.ContributionData `json:"contributions,omitempty"`
	CanEdit       bool                     `json:"canEdit"`
}

func overviewTab(p domain.Profile, ctx tabContext) any {
	maxItems := ctx.opts.TimelineMaxItems
	if maxItems == 0 {
		maxItems = defaultTimelineItems
	}
	return OverviewView{
		Stats:      p.Stats,
		Highlights: overviewHighlights(p, ctx),
		Timeline: Timeline(ctx.opts.Activities, TimelineOptions{
			Filter:   ctx.opts.TimelineFilter,
			MaxItems: maxItems,
			Expanded: ctx.opts.TimelineExpanded,
			Now:      ctx.now,
			Location: ctx.loc,
			Dict:     ctx.dict,
		}),
		Contributions: ctx.opts.Contributions,
		CanEdit:       ctx.isOwner,
	}
}

func overviewHighlights(p domain.Profile, ctx tabContext) []Highlight {
	switch {
	case p.Student != nil:
		s := p.Student
		fees := domain.SumFees(s.Fees, ctx.now)
		return []Highlight{
			{Label: ctx.dict.T("hl.gpa"), Value: formatFloat(s.CurrentGPA, 2)},
			{Label: ctx.dict.T("hl.attendance"), Value: percent(domain.AttendanceRate(s.Attendance))},
			{Label: ctx.dict.T("hl.pending_assignments"), Value: strconv.Itoa(countPendingAssignments(s.Assignments))},
			{Label: ctx.dict.T("hl.outstanding_fees"), Value: formatFloat(fees.Outstanding, 2)},
		}
	case p.Teacher != nil:
		t := p.Teacher
		students, scoreSum := 0, 0.0
		for _, c := range t.Classes {
			students += c.StudentCount
			scoreSum += c.AverageScore
		}
		avg := 0.0
		if len(t.Classes) > 0 {
			avg = scoreSum / float64(len(t.Classes))
		}
		return []Highlight{
			{Label: ctx.dict.T("hl.classes"), Value: strconv.Itoa(len(t.Classes))},
			{Label: ctx.dict.T("hl.students"), Value: strconv.Itoa(students)},
			{Label: ctx.dict.T("hl.average_class_score"), Value: formatFloat(avg, 1)},
			{Label: ctx.dict.T("hl.open_tasks"), Value: strconv.Itoa(countOpenTasks(t.Tasks))},
		}
	case p.Parent != nil:
		pd := p.Parent
		due, paid := parentTotals(pd, ctx)
		return []Highlight{
			{Label: ctx.dict.T("hl.children"), Value: strconv.Itoa(len(pd.Children))},
			{Label: ctx.dict.T("hl.average_gpa"), Value: formatFloat(domain.AverageGPA(pd.Children), 2)},
			{Label: ctx.dict.T("hl.payment_progress"), Value: percent(domain.PaymentProgress(paid, due))},
		}
	case p.Staff != nil:
		m := p.Staff.WorkMetrics
		return []Highlight{
			{Label: ctx.dict.T("hl.tasks_completed"), Value: strconv.Itoa(m.TasksCompleted)},
			{Label: ctx.dict.T("hl.tasks_pending"), Value: strconv.Itoa(m.TasksPending)},
			{Label: ctx.dict.T("hl.efficiency"), Value: percent(m.EfficiencyScore)},
			{Label: ctx.dict.T("hl.hours_this_month"), Value: formatFloat(m.HoursThisMonth, 1)},
		}
	}
	return nil
}

func percent(v float64) string {
	return formatFloat(v, 0) + "%"
}
