package presentation

import (
	"sort"

	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
)

type TasksView struct {
	Open    []domain.Task       `json:"open"`
	Done    []domain.Task       `json:"done"`
	Overdue int                 `json:"overdue"`
	Metrics *domain.WorkMetrics `json:"metrics,omitempty"`
	CanEdit bool                `json:"canEdit"`
}

type ReportsView struct {
	Reports     []domain.Report `json:"reports"`
	InProgress  int             `json:"inProgress"`
	CanGenerate bool            `json:"canGenerate"`
}

func tasksTab(p domain.Profile, ctx tabContext) any {
	var tasks []domain.Task
	view := TasksView{CanEdit: ctx.isOwner}
	switch {
	case p.Teacher != nil:
		tasks = p.Teacher.Tasks
	case p.Staff != nil:
		tasks = p.Staff.Tasks
		metrics := p.Staff.WorkMetrics
		view.Metrics = &metrics
	}
	view.Open = make([]domain.Task, 0, len(tasks))
	view.Done = make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.IsDone() {
			view.Done = append(view.Done, t)
			continue
		}
		if t.DueDate != nil && t.DueDate.Before(ctx.now) {
			view.Overdue++
		}
		view.Open = append(view.Open, t)
	}
	// open tasks by due date, undated ones last
	sort.SliceStable(view.Open, func(i, j int) bool {
		a, b := view.Open[i].DueDate, view.Open[j].DueDate
		if a == nil || b == nil {
			return a != nil
		}
		return a.Before(*b)
	})
	return view
}

func reportsTab(p domain.Profile, ctx tabContext) any {
	var reports []domain.Report
	if p.Staff != nil {
		reports = p.Staff.Reports
	}
	out := append([]domain.Report{}, reports...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].GeneratedAt.After(out[j].GeneratedAt) })
	return ReportsView{
		Reports:     out,
		InProgress:  countReportsInProgress(out),
		CanGenerate: ctx.isOwner,
	}
}
