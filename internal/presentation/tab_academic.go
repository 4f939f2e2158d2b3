package presentation

import (
	"sort"
	"strings"

	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
)

type ChildOption struct {
	StudentID      string  `json:"studentId"`
	Name           string  `json:"name"`
	GradeLevel     string  `json:"gradeLevel,omitempty"`
	CurrentGPA     float64 `json:"currentGPA"`
	AttendanceRate float64 `json:"attendanceRate"`
}

type AcademicView struct {
	Children        []ChildOption             `json:"children,omitempty"`
	SelectedChild   string                    `json:"selectedChild,omitempty"`
	AverageGPA      *float64                  `json:"averageGPA,omitempty"`
	Subjects        []string                  `json:"subjects"`
	SelectedSubject string                    `json:"selectedSubject,omitempty"`
	Grades          []domain.SubjectGrade     `json:"grades,omitempty"`
	Assignments     []domain.Assignment       `json:"assignments"`
	Exams           []domain.Exam             `json:"exams"`
	Classes         []domain.ClassAssignment  `json:"classes,omitempty"`
	GPA             float64                   `json:"gpa"`
	AttendanceRate  float64                   `json:"attendanceRate"`
	Attendance      []domain.AttendanceRecord `json:"attendance,omitempty"`
	CanEdit         bool                      `json:"canEdit"`
}

func academicTab(p domain.Profile, ctx tabContext) any {
	view := AcademicView{CanEdit: ctx.isOwner}
	switch {
	case p.Student != nil:
		s := p.Student
		fillAcademic(&view, s.Subjects, s.Assignments, s.Exams, ctx.subject)
		view.GPA = s.CurrentGPA
		view.Attendance = s.Attendance
		view.AttendanceRate = domain.AttendanceRate(s.Attendance)
	case p.Parent != nil:
		children := p.Parent.Children
		avg := domain.AverageGPA(children)
		view.AverageGPA = &avg
		view.Children = make([]ChildOption, 0, len(children))
		for _, c := range children {
			view.Children = append(view.Children, ChildOption{
				StudentID:      c.StudentID,
				Name:           c.Name,
				GradeLevel:     c.GradeLevel,
				CurrentGPA:     c.CurrentGPA,
				AttendanceRate: domain.AttendanceRate(c.Attendance),
			})
		}
		child, ok := selectChild(children, ctx.child)
		if !ok {
			view.Subjects = []string{}
			view.Assignments = []domain.Assignment{}
			view.Exams = []domain.Exam{}
			view.AttendanceRate = domain.AttendanceRate(nil)
			break
		}
		view.SelectedChild = child.StudentID
		fillAcademic(&view, child.Subjects, child.Assignments, child.Exams, ctx.subject)
		view.GPA = child.CurrentGPA
		view.Attendance = child.Attendance
		view.AttendanceRate = domain.AttendanceRate(child.Attendance)
	case p.Teacher != nil:
		t := p.Teacher
		view.Classes = t.Classes
		subjects := append([]string(nil), t.Subjects...)
		for _, a := range t.Assignments {
			subjects = append(subjects, a.Subject)
		}
		view.Subjects = uniqueSorted(subjects)
		view.SelectedSubject = matchSubject(view.Subjects, ctx.subject)
		view.Assignments = filterAssignments(t.Assignments, view.SelectedSubject)
		view.Exams = []domain.Exam{}
		view.AttendanceRate = domain.AttendanceRate(nil)
	}
	return view
}

// selectChild picks the child with the requested id, or the first child.
func selectChild(children []domain.ChildSummary, id string) (domain.ChildSummary, bool) {
	for _, c := range children {
		if c.StudentID == id {
			return c, true
		}
	}
	if len(children) == 0 {
		return domain.ChildSummary{}, false
	}
	return children[0], true
}

func fillAcademic(view *AcademicView, grades []domain.SubjectGrade, assignments []domain.Assignment, exams []domain.Exam, subject string) {
	names := make([]string, 0, len(grades)+len(assignments)+len(exams))
	for _, g := range grades {
		names = append(names, g.Subject)
	}
	for _, a := range assignments {
		names = append(names, a.Subject)
	}
	for _, e := range exams {
		names = append(names, e.Subject)
	}
	view.Subjects = uniqueSorted(names)
	view.SelectedSubject = matchSubject(view.Subjects, subject)
	view.Grades = make([]domain.SubjectGrade, 0, len(grades))
	for _, g := range grades {
		if view.SelectedSubject == "" || g.Subject == view.SelectedSubject {
			view.Grades = append(view.Grades, g)
		}
	}
	view.Assignments = filterAssignments(assignments, view.SelectedSubject)
	view.Exams = make([]domain.Exam, 0, len(exams))
	for _, e := range exams {
		if view.SelectedSubject == "" || e.Subject == view.SelectedSubject {
			view.Exams = append(view.Exams, e)
		}
	}
	sort.SliceStable(view.Exams, func(i, j int) bool {
		return view.Exams[i].Date.After(view.Exams[j].Date)
	})
}

// filterAssignments keeps the subject's assignments ordered by due date.
func filterAssignments(items []domain.Assignment, subject string) []domain.Assignment {
	out := make([]domain.Assignment, 0, len(items))
	for _, a := range items {
		if subject == "" || a.Subject == subject {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DueDate.Before(out[j].DueDate)
	})
	return out
}

// matchSubject resolves the requested subject case-insensitively; an
// unknown subject or "all" clears the filter.
func matchSubject(subjects []string, requested string) string {
	requested = strings.TrimSpace(requested)
	if requested == "" || strings.EqualFold(requested, "all") {
		return ""
	}
	for _, s := range subjects {
		if strings.EqualFold(s, requested) {
			return s
		}
	}
	return ""
}

func uniqueSorted(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
