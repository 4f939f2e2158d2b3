package presentation

import (
	"fmt"
	"strconv"
	"time"

	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
)

type Layout string

const (
	// LayoutCompact is a single horizontal bar used beside an open sidebar.
	LayoutCompact Layout = "compact"
	// LayoutFull is the two-column layout with its own profile sidebar.
	LayoutFull Layout = "full"
)

type Header struct {
	Layout           Layout                  `json:"layout"`
	UserID           string                  `json:"userId"`
	DisplayName      string                  `json:"displayName"`
	Username         string                  `json:"username"`
	AvatarURL        string                  `json:"avatarUrl,omitempty"`
	CoverURL         string                  `json:"coverUrl,omitempty"`
	Bio              string                  `json:"bio,omitempty"`
	Type             domain.ProfileType      `json:"type"`
	Subtitle         string                  `json:"subtitle,omitempty"`
	Stats            domain.ActivityStats    `json:"stats"`
	CanEdit          bool                    `json:"canEdit"`
	CanMessage       bool                    `json:"canMessage"`
	CanConnect       bool                    `json:"canConnect"`
	ConnectionStatus domain.ConnectionStatus `json:"connectionStatus,omitempty"`
}

type Highlight struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type Sidebar struct {
	Contact      domain.ContactInfo   `json:"contact"`
	Stats        domain.ActivityStats `json:"stats"`
	MemberSince  time.Time            `json:"memberSince"`
	LastActiveAt *time.Time           `json:"lastActiveAt,omitempty"`
	Highlights   []Highlight          `json:"highlights,omitempty"`
}

// BuildHeader lays out the header for the sidebar state. The full layout
// carries its own sidebar; the compact one leaves it to the caller.
func BuildHeader(p domain.Profile, perms domain.Permissions, status domain.ConnectionStatus, sidebarOpen bool, dict Dictionary) (Header, *Sidebar) {
	h := Header{
		Layout:      LayoutFull,
		UserID:      p.UserID.String(),
		DisplayName: p.DisplayName,
		Username:    p.Username,
		AvatarURL:   p.AvatarURL,
		CoverURL:    p.CoverURL,
		Bio:         p.Bio,
		Type:        p.Type,
		Subtitle:    subtitle(p, dict),
		Stats:       p.Stats,
		CanEdit:     perms.CanEdit,
		CanMessage:  perms.CanMessage,
		CanConnect:  perms.CanConnect,
	}
	if !perms.IsOwner {
		h.ConnectionStatus = status
	}
	if sidebarOpen {
		h.Layout = LayoutCompact
		h.CoverURL = ""
		return h, nil
	}
	return h, &Sidebar{
		Contact:      p.Contact,
		Stats:        p.Stats,
		MemberSince:  p.CreatedAt,
		LastActiveAt: p.LastActiveAt,
		Highlights:   highlights(p, dict),
	}
}

func subtitle(p domain.Profile, dict Dictionary) string {
	switch {
	case p.Student != nil:
		return joinNonEmpty(p.Student.GradeLevel, p.Student.ClassName)
	case p.Teacher != nil:
		return joinNonEmpty(p.Teacher.Department, plural(dict, len(p.Teacher.Classes), "unit.class"))
	case p.Parent != nil:
		return joinNonEmpty(p.Parent.Occupation, plural(dict, len(p.Parent.Children), "unit.child"))
	case p.Staff != nil:
		return joinNonEmpty(p.Staff.Position, p.Staff.Department)
	}
	return ""
}

func highlights(p domain.Profile, dict Dictionary) []Highlight {
	switch {
	case p.Student != nil:
		return []Highlight{
			{Label: dict.T("hl.student_number"), Value: p.Student.StudentNumber},
			{Label: dict.T("hl.gpa"), Value: formatFloat(p.Student.CurrentGPA, 2)},
			{Label: dict.T("hl.achievements"), Value: strconv.Itoa(len(p.Student.Achievements))},
		}
	case p.Teacher != nil:
		return []Highlight{
			{Label: dict.T("hl.employee_id"), Value: p.Teacher.EmployeeID},
			{Label: dict.T("hl.experience"), Value: plural(dict, p.Teacher.YearsOfExperience, "unit.year")},
			{Label: dict.T("hl.subjects"), Value: strconv.Itoa(len(p.Teacher.Subjects))},
		}
	case p.Parent != nil:
		return []Highlight{
			{Label: dict.T("hl.children"), Value: strconv.Itoa(len(p.Parent.Children))},
			{Label: dict.T("hl.average_gpa"), Value: formatFloat(domain.AverageGPA(p.Parent.Children), 2)},
		}
	case p.Staff != nil:
		return []Highlight{
			{Label: dict.T("hl.employee_id"), Value: p.Staff.EmployeeID},
			{Label: dict.T("hl.efficiency"), Value: formatFloat(p.Staff.WorkMetrics.EfficiencyScore, 0) + "%"},
			{Label: dict.T("hl.responsibilities"), Value: strconv.Itoa(len(p.Staff.Responsibilities))},
		}
	}
	return nil
}

func joinNonEmpty(parts ...string) string {
	out := ""
	for _, part := range parts {
		if part == "" {
			continue
		}
		if out != "" {
			out += " · "
		}
		out += part
	}
	return out
}

// plural renders n with the unit label under key+".one" or key+".many".
func plural(dict Dictionary, n int, key string) string {
	switch n {
	case 0:
		return ""
	case 1:
		return "1 " + dict.T(key+".one")
	}
	return fmt.Sprintf("%d %s", n, dict.T(key+".many"))
}

func formatFloat(v float64, decimals int) string {
	return strconv.FormatFloat(v, 'f', decimals, 64)
}
