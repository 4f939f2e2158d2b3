package domain

import "github.com/google/uuid"

type Permissions struct {
	IsOwner          bool `json:"isOwner"`
	CanView          bool `json:"canView"`
	CanEdit          bool `json:"canEdit"`
	CanMessage       bool `json:"canMessage"`
	CanConnect       bool `json:"canConnect"`
	CanViewContact   bool `json:"canViewContact"`
	CanViewAcademic  bool `json:"canViewAcademic"`
	CanViewFinancial bool `json:"canViewFinancial"`
}

type Viewer struct {
	UserID uuid.UUID
	Role   Role
}

// ResolvePermissions decides what viewer may do with target. connected is
// true when the two users have an accepted connection.
func ResolvePermissions(viewer Viewer, target Profile, connected bool) Permissions {
	if viewer.UserID == target.UserID {
		return Permissions{
			IsOwner: true, CanView: true, CanEdit: true,
			CanViewContact: true, CanViewAcademic: true, CanViewFinancial: true,
		}
	}
	if viewer.Role.IsElevated() {
		return Permissions{
			CanView: true, CanEdit: true, CanMessage: true, CanConnect: !connected,
			CanViewContact: true, CanViewAcademic: true, CanViewFinancial: true,
		}
	}

	var p Permissions
	switch target.Settings.Visibility {
	case VisibilityPublic:
		p.CanView = true
	case VisibilityPrivate:
		p.CanView = connected
	default:
		_, schoolMember := ProfileTypeForRole(viewer.Role)
		p.CanView = schoolMember || connected
	}
	if !p.CanView {
		return p
	}

	guardian := isGuardianOf(viewer, target)
	p.CanMessage = target.Settings.AllowMessages
	p.CanConnect = !connected && target.Settings.AllowConnectionRequests
	p.CanViewContact = connected || guardian || target.Settings.ShowEmail || target.Settings.ShowPhone
	switch target.Type {
	case ProfileTypeStudent:
		p.CanViewAcademic = guardian || viewer.Role == RoleTeacher || viewer.Role == RoleStaff
		p.CanViewFinancial = guardian || viewer.Role == RoleAccountant
	case ProfileTypeParent:
		p.CanViewFinancial = viewer.Role == RoleAccountant
	default:
		p.CanViewAcademic = true
	}
	return p
}

func isGuardianOf(viewer Viewer, target Profile) bool {
	if viewer.Role != RoleGuardian || target.Student == nil {
		return false
	}
	id := viewer.UserID.String()
	for _, g := range target.Student.GuardianIDs {
		if g == id {
			return true
		}
	}
	return false
}

// Redact strips the parts of p that perms does not allow the viewer to see.
func Redact(p Profile, perms Permissions) Profile {
	if perms.IsOwner {
		return p
	}
	if !perms.CanViewContact {
		p.Contact = ContactInfo{}
	} else if !perms.CanEdit {
		if !p.Settings.ShowEmail {
			p.Contact.Email = ""
		}
		if !p.Settings.ShowPhone {
			p.Contact.Phone = ""
		}
	}
	if p.Student != nil {
		s := *p.Student
		if !perms.CanViewAcademic {
			s.Subjects, s.Assignments, s.Exams, s.Attendance = nil, nil, nil, nil
			s.CurrentGPA = 0
		}
		if !perms.CanViewFinancial {
			s.Fees, s.Payments = nil, nil
		}
		s.Messages = nil
		p.Student = &s
	}
	if p.Parent != nil {
		pd := *p.Parent
		if !perms.CanViewFinancial {
			pd.Financial = FinancialSummary{}
		}
		pd.Messages = nil
		p.Parent = &pd
	}
	if p.Teacher != nil {
		t := *p.Teacher
		t.Messages = nil
		p.Teacher = &t
	}
	if p.Staff != nil {
		s := *p.Staff
		s.Messages = nil
		p.Staff = &s
	}
	return p
}
