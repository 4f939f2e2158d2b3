package domain

import "strings"

// Role is the platform role carried by the session token.
type Role string

const (
	RoleStudent    Role = "STUDENT"
	RoleTeacher    Role = "TEACHER"
	RoleGuardian   Role = "GUARDIAN"
	RoleStaff      Role = "STAFF"
	RoleAccountant Role = "ACCOUNTANT"
	RoleAdmin      Role = "ADMIN"
	RoleDeveloper  Role = "DEVELOPER"
	RoleUser       Role = "USER"
)

func NormalizeRole(v string) Role {
	return Role(strings.ToUpper(strings.TrimSpace(v)))
}

// IsElevated reports roles that see every profile with staff privileges.
func (r Role) IsElevated() bool {
	return r == RoleAdmin || r == RoleDeveloper
}

// ProfileType names the role-specific payload a profile carries.
type ProfileType string

const (
	ProfileTypeStudent ProfileType = "student"
	ProfileTypeTeacher ProfileType = "teacher"
	ProfileTypeParent  ProfileType = "parent"
	ProfileTypeStaff   ProfileType = "staff"
)

func ParseProfileType(v string) (ProfileType, bool) {
	switch ProfileType(strings.ToLower(strings.TrimSpace(v))) {
	case ProfileTypeStudent:
		return ProfileTypeStudent, true
	case ProfileTypeTeacher:
		return ProfileTypeTeacher, true
	case ProfileTypeParent:
		return ProfileTypeParent, true
	case ProfileTypeStaff:
		return ProfileTypeStaff, true
	default:
		return "", false
	}
}

// ProfileTypeForRole maps a session role onto the profile payload it owns.
// USER and unknown roles have no profile type.
func ProfileTypeForRole(r Role) (ProfileType, bool) {
	switch r {
	case RoleStudent:
		return ProfileTypeStudent, true
	case RoleTeacher:
		return ProfileTypeTeacher, true
	case RoleGuardian:
		return ProfileTypeParent, true
	case RoleStaff, RoleAccountant, RoleAdmin, RoleDeveloper:
		return ProfileTypeStaff, true
	default:
		return "", false
	}
}
