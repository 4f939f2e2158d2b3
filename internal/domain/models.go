package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilitySchool  Visibility = "school"
	VisibilityPrivate Visibility = "private"
)

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

func ParseTheme(v string) (Theme, error) {
	switch Theme(v) {
	case ThemeLight, ThemeDark, ThemeSystem:
		return Theme(v), nil
	default:
		return "", fmt.Errorf("%w: theme must be light, dark or system", ErrInvalidInput)
	}
}

// Profile is the identity record of a platform user plus exactly one
// role-specific payload matching Type.
type Profile struct {
	ProfileID    uuid.UUID       `json:"profileId"`
	UserID       uuid.UUID       `json:"userId"`
	Type         ProfileType     `json:"type"`
	Username     string          `json:"username"`
	DisplayName  string          `json:"displayName"`
	Bio          string          `json:"bio,omitempty"`
	AvatarURL    string          `json:"avatarUrl,omitempty"`
	CoverURL     string          `json:"coverUrl,omitempty"`
	SchoolID     string          `json:"schoolId,omitempty"`
	Contact      ContactInfo     `json:"contact"`
	Stats        ActivityStats   `json:"stats"`
	Settings     Settings        `json:"settings"`
	Student      *StudentDetails `json:"student,omitempty"`
	Teacher      *TeacherDetails `json:"teacher,omitempty"`
	Parent       *ParentDetails  `json:"parent,omitempty"`
	Staff        *StaffDetails   `json:"staff,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
	LastActiveAt *time.Time      `json:"lastActiveAt,omitempty"`
	DeletedAt    *time.Time      `json:"-"`
}

func (p Profile) payloadCount() int {
	n := 0
	if p.Student != nil {
		n++
	}
	if p.Teacher != nil {
		n++
	}
	if p.Parent != nil {
		n++
	}
	if p.Staff != nil {
		n++
	}
	return n
}

// Validate enforces that exactly one payload is populated and that it
// matches the declared type.
func (p Profile) Validate() error {
	if p.payloadCount() != 1 {
		return ErrProfileUnconfigured
	}
	switch p.Type {
	case ProfileTypeStudent:
		if p.Student != nil {
			return nil
		}
	case ProfileTypeTeacher:
		if p.Teacher != nil {
			return nil
		}
	case ProfileTypeParent:
		if p.Parent != nil {
			return nil
		}
	case ProfileTypeStaff:
		if p.Staff != nil {
			return nil
		}
	}
	return ErrProfileUnconfigured
}

// EmptyPayloadFor returns a profile carrying a zero payload for the type.
func EmptyPayloadFor(p Profile, t ProfileType) Profile {
	p.Type = t
	p.Student, p.Teacher, p.Parent, p.Staff = nil, nil, nil, nil
	switch t {
	case ProfileTypeStudent:
		p.Student = &StudentDetails{}
	case ProfileTypeTeacher:
		p.Teacher = &TeacherDetails{}
	case ProfileTypeParent:
		p.Parent = &ParentDetails{}
	case ProfileTypeStaff:
		p.Staff = &StaffDetails{}
	}
	return p
}

type ContactInfo struct {
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`
	Website string `json:"website,omitempty"`
}

type ActivityStats struct {
	Views       int `json:"views"`
	Connections int `json:"connections"`
	Posts       int `json:"posts"`
	Streak      int `json:"streak"`
}

type Settings struct {
	Theme                   Theme      `json:"theme"`
	Language                string     `json:"language"`
	EmailNotifications      bool       `json:"emailNotifications"`
	PushNotifications       bool       `json:"pushNotifications"`
	SMSNotifications        bool       `json:"smsNotifications"`
	Visibility              Visibility `json:"visibility"`
	ShowEmail               bool       `json:"showEmail"`
	ShowPhone               bool       `json:"showPhone"`
	AllowMessages           bool       `json:"allowMessages"`
	AllowConnectionRequests bool       `json:"allowConnectionRequests"`
	UpdatedAt               time.Time  `json:"updatedAt"`
}

func DefaultSettings(now time.Time) Settings {
	return Settings{
		Theme:                   ThemeSystem,
		Language:                "en",
		EmailNotifications:      true,
		PushNotifications:       true,
		Visibility:              VisibilitySchool,
		AllowMessages:           true,
		AllowConnectionRequests: true,
		UpdatedAt:               now.UTC(),
	}
}

type StudentDetails struct {
	StudentNumber  string             `json:"studentNumber,omitempty"`
	GradeLevel     string             `json:"gradeLevel,omitempty"`
	ClassName      string             `json:"className,omitempty"`
	EnrollmentDate *time.Time         `json:"enrollmentDate,omitempty"`
	CurrentGPA     float64            `json:"currentGPA"`
	GuardianIDs    []string           `json:"guardianIds,omitempty"`
	Subjects       []SubjectGrade     `json:"subjects,omitempty"`
	Assignments    []Assignment       `json:"assignments,omitempty"`
	Exams          []Exam             `json:"exams,omitempty"`
	Attendance     []AttendanceRecord `json:"attendance,omitempty"`
	Fees           []FeeItem          `json:"fees,omitempty"`
	Payments       []Payment          `json:"payments,omitempty"`
	Schedule       []ScheduleSlot     `json:"schedule,omitempty"`
	Achievements   []Achievement      `json:"achievements,omitempty"`
	Documents      []Document         `json:"documents,omitempty"`
	Messages       []Message          `json:"messages,omitempty"`
}

type TeacherDetails struct {
	EmployeeID        string            `json:"employeeId,omitempty"`
	Department        string            `json:"department,omitempty"`
	Subjects          []string          `json:"subjects,omitempty"`
	Classes           []ClassAssignment `json:"classes,omitempty"`
	YearsOfExperience int               `json:"yearsOfExperience"`
	Qualifications    []string          `json:"qualifications,omitempty"`
	OfficeHours       []ScheduleSlot    `json:"officeHours,omitempty"`
	Schedule          []ScheduleSlot    `json:"schedule,omitempty"`
	Assignments       []Assignment      `json:"assignments,omitempty"`
	Tasks             []Task            `json:"tasks,omitempty"`
	Documents         []Document        `json:"documents,omitempty"`
	Messages          []Message         `json:"messages,omitempty"`
}

type ParentDetails struct {
	Occupation string           `json:"occupation,omitempty"`
	Children   []ChildSummary   `json:"children,omitempty"`
	Financial  FinancialSummary `json:"financial"`
	Messages   []Message        `json:"messages,omitempty"`
	Documents  []Document       `json:"documents,omitempty"`
}

type StaffDetails struct {
	EmployeeID       string         `json:"employeeId,omitempty"`
	Department       string         `json:"department,omitempty"`
	Position         string         `json:"position,omitempty"`
	Responsibilities []string       `json:"responsibilities,omitempty"`
	WorkMetrics      WorkMetrics    `json:"workMetrics"`
	Tasks            []Task         `json:"tasks,omitempty"`
	Reports          []Report       `json:"reports,omitempty"`
	Schedule         []ScheduleSlot `json:"schedule,omitempty"`
	Documents        []Document     `json:"documents,omitempty"`
	Messages         []Message      `json:"messages,omitempty"`
}

type SubjectGrade struct {
	Subject string  `json:"subject"`
	Teacher string  `json:"teacher,omitempty"`
	Grade   string  `json:"grade,omitempty"`
	Score   float64 `json:"score"`
}

type Assignment struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Subject  string    `json:"subject"`
	DueDate  time.Time `json:"dueDate"`
	Status   string    `json:"status"`
	Score    *float64  `json:"score,omitempty"`
	MaxScore float64   `json:"maxScore,omitempty"`
}

type Exam struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Subject  string    `json:"subject"`
	Date     time.Time `json:"date"`
	Score    *float64  `json:"score,omitempty"`
	MaxScore float64   `json:"maxScore,omitempty"`
	Grade    string    `json:"grade,omitempty"`
}

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceExcused AttendanceStatus = "excused"
)

type AttendanceRecord struct {
	Date   time.Time        `json:"date"`
	Status AttendanceStatus `json:"status"`
}

type FeeItem struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Category    string    `json:"category,omitempty"`
	Amount      float64   `json:"amount"`
	Paid        float64   `json:"paid"`
	DueDate     time.Time `json:"dueDate"`
}

type Payment struct {
	ID        string    `json:"id"`
	FeeID     string    `json:"feeId,omitempty"`
	Amount    float64   `json:"amount"`
	Method    string    `json:"method,omitempty"`
	Reference string    `json:"reference,omitempty"`
	PaidAt    time.Time `json:"paidAt"`
}

type ScheduleSlot struct {
	Day       string `json:"day"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Title     string `json:"title"`
	Location  string `json:"location,omitempty"`
}

type Achievement struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	AwardedAt   time.Time `json:"awardedAt"`
}

type Document struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Category   string    `json:"category,omitempty"`
	URL        string    `json:"url,omitempty"`
	SizeBytes  int64     `json:"sizeBytes,omitempty"`
	UploadedAt time.Time `json:"uploadedAt"`
}

type Task struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Status   string     `json:"status"`
	Priority string     `json:"priority,omitempty"`
	DueDate  *time.Time `json:"dueDate,omitempty"`
}

func (t Task) IsDone() bool { return t.Status == "done" }

type Report struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Period      string    `json:"period,omitempty"`
	Status      string    `json:"status"`
	GeneratedAt time.Time `json:"generatedAt"`
}

type Message struct {
	ID      string    `json:"id"`
	From    string    `json:"from"`
	Subject string    `json:"subject"`
	Preview string    `json:"preview,omitempty"`
	SentAt  time.Time `json:"sentAt"`
	Read    bool      `json:"read"`
}

type ClassAssignment struct {
	ClassName    string  `json:"className"`
	Subject      string  `json:"subject"`
	StudentCount int     `json:"studentCount"`
	AverageScore float64 `json:"averageScore"`
}

type ChildSummary struct {
	StudentID   string             `json:"studentId"`
	Name        string             `json:"name"`
	GradeLevel  string             `json:"gradeLevel,omitempty"`
	ClassName   string             `json:"className,omitempty"`
	CurrentGPA  float64            `json:"currentGPA"`
	Subjects    []SubjectGrade     `json:"subjects,omitempty"`
	Attendance  []AttendanceRecord `json:"attendance,omitempty"`
	Assignments []Assignment       `json:"assignments,omitempty"`
	Exams       []Exam             `json:"exams,omitempty"`
}

type FinancialSummary struct {
	TotalFeesDue float64   `json:"totalFeesDue"`
	TotalPaid    float64   `json:"totalPaid"`
	Fees         []FeeItem `json:"fees,omitempty"`
	Payments     []Payment `json:"payments,omitempty"`
}

type WorkMetrics struct {
	TasksCompleted  int     `json:"tasksCompleted"`
	TasksPending    int     `json:"tasksPending"`
	EfficiencyScore float64 `json:"efficiencyScore"`
	HoursThisMonth  float64 `json:"hoursThisMonth"`
}

type UserIdentity struct {
	UserID uuid.UUID
	Email  string
	Role   Role
}
