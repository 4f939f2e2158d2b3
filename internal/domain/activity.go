package domain

import (
	"time"

	"github.com/google/uuid"
)

type ActivityType string

const (
	ActivityAssignmentSubmitted ActivityType = "assignment_submitted"
	ActivityGradeReceived       ActivityType = "grade_received"
	ActivityPaymentMade         ActivityType = "payment_made"
	ActivityAttendanceMarked    ActivityType = "attendance_marked"
	ActivityExamTaken           ActivityType = "exam_taken"
	ActivityAchievementEarned   ActivityType = "achievement_earned"
	ActivityDocumentUploaded    ActivityType = "document_uploaded"
	ActivityMessageSent         ActivityType = "message_sent"
	ActivityEventAttended       ActivityType = "event_attended"
	ActivityCourseEnrolled      ActivityType = "course_enrolled"
	ActivityProfileUpdated      ActivityType = "profile_updated"
	ActivityConnectionMade      ActivityType = "connection_made"
	ActivityTaskCompleted       ActivityType = "task_completed"
	ActivityReportGenerated     ActivityType = "report_generated"
	ActivityAnnouncementPosted  ActivityType = "announcement_posted"
)

// ActivityStyle is the presentation entry of one activity type. Icon, color
// and label are registered together so a type can never be half configured.
type ActivityStyle struct {
	Type  ActivityType `json:"type"`
	Icon  string       `json:"icon"`
	Color string       `json:"color"`
	Label string       `json:"label"`
}

var activityRegistry = []ActivityStyle{
	{Type: ActivityAssignmentSubmitted, Icon: "file-check", Color: "blue", Label: "Assignment submitted"},
	{Type: ActivityGradeReceived, Icon: "award", Color: "green", Label: "Grade received"},
	{Type: ActivityPaymentMade, Icon: "credit-card", Color: "emerald", Label: "Payment made"},
	{Type: ActivityAttendanceMarked, Icon: "calendar-check", Color: "teal", Label: "Attendance marked"},
	{Type: ActivityExamTaken, Icon: "clipboard", Color: "indigo", Label: "Exam taken"},
	{Type: ActivityAchievementEarned, Icon: "trophy", Color: "yellow", Label: "Achievement earned"},
	{Type: ActivityDocumentUploaded, Icon: "upload", Color: "slate", Label: "Document uploaded"},
	{Type: ActivityMessageSent, Icon: "message-square", Color: "sky", Label: "Message sent"},
	{Type: ActivityEventAttended, Icon: "calendar", Color: "purple", Label: "Event attended"},
	{Type: ActivityCourseEnrolled, Icon: "book-open", Color: "cyan", Label: "Course enrolled"},
	{Type: ActivityProfileUpdated, Icon: "user", Color: "gray", Label: "Profile updated"},
	{Type: ActivityConnectionMade, Icon: "users", Color: "pink", Label: "Connection made"},
	{Type: ActivityTaskCompleted, Icon: "check-circle", Color: "lime", Label: "Task completed"},
	{Type: ActivityReportGenerated, Icon: "bar-chart", Color: "orange", Label: "Report generated"},
	{Type: ActivityAnnouncementPosted, Icon: "megaphone", Color: "red", Label: "Announcement posted"},
}

var activityByType = func() map[ActivityType]ActivityStyle {
	out := make(map[ActivityType]ActivityStyle, len(activityRegistry))
	for _, style := range activityRegistry {
		out[style.Type] = style
	}
	return out
}()

var unknownActivityStyle = ActivityStyle{Icon: "activity", Color: "gray", Label: "Activity"}

// ActivityTypes lists every registered type in display order.
func ActivityTypes() []ActivityType {
	out := make([]ActivityType, 0, len(activityRegistry))
	for _, style := range activityRegistry {
		out = append(out, style.Type)
	}
	return out
}

func IsKnownActivityType(t ActivityType) bool {
	_, ok := activityByType[t]
	return ok
}

// LookupActivityStyle returns the registered style or an explicit fallback.
func LookupActivityStyle(t ActivityType) ActivityStyle {
	if style, ok := activityByType[t]; ok {
		return style
	}
	fallback := unknownActivityStyle
	fallback.Type = t
	return fallback
}

type ActivityItem struct {
	ActivityID  uuid.UUID         `json:"id"`
	UserID      uuid.UUID         `json:"userId"`
	Type        ActivityType      `json:"type"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Link        string            `json:"link,omitempty"`
	OccurredAt  time.Time         `json:"timestamp"`
}

type ActivityFilter struct {
	Type   ActivityType
	Limit  int
	Offset int
}
