package postgres

import (
	"encoding/json"
	"fmt"

	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
)

// roleDetails is the jsonb shape of the role payload column. Only the key
// matching the profile type is populated.
type roleDetails struct {
	Student *domain.StudentDetails `json:"student,omitempty"`
	Teacher *domain.TeacherDetails `json:"teacher,omitempty"`
	Parent  *domain.ParentDetails  `json:"parent,omitempty"`
	Staff   *domain.StaffDetails   `json:"staff,omitempty"`
}

// toProfileModel maps everything except the encrypted phone, which the
// repository seals separately.
func toProfileModel(p domain.Profile) (profileModel, error) {
	settings, err := json.Marshal(p.Settings)
	if err != nil {
		return profileModel{}, fmt.Errorf("encode settings: %w", err)
	}
	details, err := json.Marshal(roleDetails{Student: p.Student, Teacher: p.Teacher, Parent: p.Parent, Staff: p.Staff})
	if err != nil {
		return profileModel{}, fmt.Errorf("encode details: %w", err)
	}
	return profileModel{
		ProfileID: p.ProfileID, UserID: p.UserID, ProfileType: string(p.Type),
		Username: p.Username, DisplayName: p.DisplayName, Bio: p.Bio,
		AvatarURL: p.AvatarURL, CoverURL: p.CoverURL, SchoolID: p.SchoolID,
		ContactEmail: p.Contact.Email, ContactAddress: p.Contact.Address, ContactCity: p.Contact.City,
		ContactCountry: p.Contact.Country, ContactWebsite: p.Contact.Website,
		Settings: string(settings), Details: string(details),
		ViewsCount: p.Stats.Views, ConnectionsCount: p.Stats.Connections,
		PostsCount: p.Stats.Posts, StreakDays: p.Stats.Streak,
		LastActiveAt: p.LastActiveAt, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt, DeletedAt: p.DeletedAt,
	}, nil
}

func toDomainProfile(m profileModel, phone string) (domain.Profile, error) {
	var settings domain.Settings
	if err := json.Unmarshal([]byte(m.Settings), &settings); err != nil {
		return domain.Profile{}, fmt.Errorf("decode settings: %w", err)
	}
	var details roleDetails
	if m.Details != "" {
		if err := json.Unmarshal([]byte(m.Details), &details); err != nil {
			return domain.Profile{}, fmt.Errorf("decode details: %w", err)
		}
	}
	return domain.Profile{
		ProfileID: m.ProfileID, UserID: m.UserID, Type: domain.ProfileType(m.ProfileType),
		Username: m.Username, DisplayName: m.DisplayName, Bio: m.Bio,
		AvatarURL: m.AvatarURL, CoverURL: m.CoverURL, SchoolID: m.SchoolID,
		Contact: domain.ContactInfo{
			Email: m.ContactEmail, Phone: phone, Address: m.ContactAddress,
			City: m.ContactCity, Country: m.ContactCountry, Website: m.ContactWebsite,
		},
		Stats: domain.ActivityStats{
			Views: m.ViewsCount, Connections: m.ConnectionsCount, Posts: m.PostsCount, Streak: m.StreakDays,
		},
		Settings: settings, Student: details.Student, Teacher: details.Teacher,
		Parent: details.Parent, Staff: details.Staff,
		CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt, LastActiveAt: m.LastActiveAt, DeletedAt: m.DeletedAt,
	}, nil
}

func toDomainActivity(m activityModel) domain.ActivityItem {
	return domain.ActivityItem{
		ActivityID: m.ActivityID, UserID: m.UserID, Type: domain.ActivityType(m.ActivityType),
		Title: m.Title, Description: m.Description, Metadata: decodeMetadata(m.Metadata),
		Link: m.Link, OccurredAt: m.OccurredAt,
	}
}

func toConnectionModel(c domain.Connection) connectionModel {
	return connectionModel{
		ConnectionID: c.ConnectionID, RequesterID: c.RequesterID, TargetID: c.TargetID,
		State: string(c.State), Message: c.Message, CreatedAt: c.CreatedAt, RespondedAt: c.RespondedAt,
	}
}

func toDomainConnection(m connectionModel) domain.Connection {
	return domain.Connection{
		ConnectionID: m.ConnectionID, RequesterID: m.RequesterID, TargetID: m.TargetID,
		State: domain.ConnectionState(m.State), Message: m.Message, CreatedAt: m.CreatedAt, RespondedAt: m.RespondedAt,
	}
}

func toNotificationModel(n domain.Notification) notificationModel {
	return notificationModel{
		NotificationID: n.NotificationID, UserID: n.UserID, Type: n.Type, Title: n.Title, Body: n.Body,
		Link: n.Link, Metadata: encodeMetadata(n.Metadata), CreatedAt: n.CreatedAt, ReadAt: n.ReadAt,
	}
}

func toDomainNotification(m notificationModel) domain.Notification {
	return domain.Notification{
		NotificationID: m.NotificationID, UserID: m.UserID, Type: m.Type, Title: m.Title, Body: m.Body,
		Link: m.Link, Metadata: decodeMetadata(m.Metadata), CreatedAt: m.CreatedAt, ReadAt: m.ReadAt,
	}
}
