package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/adapters/security"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
)

func TestProfileRowSealsPhoneAndKeepsPayload(t *testing.T) {
	enc, err := security.NewAESGCMEncryption("seed")
	if err != nil {
		t.Fatalf("encryption: %v", err)
	}
	repo := &profileRepository{enc: enc}
	now := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	profile := domain.EmptyPayloadFor(domain.Profile{
		ProfileID:   uuid.New(),
		UserID:      uuid.New(),
		Username:    "ada",
		DisplayName: "Ada L",
		Settings:    domain.DefaultSettings(now),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, domain.ProfileTypeStudent)
	profile.Contact.Phone = "+33 6 12 34 56 78"
	profile.Student.GradeLevel = "10"

	row, err := repo.toModel(profile)
	if err != nil {
		t.Fatalf("to model: %v", err)
	}
	if len(row.ContactPhoneEncrypted) == 0 || string(row.ContactPhoneEncrypted) == profile.Contact.Phone {
		t.Fatalf("phone must be stored sealed, got %q", row.ContactPhoneEncrypted)
	}

	back, err := repo.toDomain(row)
	if err != nil {
		t.Fatalf("to domain: %v", err)
	}
	if back.Contact.Phone != profile.Contact.Phone {
		t.Fatalf("expected phone %q, got %q", profile.Contact.Phone, back.Contact.Phone)
	}
	if back.Student == nil || back.Student.GradeLevel != "10" || back.Teacher != nil {
		t.Fatalf("unexpected role payload: %+v", back)
	}
	if back.Settings.Visibility != profile.Settings.Visibility {
		t.Fatalf("settings not preserved: %+v", back.Settings)
	}
}

func TestEscapeLikeQuotesWildcards(t *testing.T) {
	if got := escapeLike(`50%_off\`); got != `50\%\_off\\` {
		t.Fatalf("unexpected escape: %q", got)
	}
}
