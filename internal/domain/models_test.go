package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
)

var fixedNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

func TestProfileValidateRequiresExactlyOnePayload(t *testing.T) {
	t.Parallel()

	p := domain.Profile{Type: domain.ProfileTypeParent, Parent: &domain.ParentDetails{}}
	if err := p.Validate(); err != nil {
		t.Fatalf("expected valid parent profile, got %v", err)
	}
	p.Staff = &domain.StaffDetails{}
	if err := p.Validate(); !errors.Is(err, domain.ErrProfileUnconfigured) {
		t.Fatalf("expected unconfigured with two payloads, got %v", err)
	}
	mismatch := domain.Profile{Type: domain.ProfileTypeTeacher, Student: &domain.StudentDetails{}}
	if err := mismatch.Validate(); !errors.Is(err, domain.ErrProfileUnconfigured) {
		t.Fatalf("expected unconfigured for mismatched payload, got %v", err)
	}
	if err := (domain.Profile{Type: domain.ProfileTypeStudent}).Validate(); err == nil {
		t.Fatalf("expected unconfigured without payload")
	}
}

func TestEmptyPayloadForAndRoleMapping(t *testing.T) {
	t.Parallel()

	p := domain.EmptyPayloadFor(domain.Profile{Student: &domain.StudentDetails{}}, domain.ProfileTypeStaff)
	if err := p.Validate(); err != nil || p.Student != nil {
		t.Fatalf("expected clean staff profile, got %+v err=%v", p, err)
	}
	if typ, ok := domain.ProfileTypeForRole(domain.NormalizeRole(" guardian ")); !ok || typ != domain.ProfileTypeParent {
		t.Fatalf("guardian should map to parent profile, got %s %v", typ, ok)
	}
	if _, ok := domain.ProfileTypeForRole(domain.RoleUser); ok {
		t.Fatalf("USER must not map to a profile type")
	}
	if _, err := domain.ParseTheme("sepia"); err == nil {
		t.Fatalf("expected invalid theme")
	}
}
