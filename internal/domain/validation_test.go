package domain_test

import (
	"errors"
	"testing"

	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
)

func TestValidateDisplayName(t *testing.T) {
	t.Parallel()

	if err := domain.ValidateDisplayName("Amina N'Dour"); err != nil {
		t.Fatalf("expected valid display name, got %v", err)
	}
	if err := domain.ValidateDisplayName("x"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid display name error, got %v", err)
	}
}

func TestValidateUsername(t *testing.T) {
	t.Parallel()

	if err := domain.ValidateUsername("amina.ndour_22"); err != nil {
		t.Fatalf("expected valid username, got %v", err)
	}
	if err := domain.ValidateUsername("bad username"); err == nil {
		t.Fatalf("expected invalid username error")
	}
}

func TestValidateContactFields(t *testing.T) {
	t.Parallel()

	if err := domain.ValidatePhone("+256 700 123456"); err != nil {
		t.Fatalf("expected valid phone, got %v", err)
	}
	if err := domain.ValidatePhone("call me"); err == nil {
		t.Fatalf("expected invalid phone error")
	}
	if err := domain.ValidateWebsite("https://school.example.org"); err != nil {
		t.Fatalf("expected valid website, got %v", err)
	}
	if err := domain.ValidateWebsite("ftp://school.example.org"); err == nil {
		t.Fatalf("expected invalid website error")
	}
	if err := domain.ValidateVisibility("friends"); err == nil {
		t.Fatalf("expected invalid visibility error")
	}
}
