package application

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
)

func (s *Service) ValidateToken(ctx context.Context, token string) (Actor, error) {
	if strings.TrimSpace(token) == "" {
		return Actor{}, domain.ErrUnauthorized
	}
	claims, err := s.tokens.Verify(ctx, token)
	if err != nil {
		return Actor{}, domain.ErrUnauthorized
	}
	if claims.UserID == uuid.Nil {
		return Actor{}, domain.ErrUnauthorized
	}
	return Actor{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   domain.NormalizeRole(claims.Role),
	}, nil
}
