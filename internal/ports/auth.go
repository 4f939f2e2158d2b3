package ports

import (
	"context"

	"github.com/google/uuid"
)

type AuthClaims struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

// TokenVerifier validates bearer tokens issued by the authentication service.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (AuthClaims, error)
}
