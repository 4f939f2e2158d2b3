package security

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/ports"
)

// accessClaims mirrors the claim set issued by the authentication service.
type accessClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTVerifier validates access tokens locally. It accepts HS256 tokens
// signed with the shared secret and, when a public key is configured,
// RS256 tokens from the authentication service.
type JWTVerifier struct {
	secret    []byte
	publicKey *rsa.PublicKey
	issuer    string
	leeway    time.Duration
}

func NewJWTVerifier(secret, publicKeyPEM, issuer string) (*JWTVerifier, error) {
	if secret == "" && publicKeyPEM == "" {
		return nil, errors.New("jwt verifier requires a signing secret or a public key")
	}
	v := &JWTVerifier{secret: []byte(secret), issuer: issuer, leeway: 30 * time.Second}
	if publicKeyPEM != "" {
		pub, err := parseRSAPublic(publicKeyPEM)
		if err != nil {
			return nil, fmt.Errorf("parse public key: %w", err)
		}
		v.publicKey = pub
	}
	return v, nil
}

func (v *JWTVerifier) Verify(_ context.Context, raw string) (ports.AuthClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods(v.methods()), jwt.WithLeeway(v.leeway), jwt.WithExpirationRequired()}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	parsed, err := jwt.ParseWithClaims(raw, &accessClaims{}, v.key, opts...)
	if err != nil {
		return ports.AuthClaims{}, err
	}
	claims, ok := parsed.Claims.(*accessClaims)
	if !ok || !parsed.Valid {
		return ports.AuthClaims{}, jwt.ErrTokenInvalidClaims
	}
	subject := claims.UserID
	if subject == "" {
		subject = claims.Subject
	}
	userID, err := uuid.Parse(subject)
	if err != nil {
		return ports.AuthClaims{}, fmt.Errorf("parse user_id: %w", err)
	}
	return ports.AuthClaims{UserID: userID, Email: claims.Email, Role: claims.Role}, nil
}

func (v *JWTVerifier) methods() []string {
	var out []string
	if len(v.secret) > 0 {
		out = append(out, jwt.SigningMethodHS256.Alg())
	}
	if v.publicKey != nil {
		out = append(out, jwt.SigningMethodRS256.Alg())
	}
	return out
}

func (v *JWTVerifier) key(token *jwt.Token) (any, error) {
	switch token.Method.(type) {
	case *jwt.SigningMethodHMAC:
		if len(v.secret) == 0 {
			return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
		}
		return v.secret, nil
	case *jwt.SigningMethodRSA:
		if v.publicKey == nil {
			return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
		}
		return v.publicKey, nil
	default:
		return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
	}
}

func parseRSAPublic(raw string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(raw))
	if block == nil {
		return nil, errors.New("invalid PEM block")
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	pub, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("public key is not RSA")
	}
	return pub, nil
}

var _ ports.TokenVerifier = (*JWTVerifier)(nil)
