package tokenizer

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/xrplist/warden/core"
	"github.com/xrplist/warden/ports"
)

// AudienceAccess marks session assertions minted after a verified challenge.
const AudienceAccess = "warden:access"

// DefaultAccessTTL is the session assertion lifetime.
const DefaultAccessTTL = 8 * time.Hour

// JWTTokenizer implements the Tokenizer port with HS256-signed JWTs.
type JWTTokenizer struct {
	secret    []byte
	accessTTL time.Duration
}

// NewJWTTokenizer creates a tokenizer with the given signing secret.
func NewJWTTokenizer(secret []byte, accessTTL time.Duration) ports.Tokenizer {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	return &JWTTokenizer{secret: secret, accessTTL: accessTTL}
}

// IdentityToToken signs a session assertion for a verified identity.
func (j *JWTTokenizer) IdentityToToken(identity core.Identity) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(j.accessTTL)

	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Address,
			ID:        uuid.New().String(),
			Audience:  jwt.ClaimStrings{AudienceAccess},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Role: string(identity.Role),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// TokenToIdentity validates an assertion and extracts the identity.
func (j *JWTTokenizer) TokenToIdentity(tokenStr string) (core.Identity, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	}, jwt.WithAudience(AudienceAccess))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return core.Identity{}, core.ErrTokenExpired
		}
		return core.Identity{}, core.ErrInvalidToken
	}
	if !token.Valid {
		return core.Identity{}, core.ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok {
		return core.Identity{}, core.ErrInvalidToken
	}

	role, err := core.ParseRole(claims.Role)
	if err != nil {
		return core.Identity{}, core.ErrInvalidToken
	}

	return core.Identity{Address: claims.Subject, Role: role}, nil
}
