package tokenizer

import "github.com/golang-jwt/jwt/v5"

// SessionClaims combines the standard claims with the admin role. The wallet
// address travels in the subject.
type SessionClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}
