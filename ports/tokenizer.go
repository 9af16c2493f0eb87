package ports

import (
	"time"

	"github.com/xrplist/warden/core"
)

// Tokenizer converts between a verified identity and its session assertion.
// The service mints exactly one assertion per successful verification; there
// is no refresh and no revocation.
type Tokenizer interface {
	// IdentityToToken signs an assertion for the identity and returns it
	// together with its expiry.
	IdentityToToken(identity core.Identity) (string, time.Time, error)

	// TokenToIdentity validates an assertion and returns the identity it
	// carries, or core.ErrInvalidToken / core.ErrTokenExpired.
	TokenToIdentity(token string) (core.Identity, error)
}
