package core

import "time"

// Challenge represents a single-use authentication challenge bound to an
// XRPL account. The stored Message is authoritative: verification checks the
// signature against these exact bytes, never against a re-rendered template.
type Challenge struct {
	ID        string    // Unique identifier, used as the lookup key
	Address   string    // Classic address the challenge was requested for
	Nonce     string    // Random per-challenge token embedded in the message
	Message   string    // Exact text the wallet must sign
	IssuedAt  time.Time // When the challenge was created
	ExpiresAt time.Time // Invalid strictly after this instant
	Used      bool      // Flipped true exactly once, on first verification attempt
	CreatedAt time.Time // Record creation timestamp
}

// Expired reports whether the challenge is past its validity window.
func (c *Challenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
