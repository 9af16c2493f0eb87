package core

import "errors"

// All errors below indicate a bad request or an unauthorized action, never an
// internal fault. Callers distinguish them to decide between re-issuing a
// challenge, rejecting the caller, or reporting a conflict; infrastructure
// failures from the store are propagated separately and map to none of these.
var (
	ErrChallengeNotFound      = errors.New("challenge not found")
	ErrChallengeUsed          = errors.New("challenge already used")
	ErrChallengeExpired       = errors.New("challenge expired")
	ErrAddressMismatch        = errors.New("wallet address mismatch")
	ErrInvalidKeyMaterial     = errors.New("invalid key material")
	ErrPublicKeyMismatch      = errors.New("public key does not match wallet address")
	ErrInvalidSignature       = errors.New("invalid signature")
	ErrNotAuthorized          = errors.New("wallet is not authorized as admin")
	ErrDuplicateAdmin         = errors.New("wallet is already an admin")
	ErrAdminNotFound          = errors.New("admin wallet not found")
	ErrCannotRemoveSuperAdmin = errors.New("cannot remove super admin")
	ErrForbidden              = errors.New("super admin privileges required")
	ErrInvalidRole            = errors.New("invalid role")
	ErrInvalidAddress         = errors.New("invalid wallet address")
	ErrDuplicateEntry         = errors.New("wallet address already registered")
	ErrEntryNotFound          = errors.New("allowlist entry not found")
	ErrCollectionNotFound     = errors.New("collection not found")
	ErrInvalidToken           = errors.New("invalid token")
	ErrTokenExpired           = errors.New("token has expired")
)
