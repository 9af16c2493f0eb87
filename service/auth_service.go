package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xrplist/warden/core"
	"github.com/xrplist/warden/internal/xrpl"
	"github.com/xrplist/warden/ports"
)

// DefaultChallengeTTL is the validity window of an issued challenge.
const DefaultChallengeTTL = 5 * time.Minute

// timestampLayout renders ISO-8601 UTC instants with microsecond precision;
// the trailing Z is part of the message template.
const timestampLayout = "2006-01-02T15:04:05.000000Z"

// AuthService issues and verifies wallet authentication challenges and
// resolves verified wallets to admin accounts.
type AuthService struct {
	challenges ports.ChallengeStore
	admins     ports.AdminStore
	tokenizer  ports.Tokenizer
	events     ports.EventPublisher
	log        *zap.Logger

	domain       string
	challengeTTL time.Duration
	now          func() time.Time
}

// NewAuthService creates a new authentication service. The domain string is
// embedded into every challenge message so a signed message cannot be
// replayed against a different deployment.
func NewAuthService(
	challenges ports.ChallengeStore,
	admins ports.AdminStore,
	tokenizer ports.Tokenizer,
	events ports.EventPublisher,
	domain string,
	challengeTTL time.Duration,
	log *zap.Logger,
) *AuthService {
	if challengeTTL <= 0 {
		challengeTTL = DefaultChallengeTTL
	}
	return &AuthService{
		challenges:   challenges,
		admins:       admins,
		tokenizer:    tokenizer,
		events:       events,
		log:          log,
		domain:       domain,
		challengeTTL: challengeTTL,
		now:          time.Now,
	}
}

// IssueChallenge creates, persists and returns a fresh challenge for the
// given address. The address is deliberately not checked against the admin
// registry here: authorization is decided only at verification time, so this
// endpoint cannot be used to enumerate admins.
func (s *AuthService) IssueChallenge(ctx context.Context, address string) (*core.Challenge, error) {
	nonce, err := generateNonce(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	now := s.now().UTC()
	expiresAt := now.Add(s.challengeTTL)

	message := fmt.Sprintf(
		"XRPL Sign-In\nDomain: %s\nAddress: %s\nNonce: %s\nIssued At: %s\nExpires At: %s",
		s.domain,
		address,
		nonce,
		now.Format(timestampLayout),
		expiresAt.Format(timestampLayout),
	)

	challenge := &core.Challenge{
		ID:        uuid.New().String(),
		Address:   address,
		Nonce:     nonce,
		Message:   message,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
		Used:      false,
		CreatedAt: now,
	}

	if err := s.challenges.InsertChallenge(ctx, challenge); err != nil {
		return nil, fmt.Errorf("failed to store challenge: %w", err)
	}

	s.log.Debug("challenge issued",
		zap.String("challenge_id", challenge.ID),
		zap.String("address", address),
		zap.Time("expires_at", expiresAt))

	return challenge, nil
}

// VerifyChallenge runs the verification state machine for a submitted
// signature and resolves the admin account the wallet belongs to.
//
// Cheap deterministic rejections (unknown id, already used, expired, address
// mismatch, bad key) run before any cryptography. The challenge is consumed
// atomically before the signature result is inspected: a wrong signature
// still burns the challenge, and of two concurrent attempts on the same id
// exactly one proceeds past the consume step.
func (s *AuthService) VerifyChallenge(ctx context.Context, challengeID, address, signature, publicKey string) (*core.AdminAccount, error) {
	challenge, err := s.challenges.GetChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	if challenge.Used {
		return nil, core.ErrChallengeUsed
	}
	if challenge.Expired(s.now().UTC()) {
		return nil, core.ErrChallengeExpired
	}
	if challenge.Address != address {
		return nil, core.ErrAddressMismatch
	}

	derived, err := xrpl.DeriveAddress(publicKey)
	if err != nil {
		return nil, err
	}
	if derived != address {
		return nil, core.ErrPublicKeyMismatch
	}

	if err := s.challenges.ConsumeChallenge(ctx, challengeID); err != nil {
		return nil, err
	}

	// The signature is checked against the stored message bytes, never a
	// re-rendered template.
	valid, err := xrpl.VerifySignature([]byte(challenge.Message), signature, publicKey)
	if err != nil {
		return nil, err
	}
	if !valid {
		s.log.Info("signature verification failed, challenge consumed",
			zap.String("challenge_id", challengeID),
			zap.String("address", address))
		return nil, core.ErrInvalidSignature
	}

	admin, err := s.admins.GetAdmin(ctx, address)
	if err != nil {
		if errors.Is(err, core.ErrAdminNotFound) {
			return nil, core.ErrNotAuthorized
		}
		return nil, err
	}

	if err := s.events.PublishLogin(ctx, admin.Address, admin.Role); err != nil {
		s.log.Warn("failed to publish login event", zap.Error(err))
	}

	s.log.Info("wallet authenticated",
		zap.String("address", admin.Address),
		zap.String("role", string(admin.Role)))

	return admin, nil
}

// Login verifies a challenge and mints the session assertion for the
// resolved admin.
func (s *AuthService) Login(ctx context.Context, challengeID, address, signature, publicKey string) (string, time.Time, error) {
	admin, err := s.VerifyChallenge(ctx, challengeID, address, signature, publicKey)
	if err != nil {
		return "", time.Time{}, err
	}

	token, expiresAt, err := s.tokenizer.IdentityToToken(core.Identity{
		Address: admin.Address,
		Role:    admin.Role,
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to mint session token: %w", err)
	}

	return token, expiresAt, nil
}

// ResolveIdentity validates a session assertion.
func (s *AuthService) ResolveIdentity(token string) (core.Identity, error) {
	return s.tokenizer.TokenToIdentity(token)
}

func generateNonce(bytes int) (string, error) {
	buf := make([]byte, bytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
