package service

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha512"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xrplist/warden/adapters/events"
	"github.com/xrplist/warden/adapters/store"
	"github.com/xrplist/warden/adapters/tokenizer"
	"github.com/xrplist/warden/core"
	"github.com/xrplist/warden/internal/xrpl"
)

type authFixture struct {
	svc   *AuthService
	store *store.MemoryStore
	now   time.Time
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	mem := store.NewMemoryStore()
	tok := tokenizer.NewJWTTokenizer([]byte("test-secret"), time.Hour)
	svc := NewAuthService(mem, mem, tok, events.NewNopPublisher(), "example.com", 5*time.Minute, zap.NewNop())

	f := &authFixture{svc: svc, store: mem, now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	svc.now = func() time.Time { return f.now }
	return f
}

func (f *authFixture) seedAdmin(t *testing.T, address string, role core.Role) {
	t.Helper()
	require.NoError(t, f.store.InsertAdmin(context.Background(), &core.AdminAccount{
		ID:      uuid.New().String(),
		Address: address,
		Role:    role,
	}))
}

// ed25519Wallet generates a keypair and returns the XRPL-format public key
// hex, the derived classic address and a signing function.
func ed25519Wallet(t *testing.T) (pubHex, address string, sign func(msg []byte) string) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	pubHex = strings.ToUpper(hex.EncodeToString(append([]byte{0xED}, pub...)))
	address, err = xrpl.DeriveAddress(pubHex)
	require.NoError(t, err)

	sign = func(msg []byte) string {
		return strings.ToUpper(hex.EncodeToString(ed25519.Sign(priv, msg)))
	}
	return pubHex, address, sign
}

func secpWallet(t *testing.T) (pubHex, address string, sign func(msg []byte) string) {
	t.Helper()
	priv, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)

	pubHex = strings.ToUpper(hex.EncodeToString(priv.PubKey().SerializeCompressed()))
	address, err = xrpl.DeriveAddress(pubHex)
	require.NoError(t, err)

	sign = func(msg []byte) string {
		digest := sha512.Sum512(msg)
		sig := secpecdsa.Sign(priv, digest[:32])
		return strings.ToUpper(hex.EncodeToString(sig.Serialize()))
	}
	return pubHex, address, sign
}

func TestIssueChallengeMessage(t *testing.T) {
	f := newAuthFixture(t)

	challenge, err := f.svc.IssueChallenge(context.Background(), "rABCDEFabcdef1234567890xyz")
	require.NoError(t, err)

	assert.NotEmpty(t, challenge.ID)
	assert.Len(t, challenge.Nonce, 64) // 32 random bytes, hex encoded
	assert.False(t, challenge.Used)
	assert.Equal(t, f.now.Add(5*time.Minute), challenge.ExpiresAt)

	assert.True(t, strings.HasPrefix(challenge.Message, "XRPL Sign-In\n"))
	assert.Contains(t, challenge.Message, "Domain: example.com\n")
	assert.Contains(t, challenge.Message, "Address: rABCDEFabcdef1234567890xyz\n")
	assert.Contains(t, challenge.Message, "Nonce: "+challenge.Nonce+"\n")
	assert.Contains(t, challenge.Message, "Issued At: 2025-06-01T12:00:00.000000Z\n")
	assert.Contains(t, challenge.Message, "Expires At: 2025-06-01T12:05:00.000000Z")

	// Issuance never consults the admin registry.
	stored, err := f.store.GetChallenge(context.Background(), challenge.ID)
	require.NoError(t, err)
	assert.Equal(t, challenge.Message, stored.Message)
}

func TestVerifyChallengeEd25519(t *testing.T) {
	f := newAuthFixture(t)
	pubHex, address, sign := ed25519Wallet(t)
	f.seedAdmin(t, address, core.RoleSuperAdmin)

	challenge, err := f.svc.IssueChallenge(context.Background(), address)
	require.NoError(t, err)

	admin, err := f.svc.VerifyChallenge(context.Background(), challenge.ID, address, sign([]byte(challenge.Message)), pubHex)
	require.NoError(t, err)
	assert.Equal(t, address, admin.Address)
	assert.Equal(t, core.RoleSuperAdmin, admin.Role)

	// Replay with the same (valid) signature fails: the challenge is spent.
	_, err = f.svc.VerifyChallenge(context.Background(), challenge.ID, address, sign([]byte(challenge.Message)), pubHex)
	assert.ErrorIs(t, err, core.ErrChallengeUsed)
}

func TestVerifyChallengeSecp256k1(t *testing.T) {
	f := newAuthFixture(t)
	pubHex, address, sign := secpWallet(t)
	f.seedAdmin(t, address, core.RoleAdmin)

	challenge, err := f.svc.IssueChallenge(context.Background(), address)
	require.NoError(t, err)

	admin, err := f.svc.VerifyChallenge(context.Background(), challenge.ID, address, sign([]byte(challenge.Message)), pubHex)
	require.NoError(t, err)
	assert.Equal(t, core.RoleAdmin, admin.Role)
}

func TestVerifyChallengeExpired(t *testing.T) {
	f := newAuthFixture(t)
	pubHex, address, sign := ed25519Wallet(t)
	f.seedAdmin(t, address, core.RoleAdmin)

	challenge, err := f.svc.IssueChallenge(context.Background(), address)
	require.NoError(t, err)

	f.now = f.now.Add(5*time.Minute + time.Second)

	// A valid signature does not rescue an expired challenge.
	_, err = f.svc.VerifyChallenge(context.Background(), challenge.ID, address, sign([]byte(challenge.Message)), pubHex)
	assert.ErrorIs(t, err, core.ErrChallengeExpired)

	// The challenge was rejected before the consume step.
	stored, err := f.store.GetChallenge(context.Background(), challenge.ID)
	require.NoError(t, err)
	assert.False(t, stored.Used)
}

func TestVerifyChallengeNotFound(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.svc.VerifyChallenge(context.Background(), uuid.New().String(), "rWhatever", "00", "00")
	assert.ErrorIs(t, err, core.ErrChallengeNotFound)
}

func TestVerifyAddressMismatchBeforeCrypto(t *testing.T) {
	f := newAuthFixture(t)
	_, address, _ := ed25519Wallet(t)

	challenge, err := f.svc.IssueChallenge(context.Background(), address)
	require.NoError(t, err)

	// Signature and key are garbage on purpose: the mismatch must be caught
	// before any key material is touched.
	_, err = f.svc.VerifyChallenge(context.Background(), challenge.ID, "rSomebodyElse", "garbage", "garbage")
	assert.ErrorIs(t, err, core.ErrAddressMismatch)
}

func TestVerifyPublicKeyMismatch(t *testing.T) {
	f := newAuthFixture(t)
	_, address, sign := ed25519Wallet(t)
	otherPub, _, _ := ed25519Wallet(t)
	f.seedAdmin(t, address, core.RoleAdmin)

	challenge, err := f.svc.IssueChallenge(context.Background(), address)
	require.NoError(t, err)

	// A key that does not derive to the claimed address is rejected even
	// though the address matches the challenge.
	_, err = f.svc.VerifyChallenge(context.Background(), challenge.ID, address, sign([]byte(challenge.Message)), otherPub)
	assert.ErrorIs(t, err, core.ErrPublicKeyMismatch)
}

func TestVerifyInvalidKeyMaterial(t *testing.T) {
	f := newAuthFixture(t)
	_, address, _ := ed25519Wallet(t)

	challenge, err := f.svc.IssueChallenge(context.Background(), address)
	require.NoError(t, err)

	_, err = f.svc.VerifyChallenge(context.Background(), challenge.ID, address, "00", "not-a-key")
	assert.ErrorIs(t, err, core.ErrInvalidKeyMaterial)
}

func TestVerifyWrongSignatureBurnsChallenge(t *testing.T) {
	f := newAuthFixture(t)
	pubHex, address, sign := ed25519Wallet(t)
	f.seedAdmin(t, address, core.RoleAdmin)

	first, err := f.svc.IssueChallenge(context.Background(), address)
	require.NoError(t, err)
	second, err := f.svc.IssueChallenge(context.Background(), address)
	require.NoError(t, err)

	// Signature over a different challenge's message is invalid for this one.
	_, err = f.svc.VerifyChallenge(context.Background(), second.ID, address, sign([]byte(first.Message)), pubHex)
	assert.ErrorIs(t, err, core.ErrInvalidSignature)

	// The failed attempt consumed the challenge; a correct signature now
	// comes too late.
	_, err = f.svc.VerifyChallenge(context.Background(), second.ID, address, sign([]byte(second.Message)), pubHex)
	assert.ErrorIs(t, err, core.ErrChallengeUsed)
}

func TestVerifyNotAuthorized(t *testing.T) {
	f := newAuthFixture(t)
	pubHex, address, sign := ed25519Wallet(t)
	// No admin seeded: the wallet proves key control but is no admin.

	challenge, err := f.svc.IssueChallenge(context.Background(), address)
	require.NoError(t, err)

	_, err = f.svc.VerifyChallenge(context.Background(), challenge.ID, address, sign([]byte(challenge.Message)), pubHex)
	assert.ErrorIs(t, err, core.ErrNotAuthorized)
}

func TestLoginMintsResolvableToken(t *testing.T) {
	f := newAuthFixture(t)
	pubHex, address, sign := ed25519Wallet(t)
	f.seedAdmin(t, address, core.RoleSuperAdmin)

	challenge, err := f.svc.IssueChallenge(context.Background(), address)
	require.NoError(t, err)

	token, expiresAt, err := f.svc.Login(context.Background(), challenge.ID, address, sign([]byte(challenge.Message)), pubHex)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))

	identity, err := f.svc.ResolveIdentity(token)
	require.NoError(t, err)
	assert.Equal(t, address, identity.Address)
	assert.Equal(t, core.RoleSuperAdmin, identity.Role)
}
