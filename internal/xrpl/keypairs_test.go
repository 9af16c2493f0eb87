package xrpl

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"testing"

	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xrplist/warden/core"
)

// ed25519Keypair returns a fresh XRPL-format keypair: the hex public key is
// the ED prefix byte plus the raw 32-byte key.
func ed25519Keypair(t *testing.T) (string, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return strings.ToUpper(hex.EncodeToString(append([]byte{ed25519Prefix}, pub...))), priv
}

func secpKeypair(t *testing.T) (string, *secp256k1.PrivateKey) {
	t.Helper()
	priv, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)
	return strings.ToUpper(hex.EncodeToString(priv.PubKey().SerializeCompressed())), priv
}

func TestDeriveAddressKnownVector(t *testing.T) {
	// The well-known XRPL genesis account.
	addr, err := DeriveAddress("0330E7FC9D56BB25D6893BA3F317AE5BCF33B3291BD63DB32654A313222F7FD020")
	require.NoError(t, err)
	assert.Equal(t, "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh", addr)
}

func TestDeriveAddressMalformed(t *testing.T) {
	for _, pubKey := range []string{
		"",
		"zz",
		"0330E7FC9D56BB25D6893BA3F317AE5BCF33B3291BD63DB32654A313222F7FD0", // 32 bytes
		"0430E7FC9D56BB25D6893BA3F317AE5BCF33B3291BD63DB32654A313222F7FD020", // unknown prefix
	} {
		_, err := DeriveAddress(pubKey)
		assert.ErrorIs(t, err, core.ErrInvalidKeyMaterial, "key %q", pubKey)
	}
}

func TestVerifyEd25519Roundtrip(t *testing.T) {
	pubHex, priv := ed25519Keypair(t)
	message := []byte("XRPL Sign-In\nDomain: example.com\nNonce: abc")

	sig := ed25519.Sign(priv, message)
	sigHex := strings.ToUpper(hex.EncodeToString(sig))

	ok, err := VerifySignature(message, sigHex, pubHex)
	require.NoError(t, err)
	assert.True(t, ok)

	// Any byte change to the message invalidates the signature.
	tampered := []byte("XRPL Sign-In\nDomain: example.com\nNonce: abd")
	ok, err = VerifySignature(tampered, sigHex, pubHex)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifySecp256k1Roundtrip(t *testing.T) {
	pubHex, priv := secpKeypair(t)
	message := []byte("a message to prove control over an account")

	sig := secpecdsa.Sign(priv, sha512Half(message))
	sigHex := strings.ToUpper(hex.EncodeToString(sig.Serialize()))

	ok, err := VerifySignature(message, sigHex, pubHex)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifySignature([]byte("a different message"), sigHex, pubHex)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyCrossFamilySignatureFails(t *testing.T) {
	edPub, edPriv := ed25519Keypair(t)
	secpPub, _ := secpKeypair(t)
	message := []byte("hello")
	sigHex := hex.EncodeToString(ed25519.Sign(edPriv, message))

	// An Ed25519 signature is not DER, so against a secp key it must verify
	// false rather than error or panic.
	ok, err := VerifySignature(message, sigHex, secpPub)
	require.NoError(t, err)
	assert.False(t, ok)

	// A truncated signature against the right key is also just invalid.
	ok, err = VerifySignature(message, sigHex[:16], edPub)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyMalformedInputsFailClosed(t *testing.T) {
	_, err := DeriveAddress("ED" + strings.Repeat("00", 10))
	assert.ErrorIs(t, err, core.ErrInvalidKeyMaterial)

	ok, err := VerifySignature([]byte("m"), "not-hex", "also-not-hex")
	assert.ErrorIs(t, err, core.ErrInvalidKeyMaterial)
	assert.False(t, ok)

	pubHex, _ := ed25519Keypair(t)
	ok, err = VerifySignature([]byte("m"), "not-hex", pubHex)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeriveAddressEd25519Shape(t *testing.T) {
	pubHex, _ := ed25519Keypair(t)
	addr, err := DeriveAddress(pubHex)
	require.NoError(t, err)
	assert.Regexp(t, `^r[a-zA-Z0-9]{24,34}$`, addr)
}
