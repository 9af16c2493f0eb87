// Package xrpl implements the stateless keypair primitives of the XRP Ledger:
// signature verification and classic-address derivation. The ledger defines
// two key families, distinguished by the first byte of the 33-byte public
// key: 0xED marks an Ed25519 key signing the raw message, while 0x02/0x03
// mark a compressed secp256k1 key signing the SHA-512Half of the message with
// a DER-encoded ECDSA signature.
package xrpl

import (
	"crypto/ed25519"
	"crypto/sha512"
	"encoding/hex"
	"fmt"

	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/xrplist/warden/core"
)

const (
	publicKeyLen   = 33
	ed25519Prefix  = 0xED
	secpEvenPrefix = 0x02
	secpOddPrefix  = 0x03
)

// DeriveAddress maps a hex-encoded public key to the classic address it
// controls. Returns core.ErrInvalidKeyMaterial for anything that is not a
// well-formed key of a known family.
func DeriveAddress(pubKeyHex string) (string, error) {
	pub, err := decodePublicKey(pubKeyHex)
	if err != nil {
		return "", err
	}
	return encodeClassicAddress(accountID(pub)), nil
}

// VerifySignature reports whether sigHex is a valid signature by pubKeyHex
// over exactly the given message bytes. Malformed key material yields
// core.ErrInvalidKeyMaterial; a structurally broken signature simply verifies
// as false. It never panics on attacker-supplied input.
func VerifySignature(message []byte, sigHex, pubKeyHex string) (bool, error) {
	pub, err := decodePublicKey(pubKeyHex)
	if err != nil {
		return false, err
	}

	sig, err := hex.DecodeString(sigHex)
	if err != nil {
		return false, nil
	}

	switch pub[0] {
	case ed25519Prefix:
		if len(sig) != ed25519.SignatureSize {
			return false, nil
		}
		return ed25519.Verify(ed25519.PublicKey(pub[1:]), message, sig), nil

	case secpEvenPrefix, secpOddPrefix:
		key, err := secp256k1.ParsePubKey(pub)
		if err != nil {
			return false, fmt.Errorf("%w: %v", core.ErrInvalidKeyMaterial, err)
		}
		parsed, err := secpecdsa.ParseDERSignature(sig)
		if err != nil {
			return false, nil
		}
		digest := sha512Half(message)
		return parsed.Verify(digest, key), nil

	default:
		return false, core.ErrInvalidKeyMaterial
	}
}

// sha512Half is the ledger's message digest: the first 256 bits of SHA-512.
func sha512Half(message []byte) []byte {
	sum := sha512.Sum512(message)
	return sum[:32]
}

func decodePublicKey(pubKeyHex string) ([]byte, error) {
	pub, err := hex.DecodeString(pubKeyHex)
	if err != nil {
		return nil, fmt.Errorf("%w: not hex", core.ErrInvalidKeyMaterial)
	}
	if len(pub) != publicKeyLen {
		return nil, fmt.Errorf("%w: want %d bytes, got %d", core.ErrInvalidKeyMaterial, publicKeyLen, len(pub))
	}
	switch pub[0] {
	case ed25519Prefix, secpEvenPrefix, secpOddPrefix:
		return pub, nil
	default:
		return nil, fmt.Errorf("%w: unknown key type prefix 0x%02X", core.ErrInvalidKeyMaterial, pub[0])
	}
}
