package xrpl

import (
	"crypto/sha256"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/ripemd160"
)

// alphabet is the base58 dictionary used by the XRP Ledger. It differs from
// the Bitcoin dictionary, which is why generic base58check helpers cannot be
// used as-is.
var alphabet = base58.NewAlphabet("rpshnaf39wBUDNEGHJKLM4PQRST7VWXYZ2bcdeCg65jkm8oFqi1tuvAxyz")

// accountTypePrefix is the one-byte type prefix for classic account addresses.
const accountTypePrefix = 0x00

// accountID computes the 20-byte account identifier for a 33-byte public key:
// RIPEMD160(SHA256(pubkey)).
func accountID(pubKey []byte) []byte {
	sha := sha256.Sum256(pubKey)
	h := ripemd160.New()
	h.Write(sha[:])
	return h.Sum(nil)
}

// encodeClassicAddress wraps a 20-byte account ID in the classic address
// encoding: type prefix, payload, 4-byte double-SHA256 checksum, XRPL base58.
func encodeClassicAddress(id []byte) string {
	payload := make([]byte, 0, 1+len(id)+4)
	payload = append(payload, accountTypePrefix)
	payload = append(payload, id...)

	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	payload = append(payload, second[:4]...)

	return base58.EncodeAlphabet(payload, alphabet)
}
