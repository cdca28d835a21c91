// Package keyconfirm implements key confirmation (spec component C4): a MAC
// over a fixed canonical string, used to cheaply test candidate keys before
// committing to a full (and potentially expensive, scrypt-backed) manifest
// decryption.
//
// Grounded on the teacher's spake2p.Confirmation()/VerifyPeerConfirmation —
// SPAKE2+'s key-confirmation MAC is exactly this primitive, minus the PAKE
// transcript binding — and on crypto.HMACEqual for the constant-time check.
package keyconfirm

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"hash"
	"io"

	"github.com/viruswevh/ObscurCore/pkg/athena"
)

// Challenge is the fixed canonical string every confirmation MAC covers.
const Challenge = "obscurcore-v1-keyconfirm"

const saltSize = 16

// Config is the serializable AuthConfig-shaped record stored alongside a
// VerifiedOutput: function name and the salt used for this
// confirmation instance (spec §3 AuthConfig / VerifiedOutput).
type Config struct {
	FunctionName string // "HMAC-SHA256" or "HMAC-SHA512"
	Salt         []byte
}

// NewConfig picks a fresh random salt for functionName.
func NewConfig(functionName string) (Config, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return Config{}, err
	}
	return Config{FunctionName: functionName, Salt: salt}, nil
}

func hashFor(name string) func() hash.Hash {
	if name == "HMAC-SHA512" {
		return sha512.New
	}
	return sha256.New
}

// Generate computes the confirmation tag for key under cfg: HMAC(key,
// salt || Challenge). The salt is folded into the MAC input (rather than
// used as an HMAC key) so the same pre-key with two different salts yields
// unlinkable tags.
func Generate(key []byte, cfg Config) []byte {
	h := hmac.New(hashFor(cfg.FunctionName), key)
	h.Write(cfg.Salt)
	h.Write([]byte(Challenge))
	return h.Sum(nil)
}

// Verify reports whether candidateKey produces expected under cfg, in
// constant time. This never validates against the *wrong* key with better
// than negligible probability (spec §8), and is meant to be run against a
// whole keyring cheaply before any scrypt/PBKDF2 call is made.
func Verify(candidateKey []byte, cfg Config, expected []byte) bool {
	got := Generate(candidateKey, cfg)
	return athena.ConstantTimeEqual(got, expected)
}

// FindMatch scans a keyring and returns the index of the first key whose
// confirmation tag matches expected, or -1 if none match. This is the
// "identify K2 in <=3 cheap MAC operations before running scrypt" scenario
// from spec §8.
func FindMatch(keyring [][]byte, cfg Config, expected []byte) int {
	for i, k := range keyring {
		if Verify(k, cfg, expected) {
			return i
		}
	}
	return -1
}
