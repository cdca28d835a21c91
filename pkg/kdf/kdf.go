// Package kdf implements key derivation (spec component C3): stretching a
// pre-key into working key material via scrypt or PBKDF2, and carving the
// result into a cipher-key/MAC-key pair.
//
// Grounded on the teacher's pkg/crypto/kdf.go, which wraps
// golang.org/x/crypto/{hkdf,pbkdf2} the same way this package wraps
// golang.org/x/crypto/{scrypt,pbkdf2}.
package kdf

import (
	"crypto/sha256"
	"crypto/sha512"
	"hash"

	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"

	"github.com/viruswevh/ObscurCore/pkg/athena"
)

// Default cost parameters (spec §4.2).
var (
	// ScryptManifestLowEntropy is the default for user-typed pre-keys.
	ScryptManifestLowEntropy = athena.ScryptParams{N: 1 << 16, R: 16, P: 2}
	// ScryptManifestHighEntropy is the default for UM1-derived pre-keys.
	ScryptManifestHighEntropy = athena.ScryptParams{N: 1 << 10, R: 8, P: 2}
	// ScryptPayloadLowEntropy is the default for per-item keys derived
	// from a low-entropy pre-key.
	ScryptPayloadLowEntropy = athena.ScryptParams{N: 1 << 14, R: 8, P: 1}
	// ScryptPayloadHighEntropy is the default for per-item keys derived
	// from a high-entropy pre-key.
	ScryptPayloadHighEntropy = athena.ScryptParams{N: 1 << 10, R: 8, P: 1}
)

// Derive stretches preKey into outLen bytes of key material using the
// function and parameters named in cfg. Errors are ErrKDFParameterInvalid /
// ErrKDFOutputTooLong wrapped from athena's validation plus this package's
// own output-length ceiling.
func Derive(preKey []byte, cfg athena.KDFConfig, outLen int) ([]byte, error) {
	if err := athena.ValidateKDF(cfg); err != nil {
		return nil, err
	}
	if outLen <= 0 || outLen > maxOutputLen {
		return nil, ErrKDFOutputTooLong
	}

	switch cfg.Function {
	case athena.KDFScrypt:
		return scrypt.Key(preKey, cfg.Salt, cfg.Scrypt.N, cfg.Scrypt.R, cfg.Scrypt.P, outLen)
	case athena.KDFPBKDF2:
		return pbkdf2.Key(preKey, cfg.Salt, cfg.PBKDF2.Iterations, outLen, pbkdf2HashFunc(cfg.PBKDF2.HashName)), nil
	default:
		return nil, athena.ErrKDFParameterInvalid
	}
}

// maxOutputLen bounds KDF output requests to something a caller could never
// legitimately need for a cipher+MAC key pair; guards against accidental
// huge allocations from a malformed descriptor.
const maxOutputLen = 1 << 20

func pbkdf2HashFunc(name string) func() hash.Hash {
	if name == "SHA512" {
		return sha512.New
	}
	return sha256.New
}

// WorkingKeyPair is the (cipher_key, mac_key) carved from one KDF output
// (spec §3 WorkingKeyPair).
type WorkingKeyPair struct {
	CipherKey []byte
	MacKey    []byte
}

// Carve splits a KDF output into cipher and MAC halves of the requested
// sizes, per spec §4.2: cipher_key = out[0:len(ck)], mac_key =
// out[len(ck):len(ck)+len(mk)]. The source slice is zeroed before
// returning, since its bytes now live (copied) in the two halves.
func Carve(kdfOutput []byte, cipherKeyLen, macKeyLen int) (WorkingKeyPair, error) {
	if len(kdfOutput) < cipherKeyLen+macKeyLen {
		return WorkingKeyPair{}, ErrKDFOutputTooLong
	}
	wk := WorkingKeyPair{
		CipherKey: append([]byte(nil), kdfOutput[:cipherKeyLen]...),
		MacKey:    append([]byte(nil), kdfOutput[cipherKeyLen:cipherKeyLen+macKeyLen]...),
	}
	athena.Zero(kdfOutput)
	return wk, nil
}

// Zero erases both halves of the pair.
func (wk *WorkingKeyPair) Zero() {
	athena.Zero(wk.CipherKey)
	athena.Zero(wk.MacKey)
}

// DeriveWorkingKeyPair is the common-case helper: derive outLen =
// cipherKeyLen+macKeyLen bytes from preKey and carve them, erasing preKey
// and the intermediate KDF output once the halves are copied out.
func DeriveWorkingKeyPair(preKey []byte, cfg athena.KDFConfig, cipherKeyLen, macKeyLen int) (WorkingKeyPair, error) {
	out, err := Derive(preKey, cfg, cipherKeyLen+macKeyLen)
	if err != nil {
		return WorkingKeyPair{}, err
	}
	wk, err := Carve(out, cipherKeyLen, macKeyLen)
	athena.Zero(preKey)
	if err != nil {
		return WorkingKeyPair{}, err
	}
	return wk, nil
}
