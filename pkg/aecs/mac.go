package aecs

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"hash"

	"golang.org/x/crypto/poly1305"

	"github.com/viruswevh/ObscurCore/pkg/athena"
	"github.com/viruswevh/ObscurCore/pkg/kdf"
)

// newMAC builds the hash.Hash-shaped authenticator a Writer/Reader feeds
// ciphertext into, for the non-AEAD (Encrypt-then-MAC) path. All three
// AuthFunctionKind families are exposed as hash.Hash so the streaming code
// in stream.go doesn't need to special-case any of them.
func newMAC(cfg athena.AuthConfig, macKey []byte) (hash.Hash, error) {
	switch cfg.Kind {
	case athena.AuthMAC:
		return hmac.New(hmacHashFor(cfg.FunctionName), macKey), nil
	case athena.AuthPoly1305:
		return newPolyMAC(macKey, cfg.AuxNonceCiphertext), nil
	case athena.AuthKDFAsMAC:
		return newKDFMAC(cfg, macKey), nil
	default:
		return nil, ErrUnsupportedAlgorithm
	}
}

func hmacHashFor(name string) func() hash.Hash {
	if name == "HMAC-SHA512" {
		return sha512.New
	}
	return sha256.New
}

// polyMAC adapts golang.org/x/crypto/poly1305's one-time-key MAC to
// hash.Hash by buffering the message and deriving a single-use key from
// macKey XORed with a block-cipher-encrypted auxiliary nonce — the same
// "encrypt a counter block, XOR it over the key/tag" trick the teacher's
// AES-CCM uses for its S_0 tag mask.
type polyMAC struct {
	key [32]byte
	buf bytes.Buffer
}

func newPolyMAC(macKey, auxNonceCiphertext []byte) *polyMAC {
	p := &polyMAC{}
	copy(p.key[:], macKey)
	for i := 0; i < len(auxNonceCiphertext) && i < 32; i++ {
		p.key[i] ^= auxNonceCiphertext[i]
	}
	return p
}

func (p *polyMAC) Write(b []byte) (int, error) { return p.buf.Write(b) }
func (p *polyMAC) Size() int                   { return poly1305.TagSize }
func (p *polyMAC) BlockSize() int              { return 16 }
func (p *polyMAC) Reset()                      { p.buf.Reset() }

func (p *polyMAC) Sum(b []byte) []byte {
	var tag [poly1305.TagSize]byte
	poly1305.Sum(&tag, p.buf.Bytes(), &p.key)
	return append(b, tag[:]...)
}

// kdfMAC treats a key-derivation function itself as the MAC: the tag is
// KDF(macKey || message)[:tagSize]. This only ever makes sense for a short,
// fully-buffered message (it cannot stream incrementally the way HMAC or
// Poly1305 can), which is what AuthConfig.Kind == AuthKDFAsMAC is reserved
// for — key-confirmation-style bindings, not bulk payload authentication.
type kdfMAC struct {
	cfg athena.KDFConfig
	key []byte
	buf bytes.Buffer
}

func newKDFMAC(authCfg athena.AuthConfig, macKey []byte) *kdfMAC {
	kdfCfg := athena.KDFConfig{Salt: authCfg.Salt}
	if authCfg.FunctionName == "pbkdf2" {
		kdfCfg.Function = athena.KDFPBKDF2
		kdfCfg.PBKDF2 = athena.PBKDF2Params{Iterations: 100000, HashName: "SHA256"}
	} else {
		kdfCfg.Function = athena.KDFScrypt
		kdfCfg.Scrypt = athena.ScryptParams{N: 1024, R: 8, P: 1}
	}
	return &kdfMAC{cfg: kdfCfg, key: macKey}
}

func (m *kdfMAC) Write(b []byte) (int, error) { return m.buf.Write(b) }
func (m *kdfMAC) Size() int                   { return 32 }
func (m *kdfMAC) BlockSize() int              { return 64 }
func (m *kdfMAC) Reset()                      { m.buf.Reset() }

func (m *kdfMAC) Sum(b []byte) []byte {
	input := append(append([]byte(nil), m.key...), m.buf.Bytes()...)
	out, err := kdf.Derive(input, m.cfg, 32)
	if err != nil {
		// ValidateKDF was already satisfied when cfg was constructed in
		// newKDFMAC; a failure here means the caller mutated it after the
		// fact, which is a programming error, not a runtime condition.
		panic(err)
	}
	return append(b, out...)
}
