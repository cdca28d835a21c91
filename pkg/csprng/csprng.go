// Package csprng implements the deterministic CSPRNG used to drive the
// payload multiplexer (spec component C1).
//
// Output is the raw keystream of a configured stream cipher keyed by
// (key, nonce) drawn from the OS entropy source at construction. Given the
// same (cipher, key, nonce), the keystream — and therefore every decision
// the multiplexer makes from it — is byte-identical on any platform, which
// is the determinism property spec §8 requires of the writer/reader pair.
package csprng

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"io"
	"math/bits"

	"golang.org/x/crypto/salsa20/salsa"
)

// Cipher names the supported keystream cipher.
type Cipher int

const (
	// CipherSalsa20 uses the Salsa20/20 core from golang.org/x/crypto.
	CipherSalsa20 Cipher = iota
	// CipherSOSEMANUK names the second cipher spec §4.1 allows, but no
	// library in the retrieved example pack (and none in golang.org/x/
	// crypto) implements SOSEMANUK; configuring it fails closed with
	// ErrUnsupportedCipher rather than via a hand-rolled implementation.
	CipherSOSEMANUK
)

// KeySize and NonceSize are the Salsa20 key/nonce sizes in bytes.
const (
	KeySize   = 32
	NonceSize = 8
)

// ErrUnsupportedCipher is returned by New for CipherSOSEMANUK.
var ErrUnsupportedCipher = errors.New("csprng: unsupported cipher")

// Source is a deterministic byte/u32 generator backed by a stream cipher
// keystream. It is not safe for concurrent use (spec §5: the CSPRNG shares
// mutable state with the multiplexer and is explicitly single-threaded).
type Source struct {
	key   [KeySize]byte
	nonce [NonceSize]byte
	ctr   uint64

	block [64]byte // current Salsa20 block
	used  int       // bytes of block already consumed
}

// New creates a Source for the given cipher, seeded with a fresh key and
// nonce drawn from the OS entropy source (crypto/rand).
func New(cipher Cipher) (*Source, error) {
	if cipher != CipherSalsa20 {
		return nil, ErrUnsupportedCipher
	}
	s := &Source{used: 64}
	if _, err := io.ReadFull(rand.Reader, s.key[:]); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(rand.Reader, s.nonce[:]); err != nil {
		return nil, err
	}
	return s, nil
}

// NewFromSeed creates a Source with an explicit (key, nonce) pair. This is
// the entry point the package writer and reader both use: the writer picks
// a random seed once and serializes it into PayloadConfiguration.PRNGConfig
// so the reader can reconstruct byte-identical decisions.
func NewFromSeed(cipher Cipher, key, nonce []byte) (*Source, error) {
	if cipher != CipherSalsa20 {
		return nil, ErrUnsupportedCipher
	}
	if len(key) != KeySize || len(nonce) != NonceSize {
		return nil, errors.New("csprng: invalid key or nonce size")
	}
	s := &Source{used: 64}
	copy(s.key[:], key)
	copy(s.nonce[:], nonce)
	return s, nil
}

// Key and Nonce return the seed so it can be persisted into
// PayloadConfiguration for the reader to reconstruct this Source.
func (s *Source) Key() []byte   { return append([]byte(nil), s.key[:]...) }
func (s *Source) Nonce() []byte { return append([]byte(nil), s.nonce[:]...) }

func (s *Source) refill() {
	var counterNonce [16]byte
	copy(counterNonce[:8], s.nonce[:])
	binary.LittleEndian.PutUint64(counterNonce[8:], s.ctr)
	salsa.Core(&s.block, &counterNonce, &s.key, &salsa.Sigma)
	s.ctr++
	s.used = 0
}

// NextBytes fills buf with the next len(buf) keystream bytes.
func (s *Source) NextBytes(buf []byte) {
	for i := range buf {
		if s.used >= 64 {
			s.refill()
		}
		buf[i] = s.block[s.used]
		s.used++
	}
}

// XORKeyStream XORs src with the next len(src) keystream bytes into dst,
// making Source usable directly as the Stream-kind cipher primitive for
// CipherConfig{Algo: "Salsa20"} (spec component C5 reuses C1's keystream
// generator rather than standing up a second Salsa20 implementation).
func (s *Source) XORKeyStream(dst, src []byte) {
	var ks [64]byte
	for len(src) > 0 {
		if s.used >= 64 {
			s.refill()
		}
		n := copy(ks[:64-s.used], s.block[s.used:])
		if n > len(src) {
			n = len(src)
		}
		for i := 0; i < n; i++ {
			dst[i] = src[i] ^ s.block[s.used+i]
		}
		s.used += n
		dst = dst[n:]
		src = src[n:]
	}
}

// NextU32 consumes 4 keystream bytes and interprets them little-endian,
// per spec §4.1's endianness requirement.
func (s *Source) NextU32() uint32 {
	var buf [4]byte
	s.NextBytes(buf[:])
	return binary.LittleEndian.Uint32(buf[:])
}

// UniformUint32 returns a value uniformly distributed in [0, n) using
// Lemire's multiply-and-reject method over NextU32, avoiding modulo bias.
func (s *Source) UniformUint32(n uint32) uint32 {
	if n == 0 {
		return 0
	}
	// The high 32 bits of the 64-bit product x*n lie in [0, n); draws whose
	// low 32 bits fall below 2^32 mod n are rejected so every result is
	// equally likely.
	hi, lo := bits.Mul32(s.NextU32(), n)
	if lo < n {
		threshold := -n % n
		for lo < threshold {
			hi, lo = bits.Mul32(s.NextU32(), n)
		}
	}
	return hi
}

// UniformRange returns a value uniformly distributed in [lo, hi] inclusive.
// When lo == hi the draw is skipped and lo is returned directly (the fixed
// case), matching spec §4.7's "fixed mode: min = max" bound for Frameshift
// and Fabric.
func (s *Source) UniformRange(lo, hi uint32) uint32 {
	if lo >= hi {
		return lo
	}
	span := hi - lo + 1
	return lo + s.UniformUint32(span)
}
