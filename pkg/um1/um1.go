// Package um1 implements UM1 key agreement (spec component C6): a
// single-flow variant of MQV-style key agreement over a named elliptic
// curve, producing an ephemeral public key and a shared secret in one pass
// with no return message required from the receiver.
//
// Grounded on the teacher's pkg/crypto/p256.go (crypto/ecdh-based ECDH,
// generalized here from P-256-only to any curve crypto/ecdh names) and on
// pkg/securechannel/case/case.go's Sigma-protocol pattern of combining two
// independent ECDH outputs through one hash before use as key material.
package um1

import (
	"crypto/ecdh"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"hash"
)

// Curve names the elliptic curve a UM1 exchange runs over.
type Curve string

const (
	CurveP256 Curve = "P-256"
	CurveP384 Curve = "P-384"
	CurveP521 Curve = "P-521"
	// CurveX25519 is Curve25519's ECDH function. Spec §4.5 calls this out
	// as a separate, non-interoperable family: an X25519 key can never
	// agree with a P-256/P-384/P-521/Brainpool key, only with another
	// X25519 key, so CurveMismatch always fires across the boundary.
	CurveX25519 Curve = "X25519"
)

var (
	// ErrCurveMismatch is returned when a supplied key does not belong to
	// the curve a UM1 exchange was configured for (spec §4.5 invariant),
	// including the always-incompatible NIST/Brainpool-vs-Curve25519 case.
	ErrCurveMismatch = errors.New("um1: key does not belong to the configured curve")
	// ErrUnknownCurve is returned for a Curve value this package doesn't
	// implement.
	ErrUnknownCurve = errors.New("um1: unknown curve")
)

func curveFor(c Curve) (ecdh.Curve, error) {
	switch c {
	case CurveP256:
		return ecdh.P256(), nil
	case CurveP384:
		return ecdh.P384(), nil
	case CurveP521:
		return ecdh.P521(), nil
	case CurveX25519:
		return ecdh.X25519(), nil
	default:
		return nil, ErrUnknownCurve
	}
}

func hashFor(name string) func() hash.Hash {
	if name == "SHA512" {
		return sha512.New
	}
	return sha256.New
}

// GenerateKeyPair creates a fresh static or ephemeral key pair on curve.
func GenerateKeyPair(curve Curve) (*ecdh.PrivateKey, error) {
	c, err := curveFor(curve)
	if err != nil {
		return nil, err
	}
	return c.GenerateKey(rand.Reader)
}

// parsePublic parses a peer public key on curve, translating crypto/ecdh's
// parse failure (wrong length, point not on curve, identity point, ...)
// into the spec's named CurveMismatch error.
func parsePublic(curve Curve, raw []byte) (*ecdh.PublicKey, error) {
	c, err := curveFor(curve)
	if err != nil {
		return nil, err
	}
	pub, err := c.NewPublicKey(raw)
	if err != nil {
		return nil, ErrCurveMismatch
	}
	return pub, nil
}

// Result is the output of Initiate: the ephemeral public key to ship
// alongside the package, and the shared secret derived from it.
type Result struct {
	EphemeralPublic []byte
	SharedSecret    []byte
}

// Initiate runs the sender side of a UM1 exchange: it generates a fresh
// ephemeral key pair on curve, then computes
//
//	shared = H( senderPriv·receiverPub ‖ ephemeralPriv·receiverPub )
//
// senderPriv and receiverPub must belong to curve, or Initiate fails with
// ErrCurveMismatch.
func Initiate(curve Curve, hashName string, senderPriv *ecdh.PrivateKey, receiverPubBytes []byte) (Result, error) {
	if Curve(curveName(senderPriv.Curve())) != curve {
		return Result{}, ErrCurveMismatch
	}
	receiverPub, err := parsePublic(curve, receiverPubBytes)
	if err != nil {
		return Result{}, err
	}
	c, err := curveFor(curve)
	if err != nil {
		return Result{}, err
	}
	ephemeralPriv, err := c.GenerateKey(rand.Reader)
	if err != nil {
		return Result{}, err
	}

	staticShared, err := senderPriv.ECDH(receiverPub)
	if err != nil {
		return Result{}, ErrCurveMismatch
	}
	ephemeralShared, err := ephemeralPriv.ECDH(receiverPub)
	if err != nil {
		return Result{}, ErrCurveMismatch
	}

	h := hashFor(hashName)()
	h.Write(staticShared)
	h.Write(ephemeralShared)

	return Result{
		EphemeralPublic: ephemeralPriv.PublicKey().Bytes(),
		SharedSecret:    h.Sum(nil),
	}, nil
}

// Respond runs the receiver side, mirroring Initiate's computation:
//
//	shared = H( receiverPriv·senderPub ‖ receiverPriv·ephemeralPub )
//
// which is byte-for-byte identical to Initiate's shared secret because
// scalar multiplication commutes: senderPriv·receiverPub ==
// receiverPriv·senderPub, and likewise for the ephemeral term.
func Respond(curve Curve, hashName string, receiverPriv *ecdh.PrivateKey, senderPubBytes, ephemeralPubBytes []byte) ([]byte, error) {
	if Curve(curveName(receiverPriv.Curve())) != curve {
		return nil, ErrCurveMismatch
	}
	senderPub, err := parsePublic(curve, senderPubBytes)
	if err != nil {
		return nil, err
	}
	ephemeralPub, err := parsePublic(curve, ephemeralPubBytes)
	if err != nil {
		return nil, err
	}

	staticShared, err := receiverPriv.ECDH(senderPub)
	if err != nil {
		return nil, ErrCurveMismatch
	}
	ephemeralShared, err := receiverPriv.ECDH(ephemeralPub)
	if err != nil {
		return nil, ErrCurveMismatch
	}

	h := hashFor(hashName)()
	h.Write(staticShared)
	h.Write(ephemeralShared)
	return h.Sum(nil), nil
}

func curveName(c ecdh.Curve) string {
	switch c {
	case ecdh.P256():
		return string(CurveP256)
	case ecdh.P384():
		return string(CurveP384)
	case ecdh.P521():
		return string(CurveP521)
	case ecdh.X25519():
		return string(CurveX25519)
	default:
		return ""
	}
}
