// Package manifest implements the manifest envelope (spec component C9):
// the encrypted, authenticated descriptor that binds together a package's
// ordered payload items and its multiplexing configuration, plus the
// symmetric-only and UM1-hybrid schemes for protecting it.
//
// Grounded on the teacher's CASE/Sigma session-establishment flow
// (pkg/securechannel/case/case.go), which likewise derives working keys
// from a negotiated secret and wraps a structured record (the session's
// resumption/attestation payload) in one authenticated envelope before it
// ever reaches the wire.
package manifest

import (
	"github.com/viruswevh/ObscurCore/pkg/athena"
	"github.com/viruswevh/ObscurCore/pkg/keyconfirm"
	"github.com/viruswevh/ObscurCore/pkg/multiplex"
	"github.com/viruswevh/ObscurCore/pkg/payload"
)

// SchemeName discriminates the two ManifestCryptoConfig variants (spec §3).
type SchemeName string

const (
	SchemeSymmetricOnly SchemeName = "SymmetricOnly"
	SchemeUm1Hybrid      SchemeName = "Um1Hybrid"
)

// CryptoConfig is the tagged ManifestCryptoConfig union, flattened into one
// struct: EphemeralPublicKey is only meaningful (and only populated) when
// Scheme is SchemeUm1Hybrid.
type CryptoConfig struct {
	Scheme SchemeName

	Cipher        athena.CipherConfig
	Auth          athena.AuthConfig
	KeyDerivation athena.KDFConfig

	KeyConfirmation       *keyconfirm.Config
	KeyConfirmationOutput []byte

	// AuthenticationTag is the manifest body's own C5 tag. It is part of
	// the header's serialized crypto-config on the wire, but is always
	// elided from the AAD clone computed during Seal/Open (spec §4.4's
	// "authenticatable clone", resolved by the open-question decision
	// recorded in DESIGN.md).
	AuthenticationTag []byte

	// EphemeralPublicKey is the UM1 sender ephemeral public key,
	// SchemeUm1Hybrid only.
	EphemeralPublicKey []byte
}

// PayloadConfiguration mirrors spec §3's PayloadConfiguration: the
// multiplexer layout plus the CSPRNG seed the reader needs to reconstruct
// the identical decision sequence.
type PayloadConfiguration struct {
	Multiplex multiplex.Config
	PRNGName  string
	PRNGKey   []byte
	PRNGNonce []byte
}

// Manifest is the ordered item list plus its multiplexing configuration
// (spec §3 Manifest). Item order is semantically significant — it is what
// the multiplexer's selection sequence is computed over.
type Manifest struct {
	Items   []*payload.Item
	Payload PayloadConfiguration
}

// Header is the ManifestHeader that precedes the manifest body on the wire
// (spec §3 / §4.9): a format version, the crypto scheme's name, and the
// fully serialized CryptoConfig (including its own authentication tag).
type Header struct {
	FormatVersion uint32
	SchemeName    string
	CryptoConfig  []byte
}
