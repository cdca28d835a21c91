package manifest

import (
	"fmt"

	"github.com/viruswevh/ObscurCore/pkg/aecs"
	"github.com/viruswevh/ObscurCore/pkg/athena"
	"github.com/viruswevh/ObscurCore/pkg/kdf"
	"github.com/viruswevh/ObscurCore/pkg/keyconfirm"
)

// FormatVersion is the only ManifestHeader.format_version this package
// currently emits or accepts.
const FormatVersion uint32 = 1

// SealParams carries everything Seal needs beyond the manifest itself and
// the negotiated pre-key: which ManifestCryptoConfig variant to build, and
// the cipher/authentication/derivation configuration that protects the
// manifest body. EphemeralPublicKey is required, and only meaningful, when
// Scheme is SchemeUm1Hybrid — the caller runs the UM1 exchange itself
// (pkg/um1) and passes the resulting pre-key and ephemeral public key in
// here; this package never touches curve arithmetic.
type SealParams struct {
	Scheme SchemeName

	Cipher        athena.CipherConfig
	Auth          athena.AuthConfig
	KeyDerivation athena.KDFConfig

	KeyConfirmation *keyconfirm.Config

	EphemeralPublicKey []byte
}

func deriveEnvelopeKeys(preKey []byte, cipher athena.CipherConfig, auth athena.AuthConfig, kdfCfg athena.KDFConfig) (cipherKey, macKey, iv []byte, err error) {
	cipherKeyLen := cipher.KeySizeBits / 8
	macKeyLen := auth.KeySizeBits / 8
	ivLen := cipher.IVSize
	out, err := kdf.Derive(append([]byte(nil), preKey...), kdfCfg, cipherKeyLen+macKeyLen+ivLen)
	if err != nil {
		return nil, nil, nil, err
	}
	cipherKey = append([]byte(nil), out[:cipherKeyLen]...)
	macKey = append([]byte(nil), out[cipherKeyLen:cipherKeyLen+macKeyLen]...)
	iv = append([]byte(nil), out[cipherKeyLen+macKeyLen:cipherKeyLen+macKeyLen+ivLen]...)
	athena.Zero(out)
	return cipherKey, macKey, iv, nil
}

// Seal encrypts and authenticates a manifest body under preKey, returning
// the wire header and the sealed (ciphertext || tag) bytes that follow it.
//
// When params.KeyConfirmation is set, the confirmation output is computed
// directly from preKey — before derive ever runs — so a reader holding the
// wrong pre-key can be rejected without paying for a KDF pass (spec §4.8).
func Seal(m *Manifest, preKey []byte, params SealParams) (Header, []byte, error) {
	cfg := CryptoConfig{
		Scheme:             params.Scheme,
		Cipher:             params.Cipher,
		Auth:               params.Auth,
		KeyDerivation:      params.KeyDerivation,
		KeyConfirmation:    params.KeyConfirmation,
		EphemeralPublicKey: params.EphemeralPublicKey,
	}
	if cfg.KeyConfirmation != nil {
		cfg.KeyConfirmationOutput = keyconfirm.Generate(preKey, *cfg.KeyConfirmation)
	}

	cipherKey, macKey, iv, err := deriveEnvelopeKeys(preKey, params.Cipher, params.Auth, params.KeyDerivation)
	if err != nil {
		return Header{}, nil, err
	}
	defer func() {
		athena.Zero(cipherKey)
		athena.Zero(macKey)
	}()

	aad, err := serializeCryptoConfig(cfg, true)
	if err != nil {
		return Header{}, nil, err
	}

	body, err := encodeManifestBody(m)
	if err != nil {
		return Header{}, nil, err
	}

	var sealed []byte
	w, err := aecs.NewWriter(params.Cipher, params.Auth, cipherKey, macKey, iv, aad, func(chunk []byte) error {
		sealed = append(sealed, chunk...)
		return nil
	})
	if err != nil {
		return Header{}, nil, err
	}
	if _, err := w.Write(body); err != nil {
		return Header{}, nil, err
	}
	tag, err := w.Close()
	if err != nil {
		return Header{}, nil, err
	}
	cfg.AuthenticationTag = tag
	sealed = append(sealed, tag...)

	cryptoConfigBytes, err := serializeCryptoConfig(cfg, false)
	if err != nil {
		return Header{}, nil, err
	}
	header := Header{
		FormatVersion: FormatVersion,
		SchemeName:    string(params.Scheme),
		CryptoConfig:  cryptoConfigBytes,
	}
	return header, sealed, nil
}

// EnvelopeMacKeyPrefix recomputes the first 4 bytes of the manifest MAC key
// Seal would derive from preKey and params, without running the rest of
// the seal pipeline. obscurcore's package writer/reader uses this to XOR-
// obfuscate the manifest body length on the wire (spec §6); it sits
// outside the envelope's own authenticated boundary, so it needs the key
// material but not a full Seal/Open round trip.
func EnvelopeMacKeyPrefix(preKey []byte, params SealParams) ([4]byte, error) {
	var prefix [4]byte
	_, macKey, iv, err := deriveEnvelopeKeys(preKey, params.Cipher, params.Auth, params.KeyDerivation)
	if err != nil {
		return prefix, err
	}
	defer func() {
		athena.Zero(macKey)
		athena.Zero(iv)
	}()
	copy(prefix[:], macKey)
	return prefix, nil
}

// Open is Seal's inverse: it verifies key confirmation (if present) before
// ever calling the KDF, then decrypts and authenticates sealed, and finally
// decodes the resulting manifest body.
func Open(header Header, sealed []byte, preKey []byte) (*Manifest, error) {
	cfg, err := deserializeCryptoConfig(header.CryptoConfig)
	if err != nil {
		return nil, err
	}

	if cfg.KeyConfirmation != nil {
		if len(cfg.KeyConfirmationOutput) == 0 || !keyconfirm.Verify(preKey, *cfg.KeyConfirmation, cfg.KeyConfirmationOutput) {
			return nil, ErrKeyConfirmationFailed
		}
	}

	cipherKey, macKey, iv, err := deriveEnvelopeKeys(preKey, cfg.Cipher, cfg.Auth, cfg.KeyDerivation)
	if err != nil {
		return nil, err
	}
	defer func() {
		athena.Zero(cipherKey)
		athena.Zero(macKey)
	}()

	aad, err := serializeCryptoConfig(cfg, true)
	if err != nil {
		return nil, err
	}

	tagSize := len(cfg.AuthenticationTag)
	if tagSize == 0 || tagSize > len(sealed) {
		return nil, fmt.Errorf("%w: sealed body shorter than its own authentication tag", ErrFormatMalformed)
	}
	ciphertext, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]

	r, err := aecs.NewReader(cfg.Cipher, cfg.Auth, cipherKey, macKey, iv, aad)
	if err != nil {
		return nil, err
	}
	if _, err := r.Write(ciphertext); err != nil {
		return nil, err
	}
	plaintext, err := r.Finish(tag)
	if err != nil {
		return nil, err
	}

	return decodeManifestBody(plaintext)
}
