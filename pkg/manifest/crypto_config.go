package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/viruswevh/ObscurCore/pkg/tlv"
)

const (
	fCryptoScheme             = 1
	fCryptoCipher             = 2
	fCryptoAuth               = 3
	fCryptoKeyDerivation      = 4
	fCryptoKeyConfirmation    = 5
	fCryptoKeyConfirmOutput   = 6
	fCryptoAuthenticationTag  = 7
	fCryptoEphemeralPublicKey = 8
)

// serializeCryptoConfig encodes cfg as the bytes stored in Header.CryptoConfig.
// When elideTag is true, AuthenticationTag is omitted from the output: this
// is the "authenticatable clone" used as the manifest body's own C5
// associated data, since the tag cannot be part of the data it authenticates.
func serializeCryptoConfig(cfg CryptoConfig, elideTag bool) ([]byte, error) {
	var buf bytes.Buffer
	w := tlv.NewWriter(&buf)
	if err := w.PutString(tlv.FieldTag(fCryptoScheme), string(cfg.Scheme)); err != nil {
		return nil, err
	}
	if err := writeCipherConfig(w, tlv.FieldTag(fCryptoCipher), cfg.Cipher); err != nil {
		return nil, err
	}
	if err := writeAuthConfig(w, tlv.FieldTag(fCryptoAuth), cfg.Auth); err != nil {
		return nil, err
	}
	if err := writeKDFConfig(w, tlv.FieldTag(fCryptoKeyDerivation), cfg.KeyDerivation); err != nil {
		return nil, err
	}
	if cfg.KeyConfirmation != nil {
		if err := writeConfirmConfig(w, tlv.FieldTag(fCryptoKeyConfirmation), *cfg.KeyConfirmation); err != nil {
			return nil, err
		}
	}
	if len(cfg.KeyConfirmationOutput) > 0 {
		if err := w.PutBytes(tlv.FieldTag(fCryptoKeyConfirmOutput), cfg.KeyConfirmationOutput); err != nil {
			return nil, err
		}
	}
	if !elideTag && len(cfg.AuthenticationTag) > 0 {
		if err := w.PutBytes(tlv.FieldTag(fCryptoAuthenticationTag), cfg.AuthenticationTag); err != nil {
			return nil, err
		}
	}
	if len(cfg.EphemeralPublicKey) > 0 {
		if err := w.PutBytes(tlv.FieldTag(fCryptoEphemeralPublicKey), cfg.EphemeralPublicKey); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// DecodeCryptoConfig exposes deserializeCryptoConfig for callers outside
// this package (obscurcore's reader needs it to recompute the manifest MAC
// key prefix before it can even open the envelope).
func DecodeCryptoConfig(data []byte) (CryptoConfig, error) { return deserializeCryptoConfig(data) }

// deserializeCryptoConfig is serializeCryptoConfig's inverse. It never sees
// an elided tag itself (that form only ever exists transiently, as AAD) —
// a round-tripped Header.CryptoConfig always carries its tag.
func deserializeCryptoConfig(data []byte) (CryptoConfig, error) {
	var cfg CryptoConfig
	r := tlv.NewReader(bytes.NewReader(data))
	for {
		if err := r.Next(); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return cfg, err
		}
		switch r.Tag().FieldNumber() {
		case fCryptoScheme:
			v, err := r.String()
			if err != nil {
				return cfg, err
			}
			cfg.Scheme = SchemeName(v)
		case fCryptoCipher:
			v, err := readCipherConfig(r)
			if err != nil {
				return cfg, err
			}
			cfg.Cipher = v
		case fCryptoAuth:
			v, err := readAuthConfig(r)
			if err != nil {
				return cfg, err
			}
			cfg.Auth = v
		case fCryptoKeyDerivation:
			v, err := readKDFConfig(r)
			if err != nil {
				return cfg, err
			}
			cfg.KeyDerivation = v
		case fCryptoKeyConfirmation:
			v, err := readConfirmConfig(r)
			if err != nil {
				return cfg, err
			}
			cfg.KeyConfirmation = &v
		case fCryptoKeyConfirmOutput:
			v, err := r.Bytes()
			if err != nil {
				return cfg, err
			}
			cfg.KeyConfirmationOutput = v
		case fCryptoAuthenticationTag:
			v, err := r.Bytes()
			if err != nil {
				return cfg, err
			}
			cfg.AuthenticationTag = v
		case fCryptoEphemeralPublicKey:
			v, err := r.Bytes()
			if err != nil {
				return cfg, err
			}
			cfg.EphemeralPublicKey = v
		default:
			if err := r.Skip(); err != nil {
				return cfg, err
			}
		}
	}
	switch cfg.Scheme {
	case SchemeSymmetricOnly, SchemeUm1Hybrid:
	default:
		return cfg, fmt.Errorf("%w: %q", ErrUnknownScheme, cfg.Scheme)
	}
	return cfg, nil
}

// EncodeHeader serializes a Header for the wire: format version, scheme
// name, and the length-implicit CryptoConfig blob (spec §6's ManifestHeader
// object, whose own length is carried by the caller's outer framing).
func EncodeHeader(h Header) ([]byte, error) {
	var buf bytes.Buffer
	w := tlv.NewWriter(&buf)
	if err := w.PutUint(tlv.FieldTag(1), uint64(h.FormatVersion)); err != nil {
		return nil, err
	}
	if err := w.PutString(tlv.FieldTag(2), h.SchemeName); err != nil {
		return nil, err
	}
	if err := w.PutBytes(tlv.FieldTag(3), h.CryptoConfig); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeHeader is EncodeHeader's inverse.
func DecodeHeader(data []byte) (Header, error) {
	var h Header
	r := tlv.NewReader(bytes.NewReader(data))
	for {
		if err := r.Next(); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return h, err
		}
		switch r.Tag().FieldNumber() {
		case 1:
			v, err := r.Uint()
			if err != nil {
				return h, err
			}
			h.FormatVersion = uint32(v)
		case 2:
			v, err := r.String()
			if err != nil {
				return h, err
			}
			h.SchemeName = v
		case 3:
			v, err := r.Bytes()
			if err != nil {
				return h, err
			}
			h.CryptoConfig = v
		default:
			if err := r.Skip(); err != nil {
				return h, err
			}
		}
	}
	if h.SchemeName == "" || h.CryptoConfig == nil {
		return h, fmt.Errorf("%w: incomplete manifest header", ErrFormatMalformed)
	}
	return h, nil
}
