package manifest

import "errors"

var (
	// ErrKeyConfirmationFailed is returned by Open when the caller-supplied
	// pre-key fails the manifest's stored key-confirmation check, before any
	// KDF call or manifest decryption is attempted.
	ErrKeyConfirmationFailed = errors.New("manifest: key confirmation rejected the candidate pre-key")
	// ErrFormatMalformed is returned for structurally invalid header/body
	// bytes (too short for the declared tag, unknown scheme name, etc).
	ErrFormatMalformed = errors.New("manifest: malformed envelope")
	// ErrUnknownScheme is returned for a ManifestCryptoConfig scheme name
	// this package doesn't recognize.
	ErrUnknownScheme = errors.New("manifest: unknown crypto scheme")
)
