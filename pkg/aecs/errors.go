// Package aecs implements the authenticated cipher stream (spec component
// C5): Encrypt-then-MAC composition over the Block/Stream cipher kinds, and
// native handling of AEAD kinds, sharing one Writer/Reader contract so the
// payload item layer above doesn't need to know which family it's driving.
//
// Grounded on the teacher's pkg/message/codec.go Encode/Decode, which
// already assembles exactly this "ciphertext + length + descriptor" AAD and
// wraps it through AES-CCM in one shot — the same shape this package
// generalizes across Block/Stream/AEAD.
package aecs

import "errors"

var (
	// ErrAuthenticationFailed is returned by Reader.Finish when the
	// computed tag does not match the one supplied by the sender. No
	// plaintext is returned alongside this error.
	ErrAuthenticationFailed = errors.New("aecs: authentication failed")

	// ErrAlreadyClosed is returned by a second Close/Finish call on the
	// same Writer/Reader.
	ErrAlreadyClosed = errors.New("aecs: stream already closed")

	// ErrUnsupportedAlgorithm is returned when a CipherConfig/AuthConfig
	// names an algorithm this package has no concrete implementation for,
	// even though athena's registry otherwise considers it well-formed.
	ErrUnsupportedAlgorithm = errors.New("aecs: unsupported algorithm")
)
