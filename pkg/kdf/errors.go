package kdf

import "errors"

// ErrKDFOutputTooLong is returned when the requested output length exceeds
// what this package will allocate, or when a KDF output is shorter than the
// working-key pair it's meant to be carved into (spec §4.2).
var ErrKDFOutputTooLong = errors.New("kdf: output length invalid")
