package athena

import "crypto/subtle"

// Zero overwrites buf with zero bytes in place. Call it as soon as a key,
// pre-key, or KDF output has been consumed, per spec §9 (Erasure) — never
// rely on garbage collection to clear secret material.
func Zero(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}

// ConstantTimeEqual reports whether a and b hold the same bytes, taking the
// same number of comparisons regardless of where they first differ. Mirrors
// the teacher's crypto.HMACEqual wrapper over hmac.Equal; used for every
// comparison against a secret (MAC tags, confirmation outputs, derived keys).
func ConstantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		// Still perform a comparison of matching length so callers that
		// pass attacker-influenced lengths don't leak a free length check
		// beyond what subtle.ConstantTimeCompare already reveals.
		subtle.ConstantTimeCompare(a, a)
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}
