package kdf

import (
	"bytes"
	"testing"

	"github.com/viruswevh/ObscurCore/pkg/athena"
)

func TestDeriveScryptDeterministic(t *testing.T) {
	cfg := athena.KDFConfig{
		Function: athena.KDFScrypt,
		Salt:     []byte("0123456789abcdef"),
		Scrypt:   athena.ScryptParams{N: 1024, R: 1, P: 1},
	}
	a, err := Derive([]byte("correct horse battery staple"), cfg, 48)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	b, err := Derive([]byte("correct horse battery staple"), cfg, 48)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("scrypt derivation not deterministic")
	}
}

func TestDerivePBKDF2(t *testing.T) {
	cfg := athena.KDFConfig{
		Function: athena.KDFPBKDF2,
		Salt:     []byte("0123456789abcdef"),
		PBKDF2:   athena.PBKDF2Params{Iterations: 1000, HashName: "SHA256"},
	}
	out, err := Derive([]byte("pw"), cfg, 32)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if len(out) != 32 {
		t.Fatalf("got %d bytes, want 32", len(out))
	}
}

func TestDeriveRejectsBadScryptN(t *testing.T) {
	cfg := athena.KDFConfig{
		Function: athena.KDFScrypt,
		Salt:     []byte("0123456789abcdef"),
		Scrypt:   athena.ScryptParams{N: 1000, R: 1, P: 1}, // not a power of two
	}
	if _, err := Derive([]byte("pw"), cfg, 32); err == nil {
		t.Fatal("expected error for non-power-of-two N")
	}
}

func TestCarveAndZero(t *testing.T) {
	out := make([]byte, 48)
	for i := range out {
		out[i] = byte(i + 1)
	}
	wk, err := Carve(out, 32, 16)
	if err != nil {
		t.Fatalf("Carve: %v", err)
	}
	if len(wk.CipherKey) != 32 || len(wk.MacKey) != 16 {
		t.Fatalf("unexpected carve sizes: %d, %d", len(wk.CipherKey), len(wk.MacKey))
	}
	if wk.CipherKey[0] != 1 || wk.MacKey[0] != 33 {
		t.Fatalf("carve boundary mismatch")
	}
	for _, b := range out {
		if b != 0 {
			t.Fatal("source buffer not zeroed after carve")
		}
	}
	wk.Zero()
	for _, b := range wk.CipherKey {
		if b != 0 {
			t.Fatal("cipher key not zeroed")
		}
	}
}
