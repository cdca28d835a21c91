package aecs

import (
	"bytes"
	"testing"

	"github.com/viruswevh/ObscurCore/pkg/athena"
)

func roundTrip(t *testing.T, cipherCfg athena.CipherConfig, authCfg athena.AuthConfig, cipherKey, macKey []byte) {
	t.Helper()
	iv := make([]byte, cipherCfg.IVSize)
	for i := range iv {
		iv[i] = byte(i + 1)
	}
	descriptorAAD := []byte("item-0-descriptor")
	plaintext := []byte("the quick brown fox jumps over the lazy dog, repeated for length")

	var ciphertext bytes.Buffer
	w, err := NewWriter(cipherCfg, authCfg, cipherKey, macKey, iv, descriptorAAD, func(b []byte) error {
		ciphertext.Write(b)
		return nil
	})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if _, err := w.Write(plaintext[:10]); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := w.Write(plaintext[10:]); err != nil {
		t.Fatalf("Write: %v", err)
	}
	tag, err := w.Close()
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := w.Close(); err != ErrAlreadyClosed {
		t.Fatalf("second Close returned %v, want ErrAlreadyClosed", err)
	}

	r, err := NewReader(cipherCfg, authCfg, cipherKey, macKey, iv, descriptorAAD)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if _, err := r.Write(ciphertext.Bytes()); err != nil {
		t.Fatalf("Reader.Write: %v", err)
	}
	got, err := r.Finish(tag)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("round trip mismatch: got %q, want %q", got, plaintext)
	}

	// Flip a single ciphertext bit and confirm authentication fails.
	tampered := append([]byte(nil), ciphertext.Bytes()...)
	if len(tampered) > 0 {
		tampered[0] ^= 0x01
	}
	r2, err := NewReader(cipherCfg, authCfg, cipherKey, macKey, iv, descriptorAAD)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	r2.Write(tampered)
	if _, err := r2.Finish(tag); err != ErrAuthenticationFailed {
		t.Fatalf("tampered ciphertext returned %v, want ErrAuthenticationFailed", err)
	}
}

func TestRoundTripAESGCM(t *testing.T) {
	cipherCfg := athena.CipherConfig{
		Kind: athena.KindAEAD, Algo: "AES-GCM",
		KeySizeBits: 256, BlockSizeBits: 128, IVSize: 12, AEADMacSizeBits: 128,
	}
	key := bytes.Repeat([]byte{0x11}, 32)
	roundTrip(t, cipherCfg, athena.AuthConfig{}, key, nil)
}

func TestRoundTripAESCCM(t *testing.T) {
	cipherCfg := athena.CipherConfig{
		Kind: athena.KindAEAD, Algo: "AES-CCM",
		KeySizeBits: 128, BlockSizeBits: 128, IVSize: 13, AEADMacSizeBits: 128,
	}
	key := bytes.Repeat([]byte{0x22}, 16)
	roundTrip(t, cipherCfg, athena.AuthConfig{}, key, nil)
}

func TestRoundTripChaCha20Poly1305(t *testing.T) {
	cipherCfg := athena.CipherConfig{
		Kind: athena.KindAEAD, Algo: "ChaCha20Poly1305",
		KeySizeBits: 256, IVSize: 12, AEADMacSizeBits: 128,
	}
	key := bytes.Repeat([]byte{0x33}, 32)
	roundTrip(t, cipherCfg, athena.AuthConfig{}, key, nil)
}

func TestRoundTripAESCBCHMAC(t *testing.T) {
	cipherCfg := athena.CipherConfig{
		Kind: athena.KindBlock, Algo: "AES", Mode: "CBC", Padding: athena.PaddingPKCS7,
		KeySizeBits: 256, BlockSizeBits: 128, IVSize: 16,
	}
	authCfg := athena.AuthConfig{Kind: athena.AuthMAC, FunctionName: "HMAC-SHA256", KeySizeBits: 256}
	cipherKey := bytes.Repeat([]byte{0x44}, 32)
	macKey := bytes.Repeat([]byte{0x55}, 32)
	roundTrip(t, cipherCfg, authCfg, cipherKey, macKey)
}

func TestRoundTripSalsa20HMAC(t *testing.T) {
	cipherCfg := athena.CipherConfig{
		Kind: athena.KindStream, Algo: "Salsa20", KeySizeBits: 256, IVSize: 8,
	}
	authCfg := athena.AuthConfig{Kind: athena.AuthMAC, FunctionName: "HMAC-SHA256", KeySizeBits: 256}
	cipherKey := bytes.Repeat([]byte{0x66}, 32)
	macKey := bytes.Repeat([]byte{0x77}, 32)
	roundTrip(t, cipherCfg, authCfg, cipherKey, macKey)
}

func TestRoundTripAESECBHMAC(t *testing.T) {
	cipherCfg := athena.CipherConfig{
		Kind: athena.KindBlock, Algo: "AES", Mode: "ECB", Padding: athena.PaddingPKCS7,
		KeySizeBits: 128, BlockSizeBits: 128, IVSize: 16,
	}
	authCfg := athena.AuthConfig{Kind: athena.AuthMAC, FunctionName: "HMAC-SHA256", KeySizeBits: 256}
	cipherKey := bytes.Repeat([]byte{0x88}, 16)
	macKey := bytes.Repeat([]byte{0x99}, 32)
	roundTrip(t, cipherCfg, authCfg, cipherKey, macKey)
}
