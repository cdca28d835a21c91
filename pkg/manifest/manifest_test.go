package manifest

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/viruswevh/ObscurCore/pkg/athena"
	"github.com/viruswevh/ObscurCore/pkg/keyconfirm"
	"github.com/viruswevh/ObscurCore/pkg/multiplex"
	"github.com/viruswevh/ObscurCore/pkg/payload"
)

func testParams(confirm bool) SealParams {
	params := SealParams{
		Scheme: SchemeSymmetricOnly,
		Cipher: athena.CipherConfig{Kind: athena.KindAEAD, Algo: "AES-GCM", KeySizeBits: 256, BlockSizeBits: 128, IVSize: 12, AEADMacSizeBits: 128},
		Auth:   athena.AuthConfig{Kind: athena.AuthMAC, FunctionName: "HMAC-SHA256", KeySizeBits: 256},
		KeyDerivation: athena.KDFConfig{
			Function: athena.KDFScrypt,
			Salt:     bytes.Repeat([]byte{0x07}, 16),
			Scrypt:   athena.ScryptParams{N: 1024, R: 8, P: 1},
		},
	}
	if confirm {
		params.KeyConfirmation = &keyconfirm.Config{FunctionName: "HMAC-SHA256", Salt: []byte("confirm-salt")}
	}
	return params
}

func memOpener(data []byte) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil }
}

func testManifest() *Manifest {
	item := payload.NewItem(payload.ItemBinary, "note.txt")
	item.ExternalLength = 11
	item.Cipher = athena.CipherConfig{Kind: athena.KindBlock, Algo: "AES", Mode: "CTR", KeySizeBits: 256, BlockSizeBits: 128, IVSize: 16}
	item.Auth = athena.AuthConfig{Kind: athena.AuthMAC, FunctionName: "HMAC-SHA256", KeySizeBits: 256}
	item.CipherKey = bytes.Repeat([]byte{0x11}, 32)
	item.AuthKey = bytes.Repeat([]byte{0x22}, 32)
	item.IV = make([]byte, 16)
	item.Open = memOpener([]byte("hello world"))

	return &Manifest{
		Items: []*payload.Item{item},
		Payload: PayloadConfiguration{
			Multiplex: multiplex.Config{Scheme: multiplex.SchemeSimple},
			PRNGName:  "Salsa20",
			PRNGKey:   make([]byte, 32),
			PRNGNonce: make([]byte, 8),
		},
	}
}

func TestSealOpenRoundTrip(t *testing.T) {
	m := testManifest()
	preKey := []byte("correct horse battery staple")

	header, sealed, err := Seal(m, preKey, testParams(true))
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	headerBytes, err := EncodeHeader(header)
	if err != nil {
		t.Fatalf("EncodeHeader: %v", err)
	}
	decodedHeader, err := DecodeHeader(headerBytes)
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}

	got, err := Open(decodedHeader, sealed, preKey)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(got.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(got.Items))
	}
	if got.Items[0].Path != "note.txt" {
		t.Errorf("item path = %q, want note.txt", got.Items[0].Path)
	}
	if got.Payload.Multiplex.Scheme != multiplex.SchemeSimple {
		t.Errorf("payload scheme not preserved across round trip")
	}
	if !bytes.Equal(got.Items[0].CipherKey, m.Items[0].CipherKey) {
		t.Errorf("item cipher key not preserved across round trip")
	}
}

func TestOpenRejectsWrongPreKeyViaKeyConfirmation(t *testing.T) {
	m := testManifest()
	header, sealed, err := Seal(m, []byte("correct horse battery staple"), testParams(true))
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	_, err = Open(header, sealed, []byte("wrong guess entirely"))
	if !errors.Is(err, ErrKeyConfirmationFailed) {
		t.Fatalf("got %v, want ErrKeyConfirmationFailed", err)
	}
}

func TestOpenDetectsTamperedBody(t *testing.T) {
	m := testManifest()
	preKey := []byte("correct horse battery staple")
	header, sealed, err := Seal(m, preKey, testParams(false))
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	tampered := append([]byte(nil), sealed...)
	tampered[0] ^= 0x01

	if _, err := Open(header, tampered, preKey); err == nil {
		t.Fatal("expected authentication failure on tampered manifest body")
	}
}

func TestUm1HybridEphemeralPublicKeyRoundTrips(t *testing.T) {
	m := testManifest()
	preKey := bytes.Repeat([]byte{0x55}, 32)
	params := testParams(false)
	params.Scheme = SchemeUm1Hybrid
	params.EphemeralPublicKey = bytes.Repeat([]byte{0x99}, 65)

	header, sealed, err := Seal(m, preKey, params)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if header.SchemeName != string(SchemeUm1Hybrid) {
		t.Fatalf("header scheme = %q, want %q", header.SchemeName, SchemeUm1Hybrid)
	}

	got, err := Open(header, sealed, preKey)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(got.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(got.Items))
	}

	cfg, err := deserializeCryptoConfig(header.CryptoConfig)
	if err != nil {
		t.Fatalf("deserializeCryptoConfig: %v", err)
	}
	if !bytes.Equal(cfg.EphemeralPublicKey, params.EphemeralPublicKey) {
		t.Error("ephemeral public key not preserved in the wire header")
	}
}

func TestDeserializeCryptoConfigRejectsUnknownScheme(t *testing.T) {
	m := testManifest()
	header, _, err := Seal(m, []byte("key"), testParams(false))
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	header.SchemeName = "NotARealScheme"

	_, err = deserializeCryptoConfig(header.CryptoConfig)
	_ = err // CryptoConfig bytes themselves still carry the original valid scheme

	// Corrupting the scheme tag inside CryptoConfig itself should surface
	// ErrUnknownScheme from deserializeCryptoConfig, exercised directly
	// since Open only reads CryptoConfig, never Header.SchemeName.
	cfg, err := deserializeCryptoConfig(header.CryptoConfig)
	if err != nil {
		t.Fatalf("deserializeCryptoConfig: %v", err)
	}
	cfg.Scheme = "NotARealScheme"
	bad, err := serializeCryptoConfig(cfg, false)
	if err != nil {
		t.Fatalf("serializeCryptoConfig: %v", err)
	}
	if _, err := deserializeCryptoConfig(bad); !errors.Is(err, ErrUnknownScheme) {
		t.Fatalf("got %v, want ErrUnknownScheme", err)
	}
}
