package keyconfirm

import "testing"

func TestGenerateVerifyRoundTrip(t *testing.T) {
	cfg, err := NewConfig("HMAC-SHA256")
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	key := []byte("the correct pre-key")
	tag := Generate(key, cfg)
	if !Verify(key, cfg, tag) {
		t.Fatal("Verify rejected the correct key")
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	cfg, err := NewConfig("HMAC-SHA256")
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	tag := Generate([]byte("K-correct"), cfg)
	if Verify([]byte("K-wrong"), cfg, tag) {
		t.Fatal("Verify accepted the wrong key")
	}
}

func TestFindMatch(t *testing.T) {
	cfg, err := NewConfig("HMAC-SHA256")
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	k2 := []byte("K2")
	expected := Generate(k2, cfg)
	keyring := [][]byte{[]byte("K1"), k2, []byte("K3")}
	if idx := FindMatch(keyring, cfg, expected); idx != 1 {
		t.Fatalf("FindMatch returned %d, want 1", idx)
	}
	if idx := FindMatch([][]byte{[]byte("K1")}, cfg, expected); idx != -1 {
		t.Fatalf("FindMatch returned %d, want -1", idx)
	}
}
