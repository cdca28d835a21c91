package tlv

import (
	"bytes"
	"errors"
	"testing"
)

func TestWriter_ErrNotInContainer(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	if err := w.EndContainer(); err != ErrNotInContainer {
		t.Errorf("expected ErrNotInContainer, got %v", err)
	}
}

func TestWriter_ErrInvalidUTF8(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	invalidUTF8 := string([]byte{0xff, 0xfe, 0xfd})
	if err := w.PutString(FieldTag(3), invalidUTF8); err != ErrInvalidUTF8 {
		t.Errorf("expected ErrInvalidUTF8, got %v", err)
	}
}

// failWriter is an io.Writer that fails after n bytes, used to exercise the
// error paths of each Put* method without a real encoding/binary failure.
type failWriter struct {
	n       int
	written int
}

func (w *failWriter) Write(p []byte) (int, error) {
	remaining := w.n - w.written
	if remaining <= 0 {
		return 0, errors.New("write failed")
	}
	if len(p) <= remaining {
		w.written += len(p)
		return len(p), nil
	}
	w.written += remaining
	return remaining, errors.New("write failed")
}

func TestWriter_WriteErrors(t *testing.T) {
	t.Run("fail_on_control_byte", func(t *testing.T) {
		w := NewWriter(&failWriter{n: 0})
		if err := w.PutUint(Anonymous(), 42); err == nil {
			t.Error("expected error, got nil")
		}
	})

	t.Run("fail_on_field_number", func(t *testing.T) {
		w := NewWriter(&failWriter{n: 1})
		if err := w.PutUint(FieldTag(1), 42); err == nil {
			t.Error("expected error, got nil")
		}
	})

	t.Run("fail_on_value", func(t *testing.T) {
		w := NewWriter(&failWriter{n: 2})
		if err := w.PutUint(FieldTag(1), 42); err == nil {
			t.Error("expected error, got nil")
		}
	})

	t.Run("fail_on_string_length", func(t *testing.T) {
		w := NewWriter(&failWriter{n: 1})
		if err := w.PutString(Anonymous(), "AES-GCM"); err == nil {
			t.Error("expected error, got nil")
		}
	})

	t.Run("fail_on_string_data", func(t *testing.T) {
		w := NewWriter(&failWriter{n: 2})
		if err := w.PutString(Anonymous(), "AES-GCM"); err == nil {
			t.Error("expected error, got nil")
		}
	})

	t.Run("fail_on_end_container", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewWriter(&buf)
		if err := w.StartStructure(FieldTag(1)); err != nil {
			t.Fatal(err)
		}
		w.w = &failWriter{n: 0}
		if err := w.EndContainer(); err == nil {
			t.Error("expected error, got nil")
		}
	})
}

// TestWriter_ManifestBodyShape encodes a struct shaped like a manifest body
// (an item count followed by an array of anonymous item structs) and checks
// the control bytes it produces, mirroring how pkg/manifest's codec nests
// PayloadItem descriptors inside the manifest's item list.
func TestWriter_ManifestBodyShape(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	const fieldItemCount = 1
	const fieldItems = 2
	const fieldUUID = 1

	if err := w.StartStructure(FieldTag(0)); err != nil {
		t.Fatalf("StartStructure: %v", err)
	}
	if err := w.PutUint(FieldTag(fieldItemCount), 1); err != nil {
		t.Fatalf("PutUint: %v", err)
	}
	if err := w.StartArray(FieldTag(fieldItems)); err != nil {
		t.Fatalf("StartArray: %v", err)
	}
	if err := w.StartStructure(Anonymous()); err != nil {
		t.Fatalf("StartStructure (item): %v", err)
	}
	if err := w.PutBytes(FieldTag(fieldUUID), []byte{0xde, 0xad, 0xbe, 0xef}); err != nil {
		t.Fatalf("PutBytes: %v", err)
	}
	if err := w.EndContainer(); err != nil { // item struct
		t.Fatalf("EndContainer (item): %v", err)
	}
	if err := w.EndContainer(); err != nil { // items array
		t.Fatalf("EndContainer (array): %v", err)
	}
	if err := w.EndContainer(); err != nil { // body struct
		t.Fatalf("EndContainer (body): %v", err)
	}

	got := buf.Bytes()
	// struct(tagged,field=0), uint8(tagged,field=1)=1, array(tagged,field=2),
	// struct(anon), bytes1(tagged,field=1)=4 bytes, end, end, end
	wantPrefix := []byte{
		byte(KindStruct) | tagFormBit, 0x00,
		byte(KindUint8) | tagFormBit, 0x01, 0x01,
		byte(KindArray) | tagFormBit, 0x02,
		byte(KindStruct),
		byte(KindBytes1) | tagFormBit, 0x01, 0x04, 0xde, 0xad, 0xbe, 0xef,
		byte(KindEnd), byte(KindEnd), byte(KindEnd),
	}
	if !bytes.Equal(got, wantPrefix) {
		t.Errorf("encoded bytes = %x, want %x", got, wantPrefix)
	}
}

func TestWriter_PutUint_ChoosesNarrowestKind(t *testing.T) {
	testCases := []struct {
		name     string
		v        uint64
		wantKind Kind
	}{
		{"fits_uint8", 255, KindUint8},
		{"fits_uint16", 256, KindUint16},
		{"fits_uint32", 70000, KindUint32},
		{"needs_uint64", 1 << 40, KindUint64},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := NewWriter(&buf)
			if err := w.PutUint(Anonymous(), tc.v); err != nil {
				t.Fatalf("PutUint: %v", err)
			}
			gotKind := Kind(buf.Bytes()[0] & kindMask)
			if gotKind != tc.wantKind {
				t.Errorf("kind = %v, want %v", gotKind, tc.wantKind)
			}
		})
	}
}

func TestWriter_EmptyStrings(t *testing.T) {
	t.Run("empty_utf8_string", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewWriter(&buf)
		if err := w.PutString(Anonymous(), ""); err != nil {
			t.Fatalf("PutString failed: %v", err)
		}
		expected := []byte{byte(KindString1), 0x00}
		if !bytes.Equal(buf.Bytes(), expected) {
			t.Errorf("expected %x, got %x", expected, buf.Bytes())
		}
	})

	t.Run("empty_byte_string", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewWriter(&buf)
		if err := w.PutBytes(Anonymous(), nil); err != nil {
			t.Fatalf("PutBytes(nil) failed: %v", err)
		}
		expected := []byte{byte(KindBytes1), 0x00}
		if !bytes.Equal(buf.Bytes(), expected) {
			t.Errorf("expected %x, got %x", expected, buf.Bytes())
		}
	})
}
