package tlv

import (
	"bytes"
	"testing"
)

// These exercise the shape pkg/manifest's body codec actually walks: an
// array of struct records, each struct carrying a mix of known and (from an
// older reader's perspective) unrecognized field numbers that must be
// skipped without losing track of array boundaries.

func encodeItem(w *Writer, uuid byte, pathField string, extra bool) error {
	if err := w.StartStructure(Anonymous()); err != nil {
		return err
	}
	if err := w.PutBytes(FieldTag(1), []byte{uuid}); err != nil {
		return err
	}
	if err := w.PutString(FieldTag(3), pathField); err != nil {
		return err
	}
	if extra {
		// a field number a reader built against an older manifest
		// version wouldn't recognize
		if err := w.PutUint(FieldTag(9), 0xAA); err != nil {
			return err
		}
	}
	return w.EndContainer()
}

func TestReader_ItemArray_SkipsUnknownFieldsAcrossElements(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	if err := w.StartArray(FieldTag(1)); err != nil {
		t.Fatal(err)
	}
	if err := encodeItem(w, 0x01, "a.bin", false); err != nil {
		t.Fatal(err)
	}
	if err := encodeItem(w, 0x02, "b.bin", true); err != nil {
		t.Fatal(err)
	}
	if err := encodeItem(w, 0x03, "c.bin", false); err != nil {
		t.Fatal(err)
	}
	if err := w.EndContainer(); err != nil {
		t.Fatal(err)
	}

	r := NewReader(bytes.NewReader(buf.Bytes()))
	if err := r.Next(); err != nil {
		t.Fatalf("Next (array) failed: %v", err)
	}
	if err := r.EnterContainer(); err != nil {
		t.Fatal(err)
	}

	var paths []string
	for {
		if err := r.Next(); err != nil {
			t.Fatalf("Next (item) failed: %v", err)
		}
		if r.IsEndOfContainer() {
			break
		}
		if err := r.EnterContainer(); err != nil {
			t.Fatal(err)
		}

		var path string
		for {
			if err := r.Next(); err != nil {
				t.Fatalf("Next (field) failed: %v", err)
			}
			if r.IsEndOfContainer() {
				break
			}
			switch r.Tag().FieldNumber() {
			case 3:
				s, err := r.String()
				if err != nil {
					t.Fatal(err)
				}
				path = s
			default:
				if err := r.Skip(); err != nil {
					t.Fatalf("Skip unknown field %d: %v", r.Tag().FieldNumber(), err)
				}
			}
		}
		if err := r.ExitContainer(); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, path)
	}
	if err := r.ExitContainer(); err != nil {
		t.Fatal(err)
	}

	want := []string{"a.bin", "b.bin", "c.bin"}
	if len(paths) != len(want) {
		t.Fatalf("got %d items, want %d", len(paths), len(want))
	}
	for i, p := range want {
		if paths[i] != p {
			t.Errorf("item %d: path = %q, want %q", i, paths[i], p)
		}
	}
}

func TestReader_Skip_UnknownStructFieldEntirely(t *testing.T) {
	// A struct with field 9 being a whole nested struct a reader doesn't
	// know about, followed by a field it does.
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.StartStructure(Anonymous()); err != nil {
		t.Fatal(err)
	}
	if err := w.StartStructure(FieldTag(9)); err != nil {
		t.Fatal(err)
	}
	if err := w.PutString(FieldTag(1), "unknown extension payload"); err != nil {
		t.Fatal(err)
	}
	if err := w.EndContainer(); err != nil {
		t.Fatal(err)
	}
	if err := w.PutUint(FieldTag(4), 0xAB); err != nil {
		t.Fatal(err)
	}
	if err := w.EndContainer(); err != nil {
		t.Fatal(err)
	}

	r := NewReader(bytes.NewReader(buf.Bytes()))
	if err := r.Next(); err != nil {
		t.Fatal(err)
	}
	if err := r.EnterContainer(); err != nil {
		t.Fatal(err)
	}

	if err := r.Next(); err != nil {
		t.Fatal(err)
	}
	if r.Tag().FieldNumber() != 9 {
		t.Fatalf("expected field 9, got %d", r.Tag().FieldNumber())
	}
	if err := r.Skip(); err != nil {
		t.Fatalf("Skip failed: %v", err)
	}

	if err := r.Next(); err != nil {
		t.Fatal(err)
	}
	if r.Tag().FieldNumber() != 4 {
		t.Fatalf("expected field 4, got %d", r.Tag().FieldNumber())
	}
	v, err := r.Uint()
	if err != nil {
		t.Fatal(err)
	}
	if v != 0xAB {
		t.Errorf("expected 0xAB, got %#x", v)
	}
}
