package tlv

import (
	"encoding/binary"
	"io"
	"math"
	"unicode/utf8"
)

// Writer encodes a descriptor record's fields in order. Callers tag each
// field with either FieldTag (a struct member) or Anonymous (an array
// element), the way pkg/manifest's codec files and pkg/payload's descriptor
// encoder do for every field they emit.
type Writer struct {
	w              io.Writer
	containerStack []Kind // open Struct/Array containers, for EndContainer
}

// NewWriter returns a Writer that writes encoded fields to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) writeControlAndTag(kind Kind, tag Tag) error {
	ctrl := byte(kind) & kindMask
	if !tag.IsAnonymous() {
		ctrl |= tagFormBit
	}
	if _, err := w.w.Write([]byte{ctrl}); err != nil {
		return err
	}
	return tag.writeTo(w.w)
}

// PutUint writes an unsigned integer field, choosing the narrowest of
// Uint8/16/32/64 that holds v. Type discriminants, lengths, and key/IV
// sizes are all encoded this way.
func (w *Writer) PutUint(tag Tag, v uint64) error {
	var buf [8]byte
	switch {
	case v <= math.MaxUint8:
		buf[0] = byte(v)
		return w.writeFixedValue(KindUint8, tag, buf[:1])
	case v <= math.MaxUint16:
		binary.LittleEndian.PutUint16(buf[:2], uint16(v))
		return w.writeFixedValue(KindUint16, tag, buf[:2])
	case v <= math.MaxUint32:
		binary.LittleEndian.PutUint32(buf[:4], uint32(v))
		return w.writeFixedValue(KindUint32, tag, buf[:4])
	default:
		binary.LittleEndian.PutUint64(buf[:8], v)
		return w.writeFixedValue(KindUint64, tag, buf[:8])
	}
}

// PutString writes a UTF-8 string field (a path, a scheme or algorithm
// name). Returns ErrInvalidUTF8 if v isn't valid UTF-8.
func (w *Writer) PutString(tag Tag, v string) error {
	if !utf8.ValidString(v) {
		return ErrInvalidUTF8
	}
	return w.writeLengthPrefixed(true, tag, []byte(v))
}

// PutBytes writes an octet-string field (a key, a tag, an IV, ciphertext).
func (w *Writer) PutBytes(tag Tag, v []byte) error {
	return w.writeLengthPrefixed(false, tag, v)
}

// StartStructure opens a struct container under tag — a fixed record whose
// members are read back by field number (Manifest's body, PayloadItem's
// descriptor, CryptoConfig).
func (w *Writer) StartStructure(tag Tag) error {
	if err := w.writeControlAndTag(KindStruct, tag); err != nil {
		return err
	}
	w.containerStack = append(w.containerStack, KindStruct)
	return nil
}

// StartArray opens an array container under tag — a variable-length list
// whose elements are all Anonymous (Manifest's item list).
func (w *Writer) StartArray(tag Tag) error {
	if err := w.writeControlAndTag(KindArray, tag); err != nil {
		return err
	}
	w.containerStack = append(w.containerStack, KindArray)
	return nil
}

// EndContainer closes the innermost open Struct or Array.
func (w *Writer) EndContainer() error {
	if len(w.containerStack) == 0 {
		return ErrNotInContainer
	}
	w.containerStack = w.containerStack[:len(w.containerStack)-1]
	_, err := w.w.Write([]byte{byte(KindEnd)})
	return err
}

func (w *Writer) writeFixedValue(kind Kind, tag Tag, value []byte) error {
	if err := w.writeControlAndTag(kind, tag); err != nil {
		return err
	}
	_, err := w.w.Write(value)
	return err
}

// writeLengthPrefixed writes a Bytes or String field, choosing the
// narrowest of the 1/2/4-byte length-prefix kinds that fits len(data).
func (w *Writer) writeLengthPrefixed(isString bool, tag Tag, data []byte) error {
	length := uint64(len(data))

	var kind Kind
	var lenBuf [4]byte
	var lenSize int

	switch {
	case length <= math.MaxUint8:
		lenSize = 1
		kind = KindBytes1
		if isString {
			kind = KindString1
		}
		lenBuf[0] = byte(length)
	case length <= math.MaxUint16:
		lenSize = 2
		kind = KindBytes2
		if isString {
			kind = KindString2
		}
		binary.LittleEndian.PutUint16(lenBuf[:2], uint16(length))
	default:
		lenSize = 4
		kind = KindBytes4
		if isString {
			kind = KindString4
		}
		binary.LittleEndian.PutUint32(lenBuf[:4], uint32(length))
	}

	if err := w.writeControlAndTag(kind, tag); err != nil {
		return err
	}
	if _, err := w.w.Write(lenBuf[:lenSize]); err != nil {
		return err
	}
	_, err := w.w.Write(data)
	return err
}
