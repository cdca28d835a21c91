package obscurcore

import (
	"encoding/binary"
	"fmt"
	"io"
)

// magic is the 4-byte header_tag/trailer_tag value framing every package
// (spec §6's "OCPK" magic, both at the front and the back).
var magic = [4]byte{'O', 'C', 'P', 'K'}

func writeMagic(out io.Writer) error {
	_, err := out.Write(magic[:])
	return err
}

func readMagic(in io.Reader) error {
	var got [4]byte
	if _, err := io.ReadFull(in, got[:]); err != nil {
		return fmt.Errorf("%w: %v", ErrMagicMismatch, err)
	}
	if got != magic {
		return ErrMagicMismatch
	}
	return nil
}

// writeVarintFramed writes len(payload) as an unsigned varint followed by
// payload itself (spec §6's "varint + payload" ManifestHeader framing).
func writeVarintFramed(out io.Writer, payload []byte) error {
	var lenBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(lenBuf[:], uint64(len(payload)))
	if _, err := out.Write(lenBuf[:n]); err != nil {
		return err
	}
	_, err := out.Write(payload)
	return err
}

// readVarintFramed is writeVarintFramed's inverse, reading the varint
// length one byte at a time (there is no outer framing to bound the read).
func readVarintFramed(in io.Reader) ([]byte, error) {
	var buf [1]byte
	var x uint64
	var s uint
	for {
		if _, err := io.ReadFull(in, buf[:]); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrHeaderTooShort, err)
		}
		b := buf[0]
		if b < 0x80 {
			if s >= 63 && b > 1 {
				return nil, fmt.Errorf("%w: varint overflow", ErrFormatMalformed)
			}
			x |= uint64(b) << s
			break
		}
		x |= uint64(b&0x7f) << s
		s += 7
		if s >= 64 {
			return nil, fmt.Errorf("%w: varint too long", ErrFormatMalformed)
		}
	}
	payload := make([]byte, x)
	if _, err := io.ReadFull(in, payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHeaderTooShort, err)
	}
	return payload, nil
}

// obfuscateLength XORs a little-endian u32 length with the first 4 bytes
// of macKey (spec §6: "obfuscation, not authentication" — it hides the
// manifest body's length from a casual observer without adding any
// integrity guarantee of its own).
func obfuscateLength(n uint32, macKey []byte) [4]byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], n)
	for i := range buf {
		if i < len(macKey) {
			buf[i] ^= macKey[i]
		}
	}
	return buf
}

func deobfuscateLength(buf [4]byte, macKey []byte) uint32 {
	var plain [4]byte
	copy(plain[:], buf[:])
	for i := range plain {
		if i < len(macKey) {
			plain[i] ^= macKey[i]
		}
	}
	return binary.LittleEndian.Uint32(plain[:])
}
