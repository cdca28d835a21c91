package aecs

import (
	"bytes"
	"crypto/cipher"
	"encoding/binary"
	"hash"

	"github.com/viruswevh/ObscurCore/pkg/athena"
)

// Writer composes a caller's CipherConfig/AuthConfig into one
// Encrypt-then-MAC (or native AEAD) stream. Plaintext is pushed in via
// Write; Close finalizes the stream, writes any trailing ciphertext, and
// returns the authentication tag (it is not written to the output) so the
// caller can store it in the
// item's descriptor (spec §4.4 / §4.7 PayloadItem.AuthenticationTag).
//
// A Writer is single-use: calling Close twice returns ErrAlreadyClosed,
// matching the one-shot package Writer state machine this feeds into.
type Writer struct {
	out           func([]byte) error
	cipherCfg     athena.CipherConfig
	descriptorAAD []byte

	stream cipher.Stream // CTR / Stream-kind: incremental
	mode   cipher.BlockMode
	aead   cipher.AEAD
	mac    hash.Hash

	iv      []byte
	buf     bytes.Buffer // buffered plaintext, for CBC/ECB/AEAD
	ctCount uint32
	tagSize int
	closed  bool
}

// NewWriter constructs a Writer. sink receives ciphertext bytes as they
// become available (possibly only at Close, for buffering modes).
// descriptorAAD is the serialized crypto descriptor with its own
// authentication_tag field elided, authenticated but never encrypted.
func NewWriter(cipherCfg athena.CipherConfig, authCfg athena.AuthConfig, cipherKey, macKey, iv, descriptorAAD []byte, sink func([]byte) error) (*Writer, error) {
	w := &Writer{out: sink, cipherCfg: cipherCfg, descriptorAAD: descriptorAAD, iv: iv}

	if cipherCfg.Kind == athena.KindAEAD {
		aead, err := aeadFor(cipherCfg, cipherKey)
		if err != nil {
			return nil, err
		}
		w.aead = aead
		w.tagSize = aead.Overhead()
		return w, nil
	}

	if needsBuffering(cipherCfg) {
		mode, err := blockModeFor(cipherCfg, cipherKey, iv, Encrypt)
		if err != nil {
			return nil, err
		}
		w.mode = mode
	} else {
		stream, err := streamFor(cipherCfg, cipherKey, iv, Encrypt)
		if err != nil {
			return nil, err
		}
		w.stream = stream
	}

	mac, err := newMAC(authCfg, macKey)
	if err != nil {
		return nil, err
	}
	w.mac = mac
	w.tagSize = mac.Size()
	return w, nil
}

// Write consumes plaintext. For streaming ciphers the resulting ciphertext
// is emitted to the sink immediately; for buffering modes it accumulates
// until Close.
func (w *Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, ErrAlreadyClosed
	}
	if w.stream == nil {
		w.buf.Write(p)
		return len(p), nil
	}
	ciphertext := make([]byte, len(p))
	w.stream.XORKeyStream(ciphertext, p)
	if err := w.out(ciphertext); err != nil {
		return 0, err
	}
	w.mac.Write(ciphertext)
	w.ctCount += uint32(len(ciphertext))
	return len(p), nil
}

// Close finalizes the stream and returns the authentication tag.
func (w *Writer) Close() ([]byte, error) {
	if w.closed {
		return nil, ErrAlreadyClosed
	}
	w.closed = true

	if w.aead != nil {
		aad := lengthCommit(uint32(w.buf.Len()), w.descriptorAAD)
		sealed := w.aead.Seal(nil, w.iv, w.buf.Bytes(), aad)
		ciphertext := sealed[:len(sealed)-w.tagSize]
		tag := sealed[len(sealed)-w.tagSize:]
		if err := w.out(ciphertext); err != nil {
			return nil, err
		}
		return tag, nil
	}

	if w.mode != nil {
		padded := pkcs7Pad(w.buf.Bytes(), w.mode.BlockSize())
		ciphertext := make([]byte, len(padded))
		w.mode.CryptBlocks(ciphertext, padded)
		if err := w.out(ciphertext); err != nil {
			return nil, err
		}
		w.mac.Write(ciphertext)
		w.ctCount = uint32(len(ciphertext))
	}

	w.mac.Write(lengthCommit(w.ctCount, nil))
	w.mac.Write(w.descriptorAAD)
	return w.mac.Sum(nil)[:w.tagSize], nil
}

// Reader mirrors Writer: ciphertext arrives via Write, and Finish verifies
// the tag before releasing any plaintext at all (spec §8: a flipped bit
// anywhere in the stream must be detected, never silently decrypted).
type Reader struct {
	cipherCfg     athena.CipherConfig
	descriptorAAD []byte

	stream cipher.Stream
	mode   cipher.BlockMode
	aead   cipher.AEAD
	mac    hash.Hash

	iv       []byte
	buf      bytes.Buffer // ciphertext accumulator (AEAD/CBC/ECB)
	plainOut bytes.Buffer // plaintext decrypted eagerly but withheld (CTR/Stream)
	ctCount  uint32
	tagSize  int
	finished bool
}

// NewReader mirrors NewWriter's parameters.
func NewReader(cipherCfg athena.CipherConfig, authCfg athena.AuthConfig, cipherKey, macKey, iv, descriptorAAD []byte) (*Reader, error) {
	r := &Reader{cipherCfg: cipherCfg, descriptorAAD: descriptorAAD, iv: iv}

	if cipherCfg.Kind == athena.KindAEAD {
		aead, err := aeadFor(cipherCfg, cipherKey)
		if err != nil {
			return nil, err
		}
		r.aead = aead
		r.tagSize = aead.Overhead()
		return r, nil
	}

	if needsBuffering(cipherCfg) {
		mode, err := blockModeFor(cipherCfg, cipherKey, iv, Decrypt)
		if err != nil {
			return nil, err
		}
		r.mode = mode
	} else {
		stream, err := streamFor(cipherCfg, cipherKey, iv, Decrypt)
		if err != nil {
			return nil, err
		}
		r.stream = stream
	}

	mac, err := newMAC(authCfg, macKey)
	if err != nil {
		return nil, err
	}
	r.mac = mac
	r.tagSize = mac.Size()
	return r, nil
}

// Write feeds in the next chunk of ciphertext (exactly internal_length
// bytes total across all calls, per the item descriptor).
func (r *Reader) Write(ciphertext []byte) (int, error) {
	if r.finished {
		return 0, ErrAlreadyClosed
	}
	if r.stream != nil {
		plain := make([]byte, len(ciphertext))
		r.stream.XORKeyStream(plain, ciphertext)
		r.plainOut.Write(plain)
		r.mac.Write(ciphertext)
		r.ctCount += uint32(len(ciphertext))
		return len(ciphertext), nil
	}
	r.buf.Write(ciphertext)
	return len(ciphertext), nil
}

// Finish verifies tag against everything written so far and, only on
// success, returns the plaintext. On failure it returns
// ErrAuthenticationFailed and no plaintext.
func (r *Reader) Finish(tag []byte) ([]byte, error) {
	if r.finished {
		return nil, ErrAlreadyClosed
	}
	r.finished = true

	if r.aead != nil {
		aad := lengthCommit(uint32(r.buf.Len()), r.descriptorAAD)
		sealed := append(append([]byte(nil), r.buf.Bytes()...), tag...)
		plaintext, err := r.aead.Open(nil, r.iv, sealed, aad)
		if err != nil {
			return nil, ErrAuthenticationFailed
		}
		return plaintext, nil
	}

	if r.mode != nil {
		r.mac.Write(r.buf.Bytes())
		r.ctCount = uint32(r.buf.Len())
	}
	r.mac.Write(lengthCommit(r.ctCount, nil))
	r.mac.Write(r.descriptorAAD)
	expected := r.mac.Sum(nil)[:r.tagSize]
	if !athena.ConstantTimeEqual(expected, tag) {
		return nil, ErrAuthenticationFailed
	}

	if r.mode == nil {
		return r.plainOut.Bytes(), nil
	}
	padded := make([]byte, r.buf.Len())
	r.mode.CryptBlocks(padded, r.buf.Bytes())
	return pkcs7Unpad(padded)
}

// lengthCommit returns le32(n)||trailing, the "count of ciphertext
// bytes, little-endian" commitment spec §4.4 folds into every tag.
func lengthCommit(n uint32, trailing []byte) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], n)
	return append(buf[:], trailing...)
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	pad := blockSize - len(data)%blockSize
	out := make([]byte, len(data)+pad)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(pad)
	}
	return out
}

func pkcs7Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrAuthenticationFailed
	}
	pad := int(data[len(data)-1])
	if pad == 0 || pad > len(data) {
		return nil, ErrAuthenticationFailed
	}
	for _, b := range data[len(data)-pad:] {
		if int(b) != pad {
			return nil, ErrAuthenticationFailed
		}
	}
	return data[:len(data)-pad], nil
}
