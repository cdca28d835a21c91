package aecs

import (
	"crypto/cipher"
	"crypto/subtle"
	"encoding/binary"
	"errors"
)

const aesBlockSize = 16

var (
	errCCMInvalidNonce  = errors.New("aecs: ccm nonce has the wrong length")
	errCCMShortCipher   = errors.New("aecs: ccm ciphertext shorter than tag")
	errCCMPlaintextSize = errors.New("aecs: ccm plaintext too long for tag/length parameters")
)

// ccm is a counter-with-CBC-MAC AEAD construction (NIST SP 800-38C) built
// directly on a block.Encrypt, with a configurable tag size. It implements
// crypto/cipher.AEAD so the rest of this package can treat it exactly like
// the stdlib GCM and x/crypto ChaCha20-Poly1305 constructions.
//
// Adapted from the teacher's AESCCM: same B_0/A_0 block layout and S_0
// tag-masking trick (RFC 3610 §2.2-2.3), generalized to any 128-bit block
// cipher and any registry-allowed tag size instead of being pinned to AES-128.
type ccm struct {
	block     cipher.Block
	nonceSize int
	tagSize   int
	lenSize   int // L: length-field size, 15 - nonceSize
}

// newCCM wraps block as an AEAD with the given nonce and tag size, both in
// bytes. nonceSize must satisfy 7 <= nonceSize <= 13; tagSize must be even
// and in [4, 16].
func newCCM(block cipher.Block, nonceSize, tagSize int) (cipher.AEAD, error) {
	if block.BlockSize() != aesBlockSize {
		return nil, ErrUnsupportedAlgorithm
	}
	lenSize := 15 - nonceSize
	if lenSize < 2 || lenSize > 8 {
		return nil, errCCMInvalidNonce
	}
	if tagSize < 4 || tagSize > 16 || tagSize%2 != 0 {
		return nil, ErrUnsupportedAlgorithm
	}
	return &ccm{block: block, nonceSize: nonceSize, tagSize: tagSize, lenSize: lenSize}, nil
}

func (c *ccm) NonceSize() int { return c.nonceSize }
func (c *ccm) Overhead() int  { return c.tagSize }

func (c *ccm) Seal(dst, nonce, plaintext, aad []byte) []byte {
	if len(nonce) != c.nonceSize {
		panic(errCCMInvalidNonce)
	}
	if c.lenSize < 8 && uint64(len(plaintext)) >= uint64(1)<<(8*uint(c.lenSize)) {
		panic(errCCMPlaintextSize)
	}

	tag := c.computeTag(nonce, plaintext, aad)
	s0 := c.generateCounterBlock(nonce, 0)

	ret, out := sliceForAppend(dst, len(plaintext)+c.tagSize)
	c.ctrCrypt(nonce, out[:len(plaintext)], plaintext)
	for i := 0; i < c.tagSize; i++ {
		out[len(plaintext)+i] = tag[i] ^ s0[i]
	}
	return ret
}

func (c *ccm) Open(dst, nonce, ciphertext, aad []byte) ([]byte, error) {
	if len(nonce) != c.nonceSize {
		return nil, errCCMInvalidNonce
	}
	if len(ciphertext) < c.tagSize {
		return nil, errCCMShortCipher
	}
	encData := ciphertext[:len(ciphertext)-c.tagSize]
	encTag := ciphertext[len(ciphertext)-c.tagSize:]

	s0 := c.generateCounterBlock(nonce, 0)
	receivedTag := make([]byte, c.tagSize)
	for i := 0; i < c.tagSize; i++ {
		receivedTag[i] = encTag[i] ^ s0[i]
	}

	plaintext := make([]byte, len(encData))
	c.ctrCrypt(nonce, plaintext, encData)

	expectedTag := c.computeTag(nonce, plaintext, aad)
	if subtle.ConstantTimeCompare(receivedTag, expectedTag[:c.tagSize]) != 1 {
		return nil, ErrAuthenticationFailed
	}

	ret, out := sliceForAppend(dst, len(plaintext))
	copy(out, plaintext)
	return ret, nil
}

// computeTag is CBC-MAC over B_0 || formatted(aad) || formatted(plaintext),
// per RFC 3610 §2.2.
func (c *ccm) computeTag(nonce, plaintext, aad []byte) []byte {
	var b0 [aesBlockSize]byte
	flags := byte(0)
	if len(aad) > 0 {
		flags |= 1 << 6
	}
	flags |= byte((c.tagSize-2)/2) << 3
	flags |= byte(c.lenSize - 1)
	b0[0] = flags
	copy(b0[1:1+c.nonceSize], nonce)
	c.putLength(b0[1+c.nonceSize:], len(plaintext))

	mac := make([]byte, aesBlockSize)
	c.block.Encrypt(mac, b0[:])

	if len(aad) > 0 {
		var header [aesBlockSize]byte
		var headerLen int
		aadLen := len(aad)
		switch {
		case aadLen < (1<<16)-(1<<8):
			binary.BigEndian.PutUint16(header[0:2], uint16(aadLen))
			headerLen = 2
		case aadLen < (1 << 32):
			header[0], header[1] = 0xFF, 0xFE
			binary.BigEndian.PutUint32(header[2:6], uint32(aadLen))
			headerLen = 6
		default:
			header[0], header[1] = 0xFF, 0xFF
			binary.BigEndian.PutUint64(header[2:10], uint64(aadLen))
			headerLen = 10
		}
		firstBlock := aesBlockSize - headerLen
		if firstBlock > len(aad) {
			firstBlock = len(aad)
		}
		copy(header[headerLen:], aad[:firstBlock])
		xorBlock(mac, header[:])
		c.block.Encrypt(mac, mac)

		remaining := aad[firstBlock:]
		for len(remaining) > 0 {
			var blk [aesBlockSize]byte
			n := copy(blk[:], remaining)
			remaining = remaining[n:]
			xorBlock(mac, blk[:])
			c.block.Encrypt(mac, mac)
		}
	}

	remaining := plaintext
	for len(remaining) > 0 {
		var blk [aesBlockSize]byte
		n := copy(blk[:], remaining)
		remaining = remaining[n:]
		xorBlock(mac, blk[:])
		c.block.Encrypt(mac, mac)
	}
	return mac[:c.tagSize]
}

func (c *ccm) generateCounterBlock(nonce []byte, counter uint64) []byte {
	var a [aesBlockSize]byte
	a[0] = byte(c.lenSize - 1)
	copy(a[1:1+c.nonceSize], nonce)
	putCounter(a[aesBlockSize-c.lenSize:], counter)
	out := make([]byte, aesBlockSize)
	c.block.Encrypt(out, a[:])
	return out
}

func (c *ccm) ctrCrypt(nonce []byte, dst, src []byte) {
	var ctr [aesBlockSize]byte
	ctr[0] = byte(c.lenSize - 1)
	copy(ctr[1:1+c.nonceSize], nonce)
	putCounter(ctr[aesBlockSize-c.lenSize:], 1)

	var keystream [aesBlockSize]byte
	for i := 0; i < len(src); i += aesBlockSize {
		c.block.Encrypt(keystream[:], ctr[:])
		end := i + aesBlockSize
		if end > len(src) {
			end = len(src)
		}
		for j := i; j < end; j++ {
			dst[j] = src[j] ^ keystream[j-i]
		}
		incrementCounter(ctr[aesBlockSize-c.lenSize:])
	}
}

func (c *ccm) putLength(dst []byte, length int) {
	for i := c.lenSize - 1; i >= 0; i-- {
		dst[i] = byte(length)
		length >>= 8
	}
}

func putCounter(dst []byte, v uint64) {
	for i := len(dst) - 1; i >= 0; i-- {
		dst[i] = byte(v)
		v >>= 8
	}
}

func incrementCounter(ctr []byte) {
	for i := len(ctr) - 1; i >= 0; i-- {
		ctr[i]++
		if ctr[i] != 0 {
			break
		}
	}
}

func xorBlock(dst, src []byte) {
	for i := range dst {
		dst[i] ^= src[i]
	}
}

func sliceForAppend(in []byte, n int) (head, tail []byte) {
	if total := len(in) + n; cap(in) >= total {
		head = in[:total]
	} else {
		head = make([]byte, total)
		copy(head, in)
	}
	tail = head[len(in):]
	return
}
