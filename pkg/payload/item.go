// Package payload implements the payload item layer (spec component C7):
// the per-item encryption/authentication contract that sits between a
// manifest's descriptors and the multiplexer's byte-interleaving decisions.
//
// Each Item is independently encrypted and authenticated by pkg/aecs, using
// either an explicit (cipher_key, authentication_key) pair or a shared
// pre-key resolved into working key material via pkg/kdf at transfer time.
// Stream bindings are lazy suppliers — Open/Sink — evaluated exactly once,
// the way the teacher's session layer only materializes a transport once a
// handshake actually needs to send something rather than holding an open
// handle from construction.
package payload

import (
	"errors"
	"io"

	"github.com/google/uuid"

	"github.com/viruswevh/ObscurCore/pkg/athena"
	"github.com/viruswevh/ObscurCore/pkg/keyconfirm"
)

// ItemType discriminates the three payload item kinds (spec §3).
type ItemType int

const (
	ItemBinary ItemType = iota
	ItemUtf8
	ItemKeyAction
)

func (t ItemType) String() string {
	switch t {
	case ItemBinary:
		return "Binary"
	case ItemUtf8:
		return "Utf8"
	case ItemKeyAction:
		return "KeyAction"
	default:
		return "Unknown"
	}
}

var (
	// ErrKeyMaterialMissing is returned for an item that declares neither an
	// explicit cipher key nor a KeyDerivation config to resolve one from a
	// shared pre-key.
	ErrKeyMaterialMissing = errors.New("payload: item has no cipher key and no key-derivation config")
	// ErrStreamBindingAbsent is returned for an item missing the Open (write
	// side) or Sink (read side) supplier it needs at transfer time.
	ErrStreamBindingAbsent = errors.New("payload: item has no stream binding")
	// ErrItemTruncated is returned when the payload stream ends before an
	// item's declared length has been fully consumed.
	ErrItemTruncated = errors.New("payload: payload truncated before item was fully read")
	// ErrLengthOutOfRange is returned when an item's declared length
	// exceeds the multiplexer's 32-bit stride budget.
	ErrLengthOutOfRange = errors.New("payload: item length exceeds the multiplexer's addressable range")
)

// Item is one payload item descriptor (spec §3 PayloadItem). InternalLength
// and AuthenticationTag start unset on the writer side and are filled in
// once the item has actually been encrypted; on the reader side they arrive
// already populated, from the manifest, before Read is called.
type Item struct {
	UUID uuid.UUID
	Type ItemType
	Path string

	ExternalLength uint64 // plaintext length
	InternalLength uint64 // ciphertext length, filled in on pack/unpack

	FormatName string
	FormatData []byte

	Cipher    athena.CipherConfig
	CipherKey []byte // explicit key, or nil to derive from a pre-key
	IV        []byte // explicit IV used with CipherKey; ignored when the keys (and IV) are derived

	Auth              athena.AuthConfig
	AuthKey           []byte
	AuthenticationTag []byte

	KeyConfirmation       *keyconfirm.Config
	KeyConfirmationOutput []byte
	KeyDerivation         *athena.KDFConfig

	// Open supplies the plaintext source on the write side. Sink supplies
	// the plaintext destination on the read side. Exactly one of the two is
	// evaluated, once, at transfer time — never both, and never eagerly at
	// construction. This is the "StreamSource/StreamSink" capability named
	// in spec §9, expressed as a lazy supplier over stdlib's own io
	// interfaces rather than a parallel interface hierarchy.
	Open func() (io.ReadCloser, error)
	Sink func() (io.WriteCloser, error)
}

// NewItem builds a fresh item with a random identifier, leaving every other
// field for the caller to fill in before staging.
func NewItem(itemType ItemType, path string) *Item {
	return &Item{UUID: uuid.New(), Type: itemType, Path: path}
}
