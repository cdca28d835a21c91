package obscurcore

import (
	"errors"
	"fmt"
	"io"

	"github.com/pion/logging"

	"github.com/viruswevh/ObscurCore/pkg/aecs"
	"github.com/viruswevh/ObscurCore/pkg/csprng"
	"github.com/viruswevh/ObscurCore/pkg/manifest"
	"github.com/viruswevh/ObscurCore/pkg/payload"
)

// ReaderConfig configures one package read. PreKey unlocks the manifest
// envelope (symmetric pre-key, or the shared secret a UM1 exchange already
// produced out of band — this package never runs curve arithmetic).
// ItemPreKey, like WriterConfig.ItemPreKey, is only needed for items that
// derive rather than carry explicit keys.
type ReaderConfig struct {
	PreKey     []byte
	ItemPreKey []byte

	// SinkFor resolves, for each decoded item (in manifest order), the
	// destination its plaintext should be written to. It is called once
	// per item, lazily, the same way payload.Item.Sink is (spec §9's
	// lazy-supplier stream-binding contract).
	SinkFor func(item *payload.Item, index int) (io.WriteCloser, error)

	LoggerFactory logging.LoggerFactory
}

// Reader is the package reader state machine named by spec §4.9. Any
// authentication failure short-circuits straight to ReaderFailed from
// whatever state the reader was in when the failure occurred.
type Reader struct {
	cfg   ReaderConfig
	state ReaderState
	log   logging.LeveledLogger
}

// NewReader constructs a Reader ready for exactly one Read call.
func NewReader(cfg ReaderConfig) *Reader {
	r := &Reader{cfg: cfg, state: ReaderFresh}
	if cfg.LoggerFactory != nil {
		r.log = cfg.LoggerFactory.NewLogger("obscurcore-reader")
	}
	return r
}

func (r *Reader) logState() {
	if r.log != nil {
		r.log.Debugf("reader state -> %s", r.state)
	}
}

func (r *Reader) fail(kind Kind, err error) error {
	from := r.state
	r.state = ReaderFailed
	if r.log != nil {
		r.log.Errorf("reader failed in state %s: %v", from, err)
	}
	return wrap(kind, err)
}

// Read parses and verifies a full package from in, returning the decoded
// manifest (its items carry the descriptor fields the writer emitted —
// UUID, lengths, format metadata — and, once Read returns successfully,
// have had their plaintext delivered to whatever SinkFor supplied).
func (r *Reader) Read(in io.Reader) (*manifest.Manifest, error) {
	if r.state != ReaderFresh {
		return nil, r.fail(KindFormatMalformed, ErrWrongState)
	}

	if err := readMagic(in); err != nil {
		return nil, r.fail(KindFormatMalformed, err)
	}

	headerBytes, err := readVarintFramed(in)
	if err != nil {
		return nil, r.fail(KindFormatMalformed, err)
	}
	header, err := manifest.DecodeHeader(headerBytes)
	if err != nil {
		return nil, r.fail(KindFormatMalformed, err)
	}
	r.state = ReaderHeaderRead
	r.logState()

	cryptoConfig, err := manifest.DecodeCryptoConfig(header.CryptoConfig)
	if err != nil {
		return nil, r.fail(KindFormatMalformed, err)
	}
	params := manifest.SealParams{
		Scheme:        cryptoConfig.Scheme,
		Cipher:        cryptoConfig.Cipher,
		Auth:          cryptoConfig.Auth,
		KeyDerivation: cryptoConfig.KeyDerivation,
	}
	macKeyPrefix, err := manifest.EnvelopeMacKeyPrefix(r.cfg.PreKey, params)
	if err != nil {
		return nil, r.fail(KindConfigurationInvalid, err)
	}

	var obf [4]byte
	if _, err := io.ReadFull(in, obf[:]); err != nil {
		return nil, r.fail(KindFormatMalformed, fmt.Errorf("%w: %v", ErrManifestBodyShort, err))
	}
	bodyLen := deobfuscateLength(obf, macKeyPrefix[:])

	sealed := make([]byte, bodyLen)
	if _, err := io.ReadFull(in, sealed); err != nil {
		return nil, r.fail(KindFormatMalformed, fmt.Errorf("%w: %v", ErrManifestBodyShort, err))
	}

	m, err := manifest.Open(header, sealed, r.cfg.PreKey)
	if err != nil {
		if errors.Is(err, manifest.ErrKeyConfirmationFailed) {
			return nil, r.fail(KindKeyConfirmationFailed, err)
		}
		return nil, r.fail(KindAuthenticationFailed, err)
	}
	r.state = ReaderManifestDecrypted
	r.logState()

	for i, item := range m.Items {
		if r.cfg.SinkFor == nil {
			return nil, r.fail(KindStreamBindingAbsent, payload.ErrStreamBindingAbsent)
		}
		item.Sink = func() (io.WriteCloser, error) {
			sink, err := r.cfg.SinkFor(item, i)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", payload.ErrStreamBindingAbsent, err)
			}
			return sink, nil
		}
	}

	src, err := csprng.NewFromSeed(csprng.CipherSalsa20, m.Payload.PRNGKey, m.Payload.PRNGNonce)
	if err != nil {
		return nil, r.fail(KindConfigurationInvalid, err)
	}

	r.state = ReaderPayloadDemuxing
	r.logState()
	if err := payload.ReadItems(in, m.Items, m.Payload.Multiplex, src, r.cfg.ItemPreKey); err != nil {
		return nil, r.fail(classifyPayloadReadErrorKind(err), err)
	}

	if err := readMagic(in); err != nil {
		return nil, r.fail(KindFormatMalformed, fmt.Errorf("%w: %v", ErrTrailerMissing, err))
	}

	r.state = ReaderVerified
	r.logState()
	r.state = ReaderClosed
	r.logState()
	return m, nil
}

func classifyPayloadReadErrorKind(err error) Kind {
	switch {
	case errors.Is(err, payload.ErrStreamBindingAbsent):
		return KindStreamBindingAbsent
	case errors.Is(err, payload.ErrKeyMaterialMissing):
		return KindKeyMaterialMissing
	case errors.Is(err, payload.ErrItemTruncated):
		return KindPayloadTruncated
	case errors.Is(err, aecs.ErrAuthenticationFailed):
		return KindAuthenticationFailed
	default:
		return KindAuthenticationFailed
	}
}
