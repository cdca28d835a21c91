package obscurcore

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/pion/logging"

	"github.com/viruswevh/ObscurCore/pkg/aecs"
	"github.com/viruswevh/ObscurCore/pkg/athena"
	"github.com/viruswevh/ObscurCore/pkg/csprng"
	"github.com/viruswevh/ObscurCore/pkg/manifest"
	"github.com/viruswevh/ObscurCore/pkg/multiplex"
	"github.com/viruswevh/ObscurCore/pkg/payload"
)

// WriterConfig is everything a Writer needs to assemble one package.
// ItemPreKey is only consulted for items whose keys are derived rather
// than explicit (payload.Item.KeyDerivation); most callers set an explicit
// CipherKey/AuthKey per item and leave it nil.
type WriterConfig struct {
	Items []*payload.Item

	Multiplex  multiplex.Config
	PRNGCipher csprng.Cipher
	PRNGKey    []byte
	PRNGNonce  []byte

	Crypto manifest.SealParams
	PreKey []byte

	ItemPreKey []byte

	LoggerFactory logging.LoggerFactory
}

// Writer is the one-shot package assembler named by spec §4.9. Write
// drives every state transition itself: the wire format's fixed ordering
// (header, manifest, payload, trailer) leaves no room for a caller to
// sequence these steps differently, so there is no value in exposing
// SetCrypto/StageItems as separate calls the way the state name list
// might suggest — a second Write call is the only transition a caller can
// actually get wrong, and that is what AlreadyWritten guards.
type Writer struct {
	cfg   WriterConfig
	state WriterState
	log   logging.LeveledLogger
}

// NewWriter validates cfg enough to catch configuration-time errors (spec
// §4.10: "size/format errors are raised at configuration time, before any
// I/O") and returns a Writer ready for exactly one Write call.
func NewWriter(cfg WriterConfig) (*Writer, error) {
	if len(cfg.Items) == 0 {
		return nil, wrap(KindConfigurationInvalid, ErrNoItems)
	}
	if err := athena.ValidateCipher(cfg.Crypto.Cipher); err != nil {
		return nil, wrap(KindConfigurationInvalid, err)
	}
	if err := athena.ValidateAuth(cfg.Crypto.Auth); err != nil {
		return nil, wrap(KindConfigurationInvalid, err)
	}
	if err := athena.ValidateKDF(cfg.Crypto.KeyDerivation); err != nil {
		return nil, wrap(KindConfigurationInvalid, err)
	}
	if err := cfg.Multiplex.Validate(); err != nil {
		return nil, wrap(KindConfigurationInvalid, err)
	}
	if err := payload.StageItems(cfg.Items, true); err != nil {
		return nil, classifyPayloadError(err)
	}

	w := &Writer{cfg: cfg, state: WriterCryptoSet}
	if cfg.LoggerFactory != nil {
		w.log = cfg.LoggerFactory.NewLogger("obscurcore-writer")
	}
	w.logState()
	w.state = WriterItemsStaged
	w.logState()
	return w, nil
}

func (w *Writer) logState() {
	if w.log != nil {
		w.log.Debugf("writer state -> %s", w.state)
	}
}

// Write assembles the full package into out. It may be called exactly
// once; a second call returns an Error{Kind: KindAlreadyWritten} and
// writes nothing to out.
func (w *Writer) Write(out io.Writer) error {
	if w.state == WriterClosed {
		if w.log != nil {
			w.log.Warn("Write called twice")
		}
		return wrap(KindAlreadyWritten, ErrAlreadyWritten)
	}
	// A failed Write also uses up the Writer's single call.
	defer func() { w.state = WriterClosed }()

	src, err := csprng.NewFromSeed(w.cfg.PRNGCipher, w.cfg.PRNGKey, w.cfg.PRNGNonce)
	if err != nil {
		return wrap(KindConfigurationInvalid, err)
	}

	// Payload is emitted into scratch first: manifest item descriptors
	// (internal_length, authentication_tag) only become known once their
	// ciphertext has actually been produced (spec §5's scratch-sink note).
	var scratch bytes.Buffer
	if err := payload.WriteItems(&scratch, w.cfg.Items, w.cfg.Multiplex, src, w.cfg.ItemPreKey); err != nil {
		return classifyPayloadError(err)
	}
	w.state = WriterPayloadBuffered
	w.logState()

	m := &manifest.Manifest{
		Items: w.cfg.Items,
		Payload: manifest.PayloadConfiguration{
			Multiplex: w.cfg.Multiplex,
			PRNGName:  prngName(w.cfg.PRNGCipher),
			PRNGKey:   w.cfg.PRNGKey,
			PRNGNonce: w.cfg.PRNGNonce,
		},
	}
	header, sealed, err := manifest.Seal(m, w.cfg.PreKey, w.cfg.Crypto)
	if err != nil {
		return wrap(KindConfigurationInvalid, err)
	}
	w.state = WriterManifestEmitted
	w.logState()

	if err := writeMagic(out); err != nil {
		return err
	}

	headerBytes, err := manifest.EncodeHeader(header)
	if err != nil {
		return err
	}
	if err := writeVarintFramed(out, headerBytes); err != nil {
		return err
	}

	macKeyPrefix, err := manifest.EnvelopeMacKeyPrefix(w.cfg.PreKey, w.cfg.Crypto)
	if err != nil {
		return wrap(KindConfigurationInvalid, err)
	}
	obf := obfuscateLength(uint32(len(sealed)), macKeyPrefix[:])
	if _, err := out.Write(obf[:]); err != nil {
		return err
	}
	if _, err := out.Write(sealed); err != nil {
		return err
	}

	if _, err := scratch.WriteTo(out); err != nil {
		return err
	}

	if err := writeMagic(out); err != nil {
		return err
	}
	w.state = WriterTrailerWritten
	w.logState()

	w.state = WriterClosed
	w.logState()
	return nil
}

// prngName maps a csprng.Cipher to the wire-level name stored in
// PayloadConfiguration.PRNGName, so a reader can pick the same
// implementation without the two sides sharing Cipher's numeric encoding.
func prngName(c csprng.Cipher) string {
	switch c {
	case csprng.CipherSalsa20:
		return "Salsa20"
	default:
		return "Salsa20"
	}
}

func classifyPayloadError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, payload.ErrKeyMaterialMissing):
		return wrap(KindKeyMaterialMissing, err)
	case errors.Is(err, payload.ErrStreamBindingAbsent):
		return wrap(KindStreamBindingAbsent, err)
	case errors.Is(err, payload.ErrItemTruncated):
		return wrap(KindPayloadTruncated, err)
	case errors.Is(err, payload.ErrNonStreamingCipher):
		return wrap(KindConfigurationInvalid, err)
	case errors.Is(err, aecs.ErrAuthenticationFailed):
		return wrap(KindAuthenticationFailed, err)
	default:
		return fmt.Errorf("obscurcore: payload stage: %w", err)
	}
}
