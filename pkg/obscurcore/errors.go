// Package obscurcore implements the package writer/reader state machine
// (spec component C10): the outermost layer that assembles a header, a
// manifest envelope, and multiplexed payload bytes into one package on the
// wire, and reverses the process on read.
//
// Grounded on the teacher's pkg/message/codec.go (AAD assembly, then AEAD
// wrap, in one Encode call) generalized from a single message frame to a
// multi-stage package, and on pkg/transport's logging.LeveledLogger wiring
// for state-transition/failure logging.
package obscurcore

import (
	"errors"
	"fmt"
)

// Kind is the error taxonomy named in spec §7. It is not itself an error
// type — an Error pairs a Kind with the underlying sentinel so callers can
// both errors.Is a specific cause and switch on Kind for coarse handling.
// KindKeySizeInvalid, KindBlockSizeInvalid, KindMacSizeInvalid and
// KindCurveMismatch are not returned by this package: registry size errors
// caught by NewWriter are reported as KindConfigurationInvalid.
type Kind int

const (
	KindConfigurationInvalid Kind = iota
	KindKeySizeInvalid
	KindBlockSizeInvalid
	KindMacSizeInvalid
	KindKeyMaterialMissing
	KindStreamBindingAbsent
	KindAuthenticationFailed
	KindKeyConfirmationFailed
	KindPayloadTruncated
	KindFormatMalformed
	KindAlreadyWritten
	KindCurveMismatch
)

func (k Kind) String() string {
	switch k {
	case KindConfigurationInvalid:
		return "ConfigurationInvalid"
	case KindKeySizeInvalid:
		return "KeySizeInvalid"
	case KindBlockSizeInvalid:
		return "BlockSizeInvalid"
	case KindMacSizeInvalid:
		return "MacSizeInvalid"
	case KindKeyMaterialMissing:
		return "KeyMaterialMissing"
	case KindStreamBindingAbsent:
		return "StreamBindingAbsent"
	case KindAuthenticationFailed:
		return "AuthenticationFailed"
	case KindKeyConfirmationFailed:
		return "KeyConfirmationFailed"
	case KindPayloadTruncated:
		return "PayloadTruncated"
	case KindFormatMalformed:
		return "FormatMalformed"
	case KindAlreadyWritten:
		return "AlreadyWritten"
	case KindCurveMismatch:
		return "CurveMismatch"
	default:
		return "Unknown"
	}
}

// Error wraps an underlying sentinel with the taxonomy Kind spec §7 assigns
// it, so callers can errors.Is the sentinel or switch on Kind.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string { return fmt.Sprintf("obscurcore: %s: %v", e.Kind, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

func wrap(kind Kind, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

var (
	ErrNoItems            = errors.New("obscurcore: no payload items")
	ErrAlreadyWritten     = errors.New("obscurcore: Write already called on this writer")
	ErrAlreadyClosed      = errors.New("obscurcore: writer or reader already closed")
	ErrWrongState         = errors.New("obscurcore: operation invalid in current state")
	ErrMagicMismatch      = errors.New("obscurcore: header or trailer magic mismatch")
	ErrHeaderTooShort      = errors.New("obscurcore: truncated before manifest header was fully read")
	ErrManifestBodyShort  = errors.New("obscurcore: truncated before manifest body was fully read")
	ErrTrailerMissing     = errors.New("obscurcore: truncated before trailer magic")
	ErrFormatMalformed    = errors.New("obscurcore: malformed package bytes")
)
