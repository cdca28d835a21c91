package obscurcore

// WriterState names the one-shot writer's progression (spec §4.9). A
// Writer only ever moves forward; Write() drives every transition itself
// in one call, since the wire format's own ordering (header, manifest,
// payload, trailer) admits no other sequencing of a single package.
type WriterState int

const (
	WriterFresh WriterState = iota
	WriterCryptoSet
	WriterItemsStaged
	WriterPayloadBuffered
	WriterManifestEmitted
	WriterTrailerWritten
	WriterClosed
)

func (s WriterState) String() string {
	switch s {
	case WriterFresh:
		return "Fresh"
	case WriterCryptoSet:
		return "CryptoSet"
	case WriterItemsStaged:
		return "ItemsStaged"
	case WriterPayloadBuffered:
		return "PayloadBuffered"
	case WriterManifestEmitted:
		return "ManifestEmitted"
	case WriterTrailerWritten:
		return "TrailerWritten"
	case WriterClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// ReaderState names the reader's progression (spec §4.9). Any
// authentication failure short-circuits straight to ReaderFailed from
// whatever state the reader was in.
type ReaderState int

const (
	ReaderFresh ReaderState = iota
	ReaderHeaderRead
	ReaderManifestDecrypted
	ReaderPayloadDemuxing
	ReaderVerified
	ReaderClosed
	ReaderFailed
)

func (s ReaderState) String() string {
	switch s {
	case ReaderFresh:
		return "Fresh"
	case ReaderHeaderRead:
		return "HeaderRead"
	case ReaderManifestDecrypted:
		return "ManifestDecrypted"
	case ReaderPayloadDemuxing:
		return "PayloadDemuxing"
	case ReaderVerified:
		return "Verified"
	case ReaderClosed:
		return "Closed"
	case ReaderFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}
