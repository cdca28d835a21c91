package payload

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/viruswevh/ObscurCore/pkg/aecs"
	"github.com/viruswevh/ObscurCore/pkg/csprng"
	"github.com/viruswevh/ObscurCore/pkg/multiplex"
)

// ErrNonStreamingCipher is returned when an item configured with a
// buffering cipher (CBC, ECB, or any AEAD) is staged under a multiplexer
// scheme that interleaves items mid-stream (Frameshift or Fabric), which
// only stays faithful to the scheduler's recorded stride lengths when
// ciphertext appears incrementally (see multiplex.Config.RequiresStreamingCipher).
var ErrNonStreamingCipher = errors.New("payload: item's cipher cannot stream under this multiplexing scheme")

// itemState tracks the per-item machinery driven across the schedule's
// turns: the item's own C5 stream object, its lazily opened stream binding,
// and the ciphertext byte count needed to fill in InternalLength.
type itemState struct {
	item *Item

	writer *aecs.Writer
	reader *aecs.Reader

	source io.ReadCloser
	opened bool

	ciphertextLen uint32
}

// WriteItems drives every item's plaintext through C5 and into the
// multiplexer's interleaved output, in the order and stride lengths
// Schedule computes from the items' lengths and src. On return, every item's
// InternalLength and AuthenticationTag are populated for the manifest to
// record (spec §4.6: "the resulting internal_length and authentication_tag
// are recorded back into the item descriptor before the manifest is
// finalized").
func WriteItems(out io.Writer, items []*Item, cfg multiplex.Config, src *csprng.Source, preKey []byte) error {
	if err := StageItems(items, true); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	sizes := make([]uint32, len(items))
	states := make([]*itemState, len(items))

	for i, item := range items {
		if item.ExternalLength > math.MaxUint32 {
			return fmt.Errorf("item %d (%s): %w", i, item.UUID, ErrLengthOutOfRange)
		}
		sizes[i] = uint32(item.ExternalLength)

		if cfg.RequiresStreamingCipher() && !aecs.IsStreamingCipher(item.Cipher) {
			return fmt.Errorf("item %d (%s): %w", i, item.UUID, ErrNonStreamingCipher)
		}

		cipherKey, macKey, iv, err := resolveItemKeys(item, preKey)
		if err != nil {
			return fmt.Errorf("item %d (%s): %w", i, item.UUID, err)
		}
		aad, err := descriptorAAD(item)
		if err != nil {
			return fmt.Errorf("item %d (%s): %w", i, item.UUID, err)
		}

		st := &itemState{item: item}
		states[i] = st

		writer, err := aecs.NewWriter(item.Cipher, item.Auth, cipherKey, macKey, iv, aad, func(chunk []byte) error {
			st.ciphertextLen += uint32(len(chunk))
			_, err := out.Write(chunk)
			return err
		})
		if err != nil {
			return fmt.Errorf("item %d (%s): %w", i, item.UUID, err)
		}
		st.writer = writer
	}

	schedule, err := multiplex.Schedule(cfg, sizes, src)
	if err != nil {
		return err
	}

	for _, step := range schedule {
		if step.PadBefore > 0 {
			if err := writePadding(out, src, step.PadBefore); err != nil {
				return err
			}
		}

		st := states[step.ItemIndex]
		if !st.opened {
			source, err := st.item.Open()
			if err != nil {
				return fmt.Errorf("item %d (%s): %w", step.ItemIndex, st.item.UUID, err)
			}
			st.source = source
			st.opened = true
		}

		chunk := make([]byte, step.Stride)
		if _, err := io.ReadFull(st.source, chunk); err != nil {
			return fmt.Errorf("item %d (%s): %w", step.ItemIndex, st.item.UUID, err)
		}
		if _, err := st.writer.Write(chunk); err != nil {
			return fmt.Errorf("item %d (%s): %w", step.ItemIndex, st.item.UUID, err)
		}

		if step.Final {
			tag, err := st.writer.Close()
			if err != nil {
				return fmt.Errorf("item %d (%s): %w", step.ItemIndex, st.item.UUID, err)
			}
			st.item.AuthenticationTag = tag
			st.item.InternalLength = uint64(st.ciphertextLen)
			if err := st.source.Close(); err != nil {
				return fmt.Errorf("item %d (%s): %w", step.ItemIndex, st.item.UUID, err)
			}
		}

		if step.PadAfter > 0 {
			if err := writePadding(out, src, step.PadAfter); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReadItems mirrors WriteItems: it replays the identical schedule (the
// reader already knows every item's ExternalLength from the deserialized
// manifest) and, on each item's final stride, verifies the tag and releases
// plaintext to the item's Sink — never before the whole item has
// authenticated (spec §8: a flipped bit anywhere must be caught, not
// silently decrypted).
func ReadItems(in io.Reader, items []*Item, cfg multiplex.Config, src *csprng.Source, preKey []byte) error {
	if err := StageItems(items, false); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	sizes := make([]uint32, len(items))
	states := make([]*itemState, len(items))

	for i, item := range items {
		if item.ExternalLength > math.MaxUint32 {
			return fmt.Errorf("item %d (%s): %w", i, item.UUID, ErrLengthOutOfRange)
		}
		sizes[i] = uint32(item.ExternalLength)

		if cfg.RequiresStreamingCipher() && !aecs.IsStreamingCipher(item.Cipher) {
			return fmt.Errorf("item %d (%s): %w", i, item.UUID, ErrNonStreamingCipher)
		}

		cipherKey, macKey, iv, err := resolveItemKeys(item, preKey)
		if err != nil {
			return fmt.Errorf("item %d (%s): %w", i, item.UUID, err)
		}
		aad, err := descriptorAAD(item)
		if err != nil {
			return fmt.Errorf("item %d (%s): %w", i, item.UUID, err)
		}

		reader, err := aecs.NewReader(item.Cipher, item.Auth, cipherKey, macKey, iv, aad)
		if err != nil {
			return fmt.Errorf("item %d (%s): %w", i, item.UUID, err)
		}
		states[i] = &itemState{item: item, reader: reader}
	}

	schedule, err := multiplex.Schedule(cfg, sizes, src)
	if err != nil {
		return err
	}

	for _, step := range schedule {
		if step.PadBefore > 0 {
			if err := discard(in, step.PadBefore); err != nil {
				return err
			}
		}

		st := states[step.ItemIndex]
		readLen := step.Stride
		if aecs.NeedsBuffering(st.item.Cipher) {
			// Simple guarantees one step per item for buffering ciphers, so
			// the whole (already-known, from the manifest) ciphertext can
			// be read in one shot rather than following the plaintext
			// stride, which would undercount padded/AEAD ciphertext.
			if st.item.InternalLength > math.MaxUint32 {
				return fmt.Errorf("item %d (%s): %w", step.ItemIndex, st.item.UUID, ErrLengthOutOfRange)
			}
			readLen = uint32(st.item.InternalLength)
		}

		chunk := make([]byte, readLen)
		if _, err := io.ReadFull(in, chunk); err != nil {
			return fmt.Errorf("item %d (%s): %w", step.ItemIndex, st.item.UUID, ErrItemTruncated)
		}
		if _, err := st.reader.Write(chunk); err != nil {
			return fmt.Errorf("item %d (%s): %w", step.ItemIndex, st.item.UUID, err)
		}

		if step.Final {
			plaintext, err := st.reader.Finish(st.item.AuthenticationTag)
			if err != nil {
				return fmt.Errorf("item %d (%s): %w", step.ItemIndex, st.item.UUID, err)
			}
			sink, err := st.item.Sink()
			if err != nil {
				return fmt.Errorf("item %d (%s): %w", step.ItemIndex, st.item.UUID, err)
			}
			if _, err := sink.Write(plaintext); err != nil {
				return fmt.Errorf("item %d (%s): %w", step.ItemIndex, st.item.UUID, err)
			}
			if err := sink.Close(); err != nil {
				return fmt.Errorf("item %d (%s): %w", step.ItemIndex, st.item.UUID, err)
			}
		}

		if step.PadAfter > 0 {
			if err := discard(in, step.PadAfter); err != nil {
				return err
			}
		}
	}
	return nil
}

func writePadding(out io.Writer, src *csprng.Source, n uint32) error {
	buf := make([]byte, n)
	src.NextBytes(buf)
	_, err := out.Write(buf)
	return err
}

func discard(in io.Reader, n uint32) error {
	_, err := io.CopyN(io.Discard, in, int64(n))
	return err
}
