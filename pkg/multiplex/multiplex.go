// Package multiplex implements the payload multiplexer (spec component
// C8): a cooperative scheduler over N items that decides, turn by turn,
// which item transfers next and how many bytes, under one of three layout
// schemes, driven entirely by a shared deterministic CSPRNG so a reader can
// reproduce the exact same decision sequence from the serialized
// PayloadConfiguration alone.
//
// This package only computes the decision sequence (spec's "exact byte
// stream of decisions" determinism property); actually pushing item bytes
// through the authenticated cipher stream is the payload item layer's job
// (pkg/payload, C7), which consumes Schedule's output turn by turn.
package multiplex

import (
	"errors"

	"github.com/viruswevh/ObscurCore/pkg/csprng"
)

// Scheme selects the interleaving layout.
type Scheme int

const (
	SchemeSimple Scheme = iota
	SchemeFrameshift
	SchemeFabric
)

func (s Scheme) String() string {
	switch s {
	case SchemeSimple:
		return "Simple"
	case SchemeFrameshift:
		return "Frameshift"
	case SchemeFabric:
		return "Fabric"
	default:
		return "Unknown"
	}
}

// FrameshiftParams bounds the inter-item padding length. Equal bounds mean
// fixed-length padding.
type FrameshiftParams struct {
	PadMin, PadMax uint32
}

// FabricParams bounds the stripe length drawn on each Fabric turn.
type FabricParams struct {
	StripeMin, StripeMax uint32
}

// Config fully describes one multiplexing layout (spec §3
// PayloadConfiguration.scheme_params).
type Config struct {
	Scheme     Scheme
	Frameshift FrameshiftParams
	Fabric     FabricParams
}

var (
	ErrSchemeParamsInvalid = errors.New("multiplex: scheme parameters out of bounds")
	ErrNoItems             = errors.New("multiplex: no payload items")
)

// Validate checks cfg's parameters against spec §4.7's bounds:
// 0 <= pad_min <= pad_max <= 2^16-1 for Frameshift, 64 <= stripe_min <=
// stripe_max <= 2^16 for Fabric.
func (c Config) Validate() error {
	switch c.Scheme {
	case SchemeFrameshift:
		if c.Frameshift.PadMin > c.Frameshift.PadMax || c.Frameshift.PadMax > 1<<16-1 {
			return ErrSchemeParamsInvalid
		}
	case SchemeFabric:
		if c.Fabric.StripeMin < 64 || c.Fabric.StripeMin > c.Fabric.StripeMax || c.Fabric.StripeMax > 1<<16 {
			return ErrSchemeParamsInvalid
		}
	case SchemeSimple:
	default:
		return ErrSchemeParamsInvalid
	}
	return nil
}

// RequiresStreamingCipher reports whether items multiplexed under cfg must
// use a cipher capable of emitting ciphertext incrementally, byte for byte,
// as plaintext arrives (a Stream-kind cipher, or a Block cipher in CTR
// mode). Simple drains one item fully before starting the next, so a
// cipher that only produces ciphertext at Close (CBC/ECB/AEAD) is
// harmless — nothing else is interleaved around it. Frameshift and Fabric
// interleave multiple items' bytes in the same output run, which only
// stays faithful to the recorded stride lengths if every stride's
// ciphertext appears on the wire when that stride happens, not bunched up
// at the item's eventual Close.
func (c Config) RequiresStreamingCipher() bool {
	return c.Scheme != SchemeSimple
}

// Step is one scheduler decision: transfer Stride plaintext bytes from
// item ItemIndex, optionally preceded/followed by PadBefore/PadAfter
// CSPRNG-drawn filler bytes. Final reports whether this stride exhausts
// the item (its remaining plaintext reaches zero).
type Step struct {
	ItemIndex int
	Stride    uint32
	PadBefore uint32
	PadAfter  uint32
	Final     bool
}

// Schedule computes the full decision sequence for itemSizes (each item's
// plaintext length) under cfg, drawing every random choice from src. Given
// the same cfg, itemSizes, and src seed, two independent calls produce a
// byte-identical sequence (spec §8 determinism property) — this is the
// only place multiplexing decisions are made, so the reader need only
// replay the same call against the deserialized configuration.
func Schedule(cfg Config, itemSizes []uint32, src *csprng.Source) ([]Step, error) {
	if len(itemSizes) == 0 {
		return nil, ErrNoItems
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Scheme {
	case SchemeSimple:
		return scheduleSimple(itemSizes), nil
	case SchemeFrameshift:
		return scheduleFrameshift(cfg.Frameshift, itemSizes, src), nil
	case SchemeFabric:
		return scheduleFabric(cfg.Fabric, itemSizes, src), nil
	default:
		return nil, ErrSchemeParamsInvalid
	}
}

func scheduleSimple(itemSizes []uint32) []Step {
	steps := make([]Step, 0, len(itemSizes))
	for i, size := range itemSizes {
		steps = append(steps, Step{ItemIndex: i, Stride: size, Final: true})
	}
	return steps
}

// scheduleFrameshift is Simple with a CSPRNG-drawn padding run after every
// item, including the last (spec §8: "Frameshift with pad_min = pad_max =
// 0 behaves exactly like Simple" — with both bounds zero, every draw is 0
// and the two schedules are indistinguishable in substance).
func scheduleFrameshift(params FrameshiftParams, itemSizes []uint32, src *csprng.Source) []Step {
	steps := make([]Step, 0, len(itemSizes))
	for i, size := range itemSizes {
		pad := src.UniformRange(params.PadMin, params.PadMax)
		steps = append(steps, Step{ItemIndex: i, Stride: size, PadAfter: pad, Final: true})
	}
	return steps
}

// scheduleFabric interleaves items in randomly chosen stripes until every
// item is exhausted.
func scheduleFabric(params FabricParams, itemSizes []uint32, src *csprng.Source) []Step {
	remaining := append([]uint32(nil), itemSizes...)
	open := make([]int, len(itemSizes))
	for i := range open {
		open[i] = i
	}

	var steps []Step
	for len(open) > 0 {
		choice := src.UniformUint32(uint32(len(open)))
		idx := open[choice]

		stripe := src.UniformRange(params.StripeMin, params.StripeMax)
		if stripe > remaining[idx] {
			stripe = remaining[idx]
		}
		remaining[idx] -= stripe

		final := remaining[idx] == 0
		steps = append(steps, Step{ItemIndex: idx, Stride: stripe, Final: final})

		if final {
			open = append(open[:choice], open[choice+1:]...)
		}
	}
	return steps
}
