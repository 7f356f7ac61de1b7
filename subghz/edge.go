// Package subghz implements decoders and encoders for sub-GHz automotive
// remote-keyfob radio protocols: conversion between raw RF edge-event
// streams and structured rolling-code packets.
package subghz

// EdgeEvent is one level transition with its holding duration, as produced
// by a radio's envelope detector. Streams are half-duplex: successive
// events alternate Level.
type EdgeEvent struct {
	Level      bool
	DurationUs uint32
}

// maxSafeDuration is the clamp a caller should apply before Feed; durations
// above it are folded down so a runaway capture can't overflow protocol
// arithmetic that assumes durations fit comfortably under 2^31.
const maxSafeDuration = uint32(1) << 31

// ClampDuration folds a duration into the safe range a Feed implementation
// expects. Callers reading raw hardware timestamps should apply this before
// calling Feed.
func ClampDuration(d uint32) uint32 {
	if d > maxSafeDuration {
		return maxSafeDuration
	}
	return d
}

// near reports whether duration d matches target t within tolerance delta.
// Every timing classification in this package goes through near; none ever
// compares durations for exact equality.
func near(d, t, delta uint32) bool {
	var diff uint32
	if d > t {
		diff = d - t
	} else {
		diff = t - d
	}
	return diff < delta
}

// TimingProfile is a protocol's immutable timing envelope. TELong is
// approximately twice TEShort; TEDelta is the tolerance near() uses for
// every classification in that protocol's FSM.
type TimingProfile struct {
	TEShort uint32
	TELong  uint32
	TEDelta uint32
	GapUs   uint32 // 0 if the protocol has no dedicated gap window
	SyncUs  uint32 // 0 if the protocol has no single nominal sync duration
}

// ParserPhase is the coarse phase of a protocol decoder's framing FSM.
type ParserPhase int

const (
	PhaseReset ParserPhase = iota
	PhasePreamble
	PhaseSync
	PhaseData
	PhaseGap
)

// DecoderBlock is the state common to every protocol decoder: phase,
// last-seen duration (used by some protocols to validate bit-pair timing),
// and an accumulated-bit counter. Protocol codecs embed it and add their own
// payload accumulator on top.
type DecoderBlock struct {
	Phase      ParserPhase
	TELast     uint32
	BitCount   int
	HeaderHits int
}

// Reset returns the block to PhaseReset with zero accumulated state.
func (b *DecoderBlock) Reset() {
	*b = DecoderBlock{}
}

// Hash returns a cheap byte-wise digest of the given accumulated payload
// bytes, used by decoders to implement get_hash_data for de-duplicating
// repeated captures of the same frame.
func Hash(data []byte) byte {
	var h byte
	for _, c := range data {
		h ^= c
		h = h<<1 | h>>7 // rotate so position affects the digest, not just XOR
	}
	return h
}
