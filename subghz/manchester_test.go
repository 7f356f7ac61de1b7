package subghz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManchesterAdvanceEmitsOneBit(t *testing.T) {
	// Mid1 -> ShortHigh -> Start1 -> ShortLow -> Mid1, emitting a 1 bit.
	next, _, ok := ManchesterAdvance(ManchesterMid1, EventShortHigh)
	assert.False(t, ok)
	assert.Equal(t, ManchesterStart1, next)

	next, bit, ok := ManchesterAdvance(next, EventShortLow)
	assert.True(t, ok)
	assert.Equal(t, 1, bit)
	assert.Equal(t, ManchesterMid1, next)
}

func TestManchesterAdvanceLongHighFromMid0EmitsNoBit(t *testing.T) {
	next, _, ok := ManchesterAdvance(ManchesterMid0, EventLongHigh)
	assert.False(t, ok)
	assert.Equal(t, ManchesterStart1, next)
}

func TestVWManchesterAdvanceLongTransitionStaysFramed(t *testing.T) {
	// Out of Start1, a long-low resolves into Start0 (not Mid) while still
	// emitting the 1 bit - this is the behaviour that lets the last half of
	// a VW data bit run long without losing bit framing.
	next, bit, ok := VWManchesterAdvance(ManchesterStart1, EventLongLow)
	assert.True(t, ok)
	assert.Equal(t, 1, bit)
	assert.Equal(t, ManchesterStart0, next)
}

func TestVWManchesterAdvanceShortTransition(t *testing.T) {
	next, bit, ok := VWManchesterAdvance(ManchesterStart0, EventShortHigh)
	assert.True(t, ok)
	assert.Equal(t, 0, bit)
	assert.Equal(t, ManchesterMid0, next)
}

func TestVWManchesterAdvanceRejectsUnexpectedEvent(t *testing.T) {
	// Start1 only resolves on ShortLow/LongLow; a high-level event there is
	// a framing error.
	next, _, ok := VWManchesterAdvance(ManchesterStart1, EventShortHigh)
	assert.False(t, ok)
	assert.Equal(t, ManchesterMid1, next)
}

func TestEmitManchesterBitEdges(t *testing.T) {
	one := EmitManchesterBit(1, 500)
	assert.True(t, one[0].Level)
	assert.False(t, one[1].Level)

	zero := EmitManchesterBit(0, 500)
	assert.False(t, zero[0].Level)
	assert.True(t, zero[1].Level)
}
