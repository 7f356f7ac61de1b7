package subghz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func newVWEncoderFor(t *testing.T, typ, check uint8, key uint64) *VWEncoder {
	t.Helper()
	store := NewMemStore()
	require.NoError(t, store.WriteUint32("Type", []uint32{uint32(typ)}))
	require.NoError(t, store.WriteUint32("Check", []uint32{uint32(check)}))
	buf := make([]byte, 8)
	for i := 0; i < 8; i++ {
		buf[i] = byte(key >> (56 - 8*i))
	}
	require.NoError(t, store.WriteHex("Key", buf))

	enc := NewVWEncoder()
	require.Equal(t, StatusOk, enc.Deserialize(store))
	return enc
}

func TestVWEncoderAlternates(t *testing.T) {
	enc := newVWEncoderFor(t, 0x12, 0x53, 0x0123456789ABCDEF)
	edges := collectEdges(t, enc)
	require.NotEmpty(t, edges)
	assertAlternating(t, edges)
}

func TestVWRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		typ := uint8(rapid.IntRange(0, 255).Draw(rt, "type"))
		button := uint8(rapid.IntRange(0, 15).Draw(rt, "button"))
		checkLow := uint8(rapid.IntRange(0, 15).Draw(rt, "checkLow"))
		check := button<<4 | checkLow
		key := uint64(rapid.Uint64().Draw(rt, "key"))

		enc := newVWEncoderFor(t, typ, check, key)
		edges := collectEdges(t, enc)

		dec := NewVWDecoder()
		got := feedEdges(dec, edges)
		if len(got) != 1 {
			rt.Fatalf("expected exactly one decoded packet, got %d", len(got))
		}
		assert.Equal(rt, typ, got[0].Type)
		assert.Equal(rt, check, got[0].Check)
		assert.Equal(rt, button, got[0].Button)
		assert.Equal(rt, key, got[0].RawData)
	})
}

func TestVWBitIndexCoversAllPositions(t *testing.T) {
	seenMain := make(map[uint8]bool)
	seenSide := make(map[uint8]bool)
	for bit := uint8(0); bit < vwBitCount; bit++ {
		masked := vwBitIndex(bit)
		idx := masked & 0x7F
		if masked&0x80 != 0 {
			assert.False(t, seenSide[idx], "data_2 slot %d reused by bit %d", idx, bit)
			seenSide[idx] = true
			assert.Less(t, idx, uint8(16))
		} else {
			assert.False(t, seenMain[idx], "data slot %d reused by bit %d", idx, bit)
			seenMain[idx] = true
			assert.Less(t, idx, uint8(64))
		}
	}
	assert.Len(t, seenMain, 64)
	assert.Len(t, seenSide, 16)
}
