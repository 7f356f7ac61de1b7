package subghz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func newKiaV0EncoderFor(t *testing.T, serial uint32, button uint8, counter uint32) *KiaV0Encoder {
	t.Helper()
	store := NewMemStore()
	require.NoError(t, store.WriteUint32("Serial", []uint32{serial}))
	require.NoError(t, store.WriteUint32("Btn", []uint32{uint32(button)}))
	require.NoError(t, store.WriteUint32("Cnt", []uint32{counter}))

	enc := NewKiaV0Encoder()
	require.Equal(t, StatusOk, enc.Deserialize(store))
	return enc
}

func TestKiaV0EncoderAlternates(t *testing.T) {
	enc := newKiaV0EncoderFor(t, 0x0FFFFFFF, 0xA, 0xBEEF)
	edges := collectEdges(t, enc)
	require.NotEmpty(t, edges)
	assertAlternating(t, edges)
}

func TestKiaV0RoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		serial := uint32(rapid.IntRange(0, 0x0FFFFFFF).Draw(rt, "serial"))
		button := uint8(rapid.IntRange(0, 15).Draw(rt, "button"))
		counter := uint32(rapid.IntRange(0, 0xFFFF).Draw(rt, "counter"))

		enc := newKiaV0EncoderFor(t, serial, button, counter)
		edges := collectEdges(t, enc)

		dec := NewKiaV0Decoder()
		got := feedEdges(dec, edges)
		if len(got) != 1 {
			rt.Fatalf("expected exactly one decoded packet, got %d", len(got))
		}
		assert.Equal(rt, serial, got[0].Serial)
		assert.Equal(rt, button, got[0].Button)
		assert.Equal(rt, counter, got[0].Counter)
		assert.Equal(rt, uint16(61), got[0].BitCount)
	})
}

func TestKiaV0DeserializeRejectsMissingFields(t *testing.T) {
	store := NewMemStore()
	enc := NewKiaV0Encoder()
	assert.Equal(t, StatusErrorValue, enc.Deserialize(store))
}

func TestKiaV0SerializeDeserializeBitCount(t *testing.T) {
	dec := NewKiaV0Decoder()
	store := NewMemStore()
	assert.Equal(t, StatusOk, dec.Serialize(store, RadioPreset{Frequency: 433920000, Name: "AM650"}))

	var bit [1]uint32
	require.NoError(t, store.ReadUint32("Bit", bit[:]))
	assert.Equal(t, uint32(61), bit[0])

	assert.Equal(t, StatusOk, dec.Deserialize(store))
}
