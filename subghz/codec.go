package subghz

// ProtocolFlags is the capability bitset a codec publishes through its
// Protocol descriptor.
type ProtocolFlags uint16

const (
	FlagBand315 ProtocolFlags = 1 << iota
	FlagBand433
	FlagAM
	FlagFM
	FlagDecodable
	FlagSave
	FlagSend
)

// Decoder is the uniform decoder contract every protocol codec implements.
// Feed is called once per edge event; a successfully decoded frame invokes
// the callback exactly once before Feed returns.
type Decoder interface {
	Reset()
	Feed(level bool, durationUs uint32)
	Hash() byte
	Serialize(store AttrStore, preset RadioPreset) Status
	Deserialize(store AttrStore) Status
	Format() string
	SetCallback(cb func(Packet))
}

// Encoder is the uniform encoder contract every protocol codec implements.
// Yield is polled repeatedly; ok is false once the encoder has emitted its
// trailing edge and fully drained.
type Encoder interface {
	Deserialize(store AttrStore) Status
	Stop()
	Yield() (event EdgeEvent, ok bool)
}

// Protocol ties a name, capability flags, and decoder/encoder constructors
// together for registry lookup.
type Protocol struct {
	Name       string
	Flags      ProtocolFlags
	NewDecoder func() Decoder
	NewEncoder func() Encoder
}
