package subghz

// Kia-V3/V4: 64-bit PWM payload protected by KeeLoq. The sync pulse's
// polarity discriminates the two sub-variants: a long-HIGH sync marks V4,
// a long-LOW sync marks V3 (whose payload is bit-inverted before decode).

var kiaV34Timing = TimingProfile{TEShort: 400, TELong: 800, TEDelta: 150}

const (
	kiaV34SyncMin        = 1000
	kiaV34SyncMax        = 1500
	kiaV34MinHeaderShort = 8
	kiaV34GapUs          = 1500
)

// KiaMasterKey is the manufacturer key used to validate a decoded Kia-V3/V4
// frame's KeeLoq payload. It is the only key this codec will ever validate
// against; there is no table of candidate keys here (that lives in the
// out-of-scope manufacturer-key collaborator named in spec §1).
const KiaMasterKey uint64 = 0xA8F5DFFC8DAA5CDB

type kiaV34DecoderStep int

const (
	kiaV34StepReset kiaV34DecoderStep = iota
	kiaV34StepCheckPreamble
	kiaV34StepCollectRawBits
)

// KiaV34Decoder implements Decoder for the Kia-V3/V4 protocol.
type KiaV34Decoder struct {
	block      DecoderBlock
	step       kiaV34DecoderStep
	headerHits int
	raw        ByteAccumulator
	isV3Sync   bool

	encrypted uint32
	decrypted uint32
	version   uint8
	serial    uint32
	button    uint8
	counter   uint32
	callback  func(Packet)
}

func NewKiaV34Decoder() *KiaV34Decoder {
	d := &KiaV34Decoder{}
	d.Reset()
	return d
}

func (d *KiaV34Decoder) SetCallback(cb func(Packet)) { d.callback = cb }

func (d *KiaV34Decoder) Reset() {
	d.block.Reset()
	d.step = kiaV34StepReset
	d.headerHits = 0
	d.raw.Reset()
	d.isV3Sync = false
	d.encrypted, d.decrypted, d.version = 0, 0, 0
	d.serial, d.button, d.counter = 0, 0, 0
}

func (d *KiaV34Decoder) Hash() byte {
	return Hash(d.raw.Bytes())
}

func (d *KiaV34Decoder) Feed(level bool, duration uint32) {
	tp := kiaV34Timing
	switch d.step {
	case kiaV34StepReset:
		if level && near(duration, tp.TEShort, tp.TEDelta) {
			d.step = kiaV34StepCheckPreamble
			d.block.TELast = duration
			d.headerHits = 1
		}

	case kiaV34StepCheckPreamble:
		if level {
			switch {
			case near(duration, tp.TEShort, tp.TEDelta):
				d.block.TELast = duration
			case duration > kiaV34SyncMin && duration < kiaV34SyncMax:
				if d.headerHits >= kiaV34MinHeaderShort {
					d.step = kiaV34StepCollectRawBits
					d.raw.Reset()
					d.isV3Sync = false
				} else {
					d.step = kiaV34StepReset
				}
			default:
				d.step = kiaV34StepReset
			}
			return
		}
		switch {
		case duration > kiaV34SyncMin && duration < kiaV34SyncMax:
			if d.headerHits >= kiaV34MinHeaderShort {
				d.step = kiaV34StepCollectRawBits
				d.raw.Reset()
				d.isV3Sync = true
			} else {
				d.step = kiaV34StepReset
			}
		case near(duration, tp.TEShort, tp.TEDelta) && near(d.block.TELast, tp.TEShort, tp.TEDelta):
			d.headerHits++
		case duration > kiaV34SyncMax:
			d.step = kiaV34StepReset
		}

	case kiaV34StepCollectRawBits:
		if level {
			if duration > kiaV34SyncMin && duration < kiaV34SyncMax {
				d.finish()
				d.step = kiaV34StepReset
				return
			}
			if bit, ok := ClassifyPWMBit(duration, tp, ShortIsZero); ok {
				d.raw.AddBit(bit)
			} else {
				d.step = kiaV34StepReset
			}
			return
		}
		switch {
		case duration > kiaV34SyncMin && duration < kiaV34SyncMax:
			d.finish()
			d.step = kiaV34StepReset
		case duration > kiaV34GapUs:
			d.finish()
			d.step = kiaV34StepReset
		}
	}
}

// finish processes the collected raw bits once framing ends, validating
// the KeeLoq-decrypted button/serial nibbles against the plaintext ones
// before invoking the callback. A validation failure drops the frame
// silently, per spec §7's recovery policy.
func (d *KiaV34Decoder) finish() {
	if d.raw.Count < 64 {
		return
	}
	b := make([]byte, 8)
	copy(b, d.raw.Buf[:8])
	if d.isV3Sync {
		for i := range b {
			b[i] = ^b[i]
		}
	}

	encrypted := uint32(reverse8(b[3]))<<24 | uint32(reverse8(b[2]))<<16 | uint32(reverse8(b[1]))<<8 | uint32(reverse8(b[0]))
	serial := uint32(reverse8(b[7]&0xF0))<<24 | uint32(reverse8(b[6]))<<16 | uint32(reverse8(b[5]))<<8 | uint32(reverse8(b[4]))
	button := (reverse8(b[7]) & 0xF0) >> 4
	serialLSB := byte(serial)

	decrypted := KeeloqDecrypt(encrypted, KiaMasterKey)
	decBtn := uint8(decrypted>>28) & 0x0F
	decSerialLSB := byte(decrypted >> 16)

	if decBtn != button || decSerialLSB != serialLSB {
		return
	}

	d.encrypted = encrypted
	d.decrypted = decrypted
	d.serial = serial
	d.button = button
	d.counter = decrypted & 0xFFFF
	if d.isV3Sync {
		d.version = 1
	} else {
		d.version = 0
	}

	var rawData uint64
	for i := 0; i < 8; i++ {
		rawData = rawData<<8 | uint64(b[i])
	}

	if d.callback != nil {
		d.callback(Packet{
			ProtocolName: "Kia-V3/V4",
			BitCount:     64,
			RawData:      rawData,
			Serial:       d.serial,
			Button:       d.button,
			Counter:      d.counter,
			Encrypted:    d.encrypted,
			Decrypted:    d.decrypted,
			Version:      d.version,
		})
	}
}

func (d *KiaV34Decoder) Serialize(store AttrStore, preset RadioPreset) Status {
	if err := store.WriteUint32("Bit", []uint32{64}); err != nil {
		return StatusErrorValue
	}
	_ = store.WriteUint32("Encrypted", []uint32{d.encrypted})
	_ = store.WriteUint32("Decrypted", []uint32{d.decrypted})
	_ = store.WriteUint32("Version", []uint32{uint32(d.version)})
	_ = store.WriteUint32("Serial", []uint32{d.serial})
	_ = store.WriteUint32("Btn", []uint32{uint32(d.button)})
	_ = store.WriteUint32("Cnt", []uint32{d.counter})
	_ = preset
	return StatusOk
}

func (d *KiaV34Decoder) Deserialize(store AttrStore) Status {
	var bit [1]uint32
	if err := store.ReadUint32("Bit", bit[:]); err != nil || bit[0] != 64 {
		return StatusErrorValueBitCount
	}
	return StatusOk
}

func (d *KiaV34Decoder) Format() string {
	name := "Kia V4"
	if d.version == 1 {
		name = "Kia V3"
	}
	return name + " 64bit\r\n" +
		"Sn:" + hex32(d.serial) + " " + ButtonName("Kia-V3/V4", d.button) + " Cnt:" + hex32(d.counter)
}

// KiaV34Encoder implements Encoder for the Kia-V3/V4 protocol.
type KiaV34Encoder struct {
	serial  uint32
	button  uint8
	counter uint32
	version uint8
	data    uint64

	started bool
	stopped bool
	cursor  int
}

func NewKiaV34Encoder() *KiaV34Encoder {
	return &KiaV34Encoder{}
}

func (e *KiaV34Encoder) Deserialize(store AttrStore) Status {
	var serial, btn, cnt, version [1]uint32
	if err := store.ReadUint32("Serial", serial[:]); err != nil {
		return StatusErrorValue
	}
	if err := store.ReadUint32("Btn", btn[:]); err != nil {
		return StatusErrorValue
	}
	if err := store.ReadUint32("Cnt", cnt[:]); err != nil {
		return StatusErrorValue
	}
	_ = store.ReadUint32("Version", version[:])
	e.serial = serial[0]
	e.button = uint8(btn[0])
	e.counter = cnt[0]
	e.version = uint8(version[0])
	e.data = encodeKiaV34(e.serial, e.button, uint16(e.counter), e.version)
	e.started = false
	e.stopped = false
	e.cursor = 0
	return StatusOk
}

// encodeKiaV34 is the inverse of KiaV34Decoder.finish: it KeeLoq-encrypts
// the plaintext block, bit-reverses each byte into place, and (for V3)
// inverts the whole byte string.
func encodeKiaV34(serial uint32, button uint8, counter uint16, version uint8) uint64 {
	decrypted := uint32(button&0x0F)<<28 | (serial&0xFF)<<16 | uint32(counter)
	encrypted := KeeloqEncrypt(decrypted, KiaMasterKey)

	var b [8]byte
	b[0] = reverse8(byte(encrypted))
	b[1] = reverse8(byte(encrypted >> 8))
	b[2] = reverse8(byte(encrypted >> 16))
	b[3] = reverse8(byte(encrypted >> 24))
	b[4] = reverse8(byte(serial))
	b[5] = reverse8(byte(serial >> 8))
	b[6] = reverse8(byte(serial >> 16))
	b[7] = reverse8((byte(serial>>24) & 0x0F) | (button << 4))

	if version == 1 {
		for i := range b {
			b[i] = ^b[i]
		}
	}

	var data uint64
	for i := 0; i < 8; i++ {
		data = data<<8 | uint64(b[i])
	}
	return data
}

func (e *KiaV34Encoder) Stop() { e.stopped = true }

// Yield produces: 16 preamble edges (8 short-high/short-low pairs), a
// version-polarity sync pair (long-high+short-low for V4, short-high+
// long-low for V3), then 64 PWM bit pairs; the last bit's low is a gap
// longer than kiaV34GapUs, which ends the frame on the decoder side.
func (e *KiaV34Encoder) Yield() (EdgeEvent, bool) {
	if e.stopped {
		return EdgeEvent{}, false
	}
	if !e.started {
		e.started = true
		e.cursor = 0
	}

	tp := kiaV34Timing
	const preambleEdges = 16

	if e.cursor < preambleEdges {
		idx := e.cursor
		e.cursor++
		if idx%2 == 0 {
			return EdgeEvent{Level: true, DurationUs: tp.TEShort}, true
		}
		return EdgeEvent{Level: false, DurationUs: tp.TEShort}, true
	}

	if e.cursor == preambleEdges {
		e.cursor++
		if e.version == 1 {
			return EdgeEvent{Level: true, DurationUs: tp.TEShort}, true
		}
		return EdgeEvent{Level: true, DurationUs: kiaV34SyncMax - 100}, true
	}
	if e.cursor == preambleEdges+1 {
		e.cursor++
		if e.version == 1 {
			return EdgeEvent{Level: false, DurationUs: kiaV34SyncMax - 100}, true
		}
		return EdgeEvent{Level: false, DurationUs: tp.TEShort}, true
	}

	bitOffset := e.cursor - (preambleEdges + 2)
	if bitOffset < 2*64 {
		bitIndex := bitOffset / 2
		first := bitOffset%2 == 0
		e.cursor++

		if first {
			bit := int((e.data >> uint(63-bitIndex)) & 1)
			return EdgeEvent{Level: true, DurationUs: EmitPWMBit(bit, tp, ShortIsZero)}, true
		}
		if bitIndex == 63 {
			return EdgeEvent{Level: false, DurationUs: kiaV34GapUs + 500}, true
		}
		return EdgeEvent{Level: false, DurationUs: tp.TEShort}, true
	}

	e.stopped = true
	return EdgeEvent{}, false
}
