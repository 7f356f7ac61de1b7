package subghz

// Suzuki: 64-bit PWM payload with a fixed 0xF manufacturer nibble gating
// acceptance. The CRC byte riding in the payload is never recomputed by
// the encoder — see encodeSuzuki below, a deliberately preserved quirk.

var suzukiTiming = TimingProfile{TEShort: 250, TELong: 500, TEDelta: 100}

const (
	suzukiGapTime          = 2000
	suzukiGapDelta         = 400
	suzukiMinHeaderPulses  = 100
	suzukiManufacturerMask = 0xF
)

type suzukiDecoderStep int

const (
	suzukiStepReset suzukiDecoderStep = iota
	suzukiStepFoundStartPulse
	suzukiStepSaveDuration
)

// SuzukiDecoder implements Decoder for the Suzuki protocol.
type SuzukiDecoder struct {
	step        suzukiDecoderStep
	teLast      uint32
	headerCount int
	data        uint64
	bitCount    int

	serial   uint32
	button   uint8
	counter  uint32
	crc      uint8
	callback func(Packet)
}

func NewSuzukiDecoder() *SuzukiDecoder {
	d := &SuzukiDecoder{}
	d.Reset()
	return d
}

func (d *SuzukiDecoder) SetCallback(cb func(Packet)) { d.callback = cb }

func (d *SuzukiDecoder) Reset() {
	d.step = suzukiStepReset
	d.headerCount = 0
	d.data = 0
	d.bitCount = 0
	d.serial, d.button, d.counter, d.crc = 0, 0, 0, 0
}

func (d *SuzukiDecoder) Hash() byte {
	buf := make([]byte, 8)
	for i := 0; i < 8; i++ {
		buf[i] = byte(d.data >> (56 - 8*i))
	}
	return Hash(buf)
}

func (d *SuzukiDecoder) addBit(bit uint64) {
	d.data = (d.data << 1) | bit
	d.bitCount++
}

func (d *SuzukiDecoder) Feed(level bool, duration uint32) {
	tp := suzukiTiming
	switch d.step {
	case suzukiStepReset:
		if !level {
			return
		}
		if !near(duration, tp.TEShort, tp.TEDelta) {
			return
		}
		d.data = 0
		d.bitCount = 0
		d.step = suzukiStepFoundStartPulse
		d.headerCount = 0

	case suzukiStepFoundStartPulse:
		if level {
			if d.headerCount < suzukiMinHeaderPulses {
				return
			}
			if near(duration, tp.TELong, tp.TEDelta) {
				d.step = suzukiStepSaveDuration
				d.addBit(1)
			}
			return
		}
		if near(duration, tp.TEShort, tp.TEDelta) {
			d.teLast = duration
			d.headerCount++
		} else {
			d.step = suzukiStepReset
		}

	case suzukiStepSaveDuration:
		if level {
			if bit, ok := ClassifyPWMBit(duration, tp, ShortIsZero); ok {
				d.addBit(uint64(bit))
			} else {
				d.step = suzukiStepReset
			}
			return
		}
		if duration > suzukiGapTime-suzukiGapDelta && duration < suzukiGapTime+suzukiGapDelta {
			d.finish()
			d.step = suzukiStepReset
		}
	}
}

// finish extracts the fixed fields and gates acceptance on the
// manufacturer nibble — there is no CRC check here, matching the
// original decoder (only the manufacturer nibble gates the callback).
func (d *SuzukiDecoder) finish() {
	if d.bitCount != 64 {
		return
	}
	manufacturer := uint8(d.data>>60) & 0xF
	if manufacturer != suzukiManufacturerMask {
		return
	}

	serialButton := uint32(d.data >> 12)
	d.serial = serialButton >> 4
	d.button = uint8(serialButton & 0xF)
	d.counter = uint32(d.data>>44) & 0xFFFF
	d.crc = uint8(d.data>>4) & 0xFF

	if d.callback != nil {
		d.callback(Packet{
			ProtocolName: "Suzuki",
			BitCount:     64,
			RawData:      d.data,
			Serial:       d.serial,
			Button:       d.button,
			Counter:      d.counter,
			CRC:          d.crc,
		})
	}
}

func (d *SuzukiDecoder) Serialize(store AttrStore, preset RadioPreset) Status {
	if err := store.WriteUint32("Bit", []uint32{64}); err != nil {
		return StatusErrorValue
	}
	_ = store.WriteUint32("CRC", []uint32{uint32(d.crc)})
	_ = store.WriteUint32("Serial", []uint32{d.serial})
	_ = store.WriteUint32("Btn", []uint32{uint32(d.button)})
	_ = store.WriteUint32("Cnt", []uint32{d.counter})
	_ = preset
	return StatusOk
}

func (d *SuzukiDecoder) Deserialize(store AttrStore) Status {
	var bit [1]uint32
	if err := store.ReadUint32("Bit", bit[:]); err != nil || bit[0] != 64 {
		return StatusErrorValueBitCount
	}
	return StatusOk
}

func (d *SuzukiDecoder) Format() string {
	return "Suzuki 64bit\r\n" +
		"Sn:" + hex32(d.serial) + " " + ButtonName("Suzuki", d.button) +
		" Cnt:" + hex32(d.counter) + " CRC:" + hex32(uint32(d.crc))
}

// SuzukiEncoder implements Encoder for the Suzuki protocol.
type SuzukiEncoder struct {
	serial  uint32
	button  uint8
	counter uint32
	crc     uint8
	data    uint64

	started bool
	stopped bool
	cursor  int
}

func NewSuzukiEncoder() *SuzukiEncoder {
	return &SuzukiEncoder{}
}

func (e *SuzukiEncoder) Deserialize(store AttrStore) Status {
	var serial, btn, cnt, crc [1]uint32
	if err := store.ReadUint32("Serial", serial[:]); err != nil {
		return StatusErrorValue
	}
	if err := store.ReadUint32("Btn", btn[:]); err != nil {
		return StatusErrorValue
	}
	if err := store.ReadUint32("Cnt", cnt[:]); err != nil {
		return StatusErrorValue
	}
	_ = store.ReadUint32("CRC", crc[:])
	e.serial = serial[0]
	e.button = uint8(btn[0])
	e.counter = cnt[0]
	e.crc = uint8(crc[0])
	e.data = encodeSuzuki(e.serial, e.button, e.counter, e.crc)
	e.started = false
	e.stopped = false
	e.cursor = 0
	return StatusOk
}

// encodeSuzuki packs the payload exactly like the original encoder: the
// CRC byte is carried through verbatim, never recomputed from the other
// fields. A caller wanting a valid CRC must supply one already.
func encodeSuzuki(serial uint32, button uint8, counter uint32, crc uint8) uint64 {
	serialButton := (uint64(serial) << 4) | uint64(button&0xF)
	return (uint64(0xF) << 60) | (uint64(counter&0xFFFF) << 44) | (serialButton << 12) | (uint64(crc) << 4)
}

func (e *SuzukiEncoder) Stop() { e.stopped = true }

// Yield produces: 256 preamble edges (128 short-high/short-low pairs),
// then 64 PWM bit pairs (long-high=1/short-high=0 + short-low recovery; the
// last bit's low is the suzukiGapTime end gap instead).
// The first data bit doubles as the decoder's "found start pulse" signal.
func (e *SuzukiEncoder) Yield() (EdgeEvent, bool) {
	if e.stopped {
		return EdgeEvent{}, false
	}
	if !e.started {
		e.started = true
		e.cursor = 0
	}

	tp := suzukiTiming
	const preambleEdges = 256

	if e.cursor < preambleEdges {
		idx := e.cursor
		e.cursor++
		if idx%2 == 0 {
			return EdgeEvent{Level: true, DurationUs: tp.TEShort}, true
		}
		return EdgeEvent{Level: false, DurationUs: tp.TEShort}, true
	}

	bitOffset := e.cursor - preambleEdges
	if bitOffset < 2*64 {
		bitIndex := bitOffset / 2
		first := bitOffset%2 == 0
		e.cursor++

		if first {
			bit := int((e.data >> uint(63-bitIndex)) & 1)
			return EdgeEvent{Level: true, DurationUs: EmitPWMBit(bit, tp, ShortIsZero)}, true
		}
		if bitIndex == 63 {
			e.stopped = true
			return EdgeEvent{Level: false, DurationUs: suzukiGapTime}, true
		}
		return EdgeEvent{Level: false, DurationUs: tp.TEShort}, true
	}

	e.stopped = true
	return EdgeEvent{}, false
}
