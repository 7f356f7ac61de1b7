package subghz

// Kia-V0: 61-bit PWM payload preceded by a short-pulse preamble (>=16
// short/short pairs) and a long/long sync pair. The first data bit is
// never transmitted; the sync pair stands in for it.

var kiaV0Timing = TimingProfile{TEShort: 250, TELong: 500, TEDelta: 100}

const kiaV0MinHeaderPulses = 15

type kiaV0DecoderStep int

const (
	kiaV0StepReset kiaV0DecoderStep = iota
	kiaV0StepCheckPreamble
	kiaV0StepSaveDuration
	kiaV0StepCheckDuration
)

// KiaV0Decoder implements Decoder for the Kia-V0 protocol.
type KiaV0Decoder struct {
	block    DecoderBlock
	step     kiaV0DecoderStep
	acc      uint64
	bitCount int
	serial   uint32
	button   uint8
	counter  uint32
	callback func(Packet)
}

func NewKiaV0Decoder() *KiaV0Decoder {
	d := &KiaV0Decoder{}
	d.Reset()
	return d
}

func (d *KiaV0Decoder) SetCallback(cb func(Packet)) { d.callback = cb }

func (d *KiaV0Decoder) Reset() {
	d.block.Reset()
	d.step = kiaV0StepReset
	d.acc = 0
	d.bitCount = 0
	d.serial, d.button, d.counter = 0, 0, 0
}

func (d *KiaV0Decoder) Hash() byte {
	buf := make([]byte, 8)
	for i := 0; i < 8; i++ {
		buf[i] = byte(d.acc >> (56 - 8*i))
	}
	return Hash(buf)
}

func (d *KiaV0Decoder) Feed(level bool, duration uint32) {
	tp := kiaV0Timing
	switch d.step {
	case kiaV0StepReset:
		if level && near(duration, tp.TEShort, tp.TEDelta) {
			d.step = kiaV0StepCheckPreamble
			d.block.TELast = duration
			d.block.HeaderHits = 0
		}

	case kiaV0StepCheckPreamble:
		if level {
			if near(duration, tp.TEShort, tp.TEDelta) || near(duration, tp.TELong, tp.TEDelta) {
				d.block.TELast = duration
			} else {
				d.step = kiaV0StepReset
			}
			return
		}
		switch {
		case near(duration, tp.TEShort, tp.TEDelta) && near(d.block.TELast, tp.TEShort, tp.TEDelta):
			d.block.HeaderHits++
		case near(duration, tp.TELong, tp.TEDelta) && near(d.block.TELast, tp.TELong, tp.TEDelta):
			if d.block.HeaderHits > kiaV0MinHeaderPulses {
				d.step = kiaV0StepSaveDuration
				d.acc = 1
				d.bitCount = 1
			} else {
				d.step = kiaV0StepReset
			}
		default:
			d.step = kiaV0StepReset
		}

	case kiaV0StepSaveDuration:
		if !level {
			d.step = kiaV0StepReset
			return
		}
		if duration >= tp.TELong+2*tp.TEDelta {
			if d.bitCount == 61 {
				d.serial = uint32(d.acc>>12) & 0x0FFFFFFF
				d.button = uint8(d.acc>>8) & 0x0F
				d.counter = uint32(d.acc>>40) & 0xFFFF
				if d.callback != nil {
					d.callback(Packet{
						ProtocolName: "Kia-V0",
						BitCount:     61,
						RawData:      d.acc,
						Serial:       d.serial,
						Button:       d.button,
						Counter:      d.counter,
					})
				}
			}
			d.step = kiaV0StepReset
			d.acc = 0
			d.bitCount = 0
			return
		}
		d.block.TELast = duration
		d.step = kiaV0StepCheckDuration

	case kiaV0StepCheckDuration:
		if level {
			d.step = kiaV0StepReset
			return
		}
		switch {
		case near(d.block.TELast, tp.TEShort, tp.TEDelta) && near(duration, tp.TEShort, tp.TEDelta):
			d.acc = (d.acc << 1) | 0
			d.bitCount++
			d.step = kiaV0StepSaveDuration
		case near(d.block.TELast, tp.TELong, tp.TEDelta) && near(duration, tp.TELong, tp.TEDelta):
			d.acc = (d.acc << 1) | 1
			d.bitCount++
			d.step = kiaV0StepSaveDuration
		default:
			d.step = kiaV0StepReset
		}
	}
}

func (d *KiaV0Decoder) Serialize(store AttrStore, preset RadioPreset) Status {
	if err := store.WriteUint32("Bit", []uint32{61}); err != nil {
		return StatusErrorValue
	}
	_ = store.WriteUint32("Frequency", []uint32{preset.Frequency})
	_ = store.WriteString("Preset", preset.Name)
	_ = store.WriteString("Protocol", "Kia-V0")
	buf := make([]byte, 8)
	for i := 0; i < 8; i++ {
		buf[i] = byte(d.acc >> (56 - 8*i))
	}
	_ = store.WriteHex("Key", buf)
	_ = store.WriteUint32("Serial", []uint32{d.serial})
	_ = store.WriteUint32("Btn", []uint32{uint32(d.button)})
	_ = store.WriteUint32("Cnt", []uint32{d.counter})
	return StatusOk
}

func (d *KiaV0Decoder) Deserialize(store AttrStore) Status {
	var bit [1]uint32
	if err := store.ReadUint32("Bit", bit[:]); err != nil || bit[0] != 61 {
		return StatusErrorValueBitCount
	}
	return StatusOk
}

func (d *KiaV0Decoder) Format() string {
	return "Kia-V0 61bit\r\n" +
		"Sn:" + hex32(d.serial) + " " + ButtonName("Kia-V0", d.button) + " Cnt:" + hex32(d.counter)
}

// KiaV0Encoder implements Encoder for the Kia-V0 protocol.
type KiaV0Encoder struct {
	serial  uint32
	button  uint8
	counter uint32
	data    uint64

	started bool
	stopped bool
	cursor  int
}

func NewKiaV0Encoder() *KiaV0Encoder {
	return &KiaV0Encoder{}
}

func (e *KiaV0Encoder) Deserialize(store AttrStore) Status {
	var serial, btn, cnt [1]uint32
	if err := store.ReadUint32("Serial", serial[:]); err != nil {
		return StatusErrorValue
	}
	if err := store.ReadUint32("Btn", btn[:]); err != nil {
		return StatusErrorValue
	}
	if err := store.ReadUint32("Cnt", cnt[:]); err != nil {
		return StatusErrorValue
	}
	e.serial = serial[0]
	e.button = uint8(btn[0])
	e.counter = cnt[0]
	e.data = (uint64(e.serial&0x0FFFFFFF) << 12) | (uint64(e.button&0x0F) << 8) | (uint64(e.counter&0xFFFF) << 40)
	e.started = false
	e.stopped = false
	e.cursor = 0
	return StatusOk
}

func (e *KiaV0Encoder) Stop() { e.stopped = true }

// Yield produces: 32 preamble edges (16 short/short pairs), 2 sync edges
// (long-high, long-low), then 60 data bit-pairs — (short,short)=0,
// (long,long)=1 — and a final over-long high pulse that signals
// completion to the decoder's SaveDuration check.
func (e *KiaV0Encoder) Yield() (EdgeEvent, bool) {
	if e.stopped {
		return EdgeEvent{}, false
	}
	if !e.started {
		e.started = true
		e.cursor = 0
	}

	tp := kiaV0Timing
	const preambleEdges = 32

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
		return EdgeEvent{Level: true, DurationUs: tp.TELong}, true
	}
	if e.cursor == preambleEdges+1 {
		e.cursor++
		return EdgeEvent{Level: false, DurationUs: tp.TELong}, true
	}

	// 60 bit-pairs follow the sync; the 61st (top, implicit) bit is never
	// put on the air — the sync pair alone seeds it on the decoder side.
	bitOffset := e.cursor - (preambleEdges + 2)
	if bitOffset < 2*60 {
		bitIndex := bitOffset / 2
		first := bitOffset%2 == 0
		e.cursor++

		bit := (e.data >> uint(59-bitIndex)) & 1
		dur := tp.TEShort
		if bit != 0 {
			dur = tp.TELong
		}
		return EdgeEvent{Level: first, DurationUs: dur}, true
	}

	if bitOffset == 2*60 {
		e.cursor++
		e.stopped = true
		return EdgeEvent{Level: true, DurationUs: tp.TELong + 2*tp.TEDelta + 100}, true
	}

	e.stopped = true
	return EdgeEvent{}, false
}
