package subghz

// Subaru: 64-bit PWM payload whose 16-bit rolling counter is scrambled
// into the serial-carrying bytes via a rotating 24-bit shift register,
// rather than sitting in its own field.

var subaruTiming = TimingProfile{TEShort: 800, TELong: 1600, TEDelta: 250}

const (
	subaruGapMin    = 2000
	subaruGapMax    = 3500
	subaruHeaderMin = 20
	subaruEndUs     = 3000
)

type subaruDecoderStep int

const (
	subaruStepReset subaruDecoderStep = iota
	subaruStepCheckPreamble
	subaruStepFoundGap
	subaruStepFoundSync
	subaruStepSaveDuration
	subaruStepCheckDuration
)

// SubaruDecoder implements Decoder for the Subaru protocol.
type SubaruDecoder struct {
	block      DecoderBlock
	step       subaruDecoderStep
	headerHits int
	data       ByteAccumulator

	key      uint64
	serial   uint32
	button   uint8
	counter  uint16
	callback func(Packet)
}

func NewSubaruDecoder() *SubaruDecoder {
	d := &SubaruDecoder{}
	d.Reset()
	return d
}

func (d *SubaruDecoder) SetCallback(cb func(Packet)) { d.callback = cb }

func (d *SubaruDecoder) Reset() {
	d.block.Reset()
	d.step = subaruStepReset
	d.headerHits = 0
	d.data.Reset()
	d.key, d.serial, d.button, d.counter = 0, 0, 0, 0
}

func (d *SubaruDecoder) Hash() byte { return Hash(d.data.Bytes()) }

func (d *SubaruDecoder) Feed(level bool, duration uint32) {
	tp := subaruTiming
	switch d.step {
	case subaruStepReset:
		if level && near(duration, tp.TELong, tp.TEDelta) {
			d.step = subaruStepCheckPreamble
			d.block.TELast = duration
			d.headerHits = 1
		}

	case subaruStepCheckPreamble:
		if !level {
			switch {
			case near(duration, tp.TELong, tp.TEDelta):
				d.headerHits++
			case duration > subaruGapMin && duration < subaruGapMax:
				if d.headerHits > subaruHeaderMin {
					d.step = subaruStepFoundGap
				} else {
					d.step = subaruStepReset
				}
			default:
				d.step = subaruStepReset
			}
			return
		}
		if near(duration, tp.TELong, tp.TEDelta) {
			d.block.TELast = duration
			d.headerHits++
		} else {
			d.step = subaruStepReset
		}

	case subaruStepFoundGap:
		if level && duration > subaruGapMin && duration < subaruGapMax {
			d.step = subaruStepFoundSync
		} else {
			d.step = subaruStepReset
		}

	case subaruStepFoundSync:
		if !level && near(duration, tp.TELong, tp.TEDelta) {
			d.step = subaruStepSaveDuration
			d.data.Reset()
		} else {
			d.step = subaruStepReset
		}

	case subaruStepSaveDuration:
		if !level {
			d.step = subaruStepReset
			return
		}
		if bit, ok := ClassifyPWMBit(duration, tp, LongIsZero); ok {
			d.data.AddBit(bit)
			d.block.TELast = duration
			d.step = subaruStepCheckDuration
		} else if duration > subaruEndUs {
			d.finish()
			d.step = subaruStepReset
		} else {
			d.step = subaruStepReset
		}

	case subaruStepCheckDuration:
		if level {
			d.step = subaruStepReset
			return
		}
		switch {
		case near(duration, tp.TEShort, tp.TEDelta), near(duration, tp.TELong, tp.TEDelta):
			d.step = subaruStepSaveDuration
		case duration > subaruEndUs:
			d.finish()
			d.step = subaruStepReset
		default:
			d.step = subaruStepReset
		}
	}
}

func (d *SubaruDecoder) finish() {
	if d.data.Count < 64 {
		return
	}
	b := d.data.Buf[:8]

	var key uint64
	for i := 0; i < 8; i++ {
		key = key<<8 | uint64(b[i])
	}

	d.key = key
	d.serial = uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	d.button = b[0] & 0x0F
	d.counter = subaruDecodeCount(b)

	if d.callback != nil {
		d.callback(Packet{
			ProtocolName: "Subaru",
			BitCount:     64,
			RawData:      d.key,
			Serial:       d.serial,
			Button:       d.button,
			Counter:      uint32(d.counter),
		})
	}
}

// subaruDecodeCount recovers the 16-bit rolling counter from the rotating
// 24-bit shift register formed by b[1..3], descrambled against two 8-bit
// registers built from nibbles of b[5..7].
func subaruDecodeCount(b []byte) uint16 {
	var lo byte
	if b[4]&0x40 == 0 {
		lo |= 0x01
	}
	if b[4]&0x80 == 0 {
		lo |= 0x02
	}
	if b[5]&0x01 == 0 {
		lo |= 0x04
	}
	if b[5]&0x02 == 0 {
		lo |= 0x08
	}
	if b[6]&0x01 == 0 {
		lo |= 0x10
	}
	if b[6]&0x02 == 0 {
		lo |= 0x20
	}
	if b[5]&0x40 == 0 {
		lo |= 0x40
	}
	if b[5]&0x80 == 0 {
		lo |= 0x80
	}

	regSH1 := (b[7] << 4) & 0xF0
	if b[5]&0x04 != 0 {
		regSH1 |= 0x04
	}
	if b[5]&0x08 != 0 {
		regSH1 |= 0x08
	}
	if b[6]&0x80 != 0 {
		regSH1 |= 0x02
	}
	if b[6]&0x40 != 0 {
		regSH1 |= 0x01
	}
	regSH2 := ((b[6] << 2) & 0xF0) | ((b[7] >> 4) & 0x0F)

	ser0, ser1, ser2 := b[3], b[1], b[2]
	rot := 4 + lo
	for i := byte(0); i < rot; i++ {
		tBit := (ser0 >> 7) & 1
		ser0 = ((ser0 << 1) & 0xFE) | ((ser1 >> 7) & 1)
		ser1 = ((ser1 << 1) & 0xFE) | ((ser2 >> 7) & 1)
		ser2 = ((ser2 << 1) & 0xFE) | tBit
	}

	t1 := ser1 ^ regSH1
	t2 := ser2 ^ regSH2

	var hi byte
	if t1&0x10 == 0 {
		hi |= 0x04
	}
	if t1&0x20 == 0 {
		hi |= 0x08
	}
	if t2&0x80 == 0 {
		hi |= 0x02
	}
	if t2&0x40 == 0 {
		hi |= 0x01
	}
	if t1&0x01 == 0 {
		hi |= 0x40
	}
	if t1&0x02 == 0 {
		hi |= 0x80
	}
	if t2&0x08 == 0 {
		hi |= 0x20
	}
	if t2&0x04 == 0 {
		hi |= 0x10
	}

	return uint16(hi)<<8 | uint16(lo)
}

// subaruEncodeFields is the inverse of subaruDecodeCount plus the
// serial/button packing: it derives the 8 payload bytes that decode back
// to the given serial/button/counter.
func subaruEncodeFields(serial uint32, button uint8, counter uint16) [8]byte {
	var b [8]byte
	b[0] = button & 0x0F
	b[1] = byte(serial >> 16)
	b[2] = byte(serial >> 8)
	b[3] = byte(serial)

	hi := byte(counter >> 8)
	lo := byte(counter)

	ser0, ser1, ser2 := byte(serial), byte(serial>>16), byte(serial>>8)
	// Same left rotation as subaruDecodeCount, so T1/T2 are XORed against
	// the same SER bytes the decoder will see.
	rot := 4 + lo
	for i := byte(0); i < rot; i++ {
		tBit := (ser0 >> 7) & 1
		ser0 = ((ser0 << 1) & 0xFE) | ((ser1 >> 7) & 1)
		ser1 = ((ser1 << 1) & 0xFE) | ((ser2 >> 7) & 1)
		ser2 = ((ser2 << 1) & 0xFE) | tBit
	}

	var t1, t2 byte
	if hi&0x04 == 0 {
		t1 |= 0x10
	}
	if hi&0x08 == 0 {
		t1 |= 0x20
	}
	if hi&0x02 == 0 {
		t2 |= 0x80
	}
	if hi&0x01 == 0 {
		t2 |= 0x40
	}
	if hi&0x40 == 0 {
		t1 |= 0x01
	}
	if hi&0x80 == 0 {
		t1 |= 0x02
	}
	if hi&0x20 == 0 {
		t2 |= 0x08
	}
	if hi&0x10 == 0 {
		t2 |= 0x04
	}

	regSH1 := t1 ^ ser1
	regSH2 := t2 ^ ser2

	b[7] = ((regSH1 & 0xF0) >> 4) | ((regSH2 & 0x0F) << 4)
	b[5] = 0
	if regSH1>>2&1 != 0 {
		b[5] |= 0x04
	}
	if regSH1>>3&1 != 0 {
		b[5] |= 0x08
	}
	b[6] = 0
	if regSH1>>1&1 != 0 {
		b[6] |= 0x80
	}
	if regSH1&1 != 0 {
		b[6] |= 0x40
	}
	b[6] |= (regSH2 & 0xF0) >> 2

	b[4] = 0
	if lo&0x01 == 0 {
		b[4] |= 0x40
	}
	if lo&0x02 == 0 {
		b[4] |= 0x80
	}
	if lo&0x04 == 0 {
		b[5] |= 0x01
	}
	if lo&0x08 == 0 {
		b[5] |= 0x02
	}
	if lo&0x10 == 0 {
		b[6] |= 0x01
	}
	if lo&0x20 == 0 {
		b[6] |= 0x02
	}
	if lo&0x40 == 0 {
		b[5] |= 0x40
	}
	if lo&0x80 == 0 {
		b[5] |= 0x80
	}

	return b
}

func (d *SubaruDecoder) Serialize(store AttrStore, preset RadioPreset) Status {
	if err := store.WriteUint32("Bit", []uint32{64}); err != nil {
		return StatusErrorValue
	}
	_ = store.WriteUint32("Serial", []uint32{d.serial})
	_ = store.WriteUint32("Btn", []uint32{uint32(d.button)})
	_ = store.WriteUint32("Cnt", []uint32{uint32(d.counter)})
	_ = store.WriteUint32("DataHi", []uint32{uint32(d.key >> 32)})
	_ = store.WriteUint32("DataLo", []uint32{uint32(d.key)})
	_ = preset
	return StatusOk
}

func (d *SubaruDecoder) Deserialize(store AttrStore) Status {
	var bit [1]uint32
	if err := store.ReadUint32("Bit", bit[:]); err != nil || bit[0] != 64 {
		return StatusErrorValueBitCount
	}
	return StatusOk
}

func (d *SubaruDecoder) Format() string {
	return "Subaru 64bit\r\n" +
		"Sn:" + hex32(d.serial) + " " + ButtonName("Subaru", d.button) + " Cnt:" + hex32(uint32(d.counter))
}

// SubaruEncoder implements Encoder for the Subaru protocol.
type SubaruEncoder struct {
	serial  uint32
	button  uint8
	counter uint16
	data    [8]byte

	started bool
	stopped bool
	cursor  int
}

func NewSubaruEncoder() *SubaruEncoder {
	return &SubaruEncoder{}
}

func (e *SubaruEncoder) Deserialize(store AttrStore) Status {
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
	e.counter = uint16(cnt[0])
	e.data = subaruEncodeFields(e.serial, e.button, e.counter)
	e.started = false
	e.stopped = false
	e.cursor = 0
	return StatusOk
}

func (e *SubaruEncoder) Stop() { e.stopped = true }

// Yield produces: 25 long-high/long-low preamble pairs plus one extra long
// high edge (51 edges, ending high so the following low can be read as the
// gap), a low/high 2750us gap pair, a long-low sync, 64 PWM bit pairs
// (short-high=1/long-high=0 + short-low recovery), and a terminating
// over-long high pulse that the decoder reads as end-of-frame.
func (e *SubaruEncoder) Yield() (EdgeEvent, bool) {
	if e.stopped {
		return EdgeEvent{}, false
	}
	if !e.started {
		e.started = true
		e.cursor = 0
	}

	tp := subaruTiming
	const preamblePairs = 25
	const preambleEdges = preamblePairs*2 + 1 // extra high to end on a high edge

	if e.cursor < preamblePairs*2 {
		idx := e.cursor
		e.cursor++
		if idx%2 == 0 {
			return EdgeEvent{Level: true, DurationUs: tp.TELong}, true
		}
		return EdgeEvent{Level: false, DurationUs: tp.TELong}, true
	}
	if e.cursor == preamblePairs*2 {
		e.cursor++
		return EdgeEvent{Level: true, DurationUs: tp.TELong}, true
	}

	const gapUs = 2750
	if e.cursor == preambleEdges {
		e.cursor++
		return EdgeEvent{Level: false, DurationUs: gapUs}, true
	}
	if e.cursor == preambleEdges+1 {
		e.cursor++
		return EdgeEvent{Level: true, DurationUs: gapUs}, true
	}
	if e.cursor == preambleEdges+2 {
		e.cursor++
		return EdgeEvent{Level: false, DurationUs: tp.TELong}, true
	}

	bitOffset := e.cursor - (preambleEdges + 3)
	if bitOffset < 2*64 {
		bitIndex := bitOffset / 2
		first := bitOffset%2 == 0
		e.cursor++

		if first {
			var rawData uint64
			for i := 0; i < 8; i++ {
				rawData = rawData<<8 | uint64(e.data[i])
			}
			bit := int((rawData >> uint(63-bitIndex)) & 1)
			return EdgeEvent{Level: true, DurationUs: EmitPWMBit(bit, tp, LongIsZero)}, true
		}
		return EdgeEvent{Level: false, DurationUs: tp.TEShort}, true
	}

	if bitOffset == 2*64 {
		e.cursor++
		e.stopped = true
		return EdgeEvent{Level: true, DurationUs: subaruEndUs + 500}, true
	}

	e.stopped = true
	return EdgeEvent{}, false
}
