package subghz

// registry holds the immutable Protocol descriptor table, keyed by name.
// The table itself, like the timing profiles, is read-only and safe to
// share across decoder/encoder instances. There is deliberately no
// manufacturer master-key table here; key material is always supplied by
// the caller.
var registry = map[string]*Protocol{}

// timingProfiles points at each protocol's package-level TimingProfile var,
// letting an operator retune TEDelta per protocol (e.g. for a noisy
// capture) without recompiling. Every protocol's timing profile lives in
// this table.
var timingProfiles = map[string]*TimingProfile{
	"Ford-V0":   &fordV0Timing,
	"Kia-V0":    &kiaV0Timing,
	"Kia-V3/V4": &kiaV34Timing,
	"Subaru":    &subaruTiming,
	"Suzuki":    &suzukiTiming,
	"VW":        &vwTiming,
}

// TimingProfileFor returns a pointer to the named protocol's timing
// profile, or nil if the name is unknown. Mutating through the returned
// pointer changes every future Decoder/Encoder this package constructs for
// that protocol.
func TimingProfileFor(name string) *TimingProfile {
	return timingProfiles[name]
}

func register(p *Protocol) {
	registry[p.Name] = p
}

// Lookup returns the Protocol descriptor registered under name, or nil if
// no such protocol is known.
func Lookup(name string) *Protocol {
	return registry[name]
}

// Names returns the registered protocol names, for enumeration by a radio
// layer or CLI.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	return names
}

func init() {
	register(&Protocol{
		Name:       "Ford-V0",
		Flags:      FlagBand315 | FlagBand433 | FlagAM | FlagDecodable | FlagSend,
		NewDecoder: func() Decoder { return NewFordV0Decoder() },
		NewEncoder: func() Encoder { return NewFordV0Encoder() },
	})
	register(&Protocol{
		Name:       "Kia-V0",
		Flags:      FlagBand315 | FlagBand433 | FlagAM | FlagDecodable | FlagSend,
		NewDecoder: func() Decoder { return NewKiaV0Decoder() },
		NewEncoder: func() Encoder { return NewKiaV0Encoder() },
	})
	register(&Protocol{
		Name:       "Kia-V3/V4",
		Flags:      FlagBand315 | FlagBand433 | FlagAM | FlagDecodable | FlagSend,
		NewDecoder: func() Decoder { return NewKiaV34Decoder() },
		NewEncoder: func() Encoder { return NewKiaV34Encoder() },
	})
	register(&Protocol{
		Name:       "Subaru",
		Flags:      FlagBand433 | FlagAM | FlagDecodable | FlagSend,
		NewDecoder: func() Decoder { return NewSubaruDecoder() },
		NewEncoder: func() Encoder { return NewSubaruEncoder() },
	})
	register(&Protocol{
		Name:       "Suzuki",
		Flags:      FlagBand433 | FlagAM | FlagDecodable | FlagSend,
		NewDecoder: func() Decoder { return NewSuzukiDecoder() },
		NewEncoder: func() Encoder { return NewSuzukiEncoder() },
	})
	register(&Protocol{
		Name:       "VW",
		Flags:      FlagBand433 | FlagAM | FlagDecodable | FlagSend,
		NewDecoder: func() Decoder { return NewVWDecoder() },
		NewEncoder: func() Encoder { return NewVWEncoder() },
	})
}
