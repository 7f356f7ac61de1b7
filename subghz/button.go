package subghz

// vwButtonNames maps the VW button nibble (1..8) to its human name, matching
// the fixed button set stamped on VW remotes. Other codecs' Format() share
// this helper rather than each carrying their own lookup table.
var vwButtonNames = map[uint8]string{
	1: "UNLOCK",
	2: "LOCK",
	3: "LOCK+UN",
	4: "TRUNK",
	5: "UN+TR",
	6: "LK+TR",
	7: "ALL",
	8: "PANIC",
}

// suzukiButtonNames maps Suzuki's button nibble to its human name.
var suzukiButtonNames = map[uint8]string{
	1: "PANIC",
	2: "TRUNK",
	3: "LOCK",
	4: "UNLOCK",
}

// ButtonName returns a human-readable name for a button nibble. Only VW and
// Suzuki define a fixed name table; other protocols fall back to a generic
// "BTN:n" label.
func ButtonName(protocol string, nibble uint8) string {
	switch protocol {
	case "VW":
		if name, ok := vwButtonNames[nibble]; ok {
			return name
		}
	case "Suzuki":
		if name, ok := suzukiButtonNames[nibble]; ok {
			return name
		}
	}
	return genericButtonName(nibble)
}

func genericButtonName(nibble uint8) string {
	const hexDigits = "0123456789ABCDEF"
	return "BTN:" + string(hexDigits[nibble&0xF])
}
