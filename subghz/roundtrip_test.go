package subghz

import "testing"

// collectEdges drains an Encoder fully, returning every edge it yields.
func collectEdges(t *testing.T, enc Encoder) []EdgeEvent {
	t.Helper()
	var edges []EdgeEvent
	for {
		ev, ok := enc.Yield()
		if !ok {
			break
		}
		edges = append(edges, ev)
	}
	return edges
}

// assertAlternating fails the test if any two consecutive edges share a
// Level, the half-duplex invariant every encoder must uphold.
func assertAlternating(t *testing.T, edges []EdgeEvent) {
	t.Helper()
	for i := 1; i < len(edges); i++ {
		if edges[i].Level == edges[i-1].Level {
			t.Fatalf("edge %d and %d both have Level=%v (duration %d, %d): alternation violated",
				i-1, i, edges[i].Level, edges[i-1].DurationUs, edges[i].DurationUs)
		}
	}
}

// feedEdges plays a slice of edges into a Decoder and returns every packet
// decoded along the way.
func feedEdges(dec Decoder, edges []EdgeEvent) []Packet {
	var got []Packet
	dec.SetCallback(func(p Packet) { got = append(got, p) })
	for _, ev := range edges {
		dec.Feed(ev.Level, ev.DurationUs)
	}
	return got
}
