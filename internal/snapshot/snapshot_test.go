package snapshot

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEncodeProducesValidJSON(t *testing.T) {
	st := State{
		A: 0x11, X: 0x22, Y: 0x33, S: 0xFD, P: 0x24,
		PC:          0x8000,
		LastStopSig: 5,
		Breakpoints: 2,
		Watchpoints: 1,
		TTYQueued:   3,
		Symbols:     10,
	}
	buf := Encode(st)

	var got map[string]float64
	if err := json.Unmarshal(buf, &got); err != nil {
		t.Fatalf("Encode produced invalid JSON: %v\n%s", err, buf)
	}

	want := map[string]float64{
		"a": 0x11, "x": 0x22, "y": 0x33, "sp": 0xFD, "flags": 0x24,
		"pc": 0x8000, "last_stop_signal": 5, "breakpoints": 2,
		"watchpoints": 1, "tty_queued": 3, "symbols": 10,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("decoded snapshot differs (-want +got):\n%s", diff)
	}
}
