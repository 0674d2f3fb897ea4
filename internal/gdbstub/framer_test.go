package gdbstub

import "testing"

// feedString drives f byte by byte and concatenates everything f emits.
func feedString(f *Framer, s string) []byte {
	var out []byte
	for i := 0; i < len(s); i++ {
		out = append(out, f.FeedByte(s[i])...)
	}
	return out
}

func TestFramerRoundTripsSimpleQuery(t *testing.T) {
	d := NewDispatcher(newFakeCallbacks())
	f := NewFramer(d)

	out := feedString(f, formatResponse("?"))
	want := "+" + formatResponse("T05thread:01;")
	if string(out) != want {
		t.Fatalf("framer output = %q, want %q", out, want)
	}
}

func TestFramerBadChecksumSendsNAK(t *testing.T) {
	d := NewDispatcher(newFakeCallbacks())
	f := NewFramer(d)

	out := feedString(f, "$?#00") // wrong checksum, correct is 3f
	if string(out) != "-" {
		t.Fatalf("framer output = %q, want NAK", out)
	}
}

func TestFramerNoAckModeSuppressesACK(t *testing.T) {
	d := NewDispatcher(newFakeCallbacks())
	d.NoAck = true
	f := NewFramer(d)

	out := feedString(f, formatResponse("?"))
	want := formatResponse("T05thread:01;")
	if string(out) != want {
		t.Fatalf("framer output = %q, want %q (no leading +)", out, want)
	}
}

func TestFramerUnescapesPayload(t *testing.T) {
	d := NewDispatcher(newFakeCallbacks())
	f := NewFramer(d)

	var sawPayload string
	f.DispatchFunc = func(payload string) []string {
		sawPayload = payload
		return []string{"OK"}
	}

	// '}' followed by (0x23 ^ 0x20) = 0x03 decodes to one literal '#' byte
	// inside the payload, per the RSP escape rule.
	raw := "X" + string([]byte{'}', 0x03}) + "Y"
	sumBytes := []byte{'X', '}', 0x03, 'Y'}
	var cksum byte
	for _, b := range sumBytes {
		cksum += b
	}
	packet := "$" + raw + "#" + toHexByte(cksum)

	feedString(f, packet)
	if sawPayload != "X#Y" {
		t.Fatalf("unescaped payload = %q, want %q", sawPayload, "X#Y")
	}
}

func TestFramerContinueEmitsOnlyACKNoPacket(t *testing.T) {
	d := NewDispatcher(newFakeCallbacks())
	f := NewFramer(d)

	out := feedString(f, formatResponse("c"))
	if string(out) != "+" {
		t.Fatalf("framer output = %q, want just ACK (no packet, resume is async)", out)
	}
}

func TestFramerCtrlCSetsInterruptRequested(t *testing.T) {
	d := NewDispatcher(newFakeCallbacks())
	f := NewFramer(d)

	f.FeedByte(0x03)
	if !f.InterruptRequested {
		t.Fatal("Ctrl-C byte did not set InterruptRequested")
	}
}

func TestFramerDispatchFuncOverride(t *testing.T) {
	d := NewDispatcher(newFakeCallbacks())
	f := NewFramer(d)

	var sawPayload string
	f.DispatchFunc = func(payload string) []string {
		sawPayload = payload
		return []string{"OK"}
	}

	out := feedString(f, formatResponse("g"))
	if sawPayload != "g" {
		t.Fatalf("DispatchFunc saw payload %q, want %q", sawPayload, "g")
	}
	want := "+" + formatResponse("OK")
	if string(out) != want {
		t.Fatalf("framer output = %q, want %q", out, want)
	}
}
