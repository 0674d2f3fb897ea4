package tty

import "testing"

func TestInDataSafeUnderflow(t *testing.T) {
	d := New()
	if got := d.Decode(3, true, 0); got != 0x00 {
		t.Fatalf("empty in-data read = %#02x, want 0x00", got)
	}
	if d.Count() != 0 {
		t.Fatal("empty read must not touch the queue")
	}
}

func TestInDataPopsInOrder(t *testing.T) {
	d := New()
	d.Inject('a')
	d.Inject('b')

	if got := d.Decode(3, true, 0); got != 'a' {
		t.Fatalf("first pop = %q, want 'a'", got)
	}
	if got := d.Decode(3, true, 0); got != 'b' {
		t.Fatalf("second pop = %q, want 'b'", got)
	}
	if d.Count() != 0 {
		t.Fatalf("Count = %d, want 0 after draining", d.Count())
	}
}

func TestTickAssertsIRQBitOnlyWhileQueued(t *testing.T) {
	d := New()
	if d.Tick() != 0 {
		t.Fatal("IRQ bit set with empty queue")
	}
	d.Inject('x')
	if d.Tick() != IRQBit {
		t.Fatalf("Tick() = %#02x, want IRQBit", d.Tick())
	}
}

func TestOutDataForwardsToOut(t *testing.T) {
	d := New()
	var got []byte
	d.Out = func(b byte) { got = append(got, b) }

	d.Decode(1, false, 'h')
	d.Decode(1, false, 'i')
	if string(got) != "hi" {
		t.Fatalf("forwarded output = %q, want %q", got, "hi")
	}
}

func TestUnmappedRegistersReadZero(t *testing.T) {
	d := New()
	for reg := uint8(4); reg < 16; reg++ {
		if got := d.Decode(reg, true, 0); got != 0 {
			t.Fatalf("reg %d read = %#02x, want 0", reg, got)
		}
	}
}

func TestResetDrainsQueue(t *testing.T) {
	d := New()
	d.Inject('a')
	d.Inject('b')
	d.Reset()
	if d.Count() != 0 {
		t.Fatalf("Count = %d after Reset, want 0", d.Count())
	}
}
