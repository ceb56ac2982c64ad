package protocol

import "testing"

func TestChecksumResetRestoresInit(t *testing.T) {
	c := NewFrameChecksum()
	c.Update([]byte{0x01, 0x02, 0x03})
	if c.Valid() {
		t.Fatalf("checksum should not be valid mid-frame")
	}
	c.Reset()
	if c.Value() != c.init {
		t.Errorf("Reset() left state %#x, want init %#x", c.Value(), c.init)
	}
}

func TestChecksumValidRoundTrip(t *testing.T) {
	cmd := byte(0xf0)
	length := byte(0x00)

	c := NewFrameChecksum()
	c.Update([]byte{cmd, length})
	trailer := c.Value()

	c.Reset()
	c.Update([]byte{cmd, length, trailer})
	if !c.Valid() {
		t.Errorf("expected checksum to validate, state = %#x", c.Value())
	}
}

func TestChecksumGetHwInfoVector(t *testing.T) {
	// ff f0 00 11: cmd=0xf0, len=0x00, cksum=0x11 chosen to zero the sum.
	c := NewFrameChecksum()
	c.Update([]byte{0xf0, 0x00, 0x11})
	if !c.Valid() {
		t.Errorf("hw-info vector should validate, state = %#x", c.Value())
	}
}

func TestChecksumFlippedByteInvalidates(t *testing.T) {
	c := NewFrameChecksum()
	c.Update([]byte{0xf0, 0x00, 0x12}) // trailer off by one
	if c.Valid() {
		t.Errorf("flipped byte must not validate")
	}
}
