package protocol

import (
	"bytes"
	"testing"

	"pgregory.net/rapid"
)

func TestCodecDecodeRegular(t *testing.T) {
	c := NewCodecWithBytes(0xe0, 0xd0)
	frags := c.Decode([]byte{0xe0, 0x00, 0x01, 0x02, 0x03})
	want := [][]byte{{0x00, 0x01, 0x02, 0x03}}
	if !framesEqual(frags, want) {
		t.Errorf("Decode() = %x, want %x", frags, want)
	}
}

func TestCodecDecodeWithEscape(t *testing.T) {
	c := NewCodecWithBytes(0xe0, 0xd0)
	frags := c.Decode([]byte{0xe0, 0xd0, 0xdf, 0xd0, 0xcf, 0x63, 0x6f, 0x64, 0x65})
	want := [][]byte{{0xe0, 0xd0, 0x63, 0x6f, 0x64, 0x65}}
	if !framesEqual(frags, want) {
		t.Errorf("Decode() = %x, want %x", frags, want)
	}
}

func TestCodecMultipacketDecode(t *testing.T) {
	c := NewCodecWithBytes(0xe0, 0xd0)
	frags := c.Decode([]byte{
		0xe0, 0x66, 0x69, 0x72, 0x73, 0x74,
		0xe0, 0x73, 0x65, 0x63, 0x6f, 0x6e, 0x64,
	})
	want := [][]byte{[]byte("first"), []byte("second")}
	if !framesEqual(frags, want) {
		t.Errorf("Decode() = %x, want %x", frags, want)
	}
}

func TestCodecEncodeWithEscape(t *testing.T) {
	c := NewCodecWithBytes(0xe0, 0xd0)
	got := c.Finalize([]byte{0xe0, 0xd0, 0x63, 0x6f, 0x64, 0x65})
	want := []byte{0xe0, 0xd0, 0xdf, 0xd0, 0xcf, 0x63, 0x6f, 0x64, 0x65}
	if !bytes.Equal(got, want) {
		t.Errorf("Finalize() = % x, want % x", got, want)
	}
}

func TestCodecEmptyChunkYieldsNoFragments(t *testing.T) {
	c := NewCodec()
	if frags := c.Decode(nil); frags != nil {
		t.Errorf("Decode(nil) = %v, want nil", frags)
	}
}

func TestCodecStandaloneSyncYieldsOneEmptyFragment(t *testing.T) {
	c := NewCodec()
	frags := c.Decode([]byte{DefaultSync})
	if len(frags) != 1 || len(frags[0]) != 0 {
		t.Errorf("Decode(sync) = %x, want one empty fragment", frags)
	}
}

func TestCodecAnomalySyncAfterEscape(t *testing.T) {
	c := NewCodec()
	var anomalies []string
	frags := c.DecodeWithAnomaly([]byte{DefaultEsc, DefaultSync, 0x01}, func(msg string) {
		anomalies = append(anomalies, msg)
	})
	if len(anomalies) != 1 {
		t.Fatalf("expected one anomaly, got %d (%v)", len(anomalies), anomalies)
	}
	want := [][]byte{{0x01}}
	if !framesEqual(frags, want) {
		t.Errorf("Decode() = %x, want %x", frags, want)
	}
}

func TestCodecAnomalyEscapeAfterEscape(t *testing.T) {
	c := NewCodec()
	var anomalies []string
	frags := c.DecodeWithAnomaly([]byte{DefaultEsc, DefaultEsc, 0x01}, func(msg string) {
		anomalies = append(anomalies, msg)
	})
	if len(anomalies) != 1 {
		t.Fatalf("expected one anomaly, got %d (%v)", len(anomalies), anomalies)
	}
	want := [][]byte{{(0x01 + 1) & 0xff}}
	if !framesEqual(frags, want) {
		t.Errorf("Decode() = %x, want %x", frags, want)
	}
}

// TestCodecEncodeDecodeRoundTrip exercises invariant 1 from the testable
// properties: decode(encode(x1) ++ finalize(x2)) == (x1 ++ x2,).
func TestCodecEncodeDecodeRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		x1 := rapid.SliceOf(rapid.Byte()).Draw(rt, "x1")
		x2 := rapid.SliceOf(rapid.Byte()).Draw(rt, "x2")

		enc := NewCodec()
		wire := enc.Encode(x1)
		wire = append(wire, enc.Finalize(x2)...)

		dec := NewCodec()
		frags := dec.Decode(wire)

		want := append(append([]byte(nil), x1...), x2...)
		if len(frags) != 1 || !bytes.Equal(frags[0], want) {
			t.Fatalf("round trip mismatch: got %x, want (%x,)", frags, want)
		}
	})
}

// TestCodecByteAtATimeRoundTrip exercises invariant 2: feeding encode(p) to
// a fresh decoder one byte at a time yields (p,) once finalized.
func TestCodecByteAtATimeRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		p := rapid.SliceOf(rapid.Byte()).Draw(rt, "p")

		enc := NewCodec()
		wire := enc.Finalize(p)

		dec := NewCodec()
		var got []byte
		for _, b := range wire {
			for _, frag := range dec.Decode([]byte{b}) {
				got = append(got, frag...)
			}
		}

		if !bytes.Equal(got, p) {
			t.Fatalf("byte-at-a-time round trip mismatch: got %x, want %x", got, p)
		}
	})
}

func framesEqual(got, want [][]byte) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if !bytes.Equal(got[i], want[i]) {
			return false
		}
	}
	return true
}
