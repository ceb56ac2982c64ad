package frontend

import (
	"math"
	"testing"

	"github.com/dogtopus/sega-slider/protocol"
)

func TestLEDCountPerMode(t *testing.T) {
	if got := LEDCount(protocol.ModeDiva); got != 32 {
		t.Errorf("diva LEDCount = %d, want 32", got)
	}
	if got := LEDCount(protocol.ModeChu); got != 31 {
		t.Errorf("chu LEDCount = %d, want 31", got)
	}
}

func TestChuElectrodeDisplayIndex(t *testing.T) {
	// Wire index 0 -> r=0, c=15 -> display 30.
	if got := ChuElectrodeDisplayIndex(0); got != 30 {
		t.Errorf("ChuElectrodeDisplayIndex(0) = %d, want 30", got)
	}
	// Wire index 16 -> r=1, c=15 -> display 31.
	if got := ChuElectrodeDisplayIndex(16); got != 31 {
		t.Errorf("ChuElectrodeDisplayIndex(16) = %d, want 31", got)
	}
}

func TestChuLEDDisplayIndex(t *testing.T) {
	if got := ChuLEDDisplayIndex(0, 31); got != 30 {
		t.Errorf("ChuLEDDisplayIndex(0,31) = %d, want 30", got)
	}
	if got := ChuLEDDisplayIndex(30, 31); got != 0 {
		t.Errorf("ChuLEDDisplayIndex(30,31) = %d, want 0", got)
	}
}

func TestRenderLEDFullBrightnessNoGamma(t *testing.T) {
	brg := []byte{0x80, 0x40, 0xc0} // B, R, G at offset 0
	got := RenderLED(63, brg, 0, 1.0)
	want := Color{
		R: float64(0x40) / 255,
		G: float64(0xc0) / 255,
		B: float64(0x80) / 255,
	}
	const eps = 1e-9
	if math.Abs(got.R-want.R) > eps || math.Abs(got.G-want.G) > eps || math.Abs(got.B-want.B) > eps {
		t.Errorf("RenderLED = %+v, want %+v", got, want)
	}
}

func TestRenderLEDBrightnessClampedAtOne(t *testing.T) {
	brg := []byte{0xff, 0xff, 0xff}
	clamped := RenderLED(200, brg, 0, 1.0)
	atMax := RenderLED(63, brg, 0, 1.0)
	if clamped != atMax {
		t.Errorf("brightness above 63 should clamp to the same result as 63: got %+v vs %+v", clamped, atMax)
	}
}

func TestRenderLEDOutOfRangeIndexIsZero(t *testing.T) {
	got := RenderLED(63, []byte{0x01, 0x02, 0x03}, 5, 1.0)
	if got != (Color{}) {
		t.Errorf("out-of-range led index should render as zero, got %+v", got)
	}
}
