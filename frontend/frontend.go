// Package frontend defines the contract between the protocol engine and
// the touch/LED front-end collaborator, and the pure index-mapping and
// color-rendering math the two shipped cabinet layouts need. The core
// protocol treats the front-end as an opaque consumer/producer; this
// package is the (external, UI-side) reference math for it.
package frontend

import (
	"math"

	"github.com/dogtopus/sega-slider/protocol"
)

// ElectrodeCount returns the number of touch electrodes a given mode's
// input report carries. Both shipped modes report 32.
func ElectrodeCount(mode protocol.Mode) int {
	return protocol.ElectrodeCount
}

// LEDCount returns the number of LED cells a given mode's led_report
// drives: 32 for diva, 31 for chu (chu's middle partition cells are
// omitted from the wire format though present in the electrode grid).
func LEDCount(mode protocol.Mode) int {
	if mode == protocol.ModeChu {
		return 31
	}
	return 32
}

// ChuElectrodeDisplayIndex maps a wire electrode position (0..31, the order
// the chu cabinet addresses electrodes in) to the display column/row index
// produced when a 2-row, 16-column grid is populated in wire order.
func ChuElectrodeDisplayIndex(wireIndex int) int {
	r := wireIndex / 16
	c := 15 - (wireIndex % 16)
	return c*2 + r
}

// ChuLEDDisplayIndex maps a wire LED position (0..ledCount-1) to its
// right-to-left display slot.
func ChuLEDDisplayIndex(wireIndex, ledCount int) int {
	return ledCount - 1 - wireIndex
}

// Color is an RGB triple in 0..1 as returned by RenderLED, with brightness
// and gamma already applied.
type Color struct {
	R, G, B float64
}

// RenderLED reproduces the reference front-end's BRG-to-RGB, brightness,
// and gamma mapping for LED cell ledIndex out of an led_report's
// brightness/led_brg fields: brightness is clamped to a 0..1 ratio (63
// being full scale), each BRG channel is normalized to 0..1, scaled by the
// brightness ratio, then raised to gamma.
func RenderLED(brightness byte, ledBRG []byte, ledIndex int, gamma float64) Color {
	offset := ledIndex * 3
	if offset+3 > len(ledBRG) {
		return Color{}
	}

	ratio := float64(brightness) / 63
	if ratio > 1.0 {
		ratio = 1.0
	}

	// Wire order is BRG; channel i of the Color (R=0,G=1,B=2) reads from
	// wire offset (i+1)%3.
	channel := func(i int) float64 {
		wireIdx := (i + 1) % 3
		v := float64(ledBRG[offset+wireIdx]) / 255 * ratio
		return math.Pow(v, gamma)
	}

	return Color{R: channel(0), G: channel(1), B: channel(2)}
}
