// Package headless is a reference front-end collaborator with no window
// system: it renders LED frames into an in-memory buffer and synthesizes
// input reports from directly-poked touch state, for use by the operator
// console and by tests that exercise a full transport+protocol round trip
// without a display.
package headless

import (
	"sync"

	"github.com/dogtopus/sega-slider/frontend"
	"github.com/dogtopus/sega-slider/protocol"
)

// Frontend is a minimal, concurrency-safe EventSink plus a touch-state
// buffer the operator console pokes to synthesize input reports.
type Frontend struct {
	mode  protocol.Mode
	gamma float64

	mu        sync.Mutex
	touch     []byte
	leds      []frontend.Color
	connected bool
	reporting bool
}

// New returns a headless Frontend sized for mode, with the reference
// front-end's default gamma of 0.5.
func New(mode protocol.Mode) *Frontend {
	return &Frontend{
		mode:  mode,
		gamma: 0.5,
		touch: make([]byte, frontend.ElectrodeCount(mode)),
		leds:  make([]frontend.Color, frontend.LEDCount(mode)),
	}
}

// SetGamma overrides the default gamma used when rendering LED frames.
func (f *Frontend) SetGamma(gamma float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gamma = gamma
}

// SetElectrode pokes a single electrode's touch value (0xfe when touched,
// 0x00 when released, matching the reference front-end's widget values).
func (f *Frontend) SetElectrode(displayIndex int, value byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if displayIndex < 0 || displayIndex >= len(f.touch) {
		return
	}
	wireIndex := displayIndex
	if f.mode == protocol.ModeChu {
		wireIndex = chuWireIndexFromDisplay(displayIndex)
	}
	f.touch[wireIndex] = value
}

// InputReport returns a copy of the current wire-order touch state, ready
// to pass to Device.SendInputReport.
func (f *Frontend) InputReport() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]byte(nil), f.touch...)
}

// LEDs returns a copy of the last-rendered LED colors, indexed in display
// order.
func (f *Frontend) LEDs() []frontend.Color {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]frontend.Color(nil), f.leds...)
}

// Connected reports whether the console currently considers itself bound
// to a live connection.
func (f *Frontend) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

// Reporting reports whether the host has periodic slider reporting
// enabled, as last observed via ReportStateChanged.
func (f *Frontend) Reporting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reporting
}

func (f *Frontend) ConnectionMade() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = true
}

func (f *Frontend) ConnectionLost(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
	f.reporting = false
}

func (f *Frontend) LEDFrameReceived(frame protocol.LEDFrame) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ledCount := len(f.leds)
	for wireIndex := 0; wireIndex < ledCount; wireIndex++ {
		c := frontend.RenderLED(frame.Brightness, frame.LEDBRG, wireIndex, f.gamma)
		displayIndex := wireIndex
		if f.mode == protocol.ModeChu {
			displayIndex = frontend.ChuLEDDisplayIndex(wireIndex, ledCount)
		}
		f.leds[displayIndex] = c
	}
}

func (f *Frontend) ReportStateChanged(enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reporting = enabled
}

func (f *Frontend) ReportOneShotRequested() {}

func (f *Frontend) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.touch {
		f.touch[i] = 0
	}
	f.reporting = false
}

// chuWireIndexFromDisplay inverts frontend.ChuElectrodeDisplayIndex: given
// a display index d = c*2+r (c in 0..15, r in 0..1), recover the wire
// index i = r*16 + (15-c) the forward mapping was built from.
func chuWireIndexFromDisplay(display int) int {
	r := display % 2
	c := display / 2
	return r*16 + (15 - c)
}
