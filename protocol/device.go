package protocol

import (
	"fmt"

	"github.com/charmbracelet/log"
)

// Writer is the downward byte sink a Device writes stuffed wire bytes to.
// Transport implementations satisfy this with their connection write path.
type Writer interface {
	Write(p []byte) (n int, err error)
}

// Device is the protocol engine bound to one connection: framing,
// checksumming, stitching, dispatch, and the upward EventSink all live
// here. A Device is single-threaded — every method must be called from the
// owning event loop (see the scheduling model's single-threaded-cooperative
// contract).
type Device struct {
	mode  Mode
	table map[CommandCode]handler

	codec    *Codec
	stitcher *Stitcher
	txCksum  *Checksum

	sink EventSink
	out  Writer

	reporting bool

	log *log.Logger
}

// NewDevice binds a protocol engine for mode to sink (upward events) and out
// (the transport's write path). logger may be nil, in which case the
// package default logger is used.
func NewDevice(mode Mode, sink EventSink, out Writer, logger *log.Logger) *Device {
	if logger == nil {
		logger = log.Default()
	}
	return &Device{
		mode:     mode,
		table:    commandTable(mode),
		codec:    NewCodec(),
		stitcher: NewStitcher(),
		txCksum:  NewFrameChecksum(),
		sink:     sink,
		out:      out,
		log:      logger.With("component", "protocol", "mode", mode.String()),
	}
}

// Mode returns the cabinet profile this Device was constructed with.
func (d *Device) Mode() Mode {
	return d.mode
}

// IsReporting reports whether periodic slider reporting is currently
// enabled, as last set by enable_slider_report / disable_slider_report.
func (d *Device) IsReporting() bool {
	return d.reporting
}

// ConnectionMade resets all per-connection state (codec, stitcher,
// reporting flag) and notifies the sink. Call this once a transport has
// finished establishing a connection.
func (d *Device) ConnectionMade() {
	d.codec.Reset()
	d.stitcher = NewStitcher()
	d.reporting = false
	d.sink.ConnectionMade()
}

// ConnectionLost notifies the sink that the transport is gone. The Device
// becomes inert afterward; it is never reused across connections.
func (d *Device) ConnectionLost(err error) {
	d.sink.ConnectionLost(err)
}

// DataReceived decodes and stitches an arbitrary chunk of wire bytes,
// dispatching every complete frame it yields, in arrival order, before
// returning.
func (d *Device) DataReceived(data []byte) {
	// A read that opens with SYNC (after any stray ESC bytes) starts a new
	// frame, but Decode emits no fragment boundary for it, so any partial
	// frame an earlier read left in the stitcher is dropped here.
	for _, b := range data {
		if b == d.codec.Sync {
			d.stitcher.resetFrame()
			break
		}
		if b != d.codec.Esc {
			break
		}
	}
	fragments := d.codec.DecodeWithAnomaly(data, func(msg string) {
		d.log.Warn("framing anomaly", "detail", msg)
	})
	for _, res := range d.stitcher.Feed(fragments) {
		switch {
		case res.BadCksum:
			raw := res.RawForLog
			expected := NewFrameChecksum()
			expected.Update(raw[:len(raw)-1])
			d.log.Warn("checksum mismatch, dropping frame", "raw", fmt.Sprintf("% x", raw),
				"expected", fmt.Sprintf("0x%02x", expected.Value()), "observed", fmt.Sprintf("0x%02x", raw[len(raw)-1]))
			d.sendException(ExcWrongChecksum)
		case res.Frame != nil:
			d.dispatch(*res.Frame)
		}
	}
}

func (d *Device) dispatch(f Frame) {
	h, ok := d.table[f.Cmd]
	if !ok {
		d.log.Warn("unknown command, dropping", "cmd", fmt.Sprintf("0x%02x", byte(f.Cmd)), "args", fmt.Sprintf("% x", f.Args))
		return
	}
	h(d, f.Cmd, f.Args)
}

// sendFrame resets the TX checksum, stages CMD/LEN/ARGS through the
// encoder while folding them into the checksum, and finalizes with the
// trailing checksum byte, per the reply-construction rule in §4.4.
func (d *Device) sendFrame(cmd CommandCode, args []byte) {
	if len(args) > maxArgs {
		panic(fmt.Sprintf("protocol: reply args too long (%d)", len(args)))
	}
	d.txCksum.Reset()

	header := []byte{byte(cmd), byte(len(args))}
	d.txCksum.Update(header)
	d.txCksum.Update(args)

	wire := d.codec.Encode(header)
	wire = append(wire, d.codec.Encode(args)...)
	wire = append(wire, d.codec.Finalize([]byte{d.txCksum.Value()})...)

	if _, err := d.out.Write(wire); err != nil {
		d.log.Error("transport write failed", "err", err)
	}
}

func (d *Device) sendException(code1 ExceptionCode1) {
	d.sendFrame(CmdException, []byte{0xff, byte(code1)})
}

// SendInputReport transmits a touch-electrode input report. report must be
// exactly ElectrodeCount bytes; the UI collaborator calls this at its own
// cadence, independent of whether periodic reporting is enabled.
func (d *Device) SendInputReport(report []byte) error {
	if len(report) != ElectrodeCount {
		return fmt.Errorf("protocol: input report must be %d bytes, got %d", ElectrodeCount, len(report))
	}
	d.sendFrame(CmdInputReport, report)
	return nil
}

func (d *Device) handleInputReportOneShot(_ CommandCode, _ []byte) {
	d.sink.ReportOneShotRequested()
}

func (d *Device) handleLEDReport(_ CommandCode, args []byte) {
	if len(args) < 1 {
		d.log.Warn("led_report with no brightness byte, dropping")
		return
	}
	d.sink.LEDFrameReceived(LEDFrame{
		Brightness: args[0],
		LEDBRG:     append([]byte(nil), args[1:]...),
	})
}

func (d *Device) handleEnableSliderReport(_ CommandCode, _ []byte) {
	d.reporting = true
	d.sink.ReportStateChanged(true)
}

func (d *Device) handleDisableSliderReport(cmd CommandCode, _ []byte) {
	d.reporting = false
	d.sink.ReportStateChanged(false)
	d.sendFrame(cmd, nil)
}

func (d *Device) handleReset(cmd CommandCode, _ []byte) {
	d.reporting = false
	d.sink.Reset()
	d.sendFrame(cmd, nil)
}

func (d *Device) handleGetHwInfo(cmd CommandCode, _ []byte) {
	d.sendFrame(cmd, HardwareInfoFor(d.mode).Pack())
}

// handleEmptyResponse serves diva's unk_0x09/unk_0x0a: both simply echo
// their own code with a zero-length body.
func (d *Device) handleEmptyResponse(cmd CommandCode, _ []byte) {
	d.sendFrame(cmd, nil)
}
