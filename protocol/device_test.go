package protocol

import (
	"bytes"
	"testing"
)

// recordingWriter captures every Write call's bytes, for asserting wire
// output in tests.
type recordingWriter struct {
	writes [][]byte
}

func (w *recordingWriter) Write(p []byte) (int, error) {
	cp := append([]byte(nil), p...)
	w.writes = append(w.writes, cp)
	return len(p), nil
}

func (w *recordingWriter) all() []byte {
	var out []byte
	for _, w := range w.writes {
		out = append(out, w...)
	}
	return out
}

func newTestDevice(mode Mode) (*Device, *CallbackSink, *recordingWriter) {
	sink := &CallbackSink{}
	out := &recordingWriter{}
	d := NewDevice(mode, sink, out, nil)
	d.ConnectionMade()
	return d, sink, out
}

// feed decodes and dispatches a fully-formed host->device wire frame.
func feed(t *testing.T, d *Device, cmd CommandCode, args []byte) {
	t.Helper()
	codec := NewCodec()
	wire := encodeFrame(codec, cmd, args)
	d.DataReceived(wire)
}

func TestDeviceGetHwInfoReply(t *testing.T) {
	d, _, out := newTestDevice(ModeDiva)
	feed(t, d, CmdGetHwInfo, nil)

	got := decodeSingleFrame(t, out.all())
	if got.Cmd != CmdGetHwInfo {
		t.Fatalf("reply cmd = %#x, want 0xf0", got.Cmd)
	}
	want := HardwareInfoFor(ModeDiva).Pack()
	if !bytes.Equal(got.Args, want) {
		t.Errorf("reply args = % x, want % x", got.Args, want)
	}
}

func TestDeviceEnableThenInputReport(t *testing.T) {
	d, sink, out := newTestDevice(ModeChu)

	var reportEnabled bool
	var sawEnable bool
	sink.OnReportStateChange = func(enabled bool) {
		sawEnable = true
		reportEnabled = enabled
	}

	feed(t, d, CmdEnableSliderReport, nil)
	if !sawEnable || !reportEnabled {
		t.Fatalf("expected report_state_change(true), got sawEnable=%v enabled=%v", sawEnable, reportEnabled)
	}
	if !d.IsReporting() {
		t.Fatalf("IsReporting() = false after enable")
	}

	report := make([]byte, ElectrodeCount)
	for i := range report {
		report[i] = byte(i)
	}
	if err := d.SendInputReport(report); err != nil {
		t.Fatalf("SendInputReport: %v", err)
	}

	got := decodeSingleFrame(t, out.all())
	if got.Cmd != CmdInputReport || !bytes.Equal(got.Args, report) {
		t.Errorf("input report = %+v, want cmd=0x01 args=%x", got, report)
	}
}

func TestDeviceBadChecksumSendsException(t *testing.T) {
	d, _, out := newTestDevice(ModeDiva)

	codec := NewCodec()
	wire := encodeFrame(codec, CmdGetHwInfo, nil)
	wire[len(wire)-1] ^= 0xff
	d.DataReceived(wire)

	got := decodeSingleFrame(t, out.all())
	want := []byte{0xff, byte(ExcWrongChecksum)}
	if got.Cmd != CmdException || !bytes.Equal(got.Args, want) {
		t.Errorf("exception reply = %+v, want cmd=0xee args=%x", got, want)
	}
}

func TestDeviceLEDReportEvent(t *testing.T) {
	d, sink, _ := newTestDevice(ModeDiva)

	var got LEDFrame
	var fired bool
	sink.OnLED = func(f LEDFrame) {
		fired = true
		got = f
	}

	args := append([]byte{0x3f}, bytes.Repeat([]byte{0x10, 0x20, 0x30}, 2)...)
	feed(t, d, CmdLEDReport, args)

	if !fired {
		t.Fatal("expected led event")
	}
	if got.Brightness != 0x3f || !bytes.Equal(got.LEDBRG, args[1:]) {
		t.Errorf("led frame = %+v, want brightness=0x3f brg=%x", got, args[1:])
	}
}

func TestDeviceDisableSliderReportIsChuOnly(t *testing.T) {
	d, _, out := newTestDevice(ModeChu)
	feed(t, d, CmdDisableSliderReport, nil)
	got := decodeSingleFrame(t, out.all())
	if got.Cmd != CmdDisableSliderReport || len(got.Args) != 0 {
		t.Errorf("reply = %+v, want cmd=0x04 args=[]", got)
	}

	d2, _, out2 := newTestDevice(ModeDiva)
	feed(t, d2, CmdDisableSliderReport, nil)
	if len(out2.writes) != 0 {
		t.Errorf("diva mode must not have disable_slider_report; got writes %v", out2.writes)
	}
}

func TestDeviceDivaUnknownCommandsGetEmptyReply(t *testing.T) {
	d, _, out := newTestDevice(ModeDiva)
	feed(t, d, CmdUnk0x09, nil)
	got := decodeSingleFrame(t, out.all())
	if got.Cmd != CmdUnk0x09 || len(got.Args) != 0 {
		t.Errorf("reply = %+v, want cmd=0x09 args=[]", got)
	}
}

func TestDeviceResetRepliesAndFiresEvent(t *testing.T) {
	d, sink, out := newTestDevice(ModeChu)
	var fired bool
	sink.OnReset = func() { fired = true }

	feed(t, d, CmdReset, nil)
	if !fired {
		t.Fatal("expected reset event")
	}
	got := decodeSingleFrame(t, out.all())
	if got.Cmd != CmdReset || len(got.Args) != 0 {
		t.Errorf("reply = %+v, want cmd=0x10 args=[]", got)
	}
}

func TestDeviceUnknownCommandDropped(t *testing.T) {
	d, _, out := newTestDevice(ModeChu)
	feed(t, d, CommandCode(0x7f), nil)
	if len(out.writes) != 0 {
		t.Errorf("expected no reply for unknown command, got %v", out.writes)
	}
}

// decodeSingleFrame decodes exactly one [CMD|LEN|ARGS|CKSUM] frame out of
// wire bytes produced by a Device and verifies the checksum validates.
func decodeSingleFrame(t *testing.T, wire []byte) Frame {
	t.Helper()
	codec := NewCodec()
	s := NewStitcher()
	results := s.Feed(codec.Decode(wire))
	if len(results) != 1 || results[0].Frame == nil {
		t.Fatalf("expected exactly one valid frame, got %+v", results)
	}
	return *results[0].Frame
}
