package protocol

// Mode selects which cabinet profile (hardware-info payload and command
// table) a Device presents to the host. It is fixed at construction and
// immutable for the life of the Device.
type Mode int

const (
	// ModeDiva emulates the Project DIVA Arcade Future Tone slider.
	ModeDiva Mode = iota
	// ModeChu emulates the CHUNITHM slider.
	ModeChu
)

func (m Mode) String() string {
	switch m {
	case ModeDiva:
		return "diva"
	case ModeChu:
		return "chu"
	default:
		return "unknown"
	}
}

// ParseMode parses the config-facing mode name ("diva" or "chu").
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "diva":
		return ModeDiva, true
	case "chu":
		return ModeChu, true
	default:
		return 0, false
	}
}

// CommandCode is the one-byte command tag carried in a frame's first byte.
type CommandCode byte

const (
	CmdInputReport          CommandCode = 0x01
	CmdLEDReport            CommandCode = 0x02
	CmdEnableSliderReport   CommandCode = 0x03
	CmdDisableSliderReport  CommandCode = 0x04
	CmdUnk0x09              CommandCode = 0x09
	CmdUnk0x0a              CommandCode = 0x0a
	CmdReset                CommandCode = 0x10
	CmdException            CommandCode = 0xee
	CmdGetHwInfo            CommandCode = 0xf0
)

// ExceptionCode1 is the first payload byte of an exception reply's body.
type ExceptionCode1 byte

const (
	ExcWrongChecksum ExceptionCode1 = 0x01
	ExcBusError      ExceptionCode1 = 0x02
	ExcInternalError ExceptionCode1 = 0xed
)

// ElectrodeCount is the number of touch electrodes carried in an input
// report; fixed at 32 for both shipped modes.
const ElectrodeCount = 32

// handler processes a dispatched frame and may send a reply via d. cmd is
// the frame's own command code, carried separately from args so that a
// single handler (handleEmptyResponse) can serve several codes that only
// differ in what they must echo back.
type handler func(d *Device, cmd CommandCode, args []byte)

// commandTable builds the mode-dependent CommandCode -> handler mapping.
// Entries absent from the table are logged and dropped (§4.4, §7).
func commandTable(mode Mode) map[CommandCode]handler {
	table := map[CommandCode]handler{
		CmdInputReport:         (*Device).handleInputReportOneShot,
		CmdLEDReport:           (*Device).handleLEDReport,
		CmdEnableSliderReport:  (*Device).handleEnableSliderReport,
		CmdReset:               (*Device).handleReset,
		CmdGetHwInfo:           (*Device).handleGetHwInfo,
	}
	switch mode {
	case ModeChu:
		table[CmdDisableSliderReport] = (*Device).handleDisableSliderReport
	case ModeDiva:
		table[CmdUnk0x09] = (*Device).handleEmptyResponse
		table[CmdUnk0x0a] = (*Device).handleEmptyResponse
	}
	return table
}
