package protocol

// HardwareInfo is the bit-exact identification payload returned by
// get_hw_info. It packs as the little-endian struct model[8] u8
// chip_pn[5] unk_0xe fw_ver unk_0x10 unk_0x11 (18 bytes).
//
// The distilled spec's data model calls this "19 bytes total", but its own
// field list and wire example both add up to 18 (8+1+5+1+1+1+1); the
// original Python source packs it with struct.Struct("<8sB5s4B"), which
// struct.calcsize confirms is 18 bytes. This implementation follows the
// original source.
type HardwareInfo struct {
	Model       [8]byte
	DeviceClass byte
	ChipPN      [5]byte
	Unk0xe      byte
	FwVer       byte
	Unk0x10     byte
	Unk0x11     byte
}

// HardwareInfoSize is the packed wire size of HardwareInfo.
const HardwareInfoSize = 8 + 1 + 5 + 1 + 1 + 1 + 1

// Pack returns the little-endian wire encoding of the HardwareInfo.
func (h HardwareInfo) Pack() []byte {
	out := make([]byte, 0, HardwareInfoSize)
	out = append(out, h.Model[:]...)
	out = append(out, h.DeviceClass)
	out = append(out, h.ChipPN[:]...)
	out = append(out, h.Unk0xe, h.FwVer, h.Unk0x10, h.Unk0x11)
	return out
}

func mustModel(s string) (out [8]byte) {
	copy(out[:], s)
	return out
}

func mustChipPN(s string) (out [5]byte) {
	copy(out[:], s)
	return out
}

// hwInfo holds the two bit-exact HardwareInfo constants, keyed by Mode.
var hwInfo = map[Mode]HardwareInfo{
	ModeDiva: {
		Model:       mustModel("15275   "),
		DeviceClass: 0xa0,
		ChipPN:      mustChipPN("06687"),
		Unk0xe:      0xff,
		FwVer:       0x90,
		Unk0x10:     0x00,
		Unk0x11:     0x64,
	},
	ModeChu: {
		Model:       mustModel("15330   "),
		DeviceClass: 0xa0,
		ChipPN:      mustChipPN("06712"),
		Unk0xe:      0xff,
		FwVer:       0x90,
		Unk0x10:     0x00,
		Unk0x11:     0x64,
	},
}

// HardwareInfoFor returns the bit-exact HardwareInfo constant for mode.
func HardwareInfoFor(mode Mode) HardwareInfo {
	return hwInfo[mode]
}
