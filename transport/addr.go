package transport

import (
	"fmt"
	"strconv"
	"strings"
)

// MACAddr is a 6-byte Bluetooth device address in wire (little-endian, as
// BlueZ's sockaddr_rc expects) byte order.
type MACAddr [6]byte

// ParseMAC accepts either a colon- or dash-separated MAC address
// ("aa:bb:cc:dd:ee:ff" or "aa-bb-cc-dd-ee-ff") and returns it in the byte
// order BlueZ's bdaddr_t wants, i.e. reversed relative to the string's
// human (most-significant-first) reading order.
func ParseMAC(s string) (MACAddr, error) {
	var out MACAddr

	sep := ":"
	if strings.Contains(s, "-") && !strings.Contains(s, ":") {
		sep = "-"
	}
	parts := strings.Split(s, sep)
	if len(parts) != 6 {
		return out, fmt.Errorf("transport: %q is not a 6-octet MAC address", s)
	}
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 16, 8)
		if err != nil {
			return out, fmt.Errorf("transport: bad MAC octet %q in %q: %w", p, s, err)
		}
		// BlueZ's bdaddr_t stores the address in reverse order from its
		// conventional string rendering.
		out[5-i] = byte(v)
	}
	return out, nil
}

func (m MACAddr) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", m[5], m[4], m[3], m[2], m[1], m[0])
}
