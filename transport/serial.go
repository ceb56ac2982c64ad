package transport

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tarm/serial"
)

// serialPath extracts the device path out of either accepted serial uri
// form: "serial:PATH" (opaque) or "serial:///PATH" (authority-less path).
func serialPath(u *url.URL, raw string) (string, error) {
	if u.Opaque != "" {
		return u.Opaque, nil
	}
	if u.Path != "" {
		return u.Path, nil
	}
	// Fall back to stripping the scheme prefix by hand for forms where
	// url.Parse puts the device name in the host, e.g. "serial://ttyUSB0".
	if rest := strings.TrimPrefix(raw, "serial:"); rest != raw {
		rest = strings.TrimPrefix(rest, "//")
		if rest != "" {
			return rest, nil
		}
	}
	return "", fmt.Errorf("transport: serial uri %q has no device path", raw)
}

// openSerial opens a serial port at 115200 baud, 8 data bits, no parity,
// one stop bit — the slider link's fixed line configuration.
func openSerial(u *url.URL, raw string) (*serial.Port, error) {
	path, err := serialPath(u, raw)
	if err != nil {
		return nil, err
	}

	cfg := &serial.Config{
		Name:        path,
		Baud:        115200,
		Size:        8,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
		ReadTimeout: 0,
	}
	port, err := serial.OpenPort(cfg)
	if err != nil {
		return nil, fmt.Errorf("transport: open serial port %s: %w", path, err)
	}
	return port, nil
}
