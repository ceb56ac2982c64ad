//go:build !linux

package transport

import (
	"fmt"
	"net/url"
	"os"
)

// dialRFCOMM is unimplemented outside Linux: raw AF_BLUETOOTH sockets are a
// Linux (BlueZ) kernel facility with no portable equivalent reachable from
// the available dependencies.
func dialRFCOMM(u *url.URL) (*os.File, error) {
	return nil, fmt.Errorf("transport: rfcomm transport is only supported on linux (got uri scheme %q)", u.Scheme)
}
