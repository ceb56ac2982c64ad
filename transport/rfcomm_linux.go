//go:build linux

package transport

import (
	"encoding/binary"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"unsafe"

	"golang.org/x/sys/unix"
)

// These mirror the Linux kernel's <bluetooth/bluetooth.h> and
// <bluetooth/rfcomm.h>/<bluetooth/l2cap.h> ABI. golang.org/x/sys/unix does
// not export Bluetooth-specific address families or protocols, so they are
// pinned here as the stable kernel constants rather than guessed at.
const (
	afBluetooth = 31

	btProtoL2CAP  = 0
	btProtoRFCOMM = 3

	sdpPSM = 0x0001

	defaultRFCOMMChannel = 1
)

// sockaddrRC packs a struct sockaddr_rc: sa_family_t, bdaddr_t, channel.
func sockaddrRC(addr MACAddr, channel uint8) []byte {
	buf := make([]byte, 10)
	binary.LittleEndian.PutUint16(buf[0:2], afBluetooth)
	copy(buf[2:8], addr[:])
	buf[8] = channel
	return buf
}

// sockaddrL2 packs a struct sockaddr_l2 for an outgoing L2CAP connection by
// PSM (no fixed channel ID, no extended addressing).
func sockaddrL2(addr MACAddr, psm uint16) []byte {
	buf := make([]byte, 14)
	binary.LittleEndian.PutUint16(buf[0:2], afBluetooth)
	binary.LittleEndian.PutUint16(buf[2:4], psm)
	copy(buf[4:10], addr[:])
	// l2_cid and l2_bdaddr_type left zero: kernel assigns a CID and
	// BDADDR_BREDR is 0.
	return buf
}

func connectRaw(protocol int, sa []byte) (int, error) {
	fd, err := unix.Socket(afBluetooth, unix.SOCK_STREAM, protocol)
	if err != nil {
		return -1, fmt.Errorf("transport: bluetooth socket: %w", err)
	}
	_, _, errno := unix.Syscall(unix.SYS_CONNECT, uintptr(fd), uintptr(unsafe.Pointer(&sa[0])), uintptr(len(sa)))
	if errno != 0 {
		unix.Close(fd)
		return -1, fmt.Errorf("transport: bluetooth connect: %w", errno)
	}
	return fd, nil
}

// dialRFCOMMChannel opens a raw RFCOMM socket to addr on the given channel.
func dialRFCOMMChannel(addr MACAddr, channel uint8) (*os.File, error) {
	fd, err := connectRaw(btProtoRFCOMM, sockaddrRC(addr, channel))
	if err != nil {
		return nil, err
	}
	return os.NewFile(uintptr(fd), fmt.Sprintf("rfcomm:%s:%d", addr, channel)), nil
}

// dialSDP opens the L2CAP control channel (PSM 1) used for SDP queries.
func dialSDP(addr MACAddr) (*os.File, error) {
	fd, err := connectRaw(btProtoL2CAP, sockaddrL2(addr, sdpPSM))
	if err != nil {
		return nil, err
	}
	return os.NewFile(uintptr(fd), fmt.Sprintf("sdp:%s", addr)), nil
}

// dialRFCOMM implements the rfcomm:// transport scheme, including the
// /sdp discovery form.
func dialRFCOMM(u *url.URL) (*os.File, error) {
	addr, err := ParseMAC(u.Hostname())
	if err != nil {
		return nil, err
	}

	if u.Path == "/sdp" {
		channel, err := resolveRFCOMMChannel(addr, u.Query())
		if err != nil {
			return nil, err
		}
		return dialRFCOMMChannel(addr, channel)
	}

	channel := uint8(defaultRFCOMMChannel)
	if p := u.Port(); p != "" {
		v, err := strconv.ParseUint(p, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("transport: bad rfcomm channel %q: %w", p, err)
		}
		channel = uint8(v)
	}
	return dialRFCOMMChannel(addr, channel)
}

// resolveRFCOMMChannel performs SDP discovery against addr for the Serial
// Port Profile and returns the discovered RFCOMM channel. The name/uuid
// query values are passed along but not matched against (see
// sdpFindSerialPortChannel).
func resolveRFCOMMChannel(addr MACAddr, q url.Values) (uint8, error) {
	conn, err := dialSDP(addr)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	channel, err := sdpFindSerialPortChannel(conn, q.Get("name"), q.Get("uuid"))
	if err != nil {
		return 0, fmt.Errorf("transport: sdp discovery against %s: %w", addr, err)
	}
	return channel, nil
}
