// Package transport implements the URI-addressed connection factory that
// binds a protocol.Device to a TCP, serial, or RFCOMM Bluetooth link.
package transport

import (
	"fmt"
	"io"
	"net/url"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/dogtopus/sega-slider/protocol"
)

// Connection is a live transport binding: a byte-duplex connection plus the
// protocol.Device reading and writing through it. Closing it is the only
// way to tear the pair down; there is no internal reconnect.
type Connection struct {
	conn   io.ReadWriteCloser
	device *protocol.Device
	log    *log.Logger

	closeOnce sync.Once
	closeErr  error
}

// Device returns the protocol engine bound to this connection.
func (c *Connection) Device() *protocol.Device {
	return c.device
}

// Write implements protocol.Writer by forwarding to the underlying conn.
func (c *Connection) Write(p []byte) (int, error) {
	return c.conn.Write(p)
}

// Close closes the underlying connection. Safe to call more than once.
func (c *Connection) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

// run owns the blocking read loop. It calls ConnectionMade once, then
// repeatedly reads chunks and hands them to the device until the
// connection errors out or is closed, at which point it calls
// ConnectionLost exactly once and returns. Intended to run in its own
// goroutine — the protocol engine itself is single-threaded and every
// DataReceived call here happens serially, in arrival order, matching the
// single-threaded-cooperative scheduling model.
func (c *Connection) run() {
	c.device.ConnectionMade()

	buf := make([]byte, 4096)
	for {
		n, err := c.conn.Read(buf)
		if n > 0 {
			c.device.DataReceived(buf[:n])
		}
		if err != nil {
			if err == io.EOF {
				c.device.ConnectionLost(nil)
			} else {
				c.device.ConnectionLost(err)
			}
			return
		}
	}
}

// CreateConnection parses uri, dials the corresponding transport, binds a
// fresh protocol.Device for mode, and starts the read loop in a background
// goroutine. A returned error means no engine was constructed, per the
// "transport open failure" disposition.
func CreateConnection(uri string, mode protocol.Mode, sink protocol.EventSink, logger *log.Logger) (*Connection, error) {
	if logger == nil {
		logger = log.Default()
	}

	parsed, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("transport: bad uri %q: %w", uri, err)
	}

	var conn io.ReadWriteCloser
	switch parsed.Scheme {
	case "tcp":
		conn, err = dialTCP(parsed)
	case "serial":
		conn, err = openSerial(parsed, uri)
	case "rfcomm":
		conn, err = dialRFCOMM(parsed)
	default:
		return nil, fmt.Errorf("transport: unsupported scheme %q in uri %q", parsed.Scheme, uri)
	}
	if err != nil {
		return nil, err
	}

	c := &Connection{conn: conn, log: logger.With("uri", uri)}
	c.device = protocol.NewDevice(mode, sink, c, logger)

	go c.run()

	return c, nil
}
