package transport

import (
	"fmt"
	"net"
	"net/url"
)

const defaultTCPPort = 12345

// dialTCP opens a TCP client connection for a tcp://HOST[:PORT] uri.
func dialTCP(u *url.URL) (net.Conn, error) {
	host := u.Hostname()
	if host == "" {
		return nil, fmt.Errorf("transport: tcp uri missing host")
	}
	port := u.Port()
	if port == "" {
		port = fmt.Sprintf("%d", defaultTCPPort)
	}

	addr := net.JoinHostPort(host, port)
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: tcp dial %s: %w", addr, err)
	}
	return conn, nil
}
