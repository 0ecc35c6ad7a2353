package transport

import (
	"fmt"
	"net"
	"sync"
)

// UDP sends each frame as one datagram to a fixed ground station address.
type UDP struct {
	mu     sync.Mutex
	conn   *net.UDPConn
	closed bool
}

// DialUDP connects to the ground station at addr ("host:port").
func DialUDP(addr string) (*UDP, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve ground station address: %w", err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("failed to create ground station connection: %w", err)
	}
	return &UDP{conn: conn}, nil
}

// LocalAddr returns the local socket address.
func (u *UDP) LocalAddr() net.Addr {
	return u.conn.LocalAddr()
}

func (u *UDP) Send(frame []byte) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return ErrClosed
	}
	_, err := u.conn.Write(frame)
	return err
}

func (u *UDP) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return nil
	}
	u.closed = true
	return u.conn.Close()
}
