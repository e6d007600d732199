// Package slimevr emulates a SlimeVR firmware tracker over UDP: one socket
// per registry, one virtual sensor per physical HaritoraX tracker.
package slimevr

import "net"

// UDPSocket is the write-side subset of *net.UDPConn the emulator needs.
// Abstracted so tests can assert on outgoing packets without binding a
// real socket.
type UDPSocket interface {
	WriteToUDP(b []byte, addr *net.UDPAddr) (int, error)
	Close() error
}

// UDPSocketFactory creates UDPSockets, decoupling the registry from
// net.ListenUDP for dependency injection in tests.
type UDPSocketFactory interface {
	ListenUDP() (UDPSocket, error)
}

// RealUDPSocket wraps *net.UDPConn.
type RealUDPSocket struct {
	conn *net.UDPConn
}

// NewRealUDPSocket wraps an existing *net.UDPConn.
func NewRealUDPSocket(conn *net.UDPConn) *RealUDPSocket {
	return &RealUDPSocket{conn: conn}
}

// WriteToUDP sends b to addr.
func (r *RealUDPSocket) WriteToUDP(b []byte, addr *net.UDPAddr) (int, error) {
	return r.conn.WriteToUDP(b, addr)
}

// Close closes the underlying connection.
func (r *RealUDPSocket) Close() error {
	return r.conn.Close()
}

// RealUDPSocketFactory binds an unconnected UDP socket for broadcast sends.
type RealUDPSocketFactory struct{}

// NewRealUDPSocketFactory creates a RealUDPSocketFactory.
func NewRealUDPSocketFactory() *RealUDPSocketFactory {
	return &RealUDPSocketFactory{}
}

// ListenUDP binds an ephemeral-port UDP4 socket suitable for broadcast.
func (f *RealUDPSocketFactory) ListenUDP() (UDPSocket, error) {
	conn, err := net.ListenUDP("udp4", nil)
	if err != nil {
		return nil, err
	}
	if err := conn.SetWriteBuffer(1 << 16); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return NewRealUDPSocket(conn), nil
}

// MockUDPSocket records every packet sent for test assertions.
type MockUDPSocket struct {
	Sent     [][]byte
	Closed   bool
	WriteErr error
}

// NewMockUDPSocket creates a MockUDPSocket.
func NewMockUDPSocket() *MockUDPSocket {
	return &MockUDPSocket{}
}

// WriteToUDP records b instead of sending it over the network.
func (m *MockUDPSocket) WriteToUDP(b []byte, addr *net.UDPAddr) (int, error) {
	if m.WriteErr != nil {
		return 0, m.WriteErr
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	m.Sent = append(m.Sent, cp)
	return len(b), nil
}

// Close marks the mock socket closed.
func (m *MockUDPSocket) Close() error {
	m.Closed = true
	return nil
}

// MockUDPSocketFactory returns a preconfigured MockUDPSocket.
type MockUDPSocketFactory struct {
	Socket *MockUDPSocket
	Err    error
}

// NewMockUDPSocketFactory creates a MockUDPSocketFactory.
func NewMockUDPSocketFactory(socket *MockUDPSocket) *MockUDPSocketFactory {
	return &MockUDPSocketFactory{Socket: socket}
}

// ListenUDP returns the preconfigured mock socket.
func (f *MockUDPSocketFactory) ListenUDP() (UDPSocket, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Socket, nil
}
