// Package sock manages the UDP sockets used for control-plane traffic.
// Adapted from the teacher's sock.Socket (interface + observer-based
// receive loop); generalized to bind a fixed port and to optionally enable
// SO_BROADCAST, since this daemon both listens on a well-known port and
// broadcasts HELLOs rather than dialing a single peer.
package sock

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"

	"golang.org/x/sys/unix"

	"hiverouter.dev/lsrouted/internal/assert"
	"hiverouter.dev/lsrouted/internal/logger"
	"hiverouter.dev/lsrouted/util/observer"
)

// Packet is a received UDP datagram paired with its sender's address.
type Packet struct {
	Addr *net.UDPAddr
	Data []byte
}

// Socket is the narrow interface the routing daemon sends and receives
// control-plane datagrams through. The daemon opens a single Socket and
// uses it for receiving and for every sender (HELLO broadcasts, LSA
// unicasts, DATA forwarding); senders do not own sockets of their own.
type Socket interface {
	// LocalAddr returns the socket's bound local address. Open must have
	// been called first.
	LocalAddr() *net.UDPAddr

	// SendTo sends data to addr. Open must have been called first.
	SendTo(addr *net.UDPAddr, data []byte) error

	// Open binds a UDP4 socket to port (0 picks an ephemeral port). When
	// broadcast is true, SO_BROADCAST is enabled on the socket so sends to
	// a subnet broadcast address succeed, mirroring the Python original's
	// explicit setsockopt(SOL_SOCKET, SO_BROADCAST, 1).
	Open(port int, broadcast bool) error

	// Close closes the socket, unblocking any in-progress receive.
	Close() error

	// Subscribe registers obs to be notified of every datagram read by this
	// socket, in the order they arrive on the single readLoop goroutine.
	Subscribe(obs observer.Observer[*Packet])
}

type udpSocket struct {
	conn       *net.UDPConn
	observable *observer.Observable[*Packet]
	bufferSize int
	log        *logger.Logger
}

// New creates a Socket that reads datagrams up to bufferSize bytes.
func New(bufferSize int, log *logger.Logger) Socket {
	return &udpSocket{
		observable: observer.NewObservable[*Packet](),
		bufferSize: bufferSize,
		log:        log,
	}
}

func (s *udpSocket) LocalAddr() *net.UDPAddr {
	assert.Assert(s.conn != nil, "socket: LocalAddr called before Open")
	return s.conn.LocalAddr().(*net.UDPAddr)
}

// Open binds 0.0.0.0:port. Enabling SO_BROADCAST requires reaching into
// the raw socket via ListenConfig.Control, since net.ListenUDP has no
// option for it directly.
func (s *udpSocket) Open(port int, broadcast bool) error {
	assert.Assert(s.conn == nil, "socket: already open; Close before Open again")

	lc := net.ListenConfig{}
	if broadcast {
		lc.Control = func(_, _ string, c syscall.RawConn) error {
			var sockErr error
			ctrlErr := c.Control(func(fd uintptr) {
				sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_BROADCAST, 1)
			})
			if ctrlErr != nil {
				return ctrlErr
			}
			return sockErr
		}
	}

	pc, err := lc.ListenPacket(context.Background(), "udp4", fmt.Sprintf("0.0.0.0:%d", port))
	if err != nil {
		return fmt.Errorf("sock: open udp socket on port %d: %w", port, err)
	}

	conn, ok := pc.(*net.UDPConn)
	if !ok {
		return errors.New("sock: listen config did not return a UDP connection")
	}

	s.conn = conn
	go s.readLoop()

	return nil
}

func (s *udpSocket) readLoop() {
	for {
		buf := make([]byte, s.bufferSize)
		n, addr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.log.Warnf("udp read failed: %v", err)
			continue
		}

		s.observable.NotifyObservers(&Packet{Addr: addr, Data: buf[:n]})
	}
}

func (s *udpSocket) SendTo(addr *net.UDPAddr, data []byte) error {
	assert.Assert(s.conn != nil, "socket: SendTo called before Open")

	_, err := s.conn.WriteToUDP(data, addr)
	return err
}

func (s *udpSocket) Close() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

func (s *udpSocket) Subscribe(obs observer.Observer[*Packet]) {
	s.observable.AddObserver(obs)
}
