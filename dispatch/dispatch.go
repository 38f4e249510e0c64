// Package dispatch implements the Packet Receiver/Dispatcher: the single
// shared UDP listener that decodes each datagram and routes it to the
// Hello Engine, the LSA Engine, or the DATA forwarding path. Grounded on
// the teacher's handler.PacketHandler dispatch-by-type loop
// (handler/general.go), adapted from the teacher's Observer-subscribing
// receive loop to implement observer.Observer[*sock.Packet] directly
// rather than ranging over a channel, since sock.Socket's Subscribe is
// push-based.
package dispatch

import (
	"net"

	"hiverouter.dev/lsrouted/hello"
	"hiverouter.dev/lsrouted/internal/config"
	"hiverouter.dev/lsrouted/internal/logger"
	"hiverouter.dev/lsrouted/lsaengine"
	"hiverouter.dev/lsrouted/neighbor"
	"hiverouter.dev/lsrouted/sock"
	"hiverouter.dev/lsrouted/wire"
)

// Dispatcher is the socket's single observer; it never busy-loops, since
// NotifyObservers calls it synchronously from the socket's own readLoop
// goroutine (spec.md §5: packet receiver blocks on UDP read, dispatches
// synchronously).
type Dispatcher struct {
	self      string
	hello     *hello.Engine
	lsa       *lsaengine.Engine
	neighbors *neighbor.Manager
	socket    sock.Socket
	log       *logger.Logger
}

// New creates a Dispatcher. Register it with the socket via
// socket.Subscribe(dispatcher).
func New(cfg *config.Config, socket sock.Socket, helloEngine *hello.Engine, lsaEngine *lsaengine.Engine, neighbors *neighbor.Manager, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		self:      cfg.RouterID,
		hello:     helloEngine,
		lsa:       lsaEngine,
		neighbors: neighbors,
		socket:    socket,
		log:       log,
	}
}

// Update implements observer.Observer[*sock.Packet].
func (d *Dispatcher) Update(pkt *sock.Packet) {
	parsed, err := wire.Decode(pkt.Data)
	if err != nil {
		d.log.Warnf("dispatch: dropping unparseable packet from %s: %v", pkt.Addr, err)
		return
	}

	if parsed.RouterID() == d.self {
		return // self-originated broadcast heard on our own interface
	}

	switch {
	case parsed.Hello != nil:
		d.hello.Receive(parsed.Hello)
	case parsed.LSA != nil:
		d.lsa.Receive(parsed.LSA, pkt.Data, pkt.Addr.IP.String())
	case parsed.Data != nil:
		d.handleData(parsed.Data)
	}
}

// handleData implements the optional DATA demonstrator path: deliver
// locally if addressed here, otherwise look up the routing table and
// forward; a packet with no route is dropped (§4.6).
func (d *Dispatcher) handleData(data *wire.Data) {
	if data.Destination == d.self {
		d.log.Infof("data delivered: from=%s message=%q", data.RouterID, data.Message)
		return
	}

	via, ok := d.neighbors.Resolve(data.Destination)
	if !ok {
		d.log.Debugf("data: no route to %s, dropping", data.Destination)
		return
	}

	payload, err := data.Encode()
	if err != nil {
		d.log.Warnf("data: re-encode for forwarding failed: %v", err)
		return
	}
	dst := &net.UDPAddr{IP: net.ParseIP(via), Port: config.UDPPort}
	if err := d.socket.SendTo(dst, payload); err != nil {
		d.log.Warnf("data: forward to %s via %s failed: %v", data.Destination, via, err)
	}
}
