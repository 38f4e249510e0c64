// Package hello implements the Hello Engine: the periodic broadcast of
// HELLO beacons on every interface that has one, and the receive path
// that feeds discovered/recognized neighbors into the neighbor Manager.
// Grounded on the Python original's HelloSender/process_hello
// (shared/router.py) and on the teacher's timer-loop style in main.go.
package hello

import (
	"net"
	"time"

	"hiverouter.dev/lsrouted/iface"
	"hiverouter.dev/lsrouted/internal/config"
	"hiverouter.dev/lsrouted/internal/logger"
	"hiverouter.dev/lsrouted/neighbor"
	"hiverouter.dev/lsrouted/sock"
	"hiverouter.dev/lsrouted/wire"
)

// Engine sends and receives HELLO packets.
type Engine struct {
	self       string
	interfaces []iface.Interface
	interval   time.Duration
	socket     sock.Socket
	neighbors  *neighbor.Manager
	log        *logger.Logger
}

// New creates a Hello Engine bound to the given interfaces and neighbor
// Manager.
func New(cfg *config.Config, interfaces []iface.Interface, socket sock.Socket, neighbors *neighbor.Manager, log *logger.Logger) *Engine {
	return &Engine{
		self:       cfg.RouterID,
		interfaces: interfaces,
		interval:   cfg.HelloInterval,
		socket:     socket,
		neighbors:  neighbors,
		log:        log,
	}
}

// Run broadcasts one HELLO per broadcast-capable interface every interval,
// until ctx-independent forever (§5: no task-granularity cancellation).
// Blocks the calling goroutine; callers run it under their own
// supervision (errgroup.Go in the daemon package).
func (e *Engine) Run() error {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for range ticker.C {
		e.sendAll()
	}
	return nil
}

func (e *Engine) sendAll() {
	known := e.neighbors.KnownNeighbors()

	for _, ifc := range e.interfaces {
		if !ifc.HasBroadcast {
			continue
		}

		hello := &wire.Hello{
			RouterID:       e.self,
			Timestamp:      nowSeconds(),
			IPAddress:      ifc.Address.String(),
			KnownNeighbors: known,
		}
		payload, err := hello.Encode()
		if err != nil {
			e.log.Warnf("hello: encode failed: %v", err)
			continue
		}

		dst := &net.UDPAddr{IP: ifc.Broadcast, Port: config.UDPPort}
		if err := e.socket.SendTo(dst, payload); err != nil {
			e.log.Warnf("hello: send on %s failed: %v", ifc.Name, err)
			continue
		}
		e.log.Debugf("hello sent on %s to %s", ifc.Name, dst)
	}
}

// Receive applies an incoming HELLO per §4.2's receive path. Self-received
// broadcasts (the daemon hearing its own beacon on its own interface) are
// discarded.
func (e *Engine) Receive(h *wire.Hello) {
	if h.RouterID == e.self {
		return
	}
	e.neighbors.HandleHello(h.RouterID, h.IPAddress, h.KnownNeighbors)
}

func nowSeconds() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}
