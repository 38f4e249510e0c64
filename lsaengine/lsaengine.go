// Package lsaengine implements the LSA Engine: lazy origination of this
// router's own LSA, and the flood-with-duplicate-suppression receive path.
// Grounded on the Python original's LSASender (shared/router.py) and on
// the teacher's lazily-started-task pattern (spec.md §9: "threads are
// launched from a start() entry, not from construction").
package lsaengine

import (
	"net"
	"sync"
	"time"

	"hiverouter.dev/lsrouted/iface"
	"hiverouter.dev/lsrouted/internal/config"
	"hiverouter.dev/lsrouted/internal/logger"
	"hiverouter.dev/lsrouted/neighbor"
	"hiverouter.dev/lsrouted/sock"
	"hiverouter.dev/lsrouted/wire"
)

// Engine originates and floods LSAs.
type Engine struct {
	self       string
	interfaces []iface.Interface
	interval   time.Duration
	socket     sock.Socket
	neighbors  *neighbor.Manager
	log        *logger.Logger

	mu      sync.Mutex
	seq     int
	started bool
	startCh chan struct{}
}

// New creates an LSA Engine. It stays dormant (Run blocks until Start is
// called) until the neighbor Manager reports a first recognition — wiring
// that up is the daemon package's job via neighbors.OnRecognized(engine).
func New(cfg *config.Config, interfaces []iface.Interface, socket sock.Socket, neighbors *neighbor.Manager, log *logger.Logger) *Engine {
	return &Engine{
		self:       cfg.RouterID,
		interfaces: interfaces,
		interval:   cfg.LSAInterval,
		socket:     socket,
		neighbors:  neighbors,
		log:        log,
		startCh:    make(chan struct{}),
	}
}

// Update implements observer.Observer[string]: the neighbor Manager
// notifies with the newly recognized router id on every recognition
// event. The LSA Engine only reacts to the first one.
func (e *Engine) Update(recognizedID string) {
	e.Start()
}

// Start begins origination. Idempotent: only the first call has any
// effect, matching §4.2's "signal the LSA Engine to start originating
// (idempotent — starts at most once)".
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	close(e.startCh)
}

// Run blocks until Start is called, then originates one LSA immediately
// and every interval afterward, forever. Callers run it under their own
// supervision (errgroup.Go).
func (e *Engine) Run() error {
	<-e.startCh

	e.originate()

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for range ticker.C {
		e.originate()
	}
	return nil
}

// originate implements §4.3's three-step origination sequence.
func (e *Engine) originate() {
	e.mu.Lock()
	e.seq++
	seq := e.seq
	e.mu.Unlock()

	addresses := make([]string, 0, len(e.interfaces))
	for _, ifc := range e.interfaces {
		addresses = append(addresses, ifc.AdvertisedAddress())
	}
	links := e.neighbors.LinkCosts()

	e.neighbors.InstallLocalLSA(seq, addresses, links)

	lsa := &wire.LSA{
		RouterID:       e.self,
		SequenceNumber: seq,
		Timestamp:      nowSeconds(),
		Addresses:      addresses,
		Links:          links,
	}
	payload, err := lsa.Encode()
	if err != nil {
		e.log.Warnf("lsa: encode failed: %v", err)
		return
	}

	e.unicastToRecognized(payload, "")
	e.log.Infof("originated lsa seq=%d links=%d", seq, len(links))
}

// Receive applies §4.3's flooding receive path: hand to the LSDB, and if
// it was new, forward the byte-identical datagram to every recognized
// neighbor except the one it arrived from (split-horizon on the incoming
// link).
func (e *Engine) Receive(lsa *wire.LSA, raw []byte, fromIP string) {
	if !e.neighbors.ApplyLSA(lsa) {
		return // stale or duplicate: silent drop per §7
	}

	e.unicastToRecognized(raw, fromIP)
	e.log.Debugf("flooded lsa from %s seq=%d", lsa.RouterID, lsa.SequenceNumber)
}

func (e *Engine) unicastToRecognized(payload []byte, excludeIP string) {
	for id, ip := range e.neighbors.RecognizedIPs() {
		if ip == excludeIP {
			continue
		}
		dst := &net.UDPAddr{IP: net.ParseIP(ip), Port: config.UDPPort}
		if err := e.socket.SendTo(dst, payload); err != nil {
			e.log.Warnf("lsa: send to %s (%s) failed: %v", id, ip, err)
		}
	}
}

func nowSeconds() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}
