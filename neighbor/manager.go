// Package neighbor owns the cross-component state the teacher's
// routing.Router held directly (NeighborCost, NeighborIP, LastHello) and
// the orchestration the Python original's NeighborManager performed:
// HELLO processing, bidirectional recognition, and failure detection.
// Generalized from the teacher's single coarse mutex over one struct
// (routing.Router) into its own owning component per spec.md §9's "from
// shared-mutable-object-graph to explicit ownership" guidance, so the
// LSA Engine is gated on recognition through an Observable rather than by
// reaching into the LSDB directly.
package neighbor

import (
	"sort"
	"sync"
	"time"

	"hiverouter.dev/lsrouted/internal/config"
	"hiverouter.dev/lsrouted/internal/logger"
	"hiverouter.dev/lsrouted/routing"
	"hiverouter.dev/lsrouted/util/observer"
	"hiverouter.dev/lsrouted/wire"
)

// Manager tracks detected and recognized neighbors and drives the LSDB's
// recompute-and-install cycle that follows any change to them. One
// coarse-grained mutex guards all of it, mirroring spec.md §5: contention
// is negligible since HELLOs and LSAs arrive on second-scale timers, not
// microsecond-scale.
type Manager struct {
	mu sync.Mutex

	self string
	cfg  *config.Config

	cost     map[string]int
	ip       map[string]string
	lastSeen map[string]time.Time

	lsdb       *routing.LSDB
	installer  routing.RouteInstaller
	convergent *Convergence

	recognized *observer.Observable[string]
	log        *logger.Logger
}

// NewManager creates a Manager for router self, wired to lsdb and
// installer for route recomputation and the recognized Observable that
// the LSA Engine subscribes to in order to start lazily.
func NewManager(cfg *config.Config, lsdb *routing.LSDB, installer routing.RouteInstaller, log *logger.Logger) *Manager {
	return &Manager{
		self:       cfg.RouterID,
		cfg:        cfg,
		cost:       make(map[string]int),
		ip:         make(map[string]string),
		lastSeen:   make(map[string]time.Time),
		lsdb:       lsdb,
		installer:  installer,
		convergent: NewConvergence(cfg.RouterID, log),
		recognized: observer.NewObservable[string](),
		log:        log,
	}
}

// OnRecognized subscribes obs to future recognition events (spec.md §4.5:
// "on first recognition of any neighbor, triggers LSA Engine.start()" —
// generalized here to fire on every recognition, since the LSA Engine's
// own start() is idempotent per §4.2).
func (m *Manager) OnRecognized(obs observer.Observer[string]) {
	m.recognized.AddObserver(obs)
}

// HandleHello applies the receive-path rules of §4.2 atomically: detection
// (NeighborCost + LastHello) always happens; recognition (NeighborIP) only
// when the HELLO lists self among its known_neighbors and this is the
// first time we've seen it do so.
func (m *Manager) HandleHello(senderID string, senderIP string, knownNeighbors []string) {
	if senderID == m.self {
		return
	}

	m.mu.Lock()
	m.cost[senderID] = m.cfg.CostFor(senderID)
	m.lastSeen[senderID] = time.Now()

	_, alreadyRecognized := m.ip[senderID]
	sawSelf := containsString(knownNeighbors, m.self)
	promoted := sawSelf && !alreadyRecognized
	if promoted {
		m.ip[senderID] = senderIP
	}
	m.mu.Unlock()

	m.log.Infof("hello from %s (recognized=%v)", senderID, promoted || alreadyRecognized)

	if promoted {
		m.log.Infof("neighbor %s recognized", senderID)
		m.recognized.NotifyObservers(senderID)
	}
}

// KnownNeighbors returns the detected-neighbor id set, sorted, for
// inclusion in an outgoing HELLO's known_neighbors field.
func (m *Manager) KnownNeighbors() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.cost))
	for id := range m.cost {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// LinkCosts returns a snapshot of NeighborCost, safe for the LSA Engine to
// embed directly in an outgoing LSA's links field.
func (m *Manager) LinkCosts() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]int, len(m.cost))
	for id, cost := range m.cost {
		out[id] = cost
	}
	return out
}

// RecognizedIPs returns a snapshot of NeighborIP, the unicast fan-out list
// for LSA transmission.
func (m *Manager) RecognizedIPs() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]string, len(m.ip))
	for id, ip := range m.ip {
		out[id] = ip
	}
	return out
}

// IsRecognized reports whether id is currently a bidirectionally
// recognized neighbor.
func (m *Manager) IsRecognized(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.ip[id]
	return ok
}

// Resolve returns the next hop's IP for forwarding a DATA packet destined
// for destRID, per the routing table derived from the current LSDB. Used
// by the dispatcher's DATA forwarding path (§4.6); a false return means
// drop the packet (no route).
func (m *Manager) Resolve(destRID string) (via string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	routes := m.lsdb.ShortestPaths(m.self)
	route, ok := routes[destRID]
	if !ok {
		return "", false
	}
	via, ok = m.ip[route.NextHop]
	return via, ok
}

// ApplyLSA hands an incoming LSA to the LSDB under the same lock that
// guards neighbor state, satisfying §5's atomicity requirement that no
// reader sees an LSDB whose SPF result has not yet been reflected. Returns
// whether the LSA was new (caller should reflood) and, if so, recomputes
// and installs routes before returning.
func (m *Manager) ApplyLSA(lsa *wire.LSA) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.lsdb.Update(lsa) {
		return false
	}
	m.recomputeAndInstallLocked()
	return true
}

// InstallLocalLSA installs a freshly originated local LSA into the LSDB
// (step 2 of §4.3's origination sequence) and recomputes routes, still
// under the neighbor-state lock so concurrent HELLOs can't race a
// half-updated LSDB.
func (m *Manager) InstallLocalLSA(seq int, addresses []string, links map[string]int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lsdb.InstallLocal(m.self, seq, addresses, links)
	m.recomputeAndInstallLocked()
}

// recomputeAndInstallLocked runs SPF and installs routes. Must be called
// with mu held.
func (m *Manager) recomputeAndInstallLocked() {
	routes := m.lsdb.ShortestPaths(m.self)

	for dest, route := range routes {
		via, ok := m.ip[route.NextHop]
		if !ok {
			// Gateway not yet recognized: skip without error, per §4.4/§7;
			// the next SPF cycle (triggered by the next LSDB mutation)
			// retries.
			continue
		}

		entry, ok := m.lsdb.Get(dest)
		if !ok {
			continue
		}
		for _, addr := range entry.Addresses {
			if err := m.installer.Install(addr, via); err != nil {
				m.log.Warnf("route install %s via %s failed: %v", addr, via, err)
			}
		}
	}

	m.convergent.Observe(routes, m.lsdb.RouterIDs())
}

// CheckFailures scans LastHello for neighbors silent longer than
// H_INTERVAL * TOLERANCE and declares them failed per §4.5: removed from
// NeighborCost, NeighborIP, LastHello, and the LSDB entirely, followed by
// a route recompute.
func (m *Manager) CheckFailures() {
	deadline := m.cfg.HelloInterval * time.Duration(m.cfg.Tolerance)

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	var anyFailed bool
	for id, last := range m.lastSeen {
		if now.Sub(last) <= deadline {
			continue
		}

		m.log.Warnf("neighbor %s failed (no hello for %s)", id, now.Sub(last).Round(time.Second))
		delete(m.cost, id)
		delete(m.ip, id)
		delete(m.lastSeen, id)
		m.lsdb.Remove(id)
		anyFailed = true
	}

	if anyFailed {
		m.recomputeAndInstallLocked()
	}
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
