// Package daemon wires the Interface Inspector, Hello Engine, LSA Engine,
// neighbor Manager, and Packet Dispatcher into the four long-lived
// concurrent tasks spec.md §5 requires, using golang.org/x/sync/errgroup
// to run them in place of the teacher's bare `go` statements in main.go.
// The group is a plain errgroup.Group: a task that returns does not stop
// the others, and the socket's read loop is not a member of the group.
package daemon

import (
	"time"

	"golang.org/x/sync/errgroup"

	"hiverouter.dev/lsrouted/dispatch"
	"hiverouter.dev/lsrouted/hello"
	"hiverouter.dev/lsrouted/iface"
	"hiverouter.dev/lsrouted/internal/config"
	"hiverouter.dev/lsrouted/internal/logger"
	"hiverouter.dev/lsrouted/lsaengine"
	"hiverouter.dev/lsrouted/neighbor"
	"hiverouter.dev/lsrouted/routing"
	"hiverouter.dev/lsrouted/sock"
)

// Daemon is one fully-wired router instance.
type Daemon struct {
	cfg       *config.Config
	log       *logger.Logger
	socket    sock.Socket
	neighbors *neighbor.Manager
	hello     *hello.Engine
	lsa       *lsaengine.Engine
	installer routing.RouteInstaller
}

// New builds a Daemon for cfg, discovering local interfaces and
// constructing every component. installer may be a routing.FakeInstaller
// in tests; production callers pass routing.NewNetlinkInstaller.
func New(cfg *config.Config, installer routing.RouteInstaller, log *logger.Logger) (*Daemon, error) {
	interfaces, err := iface.Discover(iface.DefaultPrefix)
	if err != nil {
		return nil, err
	}

	socket := sock.New(config.BufferSize, log)
	lsdb := routing.NewLSDB()
	neighbors := neighbor.NewManager(cfg, lsdb, installer, log)
	helloEngine := hello.New(cfg, interfaces, socket, neighbors, log)
	lsaEngine := lsaengine.New(cfg, interfaces, socket, neighbors, log)

	neighbors.OnRecognized(lsaEngine)

	return &Daemon{
		cfg:       cfg,
		log:       log,
		socket:    socket,
		neighbors: neighbors,
		hello:     helloEngine,
		lsa:       lsaEngine,
		installer: installer,
	}, nil
}

// Run opens the socket and runs the hello sender, LSA sender and failure
// detector in an errgroup.Group, returning only after all three have
// returned. None of their loops ever returns, so in normal operation Run
// does not return (§6.5: the daemon runs until signaled). A socket open
// failure is returned before any task starts. The packet receiver is the fourth
// task; it runs as the socket's own internal readLoop goroutine, started
// by Open, and dispatches synchronously into the Dispatcher registered
// below.
func (d *Daemon) Run() error {
	if err := d.socket.Open(config.UDPPort, true); err != nil {
		return err
	}
	defer d.socket.Close()

	dispatcher := dispatch.New(d.cfg, d.socket, d.hello, d.lsa, d.neighbors, d.log)
	d.socket.Subscribe(dispatcher)

	var g errgroup.Group
	g.Go(d.hello.Run)
	g.Go(d.lsa.Run)
	g.Go(d.runFailureDetector)

	return g.Wait()
}

func (d *Daemon) runFailureDetector() error {
	ticker := time.NewTicker(config.FailureCheckInterval)
	defer ticker.Stop()
	for range ticker.C {
		d.neighbors.CheckFailures()
	}
	return nil
}
