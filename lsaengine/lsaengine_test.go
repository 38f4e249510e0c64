package lsaengine

import (
	"io"
	"net"
	"testing"
	"time"

	"hiverouter.dev/lsrouted/iface"
	"hiverouter.dev/lsrouted/internal/config"
	"hiverouter.dev/lsrouted/internal/logger"
	"hiverouter.dev/lsrouted/neighbor"
	"hiverouter.dev/lsrouted/routing"
	"hiverouter.dev/lsrouted/sock"
	"hiverouter.dev/lsrouted/util/observer"
	"hiverouter.dev/lsrouted/wire"
)

type fakeSocket struct {
	sent []*net.UDPAddr
}

func (f *fakeSocket) LocalAddr() *net.UDPAddr                   { return nil }
func (f *fakeSocket) Open(int, bool) error                      { return nil }
func (f *fakeSocket) Close() error                               { return nil }
func (f *fakeSocket) Subscribe(observer.Observer[*sock.Packet]) {}
func (f *fakeSocket) SendTo(addr *net.UDPAddr, data []byte) error {
	f.sent = append(f.sent, addr)
	return nil
}

func newTestEngine(t *testing.T) (*Engine, *neighbor.Manager, *fakeSocket) {
	t.Helper()
	cfg := &config.Config{RouterID: "R1", LSAInterval: time.Hour, NeighborCost: map[string]int{"R2": 1}}
	fs := &fakeSocket{}
	log := logger.New("R1", io.Discard)
	mgr := neighbor.NewManager(cfg, routing.NewLSDB(), routing.NewFakeInstaller(), log)
	ifaces := []iface.Interface{{Address: net.ParseIP("10.0.0.1"), HasBroadcast: true}}
	return New(cfg, ifaces, fs, mgr, log), mgr, fs
}

func TestOriginateUnicastsOnlyToRecognizedNeighbors(t *testing.T) {
	e, mgr, fs := newTestEngine(t)
	mgr.HandleHello("R2", "10.0.0.2", []string{"R1"})

	e.originate()

	if len(fs.sent) != 1 {
		t.Fatalf("originate sent %d packets, want 1 (one recognized neighbor)", len(fs.sent))
	}
	if fs.sent[0].IP.String() != "10.0.0.2" {
		t.Errorf("sent to %s, want 10.0.0.2", fs.sent[0].IP)
	}
}

func TestStartIsIdempotent(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.Start()
	e.Start() // must not panic on double-close of startCh

	select {
	case <-e.startCh:
	default:
		t.Fatal("startCh should be closed after Start")
	}
}

func TestReceiveDropsStaleAndDoesNotReflood(t *testing.T) {
	e, mgr, fs := newTestEngine(t)
	mgr.HandleHello("R2", "10.0.0.2", []string{"R1"})
	mgr.HandleHello("R3", "10.0.0.3", []string{"R1"})

	lsa := &wire.LSA{RouterID: "R9", SequenceNumber: 3, Links: map[string]int{}}
	raw, _ := lsa.Encode()

	e.Receive(lsa, raw, "10.0.0.2")
	if len(fs.sent) != 1 {
		t.Fatalf("first receipt: sent %d packets, want 1 (flood to R3 only)", len(fs.sent))
	}

	fs.sent = nil
	e.Receive(lsa, raw, "10.0.0.2") // duplicate seq
	if len(fs.sent) != 0 {
		t.Errorf("duplicate LSA must not be reflooded, got %d sends", len(fs.sent))
	}
}
