package dispatch

import (
	"io"
	"net"
	"testing"
	"time"

	"hiverouter.dev/lsrouted/hello"
	"hiverouter.dev/lsrouted/iface"
	"hiverouter.dev/lsrouted/internal/config"
	"hiverouter.dev/lsrouted/internal/logger"
	"hiverouter.dev/lsrouted/lsaengine"
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
func (f *fakeSocket) Close() error                              { return nil }
func (f *fakeSocket) Subscribe(observer.Observer[*sock.Packet]) {}
func (f *fakeSocket) SendTo(addr *net.UDPAddr, data []byte) error {
	f.sent = append(f.sent, addr)
	return nil
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *neighbor.Manager, *fakeSocket) {
	t.Helper()
	cfg := &config.Config{RouterID: "R1", HelloInterval: 5 * time.Second, LSAInterval: time.Hour, Tolerance: 3}
	fs := &fakeSocket{}
	log := logger.New("R1", io.Discard)
	mgr := neighbor.NewManager(cfg, routing.NewLSDB(), routing.NewFakeInstaller(), log)
	ifaces := []iface.Interface{{Address: net.ParseIP("10.0.0.1"), HasBroadcast: true}}
	helloEngine := hello.New(cfg, ifaces, fs, mgr, log)
	lsaEngine := lsaengine.New(cfg, ifaces, fs, mgr, log)
	return New(cfg, fs, helloEngine, lsaEngine, mgr, log), mgr, fs
}

func TestUpdateDiscardsSelfOriginated(t *testing.T) {
	d, _, fs := newTestDispatcher(t)
	h := &wire.Hello{RouterID: "R1", IPAddress: "10.0.0.1"}
	raw, _ := h.Encode()

	d.Update(&sock.Packet{Addr: &net.UDPAddr{IP: net.ParseIP("10.0.0.1")}, Data: raw})

	if len(fs.sent) != 0 {
		t.Errorf("self-originated packet must not trigger any send, got %d", len(fs.sent))
	}
}

func TestUpdateDispatchesHello(t *testing.T) {
	d, mgr, _ := newTestDispatcher(t)
	h := &wire.Hello{RouterID: "R2", IPAddress: "10.0.0.2", KnownNeighbors: []string{"R1"}}
	raw, _ := h.Encode()

	d.Update(&sock.Packet{Addr: &net.UDPAddr{IP: net.ParseIP("10.0.0.2")}, Data: raw})

	if !mgr.IsRecognized("R2") {
		t.Error("HELLO datagram should have been routed to the Hello Engine and recognized R2")
	}
}

func TestUpdateDropsMalformedPacket(t *testing.T) {
	d, _, fs := newTestDispatcher(t)
	d.Update(&sock.Packet{Addr: &net.UDPAddr{IP: net.ParseIP("10.0.0.2")}, Data: []byte("not json")})

	if len(fs.sent) != 0 {
		t.Errorf("malformed packet must be dropped silently, got %d sends", len(fs.sent))
	}
}

func TestUpdateDeliversDataAddressedToSelf(t *testing.T) {
	d, _, fs := newTestDispatcher(t)
	data := &wire.Data{RouterID: "R2", Destination: "R1", Message: "hi"}
	raw, _ := data.Encode()

	d.Update(&sock.Packet{Addr: &net.UDPAddr{IP: net.ParseIP("10.0.0.2")}, Data: raw})

	if len(fs.sent) != 0 {
		t.Errorf("locally delivered DATA must not be forwarded, got %d sends", len(fs.sent))
	}
}

func TestUpdateDropsDataWithNoRoute(t *testing.T) {
	d, _, fs := newTestDispatcher(t)
	data := &wire.Data{RouterID: "R2", Destination: "R9", Message: "hi"}
	raw, _ := data.Encode()

	d.Update(&sock.Packet{Addr: &net.UDPAddr{IP: net.ParseIP("10.0.0.2")}, Data: raw})

	if len(fs.sent) != 0 {
		t.Errorf("DATA with no route must be dropped, got %d sends", len(fs.sent))
	}
}
