package sock

import (
	"io"
	"net"
	"testing"
	"time"

	"hiverouter.dev/lsrouted/internal/logger"
)

type captureObserver struct {
	ch chan *Packet
}

func (c *captureObserver) Update(p *Packet) {
	c.ch <- p
}

func TestSendToAndSubscribeRoundTrip(t *testing.T) {
	log := logger.New("test", io.Discard)

	a := New(4096, log).(*udpSocket)
	if err := a.Open(0, false); err != nil {
		t.Fatalf("open a: %v", err)
	}
	defer a.Close()

	b := New(4096, log).(*udpSocket)
	if err := b.Open(0, false); err != nil {
		t.Fatalf("open b: %v", err)
	}
	defer b.Close()

	cap := &captureObserver{ch: make(chan *Packet, 1)}
	b.Subscribe(cap)

	loopback := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: b.LocalAddr().Port}
	if err := a.SendTo(loopback, []byte("hello")); err != nil {
		t.Fatalf("SendTo: %v", err)
	}

	select {
	case pkt := <-cap.ch:
		if string(pkt.Data) != "hello" {
			t.Errorf("received %q, want %q", pkt.Data, "hello")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for loopback datagram")
	}
}
