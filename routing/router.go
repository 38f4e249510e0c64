package routing

import (
	"fmt"
	"net"
	"os/exec"
	"strings"

	"github.com/vishvananda/netlink"

	"hiverouter.dev/lsrouted/internal/logger"
)

// RouteInstaller is the narrow interface isolating "install a route" from
// the SPF recompute path, per the teacher's pattern of hiding OS
// interaction behind a fakeable interface (there it was sock.Socket; here
// it is the kernel routing table). Destination is either a host address
// ("10.0.0.3") or a CIDR prefix ("192.168.1.0/24"); via is the next hop's
// IP. Install must be idempotent: calling it twice with the same arguments
// leaves the kernel in the same state (route replace, not route add).
type RouteInstaller interface {
	Install(destination, via string) error
}

// NetlinkInstaller installs routes directly through the kernel's netlink
// interface, falling back to shelling out to the "ip" command if netlink
// route resolution fails (e.g. the via address isn't reachable on any
// locally known link yet — a transient condition the next SPF cycle will
// retry per §7's "Gateway not yet recognized" policy).
type NetlinkInstaller struct {
	log *logger.Logger
}

// NewNetlinkInstaller creates a RouteInstaller backed by netlink.
func NewNetlinkInstaller(log *logger.Logger) *NetlinkInstaller {
	return &NetlinkInstaller{log: log}
}

// Install invokes the kernel's route-replace primitive. Failures are
// logged and returned, never panicked on: route install is best-effort
// per §4.4 and §7.
func (n *NetlinkInstaller) Install(destination, via string) error {
	dst, err := parseDestination(destination)
	if err != nil {
		return fmt.Errorf("routing: %w", err)
	}

	gw := net.ParseIP(via)
	if gw == nil {
		return fmt.Errorf("routing: invalid gateway %q", via)
	}

	route := &netlink.Route{Dst: dst, Gw: gw}
	if err := netlink.RouteReplace(route); err != nil {
		n.log.Warnf("netlink route replace %s via %s failed, falling back to ip route: %v", destination, via, err)
		return execRouteReplace(destination, via)
	}
	return nil
}

// execRouteReplace shells out to "ip route replace" when netlink rejects
// the route outright (e.g. missing CAP_NET_ADMIN in a constrained test
// container, or a kernel too old for the netlink API this build expects).
func execRouteReplace(destination, via string) error {
	cmd := exec.Command("ip", "route", "replace", destination, "via", via)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("routing: ip route replace %s via %s: %w (%s)", destination, via, err, strings.TrimSpace(string(out)))
	}
	return nil
}

func parseDestination(destination string) (*net.IPNet, error) {
	if strings.Contains(destination, "/") {
		_, ipNet, err := net.ParseCIDR(destination)
		if err != nil {
			return nil, fmt.Errorf("invalid destination prefix %q: %w", destination, err)
		}
		return ipNet, nil
	}

	ip := net.ParseIP(destination).To4()
	if ip == nil {
		return nil, fmt.Errorf("invalid destination address %q", destination)
	}
	return &net.IPNet{IP: ip, Mask: net.CIDRMask(32, 32)}, nil
}

// FakeInstaller is an in-memory RouteInstaller for tests, recording every
// call instead of touching the kernel.
type FakeInstaller struct {
	Installed map[string]string // destination -> via, last write wins
	Calls     int
}

// NewFakeInstaller creates an empty FakeInstaller.
func NewFakeInstaller() *FakeInstaller {
	return &FakeInstaller{Installed: map[string]string{}}
}

func (f *FakeInstaller) Install(destination, via string) error {
	f.Calls++
	f.Installed[destination] = via
	return nil
}
