// Package iface enumerates the router's local network interfaces at
// startup, producing the immutable address list the LSA Engine advertises
// and the Hello Engine broadcasts on. Grounded on the Python original's
// list_addresses (shared/router.py), generalized from its psutil-specific
// broadcast detection to the Go-native net.FlagBroadcast interface flag.
package iface

import (
	"fmt"
	"net"
	"strings"
)

// Interface describes one local IPv4 interface as the LSA/Hello engines
// need it. Access-subnet interfaces (no broadcast address reported by the
// OS) carry Network, which is what gets advertised, alongside their Name
// and Address; inter-router link interfaces carry Address and Broadcast.
type Interface struct {
	Name         string
	Address      net.IP
	Broadcast    net.IP // nil for access-subnet interfaces
	Network      string // "<network>/24" CIDR string, set only for access-subnet interfaces
	HasBroadcast bool
}

// AdvertisedAddress returns the string an LSA lists in its "addresses"
// array for this interface: the host address for inter-router links, or
// the network prefix for access subnets (spec.md §4.1/§9).
func (i Interface) AdvertisedAddress() string {
	if i.HasBroadcast {
		return i.Address.String()
	}
	return i.Network
}

// DefaultPrefix is the container-networking interface-name convention this
// daemon enumerates (spec.md §4.1).
const DefaultPrefix = "eth"

// Discover enumerates all up IPv4 interfaces whose name starts with
// prefix. For each address: if the OS reports the interface supports
// broadcast (net.FlagBroadcast), the interface's host address and computed
// broadcast address are recorded; otherwise the address's containing /24
// network is recorded as an access-subnet prefix, with no broadcast.
func Discover(prefix string) ([]Interface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("iface: listing network interfaces: %w", err)
	}

	var out []Interface
	for _, netIface := range ifaces {
		if !strings.HasPrefix(netIface.Name, prefix) {
			continue
		}
		if netIface.Flags&net.FlagUp == 0 {
			continue
		}

		addrs, err := netIface.Addrs()
		if err != nil {
			return nil, fmt.Errorf("iface: addresses for %s: %w", netIface.Name, err)
		}

		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			ip4 := ipNet.IP.To4()
			if ip4 == nil {
				continue // IPv6 is out of scope (spec.md §1 Non-goals)
			}

			if netIface.Flags&net.FlagBroadcast != 0 {
				ones, _ := ipNet.Mask.Size()
				out = append(out, Interface{
					Name:         netIface.Name,
					Address:      ip4,
					Broadcast:    broadcastAddress(ip4, net.CIDRMask(ones, 32)),
					HasBroadcast: true,
				})
				continue
			}

			network := ip4.Mask(net.CIDRMask(24, 32))
			out = append(out, Interface{
				Name:    netIface.Name,
				Address: ip4,
				Network: fmt.Sprintf("%s/24", network.String()),
			})
		}
	}

	return out, nil
}

// broadcastAddress computes the IPv4 broadcast address for ip under mask:
// address OR (NOT mask).
func broadcastAddress(ip net.IP, mask net.IPMask) net.IP {
	bcast := make(net.IP, len(ip))
	for i := range ip {
		bcast[i] = ip[i] | ^mask[i]
	}
	return bcast
}
