// Package config reads the daemon's environment-variable configuration:
// router identity, per-neighbor link costs, and the tunable protocol
// timers. Generalized from the teacher's common package (which held only
// fixed numeric constants) plus the Python original's os.getenv reads.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// UDPPort is the fixed control-plane port for HELLO/LSA/DATA datagrams.
	UDPPort = 5000

	// BufferSize bounds a single received datagram.
	BufferSize = 4096

	// DefaultHelloInterval is how often HELLO packets are broadcast.
	DefaultHelloInterval = 5 * time.Second

	// DefaultLSAInterval is how often a router originates its own LSA.
	// 10s favors faster convergence over the 30s lower-bandwidth choice;
	// documented here as the single constant spec.md §4.3 asks for.
	DefaultLSAInterval = 10 * time.Second

	// DefaultFailureTolerance is the number of missed HELLO intervals
	// tolerated before a neighbor is declared failed.
	DefaultFailureTolerance = 3

	// FailureCheckInterval is how often the failure detector scans LastHello.
	FailureCheckInterval = 1 * time.Second

	// DefaultNeighborCost is used when no CONNECTED_TO_ROUTER_<RID> is set
	// for a neighbor that nonetheless sends a HELLO.
	DefaultNeighborCost = 1

	containerNameEnv         = "CONTAINER_NAME"
	connectedSubnetEnv       = "CONNECTED_TO_SUBNET"
	connectedRouterEnvPrefix = "CONNECTED_TO_ROUTER_"
	helloIntervalEnv         = "H_INTERVAL_SECONDS"
	lsaIntervalEnv           = "L_INTERVAL_SECONDS"
)

// Config is the fully resolved, validated startup configuration for one
// router instance.
type Config struct {
	RouterID        string
	ConnectedSubnet string
	NeighborCost    map[string]int
	HelloInterval   time.Duration
	LSAInterval     time.Duration
	Tolerance       int
}

// Load reads and validates the daemon's configuration from the process
// environment. Missing CONTAINER_NAME or a malformed
// CONNECTED_TO_ROUTER_<RID> cost are fatal configuration errors.
func Load(environ []string) (*Config, error) {
	env := splitEnviron(environ)

	routerID := env[containerNameEnv]
	if routerID == "" {
		return nil, fmt.Errorf("config: %s is required", containerNameEnv)
	}

	cfg := &Config{
		RouterID:        routerID,
		ConnectedSubnet: env[connectedSubnetEnv],
		NeighborCost:    map[string]int{},
		HelloInterval:   DefaultHelloInterval,
		LSAInterval:     DefaultLSAInterval,
		Tolerance:       DefaultFailureTolerance,
	}

	for key, value := range env {
		if !strings.HasPrefix(key, connectedRouterEnvPrefix) {
			continue
		}
		neighborID := strings.TrimPrefix(key, connectedRouterEnvPrefix)
		if neighborID == "" {
			continue
		}
		cost, err := strconv.Atoi(value)
		if err != nil || cost <= 0 {
			return nil, fmt.Errorf("config: %s%s has invalid cost %q: must be a positive integer", connectedRouterEnvPrefix, neighborID, value)
		}
		cfg.NeighborCost[neighborID] = cost
	}

	if v, ok := env[helloIntervalEnv]; ok {
		if d, err := strconv.ParseFloat(v, 64); err == nil && d > 0 {
			cfg.HelloInterval = time.Duration(d * float64(time.Second))
		}
	}
	if v, ok := env[lsaIntervalEnv]; ok {
		if d, err := strconv.ParseFloat(v, 64); err == nil && d > 0 {
			cfg.LSAInterval = time.Duration(d * float64(time.Second))
		}
	}

	return cfg, nil
}

// FromEnvironment loads configuration from the current process environment.
func FromEnvironment() (*Config, error) {
	return Load(os.Environ())
}

// CostFor returns the configured link cost to neighborID, defaulting to
// DefaultNeighborCost if no CONNECTED_TO_ROUTER_<RID> was set for it.
func (c *Config) CostFor(neighborID string) int {
	if cost, ok := c.NeighborCost[neighborID]; ok {
		return cost
	}
	return DefaultNeighborCost
}

func splitEnviron(environ []string) map[string]string {
	out := make(map[string]string, len(environ))
	for _, kv := range environ {
		idx := strings.IndexByte(kv, '=')
		if idx < 0 {
			continue
		}
		out[kv[:idx]] = kv[idx+1:]
	}
	return out
}
