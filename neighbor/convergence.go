package neighbor

import (
	"fmt"
	"os"
	"time"

	"hiverouter.dev/lsrouted/internal/logger"
	"hiverouter.dev/lsrouted/routing"
)

// ConvergenceFile is the optional human-readable log append target (§6.4).
const ConvergenceFile = "convergence.txt"

// Convergence watches successive route recomputations and records the
// first moment every router this one has ever heard of is also routable,
// per §6.4. It fires at most once per process lifetime.
type Convergence struct {
	self    string
	started time.Time
	fired   bool
	log     *logger.Logger
}

// NewConvergence starts the convergence clock at construction time, which
// is acceptable since the daemon's first LSDB mutation happens shortly
// after startup and §6.4 measures wall-clock seconds, not process-exact
// launch time.
func NewConvergence(self string, log *logger.Logger) *Convergence {
	return &Convergence{self: self, started: time.Now(), log: log}
}

// Observe checks whether every non-self router id in knownRouters
// (placeholder entries included) now has a route, and if so appends the
// convergence line and latches fired.
func (c *Convergence) Observe(routes map[string]routing.Route, knownRouters []string) {
	if c.fired {
		return
	}

	total := 0
	for _, rid := range knownRouters {
		if rid == c.self {
			continue
		}
		total++
		if _, routable := routes[rid]; !routable {
			return
		}
	}
	if total == 0 {
		return
	}

	c.fired = true
	elapsed := time.Since(c.started).Seconds()
	line := fmt.Sprintf("[%s] %s: %.3f seconds [%d routers]\n",
		time.Now().Format(time.RFC3339), c.self, elapsed, total+1)

	f, err := os.OpenFile(ConvergenceFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		c.log.Warnf("convergence: opening %s: %v", ConvergenceFile, err)
		return
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		c.log.Warnf("convergence: writing %s: %v", ConvergenceFile, err)
	}
}
