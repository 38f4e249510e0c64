// Command convergence-wait polls a router's convergence.txt (§6.4) until
// every router named with -routers has appended a convergence line, or
// until -timeout elapses. It is a test/CI helper, not part of the daemon
// itself: used to assert the "convergence (liveness)" testable property
// (spec.md §8) without hard-coding a sleep duration in a test harness.
// Grounded on the teacher's progressbar use in cmd/file.go for a
// similarly long-running, user-visible wait.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"hiverouter.dev/lsrouted/neighbor"
)

func main() {
	var routersCSV string
	var timeout time.Duration
	flag.StringVar(&routersCSV, "routers", "", "comma-separated RouterIds expected to converge")
	flag.DurationVar(&timeout, "timeout", 60*time.Second, "maximum time to wait")
	flag.Parse()

	want := splitNonEmpty(routersCSV)
	if len(want) == 0 {
		fmt.Fprintln(os.Stderr, "convergence-wait: -routers is required")
		os.Exit(2)
	}

	bar := progressbar.NewOptions(len(want),
		progressbar.OptionSetDescription("waiting for convergence"),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() { fmt.Println() }),
	)

	deadline := time.Now().Add(timeout)
	seen := make(map[string]bool, len(want))

	for time.Now().Before(deadline) {
		for _, rid := range readConverged() {
			if !seen[rid] && contains(want, rid) {
				seen[rid] = true
				bar.Add(1)
			}
		}
		if len(seen) == len(want) {
			os.Exit(0)
		}
		time.Sleep(500 * time.Millisecond)
	}

	fmt.Fprintf(os.Stderr, "convergence-wait: timed out after %s, %d/%d routers converged\n", timeout, len(seen), len(want))
	os.Exit(1)
}

// readConverged parses every RouterId that has appended a line to
// convergence.txt so far.
func readConverged() []string {
	f, err := os.Open(neighbor.ConvergenceFile)
	if err != nil {
		return nil
	}
	defer f.Close()

	var rids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		// "[<date>] <rid>: <seconds> seconds [<router-count> routers]"
		closeBracket := strings.Index(line, "] ")
		if closeBracket < 0 {
			continue
		}
		rest := line[closeBracket+2:]
		colon := strings.Index(rest, ":")
		if colon < 0 {
			continue
		}
		rids = append(rids, rest[:colon])
	}
	return rids
}

func splitNonEmpty(csv string) []string {
	var out []string
	for _, s := range strings.Split(csv, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
