package neighbor

import (
	"io"
	"os"
	"testing"

	"hiverouter.dev/lsrouted/internal/logger"
	"hiverouter.dev/lsrouted/routing"
)

func TestConvergenceFiresOnceWhenAllKnownRoutersRoutable(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	defer os.Chdir(wd)

	log := logger.New("R1", io.Discard)
	c := NewConvergence("R1", log)

	routes := map[string]routing.Route{"R2": {NextHop: "R2", Cost: 1}}
	c.Observe(routes, []string{"R1", "R2"})

	data, err := os.ReadFile(ConvergenceFile)
	if err != nil {
		t.Fatalf("expected %s to be written, got error: %v", ConvergenceFile, err)
	}
	if len(data) == 0 {
		t.Fatal("convergence.txt should contain one line")
	}

	// A second Observe call with the same, still fully routable state must
	// not append again: convergence fires at most once per process lifetime.
	c.Observe(routes, []string{"R1", "R2"})
	data2, _ := os.ReadFile(ConvergenceFile)
	if len(data2) != len(data) {
		t.Error("convergence must only fire once")
	}
}

func TestConvergenceDoesNotFireWhenARouterIsUnrouted(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	defer os.Chdir(wd)

	log := logger.New("R1", io.Discard)
	c := NewConvergence("R1", log)

	c.Observe(map[string]routing.Route{}, []string{"R1", "R2"})

	if _, err := os.Stat(ConvergenceFile); err == nil {
		t.Error("convergence.txt should not exist when a known router has no route")
	}
}
