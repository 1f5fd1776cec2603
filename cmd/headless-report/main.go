package main

import (
	"flag"
	"fmt"
	"math/rand"
	"time"

	"github.com/marrowvale/vanguard-client/internal/game"
)

const (
	gridW = 20
	gridH = 14
)

func main() {
	var runs int
	var ticks int
	var seedBase int64
	var seedStep int64
	var latencyMs int
	var scenario string

	flag.IntVar(&runs, "runs", 5, "number of headless runs")
	flag.IntVar(&ticks, "ticks", 3600, "render frames per run")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.IntVar(&latencyMs, "latency", 300, "stub server latency in milliseconds")
	flag.StringVar(&scenario, "scenario", "skirmish", "scenario name")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if ticks <= 0 {
		fmt.Println("error: -ticks must be > 0")
		return
	}
	if scenario != "skirmish" {
		fmt.Printf("error: unsupported scenario %q (supported: skirmish)\n", scenario)
		return
	}

	fmt.Printf("=== Headless Reconciliation Report ===\n")
	fmt.Printf("scenario=%s runs=%d ticks=%d seed_base=%d seed_step=%d latency=%dms\n\n",
		scenario, runs, ticks, seedBase, seedStep, latencyMs)

	reporter := game.NewReconReporter()
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		report := runSkirmish(seed, ticks, time.Duration(latencyMs)*time.Millisecond)
		reporter.Add(report)
		fmt.Println(report.FormatRun())
	}

	fmt.Println()
	fmt.Print(reporter.Summary().Format())
}

// runSkirmish drives four entities through random moves and attacks against
// the latency stub, then tallies the SimLog.
func runSkirmish(seed int64, ticks int, latency time.Duration) game.RunReport {
	ts := game.NewTestSim(
		game.WithEntity("rogue-1", game.GridPos{X: 3, Y: 3}, game.DirEast),
		game.WithEntity("rogue-2", game.GridPos{X: 5, Y: 9}, game.DirNorth),
		game.WithEntity("brigand-1", game.GridPos{X: 14, Y: 4}, game.DirWest),
		game.WithEntity("brigand-2", game.GridPos{X: 16, Y: 10}, game.DirWest),
		game.WithLocalServer(seed, latency),
	)
	rng := rand.New(rand.NewSource(seed))
	ids := ts.Engine.Store.EntityIDs()

	for frame := 0; frame < ticks; frame++ {
		ts.StepFrame()
		// Issue a command roughly every 12 frames.
		if frame%12 != 0 {
			continue
		}
		id := ids[rng.Intn(len(ids))]
		if _, busy := ts.Engine.Registry.Active(id); busy || ts.Engine.Dodges.Active(id) {
			continue
		}
		if rng.Float64() < 0.3 {
			commandAttack(ts, id)
		} else {
			commandMove(ts, rng, id)
		}
	}
	return game.CollectRunReport(seed, ticks, ts.SimLog)
}

func commandMove(ts *game.TestSim, rng *rand.Rand, id string) {
	e, ok := ts.Engine.Store.Entity(id)
	if !ok {
		return
	}
	target := game.GridPos{
		X: clamp(e.Position.X+rng.Intn(9)-4, 0, gridW-1),
		Y: clamp(e.Position.Y+rng.Intn(9)-4, 0, gridH-1),
	}
	if target == e.Position {
		return
	}
	ts.StartMove(id, game.ChebyshevPath(e.Position, target))
}

func commandAttack(ts *game.TestSim, id string) {
	attacker, ok := ts.Engine.Store.Entity(id)
	if !ok {
		return
	}
	bestDist := 1 << 30
	bestID := ""
	for _, other := range ts.Engine.Store.EntityIDs() {
		if other == id {
			continue
		}
		if c, found := ts.Engine.Store.EffectiveCell(other); found {
			if d := game.Manhattan(attacker.Position, c); d < bestDist {
				bestDist = d
				bestID = other
			}
		}
	}
	if bestID == "" {
		return
	}
	// Ignore begin errors; a busy target is part of normal traffic.
	_ = ts.Engine.Attacks.Begin(id, bestID, time.Second)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
