package game

import (
	"strings"
	"testing"
	"time"
)

func TestBuildStateReport(t *testing.T) {
	ts := NewTestSim(
		WithFrameStep(100*time.Millisecond),
		WithEntity("rogue-1", GridPos{X: 2, Y: 2}, DirEast),
		WithEntity("brigand-1", GridPos{X: 6, Y: 3}, DirWest),
	)
	ts.StartMove("rogue-1", StraightPath(GridPos{X: 2, Y: 2}, DirEast, 3))
	ts.Adopt("rogue-1", StraightPath(GridPos{X: 2, Y: 2}, DirEast, 3))
	ts.Advance(200 * time.Millisecond)

	out := buildStateReport(ts.Engine, "rogue-1")

	for _, want := range []string{
		"selected=rogue-1",
		"== entities ==",
		"rogue-1",
		"brigand-1",
		"== animations ==",
		"walk adopted",
		"== reconciliation counters ==",
		"adoptions=1 corrections=0 rejections=0",
		"== recent log ==",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
}

func TestBuildStateReport_NoSelection(t *testing.T) {
	ts := NewTestSim(WithEntity("e1", GridPos{X: 1, Y: 1}, DirEast))
	out := buildStateReport(ts.Engine, "")
	if !strings.Contains(out, "selected=(none)") {
		t.Fatalf("expected a none marker:\n%s", out)
	}
	if !strings.Contains(out, "(none)\n") {
		t.Fatalf("expected an empty animations section:\n%s", out)
	}
}
