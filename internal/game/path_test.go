package game

import (
	"math"
	"testing"
)

func straightEast(from GridPos, n int) []GridPos {
	return StraightPath(from, DirEast, n)
}

func TestPrecomputePath_Directions(t *testing.T) {
	path := []GridPos{{X: 2, Y: 2}, {X: 3, Y: 2}, {X: 3, Y: 3}, {X: 2, Y: 4}}
	pd := PrecomputePath(path)
	if len(pd.Directions) != 3 || len(pd.Distances) != 3 {
		t.Fatalf("expected 3 segments, got %d/%d", len(pd.Directions), len(pd.Distances))
	}
	want := []Direction{DirEast, DirSouth, DirSouthWest}
	for i, w := range want {
		if pd.Directions[i] != w {
			t.Fatalf("segment %d: expected %s, got %s", i, w, pd.Directions[i])
		}
	}
	wantTotal := 2 + math.Sqrt2
	if math.Abs(pd.Total-wantTotal) > 1e-9 {
		t.Fatalf("expected total %.4f, got %.4f", wantTotal, pd.Total)
	}
}

func TestPrecomputePath_Degenerate(t *testing.T) {
	if pd := PrecomputePath(nil); len(pd.Directions) != 0 {
		t.Fatal("empty path must yield empty data")
	}
	if pd := PrecomputePath([]GridPos{{X: 1, Y: 1}}); len(pd.Directions) != 0 {
		t.Fatal("single-cell path must yield empty data")
	}
}

func TestSamplePath_SegmentMapping(t *testing.T) {
	// Three segments: progress scales by len-1 before the floor split.
	path := straightEast(GridPos{X: 0, Y: 0}, 4)

	pos, seg, segT := SamplePath(path, 0.5)
	if seg != 1 {
		t.Fatalf("expected segment 1 at half progress, got %d", seg)
	}
	if math.Abs(segT-0.5) > 1e-9 {
		t.Fatalf("expected in-segment fraction 0.5, got %.4f", segT)
	}
	if math.Abs(pos.X-1.5) > 1e-9 || pos.Y != 0 {
		t.Fatalf("expected (1.5,0), got %v", pos)
	}
}

func TestSamplePath_Bounds(t *testing.T) {
	path := straightEast(GridPos{X: 2, Y: 2}, 3)

	pos, seg, _ := SamplePath(path, 0)
	if pos != (Vec2{X: 2, Y: 2}) || seg != 0 {
		t.Fatalf("progress 0: expected start cell, got %v seg=%d", pos, seg)
	}
	pos, seg, segT := SamplePath(path, 1)
	if pos != (Vec2{X: 4, Y: 2}) {
		t.Fatalf("progress 1: expected exact final cell, got %v", pos)
	}
	if seg != 1 || segT != 1 {
		t.Fatalf("progress 1: expected last segment fully traversed, got seg=%d t=%.2f", seg, segT)
	}
	if pos, _, _ := SamplePath(path, -0.3); pos != (Vec2{X: 2, Y: 2}) {
		t.Fatalf("negative progress must clamp to start, got %v", pos)
	}
	if pos, _, _ := SamplePath(path, 1.7); pos != (Vec2{X: 4, Y: 2}) {
		t.Fatalf("overshoot progress must clamp to end, got %v", pos)
	}
}

func TestSamplePath_ShortPaths(t *testing.T) {
	if pos, _, _ := SamplePath(nil, 0.5); pos != (Vec2{}) {
		t.Fatalf("empty path: expected zero, got %v", pos)
	}
	only := []GridPos{{X: 7, Y: 3}}
	if pos, _, _ := SamplePath(only, 0.5); pos != (Vec2{X: 7, Y: 3}) {
		t.Fatalf("single cell: expected the cell itself, got %v", pos)
	}
}

func TestDeriveServerPath_ManhattanOrder(t *testing.T) {
	start := GridPos{X: 2, Y: 2}
	cells := []GridPos{{X: 2, Y: 2}, {X: 3, Y: 2}, {X: 3, Y: 3}, {X: 4, Y: 3}}
	senses := make(map[string]SensesSnapshot, len(cells))
	for _, c := range cells {
		senses[c.Key()] = NewSensesSnapshot([]GridPos{c}, nil)
	}

	got := DeriveServerPath(start, senses)
	if !PathsEqual(got, cells) {
		t.Fatalf("expected %v, got %v", cells, got)
	}
}

func TestDeriveServerPath_TieBreak(t *testing.T) {
	// (3,2) and (2,3) are equidistant from the start; (y,x) order keeps the
	// result stable.
	start := GridPos{X: 2, Y: 2}
	senses := map[string]SensesSnapshot{
		GridPos{X: 2, Y: 3}.Key(): {},
		GridPos{X: 3, Y: 2}.Key(): {},
	}
	got := DeriveServerPath(start, senses)
	want := []GridPos{{X: 3, Y: 2}, {X: 2, Y: 3}}
	if !PathsEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestDeriveServerPath_Empty(t *testing.T) {
	if got := DeriveServerPath(GridPos{}, nil); got != nil {
		t.Fatalf("expected nil for empty senses, got %v", got)
	}
}

func TestEaseOutCubic(t *testing.T) {
	if easeOutCubic(0) != 0 || easeOutCubic(1) != 1 {
		t.Fatal("curve endpoints must be exact")
	}
	if got := easeOutCubic(0.5); math.Abs(got-0.875) > 1e-9 {
		t.Fatalf("expected 0.875 at midpoint, got %.4f", got)
	}
	if easeOutCubic(-1) != 0 || easeOutCubic(2) != 1 {
		t.Fatal("curve must clamp outside [0,1]")
	}
}

func TestPathsEqual(t *testing.T) {
	a := straightEast(GridPos{X: 0, Y: 0}, 3)
	b := straightEast(GridPos{X: 0, Y: 0}, 3)
	if !PathsEqual(a, b) {
		t.Fatal("identical paths must compare equal")
	}
	b[2].Y = 1
	if PathsEqual(a, b) {
		t.Fatal("diverging paths must compare unequal")
	}
	if PathsEqual(a, a[:2]) {
		t.Fatal("length mismatch must compare unequal")
	}
}
