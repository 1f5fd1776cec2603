package game

import (
	"math"
	"sort"
)

// PathData is the derived per-segment movement data for one path. Computed
// once when a path is (re)established, invalidated whenever the
// authoritative path changes.
type PathData struct {
	Directions []Direction // facing per segment
	Distances  []float64   // Euclidean length per segment
	Total      float64     // total path length
}

// PrecomputePath derives segment directions and distances for a path.
// A path with fewer than two cells yields empty data.
func PrecomputePath(path []GridPos) PathData {
	if len(path) < 2 {
		return PathData{}
	}
	pd := PathData{
		Directions: make([]Direction, len(path)-1),
		Distances:  make([]float64, len(path)-1),
	}
	for i := 0; i < len(path)-1; i++ {
		dir, _ := DirectionBetween(path[i], path[i+1])
		pd.Directions[i] = dir
		d := Euclidean(path[i], path[i+1])
		pd.Distances[i] = d
		pd.Total += d
	}
	return pd
}

// SamplePath maps an overall progress ratio onto the path polyline.
// Returns the interpolated position, the segment index, and the in-segment
// fraction. progress is clamped to [0,1]; the final cell is returned exactly
// at progress 1. Paths shorter than two cells return the only cell (or zero).
func SamplePath(path []GridPos, progress float64) (Vec2, int, float64) {
	if len(path) == 0 {
		return Vec2{}, 0, 0
	}
	if len(path) == 1 {
		return path[0].Vec(), 0, 0
	}
	if progress <= 0 {
		return path[0].Vec(), 0, 0
	}
	if progress >= 1 {
		last := len(path) - 1
		return path[last].Vec(), last - 1, 1
	}
	pathProgress := progress * float64(len(path)-1)
	seg := int(math.Floor(pathProgress))
	t := pathProgress - float64(seg)
	if seg >= len(path)-1 {
		last := len(path) - 1
		return path[last].Vec(), last - 1, 1
	}
	return Lerp(path[seg].Vec(), path[seg+1].Vec(), t), seg, t
}

// PathsEqual compares two paths cell by cell.
func PathsEqual(a, b []GridPos) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// DeriveServerPath reconstructs the server's travelled path from the per-cell
// senses keys it returned, ordered by Manhattan distance from the start cell.
//
// This is a heuristic, not a guaranteed-correct reconstruction: equidistant
// or disconnected cells can reorder incorrectly. It mirrors the server
// contract as observed; ties break on (y, x) so the order is at least stable.
func DeriveServerPath(start GridPos, pathSenses map[string]SensesSnapshot) []GridPos {
	if len(pathSenses) == 0 {
		return nil
	}
	cells := make([]GridPos, 0, len(pathSenses))
	for key := range pathSenses {
		p, err := ParseKey(key)
		if err != nil {
			continue
		}
		cells = append(cells, p)
	}
	sort.Slice(cells, func(i, j int) bool {
		di, dj := Manhattan(start, cells[i]), Manhattan(start, cells[j])
		if di != dj {
			return di < dj
		}
		if cells[i].Y != cells[j].Y {
			return cells[i].Y < cells[j].Y
		}
		return cells[i].X < cells[j].X
	})
	return cells
}

// easeOutCubic is the dodge tween curve: fast start, gentle settle.
func easeOutCubic(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	u := 1 - t
	return 1 - u*u*u
}
