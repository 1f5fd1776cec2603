package game

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// GridPos is a cell on the battlefield grid. X grows east, Y grows south.
type GridPos struct {
	X int
	Y int
}

// Vec2 is a continuous (possibly sub-cell) position used for interpolation.
// Units are grid cells, not pixels; the renderer owns the pixel transform.
type Vec2 struct {
	X float64
	Y float64
}

// Vec returns the cell centre as a continuous position.
func (p GridPos) Vec() Vec2 {
	return Vec2{X: float64(p.X), Y: float64(p.Y)}
}

func (v Vec2) String() string {
	return fmt.Sprintf("%.2f,%.2f", v.X, v.Y)
}

// Key returns the "x,y" cell key used by the senses maps.
func (p GridPos) Key() string {
	return strconv.Itoa(p.X) + "," + strconv.Itoa(p.Y)
}

// ParseKey parses an "x,y" cell key back into a GridPos.
func ParseKey(key string) (GridPos, error) {
	i := strings.IndexByte(key, ',')
	if i < 0 {
		return GridPos{}, fmt.Errorf("cell key %q: missing comma", key)
	}
	x, err := strconv.Atoi(key[:i])
	if err != nil {
		return GridPos{}, fmt.Errorf("cell key %q: %w", key, err)
	}
	y, err := strconv.Atoi(key[i+1:])
	if err != nil {
		return GridPos{}, fmt.Errorf("cell key %q: %w", key, err)
	}
	return GridPos{X: x, Y: y}, nil
}

// Manhattan returns the Manhattan distance between two cells.
func Manhattan(a, b GridPos) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// Euclidean returns the straight-line distance between two cells.
func Euclidean(a, b GridPos) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// Lerp interpolates between two continuous positions. t in [0,1].
func Lerp(a, b Vec2, t float64) Vec2 {
	return Vec2{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Direction is one of the 8 compass facings a sprite can hold.
type Direction int

const (
	DirNorth Direction = iota
	DirNorthEast
	DirEast
	DirSouthEast
	DirSouth
	DirSouthWest
	DirWest
	DirNorthWest
)

func (d Direction) String() string {
	switch d {
	case DirNorth:
		return "north"
	case DirNorthEast:
		return "northeast"
	case DirEast:
		return "east"
	case DirSouthEast:
		return "southeast"
	case DirSouth:
		return "south"
	case DirSouthWest:
		return "southwest"
	case DirWest:
		return "west"
	case DirNorthWest:
		return "northwest"
	default:
		return "unknown"
	}
}

// Delta returns the unit cell step for the direction.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case DirNorth:
		return 0, -1
	case DirNorthEast:
		return 1, -1
	case DirEast:
		return 1, 0
	case DirSouthEast:
		return 1, 1
	case DirSouth:
		return 0, 1
	case DirSouthWest:
		return -1, 1
	case DirWest:
		return -1, 0
	case DirNorthWest:
		return -1, -1
	default:
		return 0, 0
	}
}

// Opposite returns the reverse facing.
func (d Direction) Opposite() Direction {
	return (d + 4) % 8
}

// DirectionBetween derives a facing from the sign of the travel delta.
// Pure cardinals apply when exactly one axis is zero. Returns false when
// from == to (no travel, no facing).
func DirectionBetween(from, to GridPos) (Direction, bool) {
	dx := sign(to.X - from.X)
	dy := sign(to.Y - from.Y)
	switch {
	case dx == 0 && dy == 0:
		return DirSouth, false
	case dx == 0 && dy < 0:
		return DirNorth, true
	case dx == 0 && dy > 0:
		return DirSouth, true
	case dy == 0 && dx > 0:
		return DirEast, true
	case dy == 0 && dx < 0:
		return DirWest, true
	case dx > 0 && dy < 0:
		return DirNorthEast, true
	case dx > 0 && dy > 0:
		return DirSouthEast, true
	case dx < 0 && dy > 0:
		return DirSouthWest, true
	default:
		return DirNorthWest, true
	}
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}
