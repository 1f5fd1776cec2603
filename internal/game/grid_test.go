package game

import "testing"

func TestParseKey_Roundtrip(t *testing.T) {
	p := GridPos{X: 12, Y: -3}
	got, err := ParseKey(p.Key())
	if err != nil {
		t.Fatalf("parse of own key failed: %v", err)
	}
	if got != p {
		t.Fatalf("expected %v, got %v", p, got)
	}
}

func TestParseKey_Malformed(t *testing.T) {
	for _, key := range []string{"", "12", "a,b", "3,"} {
		if _, err := ParseKey(key); err == nil {
			t.Fatalf("expected error for key %q", key)
		}
	}
}

func TestDirectionBetween_EightWay(t *testing.T) {
	from := GridPos{X: 5, Y: 5}
	cases := []struct {
		to   GridPos
		want Direction
	}{
		{GridPos{X: 5, Y: 3}, DirNorth},
		{GridPos{X: 8, Y: 2}, DirNorthEast},
		{GridPos{X: 9, Y: 5}, DirEast},
		{GridPos{X: 7, Y: 8}, DirSouthEast},
		{GridPos{X: 5, Y: 6}, DirSouth},
		{GridPos{X: 2, Y: 7}, DirSouthWest},
		{GridPos{X: 0, Y: 5}, DirWest},
		{GridPos{X: 4, Y: 4}, DirNorthWest},
	}
	for _, c := range cases {
		dir, moved := DirectionBetween(from, c.to)
		if !moved {
			t.Fatalf("expected travel toward %v", c.to)
		}
		if dir != c.want {
			t.Fatalf("toward %v: expected %s, got %s", c.to, c.want, dir)
		}
	}
}

func TestDirectionBetween_SameCell(t *testing.T) {
	p := GridPos{X: 3, Y: 3}
	if _, moved := DirectionBetween(p, p); moved {
		t.Fatal("zero travel must not report a facing")
	}
}

func TestDirection_Opposite(t *testing.T) {
	for d := DirNorth; d <= DirNorthWest; d++ {
		opp := d.Opposite()
		dx, dy := d.Delta()
		ox, oy := opp.Delta()
		if dx != -ox || dy != -oy {
			t.Fatalf("%s opposite %s does not reverse the delta", d, opp)
		}
		if opp.Opposite() != d {
			t.Fatalf("double opposite of %s is %s", d, opp.Opposite())
		}
	}
}

func TestManhattan(t *testing.T) {
	if d := Manhattan(GridPos{X: 2, Y: 2}, GridPos{X: 5, Y: 0}); d != 5 {
		t.Fatalf("expected 5, got %d", d)
	}
	if d := Manhattan(GridPos{X: 1, Y: 1}, GridPos{X: 1, Y: 1}); d != 0 {
		t.Fatalf("expected 0, got %d", d)
	}
}

func TestLerp_Midpoint(t *testing.T) {
	got := Lerp(Vec2{X: 2, Y: 2}, Vec2{X: 4, Y: 6}, 0.5)
	if got.X != 3 || got.Y != 4 {
		t.Fatalf("expected (3,4), got %v", got)
	}
}
