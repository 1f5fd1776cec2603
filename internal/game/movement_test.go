package game

import (
	"testing"
	"time"
)

// newMoveSim builds a harness with one entity and an exact 100ms frame so
// progress fractions land on round numbers.
func newMoveSim(pos GridPos, dir Direction) *TestSim {
	return NewTestSim(
		WithFrameStep(100*time.Millisecond),
		WithEntity("e1", pos, dir),
	)
}

func TestMovement_StartInstallsOptimisticState(t *testing.T) {
	ts := newMoveSim(GridPos{X: 2, Y: 2}, DirNorth)
	ts.StartMove("e1", StraightPath(GridPos{X: 2, Y: 2}, DirEast, 3))

	a, ok := ts.Engine.Registry.Active("e1")
	if !ok {
		t.Fatal("expected an active animation record")
	}
	if a.Type != AnimWalk || a.Status != StatusOrphan || !a.ClientInitiated {
		t.Fatalf("unexpected record: type=%s status=%s client=%v", a.Type, a.Status, a.ClientInitiated)
	}
	if a.Duration != 1000*time.Millisecond {
		t.Fatalf("two segments at 500ms each: expected 1s, got %s", a.Duration)
	}
	if z, ok := ts.Renderer.LocalZ("e1"); !ok || z != zLocalMoving {
		t.Fatalf("expected moving z override %d, got %d (ok=%v)", zLocalMoving, z, ok)
	}
	if ts.Renderer.Directions["e1"] != DirEast {
		t.Fatalf("expected first-segment facing east, got %s", ts.Renderer.Directions["e1"])
	}
	e, _ := ts.Engine.Store.Entity("e1")
	if e.AnimationLabel != AnimWalk {
		t.Fatalf("expected walk label, got %s", e.AnimationLabel)
	}
	if e.VisualPosition == nil || *e.VisualPosition != (Vec2{X: 2, Y: 2}) {
		t.Fatalf("expected visual mirror at the start cell, got %v", e.VisualPosition)
	}
	// Store facing is owed only at completion.
	if e.Direction != DirNorth {
		t.Fatalf("store facing must not change mid-flight, got %s", e.Direction)
	}
}

func TestMovement_InterpolatesPerSegment(t *testing.T) {
	ts := newMoveSim(GridPos{X: 2, Y: 2}, DirNorth)
	ts.StartMove("e1", StraightPath(GridPos{X: 2, Y: 2}, DirEast, 3))

	ts.Advance(500 * time.Millisecond)
	if got := ts.Renderer.Positions["e1"]; got != (Vec2{X: 3, Y: 2}) {
		t.Fatalf("halfway along a 2-segment path: expected (3,2), got %v", got)
	}

	ts.Advance(300 * time.Millisecond)
	got := ts.Renderer.Positions["e1"]
	if got.Y != 2 || got.X < 3.5 || got.X > 3.7 {
		t.Fatalf("at 80%% progress: expected x near 3.6, got %v", got)
	}
}

func TestMovement_CompletionContract(t *testing.T) {
	ts := newMoveSim(GridPos{X: 2, Y: 2}, DirNorth)
	var completed []*AnimationCompletedPayload
	ts.Engine.Bus.Subscribe(EventAnimationCompleted, func(ev Event) {
		if p, ok := ev.Payload.(*AnimationCompletedPayload); ok {
			completed = append(completed, p)
		}
	})

	ts.StartMove("e1", StraightPath(GridPos{X: 2, Y: 2}, DirEast, 3))
	ts.Advance(1200 * time.Millisecond)

	if _, ok := ts.Engine.Registry.Active("e1"); ok {
		t.Fatal("animation should be complete")
	}
	e, _ := ts.Engine.Store.Entity("e1")
	if e.Position != (GridPos{X: 4, Y: 2}) {
		t.Fatalf("unrejected move must commit the final cell, got %v", e.Position)
	}
	if e.Direction != DirEast {
		t.Fatalf("final facing owed to the store, got %s", e.Direction)
	}
	if e.AnimationLabel != AnimIdle {
		t.Fatalf("expected idle label, got %s", e.AnimationLabel)
	}
	if e.VisualPosition != nil {
		t.Fatal("visual mirror must be cleared at completion")
	}
	if got := ts.Renderer.Positions["e1"]; got != (Vec2{X: 4, Y: 2}) {
		t.Fatalf("renderer must resync to the authoritative cell, got %v", got)
	}
	if _, ok := ts.Renderer.LocalZ("e1"); ok {
		t.Fatal("moving z override must clear at completion")
	}
	if len(completed) != 1 || completed[0].Type != AnimWalk || completed[0].Status != StatusOrphan {
		t.Fatalf("expected one walk completion with pre-complete status, got %+v", completed)
	}
}

func TestMovement_FacingFollowsSegments(t *testing.T) {
	ts := newMoveSim(GridPos{X: 2, Y: 2}, DirNorth)
	path := []GridPos{{X: 2, Y: 2}, {X: 3, Y: 2}, {X: 3, Y: 3}}
	ts.StartMove("e1", path)

	ts.Advance(300 * time.Millisecond)
	if ts.Renderer.Directions["e1"] != DirEast {
		t.Fatalf("first segment should face east, got %s", ts.Renderer.Directions["e1"])
	}

	ts.Advance(400 * time.Millisecond)
	if ts.Renderer.Directions["e1"] != DirSouth {
		t.Fatalf("second segment should face south, got %s", ts.Renderer.Directions["e1"])
	}
	// The store still holds the pre-move facing until completion.
	e, _ := ts.Engine.Store.Entity("e1")
	if e.Direction != DirNorth {
		t.Fatalf("store facing changed mid-flight to %s", e.Direction)
	}

	ts.Advance(500 * time.Millisecond)
	e, _ = ts.Engine.Store.Entity("e1")
	if e.Direction != DirSouth {
		t.Fatalf("expected final facing south in the store, got %s", e.Direction)
	}
}

func TestMovement_AdoptionPathMatchIsNoOp(t *testing.T) {
	ts := newMoveSim(GridPos{X: 2, Y: 2}, DirNorth)
	path := StraightPath(GridPos{X: 2, Y: 2}, DirEast, 3)
	ts.StartMove("e1", path)
	a, _ := ts.Engine.Registry.Active("e1")
	pathBefore := a.Movement.Path

	ts.Advance(200 * time.Millisecond)
	ts.Adopt("e1", path)

	if a.Status != StatusAdopted {
		t.Fatalf("expected adopted status, got %s", a.Status)
	}
	if !PathsEqual(a.Movement.Path, pathBefore) {
		t.Fatal("matching adoption must not rewrite the path")
	}
	if len(a.Movement.PathSenses) == 0 {
		t.Fatal("adoption must attach the server's path senses")
	}
	if !ts.SimLog.HasEntry("move", "adopted", "path match") {
		t.Fatal("expected a path-match adoption log entry")
	}
}

func TestMovement_MidFlightCorrectionKeepsClock(t *testing.T) {
	ts := newMoveSim(GridPos{X: 2, Y: 2}, DirNorth)
	ts.StartMove("e1", StraightPath(GridPos{X: 2, Y: 2}, DirEast, 3))
	a, _ := ts.Engine.Registry.Active("e1")
	startBefore := a.StartTime
	durationBefore := a.Duration

	ts.Advance(400 * time.Millisecond)
	serverPath := []GridPos{{X: 2, Y: 2}, {X: 3, Y: 2}, {X: 3, Y: 3}}
	ts.Adopt("e1", serverPath)

	if a.Status != StatusAdopted {
		t.Fatalf("expected adopted status, got %s", a.Status)
	}
	if !PathsEqual(a.Movement.Path, serverPath) {
		t.Fatalf("expected hot-swapped path %v, got %v", serverPath, a.Movement.Path)
	}
	if a.Movement.To != (GridPos{X: 3, Y: 3}) {
		t.Fatalf("destination must follow the corrected path, got %v", a.Movement.To)
	}
	if !a.StartTime.Equal(startBefore) || a.Duration != durationBefore {
		t.Fatal("course correction must not reset the animation clock")
	}
	if !ts.SimLog.HasEntry("move", "corrected", "3,3") {
		t.Fatal("expected a correction log entry")
	}

	ts.Advance(800 * time.Millisecond)
	e, _ := ts.Engine.Store.Entity("e1")
	if e.Position != (GridPos{X: 3, Y: 3}) {
		t.Fatalf("expected the server endpoint committed, got %v", e.Position)
	}
}

func TestMovement_RejectionSnapsBack(t *testing.T) {
	ts := newMoveSim(GridPos{X: 2, Y: 2}, DirSouth)
	ts.StartMove("e1", StraightPath(GridPos{X: 2, Y: 2}, DirEast, 3))

	ts.Advance(300 * time.Millisecond)
	ts.Reject("e1", "blocked")

	a, _ := ts.Engine.Registry.Active("e1")
	if a.Status != StatusRejected {
		t.Fatalf("expected rejected status, got %s", a.Status)
	}

	// The animation still plays out visually.
	ts.Advance(400 * time.Millisecond)
	if got := ts.Renderer.Positions["e1"]; got.X <= 2.5 {
		t.Fatalf("rejected move should keep animating until the end, got %v", got)
	}

	ts.Advance(500 * time.Millisecond)
	e, _ := ts.Engine.Store.Entity("e1")
	if e.Position != (GridPos{X: 2, Y: 2}) {
		t.Fatalf("rejected move must not commit the moved-to cell, got %v", e.Position)
	}
	if got := ts.Renderer.Positions["e1"]; got != (Vec2{X: 2, Y: 2}) {
		t.Fatalf("renderer must snap back to the pre-move cell, got %v", got)
	}
	if e.VisualPosition != nil {
		t.Fatal("visual mirror must be cleared after snap-back")
	}
}

func TestMovement_DegeneratePathCompletesImmediately(t *testing.T) {
	ts := newMoveSim(GridPos{X: 2, Y: 2}, DirNorth)
	var completed int
	ts.Engine.Bus.Subscribe(EventAnimationCompleted, func(Event) { completed++ })

	ts.StartMove("e1", []GridPos{{X: 2, Y: 2}})

	if _, ok := ts.Engine.Registry.Active("e1"); ok {
		t.Fatal("single-cell path must not install a record")
	}
	if completed != 1 {
		t.Fatalf("expected an immediate completion event, got %d", completed)
	}
	if got := ts.Renderer.Positions["e1"]; got != (Vec2{X: 2, Y: 2}) {
		t.Fatalf("expected resync to the current cell, got %v", got)
	}
}

func TestMovement_BusyStartDiscarded(t *testing.T) {
	ts := newMoveSim(GridPos{X: 2, Y: 2}, DirNorth)
	ts.StartMove("e1", StraightPath(GridPos{X: 2, Y: 2}, DirEast, 3))
	a, _ := ts.Engine.Registry.Active("e1")

	ts.StartMove("e1", StraightPath(GridPos{X: 2, Y: 2}, DirSouth, 4))

	if cur, _ := ts.Engine.Registry.Active("e1"); cur != a {
		t.Fatal("second start must leave the first record untouched")
	}
	if !ts.SimLog.HasEntry("warn", "movement_busy", "") {
		t.Fatal("expected a busy warning")
	}
}

func TestMovement_LateAdoptionDiscarded(t *testing.T) {
	ts := newMoveSim(GridPos{X: 2, Y: 2}, DirNorth)
	path := StraightPath(GridPos{X: 2, Y: 2}, DirEast, 2)
	ts.StartMove("e1", path)
	ts.Advance(700 * time.Millisecond) // single segment completes at 500ms

	ts.Adopt("e1", path)

	if !ts.SimLog.HasEntry("warn", "late_adoption", "") {
		t.Fatal("expected a late-adoption warning")
	}
	e, _ := ts.Engine.Store.Entity("e1")
	if e.Position != (GridPos{X: 3, Y: 2}) {
		t.Fatalf("late adoption must not disturb the committed position, got %v", e.Position)
	}
}

func TestMovement_UnknownEntityStartDiscarded(t *testing.T) {
	ts := newMoveSim(GridPos{X: 2, Y: 2}, DirNorth)
	ts.StartMove("ghost", StraightPath(GridPos{X: 0, Y: 0}, DirEast, 3))
	if ts.Engine.Registry.Len() != 0 {
		t.Fatal("unknown entity must not get a record")
	}
	if !ts.SimLog.HasEntry("warn", "missing_entity", "") {
		t.Fatal("expected a missing-entity warning")
	}
}

func TestMovement_TimeoutForcesCompletion(t *testing.T) {
	ts := newMoveSim(GridPos{X: 0, Y: 0}, DirNorth)
	// 21 cells = 10s optimistic duration, far past the 5s guard.
	ts.StartMove("e1", StraightPath(GridPos{X: 0, Y: 0}, DirEast, 21))

	ts.Advance(5200 * time.Millisecond)

	if _, ok := ts.Engine.Registry.Active("e1"); ok {
		t.Fatal("stuck animation must be force-completed")
	}
	if !ts.SimLog.HasEntry("warn", "timeout", "") {
		t.Fatal("expected a timeout warning")
	}
	e, _ := ts.Engine.Store.Entity("e1")
	if e.Position != (GridPos{X: 20, Y: 0}) {
		t.Fatalf("forced completion still commits the endpoint, got %v", e.Position)
	}
}

func TestMovement_EntityRemovedMidFlight(t *testing.T) {
	ts := newMoveSim(GridPos{X: 2, Y: 2}, DirNorth)
	ts.StartMove("e1", StraightPath(GridPos{X: 2, Y: 2}, DirEast, 3))
	ts.Advance(300 * time.Millisecond)

	ts.Engine.Store.RemoveEntity("e1")
	ts.Advance(200 * time.Millisecond)

	if _, ok := ts.Engine.Registry.Active("e1"); ok {
		t.Fatal("record for a vanished entity must be dropped")
	}
	if !ts.SimLog.HasEntry("warn", "stale_entity", "") {
		t.Fatal("expected a stale-entity warning")
	}
}
