package game

import (
	"testing"
	"time"
)

func newDodgeSim() *TestSim {
	ts := NewTestSim(
		WithFrameStep(100*time.Millisecond),
		WithEntity("e1", GridPos{X: 4, Y: 4}, DirWest),
	)
	// One frame so the fixed-step accumulator has a baseline.
	ts.StepFrame()
	return ts
}

func TestDodge_PhaseSplit(t *testing.T) {
	ts := newDodgeSim()
	ts.Engine.Dodges.Start("e1", DirEast, 600*time.Millisecond)

	st, ok := ts.Engine.Dodges.State("e1")
	if !ok {
		t.Fatal("expected an active dodge")
	}
	if st.Phase != PhaseDodgingBack {
		t.Fatalf("expected the back phase first, got %s", st.Phase)
	}
	if st.BackDuration != 240*time.Millisecond || st.ReturnDuration != 360*time.Millisecond {
		t.Fatalf("expected a 240/360 split of 600ms, got back=%s return=%s", st.BackDuration, st.ReturnDuration)
	}
	if st.Original != (GridPos{X: 4, Y: 4}) || st.OriginalDirection != DirWest {
		t.Fatalf("unexpected captured pose: %+v", st)
	}
	if !ts.SimLog.HasEntry("dodge", "started", "east") {
		t.Fatal("expected a dodge-started log entry")
	}
}

func TestDodge_DefaultRemaining(t *testing.T) {
	ts := newDodgeSim()
	ts.Engine.Dodges.Start("e1", DirNorth, 0)

	st, _ := ts.Engine.Dodges.State("e1")
	if st.BackDuration != 200*time.Millisecond || st.ReturnDuration != 300*time.Millisecond {
		t.Fatalf("expected the 500ms default split, got back=%s return=%s", st.BackDuration, st.ReturnDuration)
	}
}

func TestDodge_LeansAwayThenReturns(t *testing.T) {
	ts := newDodgeSim()
	ts.Engine.Dodges.Start("e1", DirEast, 600*time.Millisecond)

	ts.Advance(300 * time.Millisecond)
	st, ok := ts.Engine.Dodges.State("e1")
	if !ok {
		t.Fatal("dodge should still be in flight")
	}
	if st.Phase != PhaseReturning {
		t.Fatalf("expected the return phase after the 240ms back phase, got %s", st.Phase)
	}
	if pos := ts.Renderer.Positions["e1"]; pos.X <= 4 {
		t.Fatalf("dodger should be displaced east of its cell, got %v", pos)
	}
}

func TestDodge_FinalizeRestoresPose(t *testing.T) {
	ts := newDodgeSim()
	var completed []*AnimationCompletedPayload
	ts.Engine.Bus.Subscribe(EventAnimationCompleted, func(ev Event) {
		if p, ok := ev.Payload.(*AnimationCompletedPayload); ok {
			completed = append(completed, p)
		}
	})

	ts.Engine.Dodges.Start("e1", DirEast, 600*time.Millisecond)
	ts.Advance(700 * time.Millisecond)

	if ts.Engine.Dodges.Active("e1") {
		t.Fatal("dodge should be finalized")
	}
	if pos := ts.Renderer.Positions["e1"]; pos != (Vec2{X: 4, Y: 4}) {
		t.Fatalf("dodger must snap exactly back onto its cell, got %v", pos)
	}
	e, _ := ts.Engine.Store.Entity("e1")
	if e.Direction != DirWest {
		t.Fatalf("pre-dodge facing must be restored, got %s", e.Direction)
	}
	if e.AnimationLabel != AnimIdle {
		t.Fatalf("expected idle label, got %s", e.AnimationLabel)
	}
	if _, ok := ts.Renderer.LocalZ("e1"); ok {
		t.Fatal("dodge z override must be cleared")
	}
	if !ts.SimLog.HasEntry("dodge", "finished", "4,4") {
		t.Fatal("expected a dodge-finished log entry")
	}
	if len(completed) != 1 || completed[0].Type != AnimDodge {
		t.Fatalf("expected one dodge completion event, got %+v", completed)
	}
}

func TestDodge_UnknownEntity(t *testing.T) {
	ts := newDodgeSim()
	ts.Engine.Dodges.Start("ghost", DirEast, 600*time.Millisecond)
	if ts.Engine.Dodges.Active("ghost") {
		t.Fatal("unknown entity must not dodge")
	}
	if !ts.SimLog.HasEntry("warn", "missing_entity", "") {
		t.Fatal("expected a missing-entity warning")
	}
}

func TestDodge_EntityRemovedMidFlight(t *testing.T) {
	ts := newDodgeSim()
	ts.Engine.Dodges.Start("e1", DirEast, 600*time.Millisecond)
	ts.Advance(100 * time.Millisecond)

	ts.Engine.Store.RemoveEntity("e1")
	ts.Advance(200 * time.Millisecond)

	if ts.Engine.Dodges.Active("e1") {
		t.Fatal("dodge for a vanished entity must be dropped")
	}
	if !ts.SimLog.HasEntry("warn", "stale_entity", "") {
		t.Fatal("expected a stale-entity warning")
	}
}
