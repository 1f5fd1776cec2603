package game

import "time"

// TestSim is a headless harness around the engine with a manual clock and a
// recording renderer. It mirrors the real game loop but has no Ebiten
// dependency; tests and the headless report both drive it frame by frame.
type TestSim struct {
	Engine   *Engine
	Clock    *ManualClock
	Renderer *RecordingRenderer
	Server   *LocalServer
	SimLog   *SimLog

	frameStep time.Duration
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra  simOptionKind = iota // clock, verbosity, frame step: applied first
	simOptEntity                      // seed entities: applied once the engine exists
	simOptServer                      // attach the latency stub: applied last
)

// SimOption is a builder function applied to a TestSim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*TestSim)
}

// WithVerbose enables per-frame interpolation logging.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.Engine.Log.verbose = v
	}}
}

// WithFrameStep sets the simulated render-frame interval (default ~60fps).
func WithFrameStep(d time.Duration) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.frameStep = d
	}}
}

// WithEntity seeds an entity at a cell with a facing.
func WithEntity(id string, pos GridPos, dir Direction) SimOption {
	return SimOption{simOptEntity, func(ts *TestSim) {
		ts.Engine.Store.AddEntity(&EntityState{
			ID:        id,
			Position:  pos,
			Direction: dir,
		})
	}}
}

// WithSenses seeds an entity's live senses snapshot.
func WithSenses(id string, visible []GridPos, seen []GridPos) SimOption {
	return SimOption{simOptEntity, func(ts *TestSim) {
		ts.Engine.Store.SetSenses(id, NewSensesSnapshot(visible, seen))
	}}
}

// WithLocalServer attaches the artificial-latency server stub.
func WithLocalServer(seed int64, latency time.Duration) SimOption {
	return SimOption{simOptServer, func(ts *TestSim) {
		ts.Server = NewLocalServer(ts.Engine.Store, ts.Engine.Bus, ts.Engine.Mail, ts.Clock, ts.Engine.Log, seed)
		ts.Server.Latency = latency
		ts.Server.Bind()
	}}
}

// NewTestSim builds a harness. Options apply in phase order regardless of
// argument order.
func NewTestSim(opts ...SimOption) *TestSim {
	clock := NewManualClock(time.Unix(1000, 0))
	renderer := NewRecordingRenderer()
	ts := &TestSim{
		Clock:     clock,
		Renderer:  renderer,
		frameStep: 16 * time.Millisecond,
	}
	ts.Engine = NewEngine(EngineConfig{
		Clock:    clock,
		Renderer: renderer,
	})
	ts.SimLog = ts.Engine.Log

	for _, phase := range []simOptionKind{simOptInfra, simOptEntity, simOptServer} {
		for _, opt := range opts {
			if opt.kind == phase {
				opt.fn(ts)
			}
		}
	}
	return ts
}

// StepFrame advances the clock by one frame interval and runs the engine.
func (ts *TestSim) StepFrame() {
	ts.Clock.Advance(ts.frameStep)
	ts.Engine.Step()
}

// Advance runs frames until at least d of simulated time has passed.
func (ts *TestSim) Advance(d time.Duration) {
	deadline := ts.Clock.Now().Add(d)
	for ts.Clock.Now().Before(deadline) {
		ts.StepFrame()
	}
}

// AdvanceTo runs frames until the clock reaches the absolute instant.
func (ts *TestSim) AdvanceTo(t time.Time) {
	for ts.Clock.Now().Before(t) {
		ts.StepFrame()
	}
}

// StartMove publishes a client-predicted movement along the given path.
func (ts *TestSim) StartMove(id string, path []GridPos) {
	target := GridPos{}
	if len(path) > 0 {
		target = path[len(path)-1]
	}
	ts.Engine.Bus.Publish(EventMovementStarted, &MovementStartedPayload{
		EntityID:       id,
		Target:         target,
		OptimisticPath: path,
		StartTime:      ts.Clock.Now(),
	})
}

// Adopt publishes a server adoption carrying the given authoritative path.
// Per-cell senses are generated for each path cell so the derived server
// path matches exactly.
func (ts *TestSim) Adopt(id string, serverPath []GridPos) {
	snap := &EntitySnapshot{ID: id}
	if len(serverPath) > 0 {
		snap.Position = serverPath[len(serverPath)-1]
		snap.PathSenses = make(map[string]SensesSnapshot, len(serverPath))
		for _, cell := range serverPath {
			snap.PathSenses[cell.Key()] = NewSensesSnapshot([]GridPos{cell}, serverPath)
		}
	}
	ts.Engine.Bus.Publish(EventMovementAdopted, &MovementAdoptedPayload{
		EntityID: id,
		Server:   snap,
		Time:     ts.Clock.Now(),
	})
}

// Reject publishes a server rejection.
func (ts *TestSim) Reject(id, reason string) {
	ts.Engine.Bus.Publish(EventMovementRejected, &MovementRejectedPayload{
		EntityID: id,
		Reason:   reason,
	})
}

// StraightPath builds an axis-aligned or diagonal path of n cells starting
// at from, stepping by the direction's delta.
func StraightPath(from GridPos, dir Direction, n int) []GridPos {
	dx, dy := dir.Delta()
	path := make([]GridPos, 0, n)
	for i := 0; i < n; i++ {
		path = append(path, GridPos{X: from.X + i*dx, Y: from.Y + i*dy})
	}
	return path
}
