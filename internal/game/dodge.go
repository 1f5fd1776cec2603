package game

import "time"

// DodgePhase is the two-phase evade state machine.
type DodgePhase int

const (
	PhaseDodgingBack DodgePhase = iota // leaning away from the attacker
	PhaseReturning                     // easing back onto the original cell
	PhaseDodgeDone
)

func (p DodgePhase) String() string {
	switch p {
	case PhaseDodgingBack:
		return "dodging_back"
	case PhaseReturning:
		return "returning"
	case PhaseDodgeDone:
		return "completed"
	default:
		return "unknown"
	}
}

const (
	// defaultDodgeRemaining stands in when impact-frame timing is missing.
	defaultDodgeRemaining = 500 * time.Millisecond

	// dodgeBackFraction splits the remaining attack time between the two
	// phases: back gets this share, the return gets the rest.
	dodgeBackFraction = 0.4
)

// DodgeState is the per-entity evade record. Exists only while evading.
type DodgeState struct {
	EntityID          string
	Original          GridPos
	OriginalDirection Direction
	Phase             DodgePhase
	StartTime         time.Time
	PhaseStart        time.Time
	BackDuration      time.Duration
	ReturnDuration    time.Duration

	backPoint Vec2 // one adjacent cell opposite the attacker
}

// DodgeManager drives the two-phase dodge tween from the fixed update loop,
// independent of the render ticker. All writes during a phase are visual
// only; the store is touched once, at finalization.
type DodgeManager struct {
	bus      *Bus
	store    *Store
	renderer Renderer
	clock    Clock
	log      *SimLog
	active   map[string]*DodgeState
}

// NewDodgeManager creates an empty manager.
func NewDodgeManager(bus *Bus, store *Store, renderer Renderer, clock Clock, log *SimLog) *DodgeManager {
	return &DodgeManager{
		bus:      bus,
		store:    store,
		renderer: renderer,
		clock:    clock,
		log:      log,
		active:   make(map[string]*DodgeState),
	}
}

// Start begins a dodge for the target, leaning one cell away from the
// attacker. remaining is the attack time left after the impact frame; the
// caller passes the 500ms default when frame timing was unavailable.
func (m *DodgeManager) Start(targetID string, awayDir Direction, remaining time.Duration) {
	e, ok := m.store.Entity(targetID)
	if !ok {
		m.log.Warn(targetID, "missing_entity", "dodge start for unknown entity")
		return
	}
	if remaining <= 0 {
		remaining = defaultDodgeRemaining
	}
	back := time.Duration(dodgeBackFraction * float64(remaining))
	now := m.clock.Now()
	dx, dy := awayDir.Delta()
	st := &DodgeState{
		EntityID:          targetID,
		Original:          e.Position,
		OriginalDirection: e.Direction,
		Phase:             PhaseDodgingBack,
		StartTime:         now,
		PhaseStart:        now,
		BackDuration:      back,
		ReturnDuration:    remaining - back,
		backPoint:         Vec2{X: float64(e.Position.X + dx), Y: float64(e.Position.Y + dy)},
	}
	m.active[targetID] = st
	m.log.Add(targetID, "dodge", "started", awayDir.String(), float64(remaining.Milliseconds()))
}

// Active reports whether the entity is currently evading.
func (m *DodgeManager) Active(entityID string) bool {
	_, ok := m.active[entityID]
	return ok
}

// State returns the entity's dodge record for inspection.
func (m *DodgeManager) State(entityID string) (*DodgeState, bool) {
	st, ok := m.active[entityID]
	return st, ok
}

// AnyActive reports whether any dodge is in flight.
func (m *DodgeManager) AnyActive() bool {
	return len(m.active) > 0
}

// FixedUpdate advances every dodge by one fixed-interval step.
func (m *DodgeManager) FixedUpdate(now time.Time) {
	for id, st := range m.active {
		if _, ok := m.store.Entity(id); !ok {
			// Entity vanished mid-dodge: abandon without finalizing writes.
			m.log.Warn(id, "stale_entity", "entity removed mid-dodge")
			delete(m.active, id)
			continue
		}
		m.step(st, now)
	}
}

func (m *DodgeManager) step(st *DodgeState, now time.Time) {
	elapsed := now.Sub(st.PhaseStart)
	origin := st.Original.Vec()

	switch st.Phase {
	case PhaseDodgingBack:
		t := phaseFraction(elapsed, st.BackDuration)
		m.renderer.UpdateEntityVisualPosition(st.EntityID, Lerp(origin, st.backPoint, easeOutCubic(t)))
		if elapsed >= st.BackDuration {
			st.Phase = PhaseReturning
			st.PhaseStart = now
			m.log.AddVerbose(st.EntityID, "dodge", "phase", "returning", 0)
		}

	case PhaseReturning:
		t := phaseFraction(elapsed, st.ReturnDuration)
		m.renderer.UpdateEntityVisualPosition(st.EntityID, Lerp(st.backPoint, origin, easeOutCubic(t)))
		if elapsed >= st.ReturnDuration {
			m.finalize(st)
		}
	}
}

// finalize settles the entity back onto its authoritative cell and clears
// every transient the dodge installed.
func (m *DodgeManager) finalize(st *DodgeState) {
	id := st.EntityID
	st.Phase = PhaseDodgeDone

	m.store.SetAnimationLabel(id, AnimIdle)
	if e, ok := m.store.Entity(id); ok {
		// Force-resync: the authoritative position never moved during the
		// dodge, so the visual snaps exactly back onto it.
		m.renderer.UpdateEntityVisualPosition(id, e.Position.Vec())
	}
	m.store.SetDirection(id, st.OriginalDirection)
	m.renderer.UpdateSpriteDirection(id, st.OriginalDirection)
	m.renderer.ClearLocalZOrder(id)
	delete(m.active, id)

	m.log.Add(id, "dodge", "finished", st.Original.Key(), 0)
	m.bus.Publish(EventAnimationCompleted, &AnimationCompletedPayload{
		EntityID: id,
		Type:     AnimDodge,
		Status:   StatusCompleted,
	})
}

func phaseFraction(elapsed, total time.Duration) float64 {
	if total <= 0 {
		return 1
	}
	t := float64(elapsed) / float64(total)
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
