package game

import "time"

// VisibilityResolver decides, per frame, which entities render for the
// current observer. The observer's senses source depends on who is moving:
// its own interpolated path cell while it moves, a frozen snapshot while
// only others move, and the live store senses otherwise. Classification is
// binary: outside the visible set an entity is fully suppressed, never a
// dimmed "last known" ghost.
type VisibilityResolver struct {
	store *Store
	reg   *Registry
	clock Clock
	log   *SimLog

	// frozen holds per-observer senses captured at the moment movement
	// began elsewhere, so a stationary observer's view cannot flicker from
	// someone else's transit. Cleared once no movement is in flight.
	frozen map[string]SensesSnapshot
}

// anticipationBias: once the sub-tile fraction crosses this, the next cell's
// senses apply, so the transition feels pre-emptive rather than lagging.
const anticipationBias = 0.5

// NewVisibilityResolver creates the resolver.
func NewVisibilityResolver(store *Store, reg *Registry, clock Clock, log *SimLog) *VisibilityResolver {
	return &VisibilityResolver{
		store:  store,
		reg:    reg,
		clock:  clock,
		log:    log,
		frozen: make(map[string]SensesSnapshot),
	}
}

// Bind subscribes the resolver so it can freeze stationary observers'
// senses the instant any movement starts.
func (r *VisibilityResolver) Bind(bus *Bus) {
	bus.Subscribe(EventMovementStarted, func(ev Event) {
		p, ok := ev.Payload.(*MovementStartedPayload)
		if !ok {
			return
		}
		r.freezeStationary(p.EntityID)
	})
}

// freezeStationary snapshots the live senses of every entity except the
// mover, for entries not already frozen by an earlier concurrent move.
func (r *VisibilityResolver) freezeStationary(moverID string) {
	for _, id := range r.store.EntityIDs() {
		if id == moverID {
			continue
		}
		if _, already := r.frozen[id]; already {
			continue
		}
		if e, ok := r.store.Entity(id); ok {
			r.frozen[id] = e.Senses
		}
	}
}

// Update drops the frozen snapshots once no movement is in flight anywhere.
func (r *VisibilityResolver) Update(now time.Time) {
	if len(r.frozen) > 0 && !r.reg.AnyMovement() {
		r.frozen = make(map[string]SensesSnapshot)
		r.log.AddVerbose("--", "vis", "snapshot_cleared", "", 0)
	}
	_ = now
}

// ObserverSenses resolves the senses snapshot the observer should judge
// the world by right now.
func (r *VisibilityResolver) ObserverSenses(observerID string) SensesSnapshot {
	e, ok := r.store.Entity(observerID)
	if !ok {
		return SensesSnapshot{}
	}

	// Observer itself moving with per-cell path senses: use the senses of
	// its current (anticipated) interpolated cell.
	if a, active := r.reg.Active(observerID); active && a.Type.IsMovement() && a.Movement != nil && len(a.Movement.PathSenses) > 0 {
		cell := r.anticipatedCell(a)
		if snap, found := a.Movement.PathSenses[cell.Key()]; found {
			return snap
		}
		// Normal during the first frames: no snapshot for this cell yet,
		// fall back to the last known static senses.
		return e.Senses
	}

	// Others moving while the observer stands still: frozen snapshot.
	if r.reg.AnyMovement() {
		if snap, found := r.frozen[observerID]; found {
			return snap
		}
		// Entity appeared after the freeze; freeze it now.
		r.frozen[observerID] = e.Senses
		return e.Senses
	}

	return e.Senses
}

// anticipatedCell maps the animation's progress onto its path and applies
// the anticipation bias toward the next cell.
func (r *VisibilityResolver) anticipatedCell(a *Animation) GridPos {
	path := a.Movement.Path
	_, seg, segT := SamplePath(path, a.Progress(r.clock.Now()))
	if segT >= anticipationBias && seg+1 < len(path) {
		return path[seg+1]
	}
	if seg < len(path) {
		return path[seg]
	}
	return path[len(path)-1]
}

// Resolve classifies every entity for the observer: true = render fully,
// false = fully suppressed. The observer's own sprite is always visible.
func (r *VisibilityResolver) Resolve(observerID string) map[string]bool {
	senses := r.ObserverSenses(observerID)
	out := make(map[string]bool)
	for _, id := range r.store.EntityIDs() {
		if id == observerID {
			out[id] = true
			continue
		}
		cell, ok := r.store.EffectiveCell(id)
		if !ok {
			continue
		}
		out[id] = senses.CanSee(cell)
	}
	return out
}
