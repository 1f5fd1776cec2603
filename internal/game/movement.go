package game

import (
	"time"
)

const (
	// perTileDuration is the fixed optimistic travel time per path segment.
	perTileDuration = 500 * time.Millisecond

	// segmentDirThreshold: facing is re-checked when the in-segment fraction
	// is still below this, so a late segment switch cannot skip the turn.
	segmentDirThreshold = 0.05
)

// localDirection is per-entity facing state that exists only while the
// entity is actively animating. Absence means "not moving, defer to store".
type localDirection struct {
	Current         Direction
	PendingStore    *Direction // facing owed to the store at completion
	LastStoreUpdate time.Time
}

// MovementHandler owns the optimistic-path-then-adopt/reject protocol:
// per-frame path interpolation, direction precomputation, mid-flight course
// correction on adoption, and the final resync contract.
type MovementHandler struct {
	bus      *Bus
	store    *Store
	reg      *Registry
	renderer Renderer
	senses   SensesAPI
	clock    Clock
	log      *SimLog

	pathData map[string]PathData
	localDir map[string]*localDirection
}

// NewMovementHandler creates the handler. Call Bind to attach it to the bus.
func NewMovementHandler(bus *Bus, store *Store, reg *Registry, renderer Renderer, senses SensesAPI, clock Clock, log *SimLog) *MovementHandler {
	return &MovementHandler{
		bus:      bus,
		store:    store,
		reg:      reg,
		renderer: renderer,
		senses:   senses,
		clock:    clock,
		log:      log,
		pathData: make(map[string]PathData),
		localDir: make(map[string]*localDirection),
	}
}

// Bind subscribes the handler to its lifecycle topics.
func (h *MovementHandler) Bind() {
	h.bus.Subscribe(EventMovementStarted, h.handleStarted)
	h.bus.Subscribe(EventMovementAdopted, h.handleAdopted)
	h.bus.Subscribe(EventMovementRejected, h.handleRejected)
}

func (h *MovementHandler) handleStarted(ev Event) {
	p, ok := ev.Payload.(*MovementStartedPayload)
	if !ok {
		h.log.Warn("--", "bad_payload", "MOVEMENT_STARTED")
		return
	}
	id := p.EntityID
	if _, exists := h.reg.Active(id); exists {
		h.log.Warn(id, "movement_busy", "start while another animation is active")
		return
	}
	if _, exists := h.store.Entity(id); !exists {
		h.log.Warn(id, "missing_entity", "movement start for unknown entity")
		return
	}

	path := p.OptimisticPath
	if len(path) < 2 {
		// Degenerate path: empty (error condition) or already at the
		// destination. Both complete in the same frame they start.
		h.log.Add(id, "move", "degenerate_path", "", float64(len(path)))
		h.resyncPosition(id)
		h.senses.UpdateEntitySenses(id)
		h.bus.Publish(EventAnimationCompleted, &AnimationCompletedPayload{
			EntityID: id,
			Type:     AnimWalk,
			Status:   StatusCompleted,
		})
		return
	}

	start := p.StartTime
	if start.IsZero() {
		start = h.clock.Now()
	}
	a := &Animation{
		EntityID:        id,
		Type:            AnimWalk,
		Status:          StatusOrphan,
		StartTime:       start,
		Duration:        time.Duration(len(path)-1) * perTileDuration,
		ClientInitiated: true,
		Movement: &MovementData{
			Path: path,
			From: path[0],
			To:   p.Target,
		},
	}
	if err := h.reg.Start(a); err != nil {
		h.log.Warn(id, "registry", err.Error())
		return
	}

	pd := PrecomputePath(path)
	h.pathData[id] = pd

	// Dynamic entities render above static neighbours for the whole move.
	h.renderer.SetLocalZOrder(id, zLocalMoving)

	dir := pd.Directions[0]
	pending := dir
	h.localDir[id] = &localDirection{Current: dir, PendingStore: &pending}
	h.renderer.UpdateSpriteDirection(id, dir)

	h.store.SetAnimationLabel(id, AnimWalk)
	h.store.SetVisualPosition(id, path[0].Vec())
	h.log.Add(id, "move", "started", path[len(path)-1].Key(), float64(len(path)))
}

func (h *MovementHandler) handleAdopted(ev Event) {
	p, ok := ev.Payload.(*MovementAdoptedPayload)
	if !ok {
		h.log.Warn("--", "bad_payload", "MOVEMENT_ADOPTED")
		return
	}
	id := p.EntityID
	a, active := h.reg.Active(id)
	if !active || !a.Type.IsMovement() || a.Movement == nil {
		// Adoption after local completion or timeout: discard.
		h.log.Warn(id, "late_adoption", "no active movement animation")
		return
	}

	md := a.Movement
	md.Server = p.Server
	if p.Server == nil || len(p.Server.PathSenses) == 0 {
		// No server path data yet: adopt as-is, defer correction.
		a.Status = StatusAdopted
		h.log.Add(id, "move", "adopted", "no path data, deferred", 0)
		return
	}

	md.PathSenses = p.Server.PathSenses
	derived := DeriveServerPath(md.Path[0], p.Server.PathSenses)
	if PathsEqual(derived, md.Path) {
		a.Status = StatusAdopted
		h.log.Add(id, "move", "adopted", "path match", float64(len(md.Path)))
		return
	}

	// Mid-flight course correction: swap the geometry, keep the clock.
	// Already-elapsed progress now interpolates against the corrected path,
	// so the entity curves toward the server's route instead of snapping.
	md.Path = derived
	md.To = derived[len(derived)-1]
	if md.CurrentSegment > len(derived)-2 {
		md.CurrentSegment = max(len(derived)-2, 0)
	}
	h.pathData[id] = PrecomputePath(derived)
	a.Status = StatusAdopted
	h.log.Add(id, "move", "corrected", md.To.Key(), float64(len(derived)))
}

func (h *MovementHandler) handleRejected(ev Event) {
	p, ok := ev.Payload.(*MovementRejectedPayload)
	if !ok {
		h.log.Warn("--", "bad_payload", "MOVEMENT_REJECTED")
		return
	}
	a, active := h.reg.Active(p.EntityID)
	if !active || !a.Type.IsMovement() {
		h.log.Warn(p.EntityID, "late_rejection", "no active movement animation")
		return
	}
	// The animation finishes its visual motion; the completion branch
	// refuses to commit the moved-to cell and resyncs to the pre-movement
	// authoritative position instead.
	a.Status = StatusRejected
	h.log.Add(p.EntityID, "move", "rejected", p.Reason, 0)
}

// Update advances every in-flight movement animation by one render tick.
func (h *MovementHandler) Update(now time.Time) {
	for _, a := range h.reg.Stale(now) {
		if a.Type.IsMovement() {
			h.log.Warn(a.EntityID, "timeout", "movement force-completed")
			h.finish(a)
		}
	}

	h.reg.ForEach(func(a *Animation) {
		if !a.Type.IsMovement() || a.Movement == nil {
			return
		}
		id := a.EntityID
		if _, ok := h.store.Entity(id); !ok {
			// Entity vanished mid-animation: nothing authoritative remains
			// to sync to, so drop local state without final writes.
			h.log.Warn(id, "stale_entity", "entity removed mid-movement")
			h.dropLocalState(id)
			h.reg.Complete(id)
			return
		}

		progress := a.Progress(now)
		if progress >= 1 {
			h.finish(a)
			return
		}

		md := a.Movement
		pos, seg, segT := SamplePath(md.Path, progress)
		h.renderer.UpdateEntityVisualPosition(id, pos)
		h.store.SetVisualPosition(id, pos)
		h.log.AddVerbose(id, "move", "interp", pos.String(), progress)

		if seg != md.CurrentSegment || segT < segmentDirThreshold {
			h.updateFacing(id, seg, now)
			md.CurrentSegment = seg
		}
	})
}

// updateFacing pushes the facing for the given segment to the renderer and
// remembers it for the single store write owed at completion.
func (h *MovementHandler) updateFacing(id string, seg int, now time.Time) {
	pd, ok := h.pathData[id]
	if !ok || seg < 0 || seg >= len(pd.Directions) {
		return
	}
	dir := pd.Directions[seg]
	ld := h.localDir[id]
	if ld == nil {
		pending := dir
		ld = &localDirection{Current: dir, PendingStore: &pending}
		h.localDir[id] = ld
		h.renderer.UpdateSpriteDirection(id, dir)
		return
	}
	if ld.Current == dir {
		return
	}
	ld.Current = dir
	pending := dir
	ld.PendingStore = &pending
	h.renderer.UpdateSpriteDirection(id, dir)
	h.log.AddVerbose(id, "move", "facing", dir.String(), float64(seg))
	_ = now
}

// finish runs the completion contract: final direction to the store exactly
// once, position resync, senses refresh, local state cleared, regardless of
// adoption or rejection.
func (h *MovementHandler) finish(a *Animation) {
	id := a.EntityID
	md := a.Movement
	status := a.Status

	e, ok := h.store.Entity(id)
	if !ok {
		h.dropLocalState(id)
		h.reg.Complete(id)
		return
	}

	// Snap the sprite to the final path cell before the resync below; the
	// resync may immediately overwrite it (rejection snap-back).
	if len(md.Path) > 0 {
		final := md.Path[len(md.Path)-1]
		h.renderer.UpdateEntityVisualPosition(id, final.Vec())

		if status != StatusRejected {
			// Commit the moved-to cell. A server snapshot outranks the
			// optimistic endpoint when one arrived.
			if md.Server != nil {
				h.store.SetPosition(id, md.Server.Position)
			} else {
				h.store.SetPosition(id, final)
			}
		}
	}

	// Final facing, written to the store exactly once.
	if ld := h.localDir[id]; ld != nil && ld.PendingStore != nil {
		h.store.SetDirection(id, *ld.PendingStore)
		h.renderer.UpdateSpriteDirection(id, *ld.PendingStore)
		ld.PendingStore = nil
		ld.LastStoreUpdate = h.clock.Now()
	}

	h.store.SetAnimationLabel(id, AnimIdle)
	h.resyncPosition(id)
	h.senses.UpdateEntitySenses(id)
	h.dropLocalState(id)
	h.reg.Complete(id)

	h.log.Add(id, "move", "finished", e.Position.Key(), float64(status))
	h.bus.Publish(EventAnimationCompleted, &AnimationCompletedPayload{
		EntityID: id,
		Type:     a.Type,
		Status:   status,
	})
}

// resyncPosition snaps the rendered position back to the store's
// authoritative cell and drops the interpolated mirror.
func (h *MovementHandler) resyncPosition(id string) {
	e, ok := h.store.Entity(id)
	if !ok {
		return
	}
	h.renderer.UpdateEntityVisualPosition(id, e.Position.Vec())
	h.store.ClearVisualPosition(id)
}

func (h *MovementHandler) dropLocalState(id string) {
	delete(h.pathData, id)
	delete(h.localDir, id)
	h.renderer.ClearLocalZOrder(id)
	h.store.ClearVisualPosition(id)
}
