package game

import (
	"fmt"
	"time"
)

// AnimationType labels what an entity is visually doing.
type AnimationType int

const (
	AnimIdle AnimationType = iota
	AnimWalk
	AnimRun
	AnimAttack
	AnimTakeDamage
	AnimDodge
)

func (t AnimationType) String() string {
	switch t {
	case AnimIdle:
		return "idle"
	case AnimWalk:
		return "walk"
	case AnimRun:
		return "run"
	case AnimAttack:
		return "attack"
	case AnimTakeDamage:
		return "take_damage"
	case AnimDodge:
		return "dodge"
	default:
		return "unknown"
	}
}

// IsMovement reports whether the type animates across cells.
func (t AnimationType) IsMovement() bool {
	return t == AnimWalk || t == AnimRun
}

// AnimationStatus tracks the reconciliation state of a record.
// Orphan -> Adopted | Rejected -> Completed.
type AnimationStatus int

const (
	StatusOrphan    AnimationStatus = iota // client-predicted, no server word yet
	StatusAdopted                          // server confirmed
	StatusRejected                         // server denied; finishes visually, result not committed
	StatusCompleted                        // terminal
)

func (s AnimationStatus) String() string {
	switch s {
	case StatusOrphan:
		return "orphan"
	case StatusAdopted:
		return "adopted"
	case StatusRejected:
		return "rejected"
	case StatusCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// MovementData is the movement-typed animation payload.
type MovementData struct {
	Path           []GridPos // first element = start cell
	CurrentSegment int
	From           GridPos
	To             GridPos
	Server         *EntitySnapshot           // authoritative snapshot attached on adoption
	PathSenses     map[string]SensesSnapshot // per-cell senses valid if the entity occupies that cell
}

// Animation is one in-flight animation record. At most one exists per entity.
// Mutated in place as server adoption/rejection arrives and per-frame
// progress advances; removed from the registry when completed.
type Animation struct {
	EntityID        string
	Type            AnimationType
	Status          AnimationStatus
	StartTime       time.Time
	Duration        time.Duration
	ClientInitiated bool
	Movement        *MovementData // set for movement-typed records
}

// Progress returns the elapsed-time ratio clamped to [0,1].
func (a *Animation) Progress(now time.Time) float64 {
	if a.Duration <= 0 {
		return 1
	}
	p := float64(now.Sub(a.StartTime)) / float64(a.Duration)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// animationTimeout force-completes any animation stuck past this elapsed time.
const animationTimeout = 5 * time.Second

// Registry holds the set of active animation records keyed by entity.
type Registry struct {
	active map[string]*Animation
	log    *SimLog
}

// NewRegistry creates an empty registry.
func NewRegistry(log *SimLog) *Registry {
	return &Registry{
		active: make(map[string]*Animation),
		log:    log,
	}
}

// Start installs a new record. Callers must check Active first; starting
// over a live record is an error and leaves the existing record in place.
func (r *Registry) Start(a *Animation) error {
	if cur, ok := r.active[a.EntityID]; ok {
		return fmt.Errorf("entity %s already has an active %s animation", a.EntityID, cur.Type)
	}
	r.active[a.EntityID] = a
	r.log.Add(a.EntityID, "anim", "start", a.Type.String(), float64(a.Duration.Milliseconds()))
	return nil
}

// Active returns the entity's in-flight record, if any.
func (r *Registry) Active(entityID string) (*Animation, bool) {
	a, ok := r.active[entityID]
	return a, ok
}

// Complete marks the record terminal and removes it.
func (r *Registry) Complete(entityID string) {
	a, ok := r.active[entityID]
	if !ok {
		return
	}
	a.Status = StatusCompleted
	delete(r.active, entityID)
	r.log.Add(entityID, "anim", "complete", a.Type.String(), 0)
}

// ForEach visits every active record. The callback may complete records;
// iteration works on a snapshot so mutation during the walk is safe.
func (r *Registry) ForEach(fn func(*Animation)) {
	snapshot := make([]*Animation, 0, len(r.active))
	for _, a := range r.active {
		snapshot = append(snapshot, a)
	}
	for _, a := range snapshot {
		if _, ok := r.active[a.EntityID]; ok {
			fn(a)
		}
	}
}

// AnyMovement reports whether any entity currently has a movement-typed
// animation in flight.
func (r *Registry) AnyMovement() bool {
	for _, a := range r.active {
		if a.Type.IsMovement() {
			return true
		}
	}
	return false
}

// Stale returns records whose elapsed time exceeds the defensive timeout.
// The owning handler force-completes them to avoid stuck animations.
func (r *Registry) Stale(now time.Time) []*Animation {
	var out []*Animation
	for _, a := range r.active {
		if now.Sub(a.StartTime) > animationTimeout {
			out = append(out, a)
		}
	}
	return out
}

// Len returns the number of active records.
func (r *Registry) Len() int {
	return len(r.active)
}
