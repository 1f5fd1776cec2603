package game

import "time"

// AttackOutcome is the server-resolved result of an attack.
type AttackOutcome int

const (
	OutcomeUnknown AttackOutcome = iota
	OutcomeHit
	OutcomeCrit
	OutcomeMiss
)

func (o AttackOutcome) String() string {
	switch o {
	case OutcomeHit:
		return "hit"
	case OutcomeCrit:
		return "crit"
	case OutcomeMiss:
		return "miss"
	default:
		return "unknown"
	}
}

// EntitySnapshot is an authoritative entity state as the server reports it.
// PathSenses, when present, carries a senses snapshot for every cell the
// entity visited; the client reconstructs the server path from its keys.
type EntitySnapshot struct {
	ID         string
	Position   GridPos
	Direction  Direction
	PathSenses map[string]SensesSnapshot
}

// EntityState is one entity's authoritative client-side state. Handlers read
// it freely but write only at transition points (start, adoption/rejection
// arrival, completion), never per interpolation frame, so that anything
// observing the store is not flooded. VisualPosition is the sole exception:
// it is the store-side mirror of the interpolated position, needed for
// dynamic senses and depth lookups while the entity is mid-movement.
type EntityState struct {
	ID             string
	Position       GridPos // server-confirmed cell
	Direction      Direction
	AnimationLabel AnimationType
	Senses         SensesSnapshot
	VisualPosition *Vec2 // set while animating, nil otherwise
}

// AttackRecord is the store-side attack animation record, populated by the
// initiating call and enriched with outcome metadata by the network layer
// before the impact frame fires.
type AttackRecord struct {
	AttackerID     string
	TargetID       string
	Outcome        AttackOutcome
	Duration       time.Duration // attack animation duration
	ImpactProgress float64       // fraction of the animation at the impact checkpoint
	Completed      bool
}

// Store is the shared authoritative state collaborator. The reconciliation
// engine owns all transient per-frame state itself; the store only ever
// receives finalized values.
type Store struct {
	entities map[string]*EntityState
	attacks  map[string]*AttackRecord // keyed by attacker id
	globalZ  map[string]int           // gameplay-rule z-order overrides
	log      *SimLog
}

// NewStore creates an empty store.
func NewStore(log *SimLog) *Store {
	return &Store{
		entities: make(map[string]*EntityState),
		attacks:  make(map[string]*AttackRecord),
		globalZ:  make(map[string]int),
		log:      log,
	}
}

// AddEntity registers an entity. Used by the demo, net layer, and tests.
func (s *Store) AddEntity(e *EntityState) {
	s.entities[e.ID] = e
}

// RemoveEntity drops an entity. Handlers detect the absence and discard
// their local state without final writes.
func (s *Store) RemoveEntity(id string) {
	delete(s.entities, id)
	delete(s.globalZ, id)
}

// Entity returns the entity's state, or false if it is gone from the store.
func (s *Store) Entity(id string) (*EntityState, bool) {
	e, ok := s.entities[id]
	return e, ok
}

// EntityIDs returns every known entity id.
func (s *Store) EntityIDs() []string {
	ids := make([]string, 0, len(s.entities))
	for id := range s.entities {
		ids = append(ids, id)
	}
	return ids
}

// SetAnimationLabel records the entity's finalized animation label.
// A no-op when the label is unchanged, so observers see real changes only.
func (s *Store) SetAnimationLabel(id string, label AnimationType) {
	e, ok := s.entities[id]
	if !ok || e.AnimationLabel == label {
		return
	}
	e.AnimationLabel = label
	s.log.AddVerbose(id, "store", "label", label.String(), 0)
}

// SetDirection records a finalized facing. Unchanged values are dropped
// before they reach observers, so direction churn cannot cause flicker.
func (s *Store) SetDirection(id string, dir Direction) {
	e, ok := s.entities[id]
	if !ok || e.Direction == dir {
		return
	}
	e.Direction = dir
	s.log.AddVerbose(id, "store", "direction", dir.String(), 0)
}

// SetPosition records an authoritative position (server word only).
func (s *Store) SetPosition(id string, p GridPos) {
	e, ok := s.entities[id]
	if !ok || e.Position == p {
		return
	}
	e.Position = p
	s.log.AddVerbose(id, "store", "position", p.Key(), 0)
}

// SetSenses replaces the entity's live senses snapshot.
func (s *Store) SetSenses(id string, senses SensesSnapshot) {
	e, ok := s.entities[id]
	if !ok {
		return
	}
	e.Senses = senses
}

// SetVisualPosition mirrors the interpolated position into the store for
// dynamic senses/depth lookups. Per-frame by design; not an observer-visible
// transition.
func (s *Store) SetVisualPosition(id string, v Vec2) {
	e, ok := s.entities[id]
	if !ok {
		return
	}
	if e.VisualPosition == nil {
		e.VisualPosition = &Vec2{}
	}
	*e.VisualPosition = v
}

// ClearVisualPosition drops the interpolated mirror once animation ends.
func (s *Store) ClearVisualPosition(id string) {
	e, ok := s.entities[id]
	if !ok {
		return
	}
	e.VisualPosition = nil
}

// EffectiveCell resolves the cell an entity currently occupies for
// visibility and depth: the visual position while mid-movement, else the
// authoritative position.
func (s *Store) EffectiveCell(id string) (GridPos, bool) {
	e, ok := s.entities[id]
	if !ok {
		return GridPos{}, false
	}
	if e.VisualPosition != nil {
		return GridPos{
			X: int(e.VisualPosition.X + 0.5),
			Y: int(e.VisualPosition.Y + 0.5),
		}, true
	}
	return e.Position, true
}

// SetGlobalZ installs a gameplay-rule z-order override.
func (s *Store) SetGlobalZ(id string, z int) {
	s.globalZ[id] = z
}

// ClearGlobalZ removes a gameplay-rule z-order override.
func (s *Store) ClearGlobalZ(id string) {
	delete(s.globalZ, id)
}

// GlobalZ returns the gameplay-rule override, if any.
func (s *Store) GlobalZ(id string) (int, bool) {
	z, ok := s.globalZ[id]
	return z, ok
}

// PutAttack installs or replaces the attack record for an attacker.
func (s *Store) PutAttack(rec *AttackRecord) {
	s.attacks[rec.AttackerID] = rec
}

// Attack returns the attacker's current attack record.
func (s *Store) Attack(attackerID string) (*AttackRecord, bool) {
	rec, ok := s.attacks[attackerID]
	return rec, ok
}

// CompleteAttack marks the attack record done and drops it.
func (s *Store) CompleteAttack(attackerID string) {
	rec, ok := s.attacks[attackerID]
	if !ok {
		return
	}
	rec.Completed = true
	delete(s.attacks, attackerID)
}
