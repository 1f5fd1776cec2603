package game

import (
	"math/rand"
	"time"
)

// LocalServer is an in-process stand-in for the authoritative server, used
// by the demo and the headless report so reconciliation paths are
// exercisable offline. It answers movement and attack starts after an
// artificial latency, occasionally correcting or rejecting them, and
// generates per-cell path senses the way the real server would.
type LocalServer struct {
	store *Store
	bus   *Bus
	mail  *Mailbox
	clock Clock
	log   *SimLog
	rng   *rand.Rand

	Latency      time.Duration // delay before the authoritative answer
	RejectChance float64       // probability a move/attack is denied
	DivertChance float64       // probability the server path differs
	MissChance   float64       // probability an attack misses
	CritChance   float64       // probability a hit turns crit
	VisionRange  int           // Chebyshev radius of generated senses
}

// NewLocalServer creates a stub with the given seed for deterministic runs.
func NewLocalServer(store *Store, bus *Bus, mail *Mailbox, clock Clock, log *SimLog, seed int64) *LocalServer {
	return &LocalServer{
		store:        store,
		bus:          bus,
		mail:         mail,
		clock:        clock,
		log:          log,
		rng:          rand.New(rand.NewSource(seed)), // #nosec G404 -- demo stub only
		Latency:      300 * time.Millisecond,
		RejectChance: 0.05,
		DivertChance: 0.25,
		MissChance:   0.35,
		CritChance:   0.2,
		VisionRange:  4,
	}
}

// Bind subscribes the stub so it answers client predictions.
func (s *LocalServer) Bind() {
	s.bus.Subscribe(EventMovementStarted, s.onMovementStarted)
	s.bus.Subscribe(EventAttackStarted, s.onAttackStarted)
}

func (s *LocalServer) onMovementStarted(ev Event) {
	p, ok := ev.Payload.(*MovementStartedPayload)
	if !ok || len(p.OptimisticPath) == 0 {
		return
	}
	id := p.EntityID
	due := s.clock.Now().Add(s.Latency)

	if s.rng.Float64() < s.RejectChance {
		s.mail.PostAt(due, func() {
			s.bus.Publish(EventMovementRejected, &MovementRejectedPayload{
				EntityID: id,
				Reason:   "blocked",
			})
		})
		return
	}

	path := append([]GridPos(nil), p.OptimisticPath...)
	if len(path) > 2 && s.rng.Float64() < s.DivertChance {
		path = divertPath(path, s.rng)
	}
	snap := &EntitySnapshot{
		ID:         id,
		Position:   path[len(path)-1],
		PathSenses: s.generatePathSenses(path),
	}
	if len(path) >= 2 {
		if dir, moved := DirectionBetween(path[len(path)-2], path[len(path)-1]); moved {
			snap.Direction = dir
		}
	}
	s.mail.PostAt(due, func() {
		s.bus.Publish(EventMovementAdopted, &MovementAdoptedPayload{
			EntityID: id,
			Server:   snap,
			Time:     s.clock.Now(),
		})
	})
}

func (s *LocalServer) onAttackStarted(ev Event) {
	p, ok := ev.Payload.(*AttackStartedPayload)
	if !ok {
		return
	}
	attacker, target := p.AttackerID, p.TargetID
	due := s.clock.Now().Add(s.Latency)

	if s.rng.Float64() < s.RejectChance {
		s.mail.PostAt(due, func() {
			s.bus.Publish(EventAttackRejected, &AttackRejectedPayload{
				AttackerID: attacker,
				TargetID:   target,
				Reason:     "out of range",
			})
		})
		return
	}

	outcome := OutcomeHit
	switch {
	case s.rng.Float64() < s.MissChance:
		outcome = OutcomeMiss
	case s.rng.Float64() < s.CritChance:
		outcome = OutcomeCrit
	}
	s.mail.PostAt(due, func() {
		// Outcome metadata attaches to the attack record before adoption
		// fires, matching the real network layer's ordering.
		if rec, found := s.store.Attack(attacker); found {
			rec.Outcome = outcome
		}
		s.bus.Publish(EventAttackAdopted, &AttackAdoptedPayload{
			AttackerID: attacker,
			TargetID:   target,
		})
	})
}

// generatePathSenses builds a senses snapshot for every cell on the path:
// all cells within VisionRange are visible, the travelled cells are seen.
func (s *LocalServer) generatePathSenses(path []GridPos) map[string]SensesSnapshot {
	out := make(map[string]SensesSnapshot, len(path))
	var seen []GridPos
	for _, cell := range path {
		seen = append(seen, cell)
		var visible []GridPos
		for dy := -s.VisionRange; dy <= s.VisionRange; dy++ {
			for dx := -s.VisionRange; dx <= s.VisionRange; dx++ {
				visible = append(visible, GridPos{X: cell.X + dx, Y: cell.Y + dy})
			}
		}
		out[cell.Key()] = NewSensesSnapshot(visible, seen)
	}
	return out
}

// divertPath bends the tail of the optimistic path sideways, producing the
// kind of mid-flight correction a pathfinding disagreement causes.
func divertPath(path []GridPos, rng *rand.Rand) []GridPos {
	out := append([]GridPos(nil), path...)
	last := out[len(out)-1]
	prev := out[len(out)-2]
	dx, dy := last.X-prev.X, last.Y-prev.Y
	// Rotate the final step 90 degrees.
	if rng.Intn(2) == 0 {
		out[len(out)-1] = GridPos{X: prev.X - dy, Y: prev.Y + dx}
	} else {
		out[len(out)-1] = GridPos{X: prev.X + dy, Y: prev.Y - dx}
	}
	return out
}
