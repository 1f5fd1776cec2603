package game

import "time"

const (
	// impactFrameCheckpoint is the fixed fraction of the attack animation at
	// which hit/miss resolution is applied visually.
	impactFrameCheckpoint = 0.4

	// damageReactionDuration is how long a target holds its damage reaction.
	damageReactionDuration = 400 * time.Millisecond
)

// CombatHandler owns attack sequencing: start, impact frame, completion,
// outcome branching, and kicking off the local dodge on a miss. The attack
// record itself lives in the store, populated by the initiating call and
// enriched with outcome metadata by the network layer before impact.
type CombatHandler struct {
	bus      *Bus
	store    *Store
	reg      *Registry
	renderer Renderer
	dodges   *DodgeManager
	depth    *DepthResolver
	clock    Clock
	log      *SimLog

	// impactSeen guards against a single impact being processed twice,
	// keyed per attacker-target pair.
	impactSeen map[string]struct{}
}

// NewCombatHandler creates the handler. Call Bind to attach it to the bus.
func NewCombatHandler(bus *Bus, store *Store, reg *Registry, renderer Renderer, dodges *DodgeManager, depth *DepthResolver, clock Clock, log *SimLog) *CombatHandler {
	return &CombatHandler{
		bus:        bus,
		store:      store,
		reg:        reg,
		renderer:   renderer,
		dodges:     dodges,
		depth:      depth,
		clock:      clock,
		log:        log,
		impactSeen: make(map[string]struct{}),
	}
}

// Bind subscribes the handler to its lifecycle topics.
func (h *CombatHandler) Bind() {
	h.bus.Subscribe(EventAttackStarted, h.handleStarted)
	h.bus.Subscribe(EventAttackAdopted, h.handleAdopted)
	h.bus.Subscribe(EventAttackRejected, h.handleRejected)
	h.bus.Subscribe(EventAttackImpactFrame, h.handleImpact)
	h.bus.Subscribe(EventAttackCompleted, h.handleCompleted)
}

func (h *CombatHandler) handleStarted(ev Event) {
	p, ok := ev.Payload.(*AttackStartedPayload)
	if !ok {
		h.log.Warn("--", "bad_payload", "ATTACK_STARTED")
		return
	}
	// The true state lives in the store's attack record; nothing to own yet.
	h.log.Add(p.AttackerID, "combat", "attack_started", p.TargetID, 0)
}

func (h *CombatHandler) handleAdopted(ev Event) {
	p, ok := ev.Payload.(*AttackAdoptedPayload)
	if !ok {
		h.log.Warn("--", "bad_payload", "ATTACK_ADOPTED")
		return
	}
	outcome := "no outcome yet"
	if rec, found := h.store.Attack(p.AttackerID); found {
		outcome = rec.Outcome.String()
	}
	h.log.Add(p.AttackerID, "combat", "attack_adopted", outcome, 0)
}

func (h *CombatHandler) handleRejected(ev Event) {
	p, ok := ev.Payload.(*AttackRejectedPayload)
	if !ok {
		h.log.Warn("--", "bad_payload", "ATTACK_REJECTED")
		return
	}
	h.log.Add(p.AttackerID, "combat", "attack_rejected", p.Reason, 0)
}

func (h *CombatHandler) handleImpact(ev Event) {
	p, ok := ev.Payload.(*AttackImpactFramePayload)
	if !ok {
		h.log.Warn("--", "bad_payload", "ATTACK_IMPACT_FRAME")
		return
	}
	key := p.AttackerID + "->" + p.TargetID
	if _, seen := h.impactSeen[key]; seen {
		return
	}
	h.impactSeen[key] = struct{}{}

	rec, found := h.store.Attack(p.AttackerID)
	if !found {
		h.log.Warn(p.AttackerID, "missing_attack", "impact with no attack record")
		return
	}
	attackerCell, aok := h.store.EffectiveCell(p.AttackerID)
	targetCell, tok := h.store.EffectiveCell(p.TargetID)
	if !aok || !tok {
		h.log.Warn(p.AttackerID, "stale_entity", "attacker or target gone at impact")
		return
	}

	h.log.Add(p.AttackerID, "combat", "impact", rec.Outcome.String(), p.FrameProgress)

	switch rec.Outcome {
	case OutcomeHit, OutcomeCrit:
		h.applyHit(p, rec, attackerCell, targetCell)
	case OutcomeMiss:
		h.applyMiss(p, rec, attackerCell, targetCell)
	default:
		h.log.Warn(p.AttackerID, "missing_outcome", "impact before outcome metadata arrived")
	}
}

func (h *CombatHandler) applyHit(p *AttackImpactFramePayload, rec *AttackRecord, attackerCell, targetCell GridPos) {
	target := p.TargetID

	// Damage reaction, unless the target is already animating something.
	if _, busy := h.reg.Active(target); !busy {
		a := &Animation{
			EntityID:  target,
			Type:      AnimTakeDamage,
			Status:    StatusAdopted,
			StartTime: h.clock.Now(),
			Duration:  damageReactionDuration,
		}
		if err := h.reg.Start(a); err == nil {
			h.store.SetAnimationLabel(target, AnimTakeDamage)
		}
	} else {
		h.store.SetAnimationLabel(target, AnimTakeDamage)
	}

	// Face the target toward its attacker.
	if dir, moved := DirectionBetween(targetCell, attackerCell); moved {
		h.store.SetDirection(target, dir)
		h.renderer.UpdateSpriteDirection(target, dir)
	}

	crit := rec.Outcome == OutcomeCrit
	h.bus.Publish(EventDamageStarted, &DamageStartedPayload{
		EntityID:   target,
		AttackerID: p.AttackerID,
		Crit:       crit,
	})
	sound := "attack_hit"
	if crit {
		sound = "attack_crit"
	}
	h.bus.Publish(EventSoundTriggered, &SoundTriggeredPayload{Name: sound, EntityID: target})
	h.bus.Publish(EventEffectTriggered, &EffectTriggeredPayload{
		Name:       "blood_splat",
		AttackerID: p.AttackerID,
		TargetID:   target,
		From:       attackerCell,
		To:         targetCell,
		Outcome:    rec.Outcome,
	})
}

func (h *CombatHandler) applyMiss(p *AttackImpactFramePayload, rec *AttackRecord, attackerCell, targetCell GridPos) {
	target := p.TargetID
	h.bus.Publish(EventSoundTriggered, &SoundTriggeredPayload{Name: "attack_miss", EntityID: target})

	toAttacker, moved := DirectionBetween(targetCell, attackerCell)
	if !moved {
		// Attacker on the same cell: no meaningful dodge direction.
		h.log.Warn(target, "degenerate_dodge", "attacker and target share a cell")
		return
	}

	// Remaining attack time after the impact checkpoint. The 500ms default
	// covers renderers that report no frame timing.
	remaining := defaultDodgeRemaining
	progress := p.FrameProgress
	if progress <= 0 {
		progress = rec.ImpactProgress
	}
	if rec.Duration > 0 && progress > 0 {
		remaining = time.Duration((1 - progress) * float64(rec.Duration))
	}

	// The defender leans away from the attacker and must render above it.
	h.renderer.SetLocalZOrder(target, h.depth.Resolve(p.AttackerID)+1)
	h.dodges.Start(target, toAttacker.Opposite(), remaining)
}

func (h *CombatHandler) handleCompleted(ev Event) {
	p, ok := ev.Payload.(*AttackCompletedPayload)
	if !ok {
		h.log.Warn("--", "bad_payload", "ATTACK_COMPLETED")
		return
	}
	delete(h.impactSeen, p.AttackerID+"->"+p.TargetID)
	h.store.CompleteAttack(p.AttackerID)
	h.log.Add(p.AttackerID, "combat", "attack_completed", p.TargetID, 0)
}

// Update retires damage reactions whose hold time has elapsed. Driven by the
// render tick alongside the movement handler.
func (h *CombatHandler) Update(now time.Time) {
	h.reg.ForEach(func(a *Animation) {
		if a.Type != AnimTakeDamage {
			return
		}
		if a.Progress(now) < 1 {
			return
		}
		id := a.EntityID
		h.reg.Complete(id)
		h.store.SetAnimationLabel(id, AnimIdle)
		h.bus.Publish(EventAnimationCompleted, &AnimationCompletedPayload{
			EntityID: id,
			Type:     AnimTakeDamage,
			Status:   StatusCompleted,
		})
	})
}
