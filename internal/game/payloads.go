package game

import "time"

// One payload struct per bus topic. The set is closed: handlers match on the
// concrete variant for their topic and warn-discard anything unexpected.

// MovementStartedPayload carries the client-predicted move.
type MovementStartedPayload struct {
	EntityID       string
	Target         GridPos
	OptimisticPath []GridPos // first element = start cell
	StartTime      time.Time
}

// MovementAdoptedPayload carries the authoritative entity snapshot.
type MovementAdoptedPayload struct {
	EntityID string
	Server   *EntitySnapshot
	Time     time.Time
}

// MovementRejectedPayload signals a denied move.
type MovementRejectedPayload struct {
	EntityID string
	Reason   string
}

// AttackStartedPayload identifies the attack pair. The attack record itself
// lives in the store, populated by the initiating call.
type AttackStartedPayload struct {
	AttackerID string
	TargetID   string
}

// AttackAdoptedPayload confirms an attack; outcome metadata is already on
// the store's attack record when this fires.
type AttackAdoptedPayload struct {
	AttackerID string
	TargetID   string
}

// AttackRejectedPayload denies an attack.
type AttackRejectedPayload struct {
	AttackerID string
	TargetID   string
	Reason     string
}

// AttackImpactFramePayload fires at the fixed impact checkpoint.
// FrameProgress is the fraction of the attack animation elapsed at impact;
// zero means the renderer had no frame timing data.
type AttackImpactFramePayload struct {
	AttackerID    string
	TargetID      string
	FrameProgress float64
}

// AttackCompletedPayload signals the attack animation finished.
type AttackCompletedPayload struct {
	AttackerID string
	TargetID   string
}

// DamageStartedPayload signals a target entering its damage reaction.
type DamageStartedPayload struct {
	EntityID   string
	AttackerID string
	Crit       bool
}

// EffectTriggeredPayload requests a parameterized cosmetic effect.
type EffectTriggeredPayload struct {
	Name       string // e.g. "blood_splat"
	AttackerID string
	TargetID   string
	From       GridPos // attacker cell
	To         GridPos // target cell
	Outcome    AttackOutcome
}

// SoundTriggeredPayload requests a sound cue.
type SoundTriggeredPayload struct {
	Name     string
	EntityID string
}

// ZOrderChangeRequestedPayload sets or clears a global z-order override.
type ZOrderChangeRequestedPayload struct {
	EntityID string
	Z        int
	Clear    bool
}

// AnimationCompletedPayload signals any animation reaching a terminal state.
type AnimationCompletedPayload struct {
	EntityID string
	Type     AnimationType
	Status   AnimationStatus
}
