package game

import (
	"fmt"
	"time"
)

// defaultAttackDuration is the swing length used when the caller does not
// specify one.
const defaultAttackDuration = time.Second

type pendingAttack struct {
	attackerID  string
	targetID    string
	start       time.Time
	duration    time.Duration
	impactFired bool
}

// AttackDriver plays the role of the attack sprite timeline: it fires the
// impact-frame checkpoint at 40% of the animation and the completion event
// at the end, exactly as the display layer would for a real sprite.
type AttackDriver struct {
	bus     *Bus
	store   *Store
	reg     *Registry
	clock   Clock
	log     *SimLog
	pending map[string]*pendingAttack
}

// NewAttackDriver creates an idle driver.
func NewAttackDriver(bus *Bus, store *Store, reg *Registry, clock Clock, log *SimLog) *AttackDriver {
	return &AttackDriver{
		bus:     bus,
		store:   store,
		reg:     reg,
		clock:   clock,
		log:     log,
		pending: make(map[string]*pendingAttack),
	}
}

// Begin starts an attack animation and installs the store attack record the
// sequencing handler reads at impact. Fails if the attacker already has an
// active animation.
func (d *AttackDriver) Begin(attackerID, targetID string, duration time.Duration) error {
	if _, busy := d.reg.Active(attackerID); busy {
		return fmt.Errorf("attacker %s already animating", attackerID)
	}
	if _, ok := d.store.Entity(attackerID); !ok {
		return fmt.Errorf("unknown attacker %s", attackerID)
	}
	if duration <= 0 {
		duration = defaultAttackDuration
	}
	now := d.clock.Now()
	a := &Animation{
		EntityID:        attackerID,
		Type:            AnimAttack,
		Status:          StatusOrphan,
		StartTime:       now,
		Duration:        duration,
		ClientInitiated: true,
	}
	if err := d.reg.Start(a); err != nil {
		return err
	}
	d.store.PutAttack(&AttackRecord{
		AttackerID:     attackerID,
		TargetID:       targetID,
		Duration:       duration,
		ImpactProgress: impactFrameCheckpoint,
	})
	d.store.SetAnimationLabel(attackerID, AnimAttack)
	d.pending[attackerID] = &pendingAttack{
		attackerID: attackerID,
		targetID:   targetID,
		start:      now,
		duration:   duration,
	}
	d.bus.Publish(EventAttackStarted, &AttackStartedPayload{
		AttackerID: attackerID,
		TargetID:   targetID,
	})
	return nil
}

// Update advances every pending attack timeline by one render tick.
func (d *AttackDriver) Update(now time.Time) {
	for id, p := range d.pending {
		progress := float64(now.Sub(p.start)) / float64(p.duration)
		if !p.impactFired && progress >= impactFrameCheckpoint {
			p.impactFired = true
			d.bus.Publish(EventAttackImpactFrame, &AttackImpactFramePayload{
				AttackerID:    p.attackerID,
				TargetID:      p.targetID,
				FrameProgress: impactFrameCheckpoint,
			})
		}
		if progress >= 1 {
			if a, ok := d.reg.Active(p.attackerID); ok && a.Type == AnimAttack {
				d.reg.Complete(p.attackerID)
			}
			d.store.SetAnimationLabel(p.attackerID, AnimIdle)
			d.bus.Publish(EventAttackCompleted, &AttackCompletedPayload{
				AttackerID: p.attackerID,
				TargetID:   p.targetID,
			})
			delete(d.pending, id)
		}
	}
}
