package game

// EffectSink receives parameterized cosmetic effect requests. Implemented by
// the display layer; the headless harness records them.
type EffectSink interface {
	SpawnEffect(name string, at GridPos, dir Direction, crit bool)
}

// SoundSink receives sound cue requests. Playback itself is external.
type SoundSink interface {
	PlaySound(name string, entityID string)
}

// EffectSinkFunc adapts a function to EffectSink.
type EffectSinkFunc func(name string, at GridPos, dir Direction, crit bool)

func (f EffectSinkFunc) SpawnEffect(name string, at GridPos, dir Direction, crit bool) {
	f(name, at, dir, crit)
}

// SoundSinkFunc adapts a function to SoundSink.
type SoundSinkFunc func(name, entityID string)

func (f SoundSinkFunc) PlaySound(name, entityID string) { f(name, entityID) }

// EffectHandler translates combat outcome events into concrete sink calls,
// attaching the parameters the display layer needs (impact cell, splat
// orientation, crit scaling).
type EffectHandler struct {
	effects EffectSink
	sounds  SoundSink
	log     *SimLog
}

// NewEffectHandler creates the handler. Nil sinks are allowed and skipped.
func NewEffectHandler(effects EffectSink, sounds SoundSink, log *SimLog) *EffectHandler {
	return &EffectHandler{effects: effects, sounds: sounds, log: log}
}

// Bind subscribes the handler to its request topics.
func (h *EffectHandler) Bind(bus *Bus) {
	bus.Subscribe(EventEffectTriggered, h.handleEffect)
	bus.Subscribe(EventSoundTriggered, h.handleSound)
}

func (h *EffectHandler) handleEffect(ev Event) {
	p, ok := ev.Payload.(*EffectTriggeredPayload)
	if !ok {
		h.log.Warn("--", "bad_payload", "EFFECT_TRIGGERED")
		return
	}
	// Splat orientation follows the blow: attacker cell toward target cell.
	dir, _ := DirectionBetween(p.From, p.To)
	crit := p.Outcome == OutcomeCrit
	h.log.Add(p.TargetID, "effect", p.Name, dir.String(), 0)
	if h.effects != nil {
		h.effects.SpawnEffect(p.Name, p.To, dir, crit)
	}
}

func (h *EffectHandler) handleSound(ev Event) {
	p, ok := ev.Payload.(*SoundTriggeredPayload)
	if !ok {
		h.log.Warn("--", "bad_payload", "SOUND_TRIGGERED")
		return
	}
	h.log.Add(p.EntityID, "effect", "sound", p.Name, 0)
	if h.sounds != nil {
		h.sounds.PlaySound(p.Name, p.EntityID)
	}
}
