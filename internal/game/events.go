package game

import "time"

// EventType identifies a lifecycle event on the bus.
type EventType int

const (
	// EventMovementStarted signals a client-predicted movement beginning
	// Trigger: input layer / harness
	// Consumer: MovementHandler, VisibilityResolver | Payload: *MovementStartedPayload
	EventMovementStarted EventType = iota

	// EventMovementAdopted signals server confirmation of a predicted movement
	// Trigger: NetClient (server frame)
	// Consumer: MovementHandler | Payload: *MovementAdoptedPayload
	EventMovementAdopted

	// EventMovementRejected signals server denial of a predicted movement
	// Trigger: NetClient (server frame)
	// Consumer: MovementHandler | Payload: *MovementRejectedPayload
	EventMovementRejected

	// EventAttackStarted signals an attack animation beginning
	// Trigger: input layer / harness
	// Consumer: CombatHandler | Payload: *AttackStartedPayload
	EventAttackStarted

	// EventAttackAdopted signals server confirmation of an attack; outcome
	// metadata is already attached to the store's attack record by then
	// Trigger: NetClient | Consumer: CombatHandler | Payload: *AttackAdoptedPayload
	EventAttackAdopted

	// EventAttackRejected signals server denial of an attack
	// Trigger: NetClient | Consumer: CombatHandler | Payload: *AttackRejectedPayload
	EventAttackRejected

	// EventAttackImpactFrame fires when the attack sprite reaches the fixed
	// impact checkpoint (40% of the animation)
	// Trigger: renderer | Consumer: CombatHandler | Payload: *AttackImpactFramePayload
	EventAttackImpactFrame

	// EventAttackCompleted signals the attack animation finished
	// Trigger: renderer | Consumer: CombatHandler | Payload: *AttackCompletedPayload
	EventAttackCompleted

	// EventDamageStarted signals a target entering its damage reaction
	// Trigger: CombatHandler | Consumer: EffectHandler | Payload: *DamageStartedPayload
	EventDamageStarted

	// EventEffectTriggered requests a parameterized cosmetic effect
	// Trigger: CombatHandler | Consumer: EffectHandler | Payload: *EffectTriggeredPayload
	EventEffectTriggered

	// EventSoundTriggered requests a sound cue
	// Trigger: CombatHandler, MovementHandler | Consumer: EffectHandler | Payload: *SoundTriggeredPayload
	EventSoundTriggered

	// EventZOrderChangeRequested requests a global z-order override change
	// Trigger: gameplay rules (e.g. targeting) | Consumer: DepthResolver | Payload: *ZOrderChangeRequestedPayload
	EventZOrderChangeRequested

	// EventAnimationCompleted signals any animation reaching its terminal state
	// Trigger: MovementHandler, DodgeManager | Consumer: VisibilityResolver, listeners | Payload: *AnimationCompletedPayload
	EventAnimationCompleted
)

func (t EventType) String() string {
	switch t {
	case EventMovementStarted:
		return "MOVEMENT_STARTED"
	case EventMovementAdopted:
		return "MOVEMENT_ADOPTED"
	case EventMovementRejected:
		return "MOVEMENT_REJECTED"
	case EventAttackStarted:
		return "ATTACK_STARTED"
	case EventAttackAdopted:
		return "ATTACK_ADOPTED"
	case EventAttackRejected:
		return "ATTACK_REJECTED"
	case EventAttackImpactFrame:
		return "ATTACK_IMPACT_FRAME"
	case EventAttackCompleted:
		return "ATTACK_COMPLETED"
	case EventDamageStarted:
		return "DAMAGE_STARTED"
	case EventEffectTriggered:
		return "EFFECT_TRIGGERED"
	case EventSoundTriggered:
		return "SOUND_TRIGGERED"
	case EventZOrderChangeRequested:
		return "ZORDER_CHANGE_REQUESTED"
	case EventAnimationCompleted:
		return "ANIMATION_COMPLETED"
	default:
		return "UNKNOWN"
	}
}

// Event is a single bus message. Payload holds exactly one of the typed
// payload structs in payloads.go; handlers type-assert on the variant their
// topic carries and warn-discard anything else.
type Event struct {
	Type      EventType
	Payload   any
	Timestamp time.Time
}

// HandlerFunc processes one event. Called synchronously during Publish.
type HandlerFunc func(Event)

// Bus is the synchronous in-process publish/subscribe channel.
//
// Dispatch is immediate and re-entrant: a handler may Publish further events
// from within its own invocation, and subscribers must tolerate being called
// from inside another handler's stack. Handlers run in registration order.
// Single-threaded by contract: the bus is driven only from the game loop.
type Bus struct {
	handlers map[EventType][]HandlerFunc
	clock    Clock
	log      *SimLog
	depth    int // current re-entrant dispatch depth
}

// NewBus creates an empty bus.
func NewBus(clock Clock, log *SimLog) *Bus {
	return &Bus{
		handlers: make(map[EventType][]HandlerFunc),
		clock:    clock,
		log:      log,
	}
}

// Subscribe registers a handler for one event type.
func (b *Bus) Subscribe(t EventType, fn HandlerFunc) {
	b.handlers[t] = append(b.handlers[t], fn)
}

// Publish dispatches the event to every subscriber before returning.
func (b *Bus) Publish(t EventType, payload any) {
	ev := Event{Type: t, Payload: payload, Timestamp: b.clock.Now()}
	b.depth++
	b.log.AddVerbose("--", "bus", "publish", t.String(), float64(b.depth))
	for _, fn := range b.handlers[t] {
		fn(ev)
	}
	b.depth--
}

// Depth returns the current dispatch nesting level. Zero means the bus is
// idle; values above one indicate re-entrant emission.
func (b *Bus) Depth() int {
	return b.depth
}
