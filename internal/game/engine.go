package game

import "time"

// dodgeFixedStep is the cadence of the fixed update loop that drives dodge
// phases, independent of the render ticker.
const dodgeFixedStep = 25 * time.Millisecond

// EngineConfig carries the injectable collaborators.
type EngineConfig struct {
	Clock    Clock
	Renderer Renderer
	LocalZ   LocalZSource // usually the renderer itself
	Senses   SensesAPI    // nil = no-op refresh
	Effects  EffectSink   // nil = log only
	Sounds   SoundSink    // nil = log only
	Verbose  bool
}

// Engine wires the reconciliation subsystem together: bus, registry,
// handlers, resolvers, and the two update cadences. Explicitly constructed
// and dependency-injected; no package-level singletons.
type Engine struct {
	Clock      Clock
	Log        *SimLog
	Bus        *Bus
	Store      *Store
	Registry   *Registry
	Mail       *Mailbox
	Movement   *MovementHandler
	Combat     *CombatHandler
	Dodges     *DodgeManager
	Depth      *DepthResolver
	Visibility *VisibilityResolver
	Effects    *EffectHandler
	Attacks    *AttackDriver
	Renderer   Renderer

	tick       int
	fixedNow   time.Time
	fixedAccum time.Duration
	lastStep   time.Time
}

// NewEngine constructs and binds the whole subsystem.
func NewEngine(cfg EngineConfig) *Engine {
	clock := cfg.Clock
	if clock == nil {
		clock = NewSystemClock()
	}
	log := NewSimLog(cfg.Verbose)
	bus := NewBus(clock, log)
	store := NewStore(log)
	reg := NewRegistry(log)
	mail := NewMailbox()

	senses := cfg.Senses
	if senses == nil {
		senses = SensesAPIFunc(func(string) {})
	}
	renderer := cfg.Renderer
	if renderer == nil {
		renderer = NewRecordingRenderer()
	}
	localZ := cfg.LocalZ
	if localZ == nil {
		if src, ok := renderer.(LocalZSource); ok {
			localZ = src
		}
	}

	dodges := NewDodgeManager(bus, store, renderer, clock, log)
	depth := NewDepthResolver(store, reg, dodges, localZ, log)
	movement := NewMovementHandler(bus, store, reg, renderer, senses, clock, log)
	combat := NewCombatHandler(bus, store, reg, renderer, dodges, depth, clock, log)
	effects := NewEffectHandler(cfg.Effects, cfg.Sounds, log)
	attacks := NewAttackDriver(bus, store, reg, clock, log)
	visibility := NewVisibilityResolver(store, reg, clock, log)

	e := &Engine{
		Clock:      clock,
		Log:        log,
		Bus:        bus,
		Store:      store,
		Registry:   reg,
		Mail:       mail,
		Movement:   movement,
		Combat:     combat,
		Dodges:     dodges,
		Depth:      depth,
		Visibility: visibility,
		Effects:    effects,
		Attacks:    attacks,
		Renderer:   renderer,
	}
	e.bind()
	return e
}

// bind attaches every handler to the bus. Registration order matters only
// for handlers of the same topic; the reconciliation handlers come first so
// observers (visibility) see updated registry state.
func (e *Engine) bind() {
	e.Movement.Bind()
	e.Combat.Bind()
	e.Effects.Bind(e.Bus)
	e.Depth.Bind(e.Bus)
	e.Visibility.Bind(e.Bus)
}

// Step advances the engine by one render tick: drains the mailbox, runs the
// per-frame handlers, and feeds the fixed-interval dodge loop from an
// accumulator so its cadence stays independent of the frame rate.
func (e *Engine) Step() {
	now := e.Clock.Now()
	if e.lastStep.IsZero() {
		e.lastStep = now
		e.fixedNow = now
	}

	e.tick++
	e.Log.SetTick(e.tick)

	e.Mail.Drain(now)
	e.Movement.Update(now)
	e.Attacks.Update(now)
	e.Combat.Update(now)

	e.fixedAccum += now.Sub(e.lastStep)
	e.lastStep = now
	for e.fixedAccum >= dodgeFixedStep {
		e.fixedAccum -= dodgeFixedStep
		e.fixedNow = e.fixedNow.Add(dodgeFixedStep)
		e.Dodges.FixedUpdate(e.fixedNow)
	}

	e.Visibility.Update(now)
}

// Tick returns the number of render steps taken.
func (e *Engine) Tick() int {
	return e.tick
}
