package game

// Renderer is the display-layer collaborator. Handlers push interpolated
// positions, facings, and transient z-order through these callbacks every
// frame; none of it touches the shared store.
type Renderer interface {
	UpdateEntityVisualPosition(entityID string, pos Vec2)
	UpdateSpriteDirection(entityID string, dir Direction)
	SetLocalZOrder(entityID string, z int)
	ClearLocalZOrder(entityID string)
}

// LocalZSource exposes the render layer's transient z-order overrides to the
// depth resolver. Local overrides outrank everything else.
type LocalZSource interface {
	LocalZ(entityID string) (int, bool)
}

// RecordingRenderer captures every callback for assertions. It is the
// renderer used by the headless harness and all engine tests.
type RecordingRenderer struct {
	Positions  map[string]Vec2
	Directions map[string]Direction
	localZ     map[string]int

	// Calls counts invocations per callback name, for frequency assertions.
	Calls map[string]int
}

// NewRecordingRenderer creates an empty recorder.
func NewRecordingRenderer() *RecordingRenderer {
	return &RecordingRenderer{
		Positions:  make(map[string]Vec2),
		Directions: make(map[string]Direction),
		localZ:     make(map[string]int),
		Calls:      make(map[string]int),
	}
}

func (r *RecordingRenderer) UpdateEntityVisualPosition(entityID string, pos Vec2) {
	r.Positions[entityID] = pos
	r.Calls["position"]++
}

func (r *RecordingRenderer) UpdateSpriteDirection(entityID string, dir Direction) {
	r.Directions[entityID] = dir
	r.Calls["direction"]++
}

func (r *RecordingRenderer) SetLocalZOrder(entityID string, z int) {
	r.localZ[entityID] = z
	r.Calls["setz"]++
}

func (r *RecordingRenderer) ClearLocalZOrder(entityID string) {
	delete(r.localZ, entityID)
	r.Calls["clearz"]++
}

// LocalZ implements LocalZSource.
func (r *RecordingRenderer) LocalZ(entityID string) (int, bool) {
	z, ok := r.localZ[entityID]
	return z, ok
}
