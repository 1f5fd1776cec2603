package game

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

const (
	borderWidth = 16 // pixel gap between the window edge and the grid
	cellSize    = 48 // pixels per grid cell
)

// Game is the playable demo client: an ebiten shell around the
// reconciliation engine, with a local latency server standing in for the
// real backend. Click an entity to select it, click a cell to move it,
// press A to attack the nearest other entity.
type Game struct {
	width  int
	height int
	gridW  int // grid width in cells
	gridH  int

	engine   *Engine
	server   *LocalServer
	renderer *EbitenRenderer
	eventLog *EventLog

	inspector  Inspector
	observerID string // entity whose senses drive visibility shading

	effects []*splatEffect

	prevKeys      map[ebiten.Key]bool
	prevMouseLeft bool
}

// splatEffect is a short-lived cosmetic impact marker.
type splatEffect struct {
	cell GridPos
	dir  Direction
	crit bool
	age  int
	life int // ticks until removal
}

// New creates the demo game with a handful of entities and full wiring.
func New(seed int64) *Game {
	gridW, gridH := 20, 14
	g := &Game{
		width:    borderWidth*2 + gridW*cellSize + logPanelWidth,
		height:   borderWidth*2 + gridH*cellSize,
		gridW:    gridW,
		gridH:    gridH,
		eventLog: NewEventLog(),
		prevKeys: make(map[ebiten.Key]bool),
	}
	g.renderer = NewEbitenRenderer()
	g.engine = NewEngine(EngineConfig{
		Renderer: g.renderer,
		LocalZ:   g.renderer,
		Effects: EffectSinkFunc(func(name string, at GridPos, dir Direction, crit bool) {
			g.effects = append(g.effects, &splatEffect{cell: at, dir: dir, crit: crit, life: 45})
		}),
	})
	g.server = NewLocalServer(g.engine.Store, g.engine.Bus, g.engine.Mail, g.engine.Clock, g.engine.Log, seed)
	g.server.Bind()
	g.eventLog.Bind(g.engine.Bus, g.engine.Tick)

	g.seedEntities()
	return g
}

// SetLatency adjusts the stub server's artificial response delay.
func (g *Game) SetLatency(d time.Duration) {
	g.server.Latency = d
}

func (g *Game) seedEntities() {
	spawns := []struct {
		id  string
		pos GridPos
		dir Direction
	}{
		{"rogue-1", GridPos{X: 3, Y: 3}, DirEast},
		{"rogue-2", GridPos{X: 5, Y: 9}, DirNorth},
		{"brigand-1", GridPos{X: 14, Y: 4}, DirWest},
		{"brigand-2", GridPos{X: 16, Y: 10}, DirWest},
	}
	for _, sp := range spawns {
		g.engine.Store.AddEntity(&EntityState{ID: sp.id, Position: sp.pos, Direction: sp.dir})
		// Everyone starts with senses over the whole board so the demo is
		// fully visible until real (stub) senses arrive.
		var visible []GridPos
		for y := 0; y < g.gridH; y++ {
			for x := 0; x < g.gridW; x++ {
				visible = append(visible, GridPos{X: x, Y: y})
			}
		}
		g.engine.Store.SetSenses(sp.id, NewSensesSnapshot(visible, nil))
		g.renderer.UpdateEntityVisualPosition(sp.id, sp.pos.Vec())
		g.renderer.UpdateSpriteDirection(sp.id, sp.dir)
	}
	g.observerID = "rogue-1"
}

// Update runs one render tick: engine step, input, effect aging.
func (g *Game) Update() error {
	g.engine.Step()
	g.handleInput()

	live := g.effects[:0]
	for _, fx := range g.effects {
		fx.age++
		if fx.age < fx.life {
			live = append(live, fx)
		}
	}
	g.effects = live
	return nil
}

func (g *Game) handleInput() {
	mx, my := ebiten.CursorPosition()
	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	if left && !g.prevMouseLeft {
		g.handleClick(mx, my)
	}
	g.prevMouseLeft = left

	if g.keyPressed(ebiten.KeyA) {
		g.attackNearest()
	}
	if g.keyPressed(ebiten.KeyTab) {
		g.cycleObserver()
	}
	if g.keyPressed(ebiten.KeyC) {
		if err := g.inspector.CopyReport(g.engine); err != nil {
			g.engine.Log.Warn("--", "clipboard", err.Error())
		}
	}
	if g.keyPressed(ebiten.KeyI) {
		g.inspector.rawView = !g.inspector.rawView
	}
}

// keyPressed is edge-triggered: true only on the tick the key goes down.
func (g *Game) keyPressed(k ebiten.Key) bool {
	down := ebiten.IsKeyPressed(k)
	was := g.prevKeys[k]
	g.prevKeys[k] = down
	return down && !was
}

func (g *Game) handleClick(mx, my int) {
	cell, inside := g.screenToCell(mx, my)
	if !inside {
		return
	}
	// Click on an entity: select it.
	for _, id := range g.engine.Store.EntityIDs() {
		if c, ok := g.engine.Store.EffectiveCell(id); ok && c == cell {
			g.inspector.selected = id
			g.observerID = id
			return
		}
	}
	// Click on a cell with a selection: predict a move.
	if g.inspector.selected == "" {
		return
	}
	id := g.inspector.selected
	e, ok := g.engine.Store.Entity(id)
	if !ok {
		g.inspector.selected = ""
		return
	}
	path := ChebyshevPath(e.Position, cell)
	g.engine.Bus.Publish(EventMovementStarted, &MovementStartedPayload{
		EntityID:       id,
		Target:         cell,
		OptimisticPath: path,
		StartTime:      g.engine.Clock.Now(),
	})
}

func (g *Game) attackNearest() {
	id := g.inspector.selected
	if id == "" {
		return
	}
	attacker, ok := g.engine.Store.Entity(id)
	if !ok {
		return
	}
	bestDist := 1 << 30
	bestID := ""
	for _, other := range g.engine.Store.EntityIDs() {
		if other == id {
			continue
		}
		if c, found := g.engine.Store.EffectiveCell(other); found {
			if d := Manhattan(attacker.Position, c); d < bestDist {
				bestDist = d
				bestID = other
			}
		}
	}
	if bestID == "" {
		return
	}
	if err := g.engine.Attacks.Begin(id, bestID, time.Second); err != nil {
		g.engine.Log.Warn(id, "attack_begin", err.Error())
	}
}

func (g *Game) cycleObserver() {
	ids := g.engine.Store.EntityIDs()
	if len(ids) == 0 {
		return
	}
	for i, id := range ids {
		if id == g.observerID {
			g.observerID = ids[(i+1)%len(ids)]
			return
		}
	}
	g.observerID = ids[0]
}

func (g *Game) screenToCell(mx, my int) (GridPos, bool) {
	cx := (mx - borderWidth) / cellSize
	cy := (my - borderWidth) / cellSize
	if mx < borderWidth || my < borderWidth || cx >= g.gridW || cy >= g.gridH {
		return GridPos{}, false
	}
	return GridPos{X: cx, Y: cy}, true
}

// Layout implements ebiten.Game.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}

// ChebyshevPath builds the client's optimistic path: diagonal steps while
// both axes differ, then cardinal steps along the remainder. Includes the
// start cell as the first element.
func ChebyshevPath(from, to GridPos) []GridPos {
	path := []GridPos{from}
	cur := from
	for cur != to {
		cur = GridPos{X: cur.X + sign(to.X-cur.X), Y: cur.Y + sign(to.Y-cur.Y)}
		path = append(path, cur)
	}
	return path
}

func (g *Game) hudText() string {
	selected := g.inspector.selected
	if selected == "" {
		selected = "(none)"
	}
	return fmt.Sprintf("observer: %s  selected: %s  [click] select/move  [A] attack  [Tab] observer  [C] copy report  [I] raw", g.observerID, selected)
}

var (
	gridLineColor  = color.RGBA{R: 38, G: 44, B: 38, A: 255}
	boardColor     = color.RGBA{R: 24, G: 28, B: 24, A: 255}
	friendlyColor  = color.RGBA{R: 210, G: 80, B: 70, A: 255}
	hostileColor   = color.RGBA{R: 70, G: 120, B: 215, A: 255}
	observerColor  = color.RGBA{R: 240, G: 220, B: 90, A: 255}
	splatColor     = color.RGBA{R: 170, G: 30, B: 25, A: 200}
	splatCritColor = color.RGBA{R: 255, G: 60, B: 40, A: 230}
)
