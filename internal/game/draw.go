package game

import (
	"bytes"
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	text "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/gomono"
)

var hudFaceSource = mustFaceSource(gomono.TTF)

func mustFaceSource(ttf []byte) *text.GoTextFaceSource {
	src, err := text.NewGoTextFaceSource(bytes.NewReader(ttf))
	if err != nil {
		panic(fmt.Sprintf("load embedded font: %v", err))
	}
	return src
}

func hudFace(size float64) text.Face {
	return &text.GoTextFace{Source: hudFaceSource, Size: size}
}

func drawText(dst *ebiten.Image, s string, size, x, y float64, clr color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(dst, s, hudFace(size), op)
}

// EbitenRenderer implements the engine's Renderer callbacks on top of the
// demo's display state. It also serves as the LocalZSource the depth
// resolver consults for transient overrides.
type EbitenRenderer struct {
	positions  map[string]Vec2
	directions map[string]Direction
	localZ     map[string]int
}

// NewEbitenRenderer creates an empty renderer.
func NewEbitenRenderer() *EbitenRenderer {
	return &EbitenRenderer{
		positions:  make(map[string]Vec2),
		directions: make(map[string]Direction),
		localZ:     make(map[string]int),
	}
}

func (r *EbitenRenderer) UpdateEntityVisualPosition(entityID string, pos Vec2) {
	r.positions[entityID] = pos
}

func (r *EbitenRenderer) UpdateSpriteDirection(entityID string, dir Direction) {
	r.directions[entityID] = dir
}

func (r *EbitenRenderer) SetLocalZOrder(entityID string, z int) {
	r.localZ[entityID] = z
}

func (r *EbitenRenderer) ClearLocalZOrder(entityID string) {
	delete(r.localZ, entityID)
}

// LocalZ implements LocalZSource.
func (r *EbitenRenderer) LocalZ(entityID string) (int, bool) {
	z, ok := r.localZ[entityID]
	return z, ok
}

// Position returns the last pushed visual position.
func (r *EbitenRenderer) Position(entityID string) (Vec2, bool) {
	p, ok := r.positions[entityID]
	return p, ok
}

// Draw renders the board, entities in depth order with visibility applied,
// cosmetic effects, HUD, event log, and inspector.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(boardColor)

	boardW := float32(g.gridW * cellSize)
	boardH := float32(g.gridH * cellSize)
	ox, oy := float32(borderWidth), float32(borderWidth)

	for x := 0; x <= g.gridW; x++ {
		fx := ox + float32(x*cellSize)
		vector.StrokeLine(screen, fx, oy, fx, oy+boardH, 1.0, gridLineColor, false)
	}
	for y := 0; y <= g.gridH; y++ {
		fy := oy + float32(y*cellSize)
		vector.StrokeLine(screen, ox, fy, ox+boardW, fy, 1.0, gridLineColor, false)
	}

	// Shade cells outside the observer's visible set so fog of war reads
	// at a glance.
	if _, ok := g.engine.Store.Entity(g.observerID); ok {
		senses := g.engine.Visibility.ObserverSenses(g.observerID)
		for y := 0; y < g.gridH; y++ {
			for x := 0; x < g.gridW; x++ {
				if !senses.CanSee(GridPos{X: x, Y: y}) {
					vector.FillRect(screen,
						ox+float32(x*cellSize)+1, oy+float32(y*cellSize)+1,
						cellSize-2, cellSize-2,
						color.RGBA{A: 110}, false)
				}
			}
		}
	}

	g.drawEntities(screen, ox, oy)
	g.drawEffects(screen, ox, oy)

	drawText(screen, g.hudText(), 12, borderWidth, float64(g.height)-14, color.RGBA{R: 200, G: 210, B: 200, A: 255})
	g.eventLog.Draw(screen, borderWidth*2+g.gridW*cellSize, g.height)
	g.drawInspector(screen)
}

func (g *Game) drawEntities(screen *ebiten.Image, ox, oy float32) {
	order, _ := g.engine.Depth.Order()
	visible := g.engine.Visibility.Resolve(g.observerID)

	for _, id := range order {
		if renderable, classified := visible[id]; classified && !renderable {
			// Fully suppressed: outside the observer's visible set there
			// is no sprite at all, not a dimmed ghost.
			continue
		}
		pos, ok := g.renderer.Position(id)
		if !ok {
			if e, found := g.engine.Store.Entity(id); found {
				pos = e.Position.Vec()
			} else {
				continue
			}
		}
		px := ox + float32((pos.X+0.5)*cellSize)
		py := oy + float32((pos.Y+0.5)*cellSize)

		col := hostileColor
		if strings.HasPrefix(id, "rogue") {
			col = friendlyColor
		}
		if id == g.observerID {
			vector.StrokeCircle(screen, px, py, cellSize*0.42, 2.0, observerColor, true)
		}
		vector.FillCircle(screen, px, py, cellSize*0.33, col, true)

		// Facing tick.
		dx, dy := g.renderer.directions[id].Delta()
		vector.StrokeLine(screen, px, py,
			px+float32(dx)*cellSize*0.4, py+float32(dy)*cellSize*0.4,
			2.0, color.RGBA{R: 235, G: 235, B: 225, A: 255}, true)

		drawText(screen, id, 10,
			float64(px)-float64(len(id))*3, float64(py)-cellSize*0.62,
			color.RGBA{R: 190, G: 190, B: 180, A: 255})
	}
}

func (g *Game) drawEffects(screen *ebiten.Image, ox, oy float32) {
	for _, fx := range g.effects {
		t := float32(fx.age) / float32(fx.life)
		px := ox + float32((float64(fx.cell.X)+0.5)*cellSize)
		py := oy + float32((float64(fx.cell.Y)+0.5)*cellSize)
		col := splatColor
		radius := float32(cellSize) * 0.18
		if fx.crit {
			col = splatCritColor
			radius = float32(cellSize) * 0.28
		}
		col.A = uint8(float32(col.A) * (1 - t))
		// Smear the splat along the blow direction.
		ddx, ddy := fx.dir.Delta()
		vector.FillCircle(screen, px, py, radius*(1+t), col, true)
		vector.FillCircle(screen,
			px+float32(ddx)*radius*1.6, py+float32(ddy)*radius*1.6,
			radius*0.6*(1+t), col, true)
	}
}
