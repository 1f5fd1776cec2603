package game

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	inspWidth = 236 // panel width in pixels
	inspPad   = 6
	inspLineH = 13
)

// Inspector holds the selected entity and view toggle state.
type Inspector struct {
	selected string // entity id, empty when nothing selected
	rawView  bool   // false = curated, true = raw state dump
}

// drawInspector renders a panel for the selected entity in the top-right
// corner of the board: animation record, reconciliation status, depth and
// dodge state.
func (g *Game) drawInspector(screen *ebiten.Image) {
	id := g.inspector.selected
	if id == "" {
		return
	}
	e, ok := g.engine.Store.Entity(id)
	if !ok {
		return
	}

	lines := g.inspectorLines(id, e)

	px := borderWidth + g.gridW*cellSize - inspWidth - 8
	py := borderWidth + 8
	ph := inspPad*2 + len(lines)*inspLineH

	panelBg := color.RGBA{R: 14, G: 16, B: 14, A: 230}
	panelBorder := color.RGBA{R: 55, G: 80, B: 55, A: 255}
	vector.FillRect(screen, float32(px), float32(py), inspWidth, float32(ph), panelBg, false)
	vector.StrokeRect(screen, float32(px), float32(py), inspWidth, float32(ph), 1.0, panelBorder, false)

	ly := py + inspPad
	for _, line := range lines {
		ebitenutil.DebugPrintAt(screen, line, px+inspPad, ly)
		ly += inspLineH
	}
}

func (g *Game) inspectorLines(id string, e *EntityState) []string {
	if g.inspector.rawView {
		return g.inspectorRawLines(id, e)
	}
	return g.inspectorCuratedLines(id, e)
}

func (g *Game) inspectorCuratedLines(id string, e *EntityState) []string {
	now := g.engine.Clock.Now()
	var lines []string
	add := func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}

	add("[ %s ]  view: curated  [I] raw", id)
	add("cell:(%d,%d) dir:%s label:%s", e.Position.X, e.Position.Y, e.Direction, e.AnimationLabel)
	if e.VisualPosition != nil {
		add("visual: %s", *e.VisualPosition)
	}

	if anim, ok := g.engine.Registry.Active(id); ok {
		add("-- animation --")
		add("%s %s p=%.2f", anim.Type, anim.Status, anim.Progress(now))
		if anim.Movement != nil {
			md := anim.Movement
			add("path %d cells seg:%d -> (%d,%d)",
				len(md.Path), md.CurrentSegment, md.To.X, md.To.Y)
			if md.Server != nil {
				add("server pos:(%d,%d)", md.Server.Position.X, md.Server.Position.Y)
			}
		}
	} else {
		add("-- no active animation --")
	}

	if rec, ok := g.engine.Store.Attack(id); ok {
		add("-- attack --")
		add("vs %s  %s  impact@%.0f%%", rec.TargetID, rec.Outcome, rec.ImpactProgress*100)
	}
	if st, ok := g.engine.Dodges.State(id); ok {
		add("-- dodge --")
		add("%s back:%dms ret:%dms", st.Phase,
			st.BackDuration.Milliseconds(), st.ReturnDuration.Milliseconds())
	}

	add("-- depth --")
	add("z=%d", g.engine.Depth.Resolve(id))
	if z, ok := g.engine.Store.GlobalZ(id); ok {
		add("global override: %d", z)
	}
	if !e.Senses.Empty() {
		add("senses: %d visible", len(e.Senses.Visible))
	}
	return lines
}

// inspectorRawLines dumps the entity and its records field by field.
func (g *Game) inspectorRawLines(id string, e *EntityState) []string {
	now := g.engine.Clock.Now()
	var lines []string
	add := func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}

	add("[ %s ]  view: raw  [I] curated", id)
	add("pos=(%d,%d) dir=%d label=%d", e.Position.X, e.Position.Y, e.Direction, e.AnimationLabel)
	if e.VisualPosition != nil {
		add("vis=%s", *e.VisualPosition)
	} else {
		add("vis=nil")
	}
	if anim, ok := g.engine.Registry.Active(id); ok {
		add("anim=%d status=%d client=%v", anim.Type, anim.Status, anim.ClientInitiated)
		add("start=%s dur=%s", anim.StartTime.Format("15:04:05.000"), anim.Duration)
		add("prog=%.4f", anim.Progress(now))
		if anim.Movement != nil {
			md := anim.Movement
			add("seg=%d from=(%d,%d) to=(%d,%d)",
				md.CurrentSegment, md.From.X, md.From.Y, md.To.X, md.To.Y)
			add("path=%v", md.Path)
			add("pathSenses=%d cells", len(md.PathSenses))
		}
	} else {
		add("anim=nil")
	}
	if rec, ok := g.engine.Store.Attack(id); ok {
		add("atk tgt=%s out=%d imp=%.2f done=%v", rec.TargetID, rec.Outcome, rec.ImpactProgress, rec.Completed)
	}
	if st, ok := g.engine.Dodges.State(id); ok {
		add("dodge ph=%d orig=(%d,%d) origDir=%d", st.Phase, st.Original.X, st.Original.Y, st.OriginalDirection)
		add("back=%s ret=%s", st.BackDuration, st.ReturnDuration)
	}
	add("z=%d", g.engine.Depth.Resolve(id))
	return lines
}

// CopyReport builds a full engine-state report and places it on the system
// clipboard, for pasting into a bug ticket.
func (i *Inspector) CopyReport(e *Engine) error {
	return clipboard.WriteAll(buildStateReport(e, i.selected))
}

func buildStateReport(e *Engine, selected string) string {
	now := e.Clock.Now()
	var b strings.Builder
	fmt.Fprintf(&b, "--- vanguard client state report ---\n")
	fmt.Fprintf(&b, "tick=%d selected=%s\n\n", e.Tick(), orNone(selected))

	b.WriteString("== entities ==\n")
	for _, id := range e.Store.EntityIDs() {
		ent, ok := e.Store.Entity(id)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%-12s cell=(%d,%d) dir=%s label=%s z=%d",
			id, ent.Position.X, ent.Position.Y, ent.Direction, ent.AnimationLabel, e.Depth.Resolve(id))
		if ent.VisualPosition != nil {
			fmt.Fprintf(&b, " visual=%s", *ent.VisualPosition)
		}
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	b.WriteString("== animations ==\n")
	count := 0
	e.Registry.ForEach(func(a *Animation) {
		count++
		fmt.Fprintf(&b, "%-12s %s %s p=%.3f elapsed=%s",
			a.EntityID, a.Type, a.Status, a.Progress(now),
			now.Sub(a.StartTime).Truncate(time.Millisecond))
		if a.Movement != nil {
			fmt.Fprintf(&b, " seg=%d/%d to=(%d,%d)",
				a.Movement.CurrentSegment, len(a.Movement.Path)-1,
				a.Movement.To.X, a.Movement.To.Y)
		}
		b.WriteByte('\n')
	})
	if count == 0 {
		b.WriteString("(none)\n")
	}
	b.WriteByte('\n')

	b.WriteString("== reconciliation counters ==\n")
	fmt.Fprintf(&b, "adoptions=%d corrections=%d rejections=%d timeouts=%d dodges=%d\n",
		e.Log.CountCategory("move", "adopted"),
		e.Log.CountCategory("move", "corrected"),
		e.Log.CountCategory("move", "rejected"),
		e.Log.CountCategory("warn", "timeout"),
		e.Log.CountCategory("dodge", "finished"))
	b.WriteByte('\n')

	b.WriteString("== recent log ==\n")
	entries := e.Log.Entries()
	start := len(entries) - 40
	if start < 0 {
		start = 0
	}
	for _, entry := range entries[start:] {
		b.WriteString(entry.String())
		b.WriteByte('\n')
	}
	return b.String()
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
