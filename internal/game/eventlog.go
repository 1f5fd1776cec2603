package game

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	logPanelWidth = 300
	logMaxEntries = 48
	logLineHeight = 12
)

// EventLogEntry is a single line in the on-screen lifecycle log.
type EventLogEntry struct {
	Tick    int
	Entity  string
	Message string
}

// EventLog is a ring buffer of lifecycle events rendered on-screen, fed from
// the bus so the demo shows every adopt/reject/impact as it happens.
type EventLog struct {
	entries []EventLogEntry
	head    int
	count   int
}

// NewEventLog creates an event log with a fixed capacity.
func NewEventLog() *EventLog {
	return &EventLog{
		entries: make([]EventLogEntry, logMaxEntries),
	}
}

// Bind subscribes the log to the lifecycle topics worth showing.
func (el *EventLog) Bind(bus *Bus, tick func() int) {
	add := func(entity, msg string) {
		el.Add(tick(), entity, msg)
	}
	bus.Subscribe(EventMovementStarted, func(ev Event) {
		if p, ok := ev.Payload.(*MovementStartedPayload); ok {
			add(p.EntityID, fmt.Sprintf("move to %s (%d cells)", p.Target.Key(), len(p.OptimisticPath)))
		}
	})
	bus.Subscribe(EventMovementAdopted, func(ev Event) {
		if p, ok := ev.Payload.(*MovementAdoptedPayload); ok {
			add(p.EntityID, "move adopted")
		}
	})
	bus.Subscribe(EventMovementRejected, func(ev Event) {
		if p, ok := ev.Payload.(*MovementRejectedPayload); ok {
			add(p.EntityID, "move REJECTED: "+p.Reason)
		}
	})
	bus.Subscribe(EventAttackImpactFrame, func(ev Event) {
		if p, ok := ev.Payload.(*AttackImpactFramePayload); ok {
			add(p.AttackerID, "impact on "+p.TargetID)
		}
	})
	bus.Subscribe(EventSoundTriggered, func(ev Event) {
		if p, ok := ev.Payload.(*SoundTriggeredPayload); ok {
			add(p.EntityID, "sound: "+p.Name)
		}
	})
	bus.Subscribe(EventAnimationCompleted, func(ev Event) {
		if p, ok := ev.Payload.(*AnimationCompletedPayload); ok {
			add(p.EntityID, fmt.Sprintf("%s done (%s)", p.Type, p.Status))
		}
	})
}

// Add appends an entry to the log.
func (el *EventLog) Add(tick int, entity, msg string) {
	el.entries[el.head] = EventLogEntry{Tick: tick, Entity: entity, Message: msg}
	el.head = (el.head + 1) % logMaxEntries
	if el.count < logMaxEntries {
		el.count++
	}
}

// Recent returns entries in chronological order (oldest first).
func (el *EventLog) Recent() []EventLogEntry {
	result := make([]EventLogEntry, el.count)
	for i := 0; i < el.count; i++ {
		idx := (el.head - el.count + i + logMaxEntries) % logMaxEntries
		result[i] = el.entries[idx]
	}
	return result
}

// Draw renders the log panel on the right side of the screen.
func (el *EventLog) Draw(screen *ebiten.Image, panelX int, panelH int) {
	vector.FillRect(screen, float32(panelX), 0, float32(logPanelWidth), float32(panelH), color.RGBA{R: 10, G: 12, B: 10, A: 248}, false)
	vector.StrokeLine(screen, float32(panelX), 0, float32(panelX), float32(panelH), 1.0, color.RGBA{R: 50, G: 70, B: 50, A: 255}, false)

	y := 4
	for _, e := range el.Recent() {
		line := fmt.Sprintf("[%04d] %-8s %s", e.Tick, e.Entity, e.Message)
		ebitenutil.DebugPrintAt(screen, line, panelX+6, y)
		y += logLineHeight
		if y > panelH-logLineHeight {
			break
		}
	}
}
