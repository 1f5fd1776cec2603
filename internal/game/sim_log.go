package game

import (
	"fmt"
	"strings"
)

// SimLogEntry is one recorded reconciliation-engine event.
type SimLogEntry struct {
	Tick     int
	Entity   string  // entity id, or "--" for global events
	Category string  // anim, move, combat, dodge, vis, depth, effect, net, warn
	Key      string  // specific event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the entry as a fixed-width log line.
//
//	[T=042] rogue-1 move    adopted          path corrected (4 cells)
func (e SimLogEntry) String() string {
	return fmt.Sprintf("[T=%03d] %-8s %-7s %-18s %s",
		e.Tick, e.Entity, e.Category, e.Key, e.Value)
}

// SimLog collects structured engine events. Unlike the on-screen EventLog
// ring buffer, SimLog is unbounded and machine-readable; tests and the
// headless report both assert against it.
type SimLog struct {
	entries []SimLogEntry
	tick    int
	verbose bool
}

// NewSimLog creates a SimLog. If verbose is true, per-frame interpolation
// entries are also recorded (useful for detailed debugging).
func NewSimLog(verbose bool) *SimLog {
	return &SimLog{verbose: verbose}
}

// SetTick updates the tick stamped on subsequent entries.
func (sl *SimLog) SetTick(tick int) {
	sl.tick = tick
}

// Add records a new entry at the current tick.
func (sl *SimLog) Add(entity, category, key, value string, numVal float64) {
	sl.entries = append(sl.entries, SimLogEntry{
		Tick:     sl.tick,
		Entity:   entity,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// AddVerbose records an entry only when verbose mode is on.
func (sl *SimLog) AddVerbose(entity, category, key, value string, numVal float64) {
	if !sl.verbose {
		return
	}
	sl.Add(entity, category, key, value, numVal)
}

// Warn records an absorbed error. The engine never raises; it logs and
// degrades to best-effort visual completion.
func (sl *SimLog) Warn(entity, key, value string) {
	sl.Add(entity, "warn", key, value, 0)
}

// Entries returns all recorded entries.
func (sl *SimLog) Entries() []SimLogEntry {
	return sl.entries
}

// Filter returns entries matching the given category and/or key.
// Pass empty string to match any value for that field.
func (sl *SimLog) Filter(category, key string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterEntity returns entries for a specific entity id.
func (sl *SimLog) FilterEntity(id string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if e.Entity == id {
			out = append(out, e)
		}
	}
	return out
}

// CountCategory returns how many entries match the given category and key.
func (sl *SimLog) CountCategory(category, key string) int {
	return len(sl.Filter(category, key))
}

// LastOf returns the most recent entry matching category+key, or false if none.
func (sl *SimLog) LastOf(category, key string) (SimLogEntry, bool) {
	entries := sl.Filter(category, key)
	if len(entries) == 0 {
		return SimLogEntry{}, false
	}
	return entries[len(entries)-1], true
}

// HasEntry returns true if at least one entry matches category, key, and value substring.
func (sl *SimLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the full log as a single string for t.Log output.
func (sl *SimLog) Format() string {
	var sb strings.Builder
	for _, e := range sl.entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
