package game

import (
	"fmt"
	"strings"
)

// --- Snapshot types ---

// RunReport captures the reconciliation counters of one simulated run,
// tallied from the engine's SimLog.
type RunReport struct {
	Seed  int64
	Ticks int

	// Movement pipeline.
	MovesStarted    int
	Adoptions       int
	PathCorrections int
	Rejections      int
	MovesFinished   int
	Timeouts        int

	// Combat pipeline.
	AttacksStarted int
	Impacts        int
	Hits           int
	Crits          int
	Misses         int

	// Dodge tweens.
	DodgesStarted  int
	DodgesFinished int

	// Anything absorbed rather than raised.
	Warnings int
}

// CollectRunReport tallies one run's SimLog into a report.
func CollectRunReport(seed int64, ticks int, log *SimLog) RunReport {
	r := RunReport{
		Seed:            seed,
		Ticks:           ticks,
		MovesStarted:    log.CountCategory("move", "started"),
		Adoptions:       log.CountCategory("move", "adopted"),
		PathCorrections: log.CountCategory("move", "corrected"),
		Rejections:      log.CountCategory("move", "rejected"),
		MovesFinished:   log.CountCategory("move", "finished"),
		Timeouts:        log.CountCategory("warn", "timeout"),
		AttacksStarted:  log.CountCategory("combat", "attack_started"),
		Impacts:         log.CountCategory("combat", "impact"),
		DodgesStarted:   log.CountCategory("dodge", "started"),
		DodgesFinished:  log.CountCategory("dodge", "finished"),
	}
	for _, e := range log.Filter("combat", "impact") {
		switch e.Value {
		case OutcomeHit.String():
			r.Hits++
		case OutcomeCrit.String():
			r.Crits++
		case OutcomeMiss.String():
			r.Misses++
		}
	}
	for _, e := range log.Entries() {
		if e.Category == "warn" {
			r.Warnings++
		}
	}
	return r
}

// --- Reporter ---

// ReconReporter accumulates run reports and produces aggregate summaries,
// used by the headless report tool to characterise reconciliation behaviour
// across many seeds.
type ReconReporter struct {
	history []RunReport
}

// NewReconReporter creates an empty reporter.
func NewReconReporter() *ReconReporter {
	return &ReconReporter{}
}

// Add records one run.
func (r *ReconReporter) Add(report RunReport) {
	r.history = append(r.history, report)
}

// Latest returns the most recent run report, or nil if none recorded.
func (r *ReconReporter) Latest() *RunReport {
	if len(r.history) == 0 {
		return nil
	}
	return &r.history[len(r.history)-1]
}

// History returns all recorded runs.
func (r *ReconReporter) History() []RunReport {
	return r.history
}

// SummaryReport aggregates counters across all recorded runs.
type SummaryReport struct {
	Runs  int
	Ticks int

	TotalMoves     int
	TotalFinished  int
	AdoptionRate   float64 // adoptions / moves started
	CorrectionRate float64 // path corrections / moves started
	RejectionRate  float64 // rejections / moves started
	TotalTimeouts  int

	TotalAttacks int
	TotalImpacts int
	HitRate      float64 // hits+crits / impacts
	CritRate     float64 // crits / impacts
	MissRate     float64 // misses / impacts

	TotalDodges     int
	DodgeFinishRate float64 // finished / started

	TotalWarnings int
}

// Summary aggregates all recorded runs, or nil if none.
func (r *ReconReporter) Summary() *SummaryReport {
	if len(r.history) == 0 {
		return nil
	}
	s := &SummaryReport{Runs: len(r.history)}
	var adoptions, corrections, rejections int
	var hits, crits, misses int
	var dodgesFinished int
	for _, rpt := range r.history {
		s.Ticks += rpt.Ticks
		s.TotalMoves += rpt.MovesStarted
		s.TotalFinished += rpt.MovesFinished
		adoptions += rpt.Adoptions
		corrections += rpt.PathCorrections
		rejections += rpt.Rejections
		s.TotalTimeouts += rpt.Timeouts
		s.TotalAttacks += rpt.AttacksStarted
		s.TotalImpacts += rpt.Impacts
		hits += rpt.Hits
		crits += rpt.Crits
		misses += rpt.Misses
		s.TotalDodges += rpt.DodgesStarted
		dodgesFinished += rpt.DodgesFinished
		s.TotalWarnings += rpt.Warnings
	}
	if s.TotalMoves > 0 {
		s.AdoptionRate = float64(adoptions) / float64(s.TotalMoves)
		s.CorrectionRate = float64(corrections) / float64(s.TotalMoves)
		s.RejectionRate = float64(rejections) / float64(s.TotalMoves)
	}
	if s.TotalImpacts > 0 {
		s.HitRate = float64(hits+crits) / float64(s.TotalImpacts)
		s.CritRate = float64(crits) / float64(s.TotalImpacts)
		s.MissRate = float64(misses) / float64(s.TotalImpacts)
	}
	if s.TotalDodges > 0 {
		s.DodgeFinishRate = float64(dodgesFinished) / float64(s.TotalDodges)
	}
	return s
}

// Format returns a human-readable multi-line summary.
func (s *SummaryReport) Format() string {
	if s == nil {
		return "No runs recorded.\n"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Reconciliation Report (%d runs, %d ticks) ===\n", s.Runs, s.Ticks)

	sb.WriteString("\n--- Movement ---\n")
	fmt.Fprintf(&sb, "  started=%d finished=%d timeouts=%d\n",
		s.TotalMoves, s.TotalFinished, s.TotalTimeouts)
	fmt.Fprintf(&sb, "  adopted=%5.1f%%  corrected=%5.1f%%  rejected=%5.1f%%\n",
		s.AdoptionRate*100, s.CorrectionRate*100, s.RejectionRate*100)

	sb.WriteString("\n--- Combat ---\n")
	fmt.Fprintf(&sb, "  attacks=%d impacts=%d\n", s.TotalAttacks, s.TotalImpacts)
	fmt.Fprintf(&sb, "  hit=%5.1f%%  crit=%5.1f%%  miss=%5.1f%%\n",
		s.HitRate*100, s.CritRate*100, s.MissRate*100)

	sb.WriteString("\n--- Dodges ---\n")
	fmt.Fprintf(&sb, "  started=%d  finished=%5.1f%%\n", s.TotalDodges, s.DodgeFinishRate*100)

	sb.WriteString("\n--- Health ---\n")
	fmt.Fprintf(&sb, "  warnings=%d\n", s.TotalWarnings)
	return sb.String()
}

// FormatRun returns a one-line summary of a single run.
func (r RunReport) FormatRun() string {
	return fmt.Sprintf(
		"seed=%-6d ticks=%-5d moves=%d adopt=%d corr=%d rej=%d timeout=%d atk=%d hit=%d crit=%d miss=%d dodge=%d/%d warn=%d",
		r.Seed, r.Ticks, r.MovesStarted, r.Adoptions, r.PathCorrections, r.Rejections,
		r.Timeouts, r.AttacksStarted, r.Hits, r.Crits, r.Misses,
		r.DodgesFinished, r.DodgesStarted, r.Warnings)
}
