package game

// SensesSnapshot is a server-computed visibility result for one observer
// standing on one cell: the set of cells currently visible plus the list of
// cells ever seen (explored). Snapshots are immutable once attached.
type SensesSnapshot struct {
	Visible map[string]struct{} // cell keys in direct sight
	Seen    []string            // cell keys explored at some point
}

// NewSensesSnapshot builds a snapshot from visible and seen cell lists.
func NewSensesSnapshot(visible []GridPos, seen []GridPos) SensesSnapshot {
	s := SensesSnapshot{Visible: make(map[string]struct{}, len(visible))}
	for _, p := range visible {
		s.Visible[p.Key()] = struct{}{}
	}
	for _, p := range seen {
		s.Seen = append(s.Seen, p.Key())
	}
	return s
}

// CanSee reports whether the cell is inside the visible set.
// Previously-seen-but-not-visible cells do not count: visibility is binary.
func (s SensesSnapshot) CanSee(p GridPos) bool {
	if s.Visible == nil {
		return false
	}
	_, ok := s.Visible[p.Key()]
	return ok
}

// Empty reports whether the snapshot carries no visibility data at all.
func (s SensesSnapshot) Empty() bool {
	return len(s.Visible) == 0 && len(s.Seen) == 0
}

// SensesAPI is the external network collaborator that refreshes
// server-computed visibility. Requested once per completed movement.
type SensesAPI interface {
	UpdateEntitySenses(entityID string)
}

// SensesAPIFunc adapts a function to the SensesAPI interface.
type SensesAPIFunc func(entityID string)

func (f SensesAPIFunc) UpdateEntitySenses(entityID string) { f(entityID) }
