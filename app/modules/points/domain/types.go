package pointsdomain

import (
	"maps"
	"slices"
)

// Participation is one entrant's final result in an event.
// MembershipID is nil for entrants without a season membership (guests).
type Participation struct {
	MembershipID *int64
	Rank         *int
	Eliminations int
}

// EventSnapshot is the read-only view of a finished event that strategies consume.
type EventSnapshot struct {
	ID                int64
	SeasonID          string
	ScoringStrategy   string
	TotalParticipants int
	Participations    []Participation
}

// MembershipBalance is a membership's point balance at decay time.
type MembershipBalance struct {
	MembershipID int64
	Points       int
}

// Deltas maps membership id to a signed point change.
type Deltas map[int64]int

// MembershipIDs returns the keys in ascending order.
func (d Deltas) MembershipIDs() []int64 {
	return slices.Sorted(maps.Keys(d))
}

// Sum totals all deltas.
func (d Deltas) Sum() int {
	total := 0
	for _, v := range d {
		total += v
	}
	return total
}

// LedgerKind classifies ledger entries. Uniqueness is enforced per
// (membership, event, kind).
type LedgerKind string

const (
	KindScoring LedgerKind = "scoring"
	KindDecay   LedgerKind = "decay"
	KindManual  LedgerKind = "manual"
)

// Valid reports whether k is a known kind.
func (k LedgerKind) Valid() bool {
	switch k {
	case KindScoring, KindDecay, KindManual:
		return true
	}
	return false
}
