package pointsdomain

import (
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"
)

// Phase names one of the two batches a completed event goes through.
type Phase string

const (
	PhaseScoring Phase = "scoring"
	PhaseDecay   Phase = "decay"
)

// ComputeRunHash fingerprints the inputs of one phase of an event so a
// redelivered completion can be recognised. Participation order does not matter.
func ComputeRunHash(event EventSnapshot, phase Phase, strategyKey string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "event=%d|season=%s|phase=%s|strategy=%s|total=%d", event.ID, event.SeasonID, phase, strategyKey, event.TotalParticipants)

	if phase == PhaseScoring {
		rows := make([]string, 0, len(event.Participations))
		for _, p := range event.Participations {
			rows = append(rows, participationKey(p))
		}
		slices.SortFunc(rows, cmp.Compare[string])
		for _, r := range rows {
			b.WriteString("|")
			b.WriteString(r)
		}
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func participationKey(p Participation) string {
	membership, rank := "-", "-"
	if p.MembershipID != nil {
		membership = fmt.Sprint(*p.MembershipID)
	}
	if p.Rank != nil {
		rank = fmt.Sprint(*p.Rank)
	}
	return membership + ":" + rank + ":" + fmt.Sprint(p.Eliminations)
}
