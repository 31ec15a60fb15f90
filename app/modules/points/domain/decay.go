package pointsdomain

import "math"

const GlobalAttendanceKey = "global_attendance"

const (
	decayBalanceCap = 100
	decayMaxRate    = 0.05
	decayRateScale  = 1000.0
)

// DecayStrategy shrinks existing balances after an event.
// Returned deltas are never positive.
type DecayStrategy interface {
	Key() string
	Calculate(event EventSnapshot, balances []MembershipBalance) Deltas
}

// GlobalAttendanceDecay takes a percentage of each positive balance that
// grows with event attendance, capped at MaxRate. Balances above BalanceCap
// decay as if they were exactly BalanceCap.
type GlobalAttendanceDecay struct {
	BalanceCap int
	MaxRate    float64
}

// NewGlobalAttendanceDecay returns the strategy with the club's standard constants.
func NewGlobalAttendanceDecay() *GlobalAttendanceDecay {
	return &GlobalAttendanceDecay{BalanceCap: decayBalanceCap, MaxRate: decayMaxRate}
}

func (s *GlobalAttendanceDecay) Key() string { return GlobalAttendanceKey }

// Rate is the fraction of the clamped balance removed for an event of total entrants.
func (s *GlobalAttendanceDecay) Rate(total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Min(s.MaxRate, float64(total)/decayRateScale)
}

func (s *GlobalAttendanceDecay) Calculate(event EventSnapshot, balances []MembershipBalance) Deltas {
	rate := s.Rate(event.TotalParticipants)
	deltas := make(Deltas, len(balances))
	for _, b := range balances {
		if b.Points <= 0 {
			continue
		}
		clamped := min(s.BalanceCap, max(0, b.Points))
		deltas[b.MembershipID] = -int(math.RoundToEven(float64(clamped) * rate))
	}
	return deltas
}
