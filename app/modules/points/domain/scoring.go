package pointsdomain

import "math"

const (
	BuyInDistributionKey = "buy_in_distribution"
	BountyKey            = "bounty"
)

const (
	buyInCost        = 5
	buyInAlpha       = 1.25
	buyInPaidPercent = 0.15

	bountyCost              = 3
	bountyPointsPerKnockout = 3
)

// ScoringStrategy turns an event's results into per-membership deltas.
// Implementations must not mutate the event.
type ScoringStrategy interface {
	Key() string
	Calculate(event EventSnapshot) Deltas
}

// BuyInDistribution charges every entrant a fixed buy-in and pays the pool
// out to the top finishers along a power-law curve. Each elimination is worth
// one extra point.
type BuyInDistribution struct {
	Cost        int
	Alpha       float64
	PaidPercent float64
}

// NewBuyInDistribution returns the strategy with the club's standard constants.
func NewBuyInDistribution() *BuyInDistribution {
	return &BuyInDistribution{Cost: buyInCost, Alpha: buyInAlpha, PaidPercent: buyInPaidPercent}
}

func (s *BuyInDistribution) Key() string { return BuyInDistributionKey }

// PaidPlaces is the number of ranks that receive a payout.
func (s *BuyInDistribution) PaidPlaces(total int) int {
	return int(math.Ceil(s.PaidPercent * float64(total)))
}

// Payout returns the gross payout for rank out of total entrants.
// Ranks outside [1, PaidPlaces] return 0 before the power curve is evaluated.
func (s *BuyInDistribution) Payout(total, rank int) int {
	if total < s.Cost || rank < 1 {
		return 0
	}
	paid := s.PaidPlaces(total)
	if rank > paid {
		return 0
	}

	var weightSum float64
	for i := 1; i <= paid; i++ {
		weightSum += math.Pow(float64(i), -s.Alpha)
	}
	pool := float64(s.Cost * total)
	return int(math.RoundToEven(pool * math.Pow(float64(rank), -s.Alpha) / weightSum))
}

func (s *BuyInDistribution) Calculate(event EventSnapshot) Deltas {
	deltas := make(Deltas, len(event.Participations))
	for _, p := range event.Participations {
		if p.MembershipID == nil {
			continue
		}
		rank := 0
		if p.Rank != nil {
			rank = *p.Rank
		}
		deltas[*p.MembershipID] = s.Payout(event.TotalParticipants, rank) + p.Eliminations - s.Cost
	}
	return deltas
}

// Bounty pays a fixed amount per elimination, net of a fixed buy-in.
type Bounty struct {
	Cost              int
	PointsPerKnockout float64
}

// NewBounty returns the strategy with the club's standard constants.
func NewBounty() *Bounty {
	return &Bounty{Cost: bountyCost, PointsPerKnockout: bountyPointsPerKnockout}
}

func (s *Bounty) Key() string { return BountyKey }

func (s *Bounty) Calculate(event EventSnapshot) Deltas {
	deltas := make(Deltas, len(event.Participations))
	for _, p := range event.Participations {
		if p.MembershipID == nil {
			continue
		}
		payout := int(math.RoundToEven(float64(p.Eliminations) * s.PointsPerKnockout))
		deltas[*p.MembershipID] = payout - s.Cost
	}
	return deltas
}
