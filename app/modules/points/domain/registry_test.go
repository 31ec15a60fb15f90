package pointsdomain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoringRegistry_Resolve(t *testing.T) {
	r := NewScoringRegistry()

	tests := []struct {
		key  string
		want string
	}{
		{key: BuyInDistributionKey, want: BuyInDistributionKey},
		{key: BountyKey, want: BountyKey},
		{key: "  bounty ", want: BountyKey},
		{key: "", want: BuyInDistributionKey},
		{key: "winner_takes_all", want: BuyInDistributionKey},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.key).Key())
		})
	}

	assert.Equal(t, []string{BountyKey, BuyInDistributionKey}, r.Keys())
	assert.True(t, r.Has(BountyKey))
	assert.False(t, r.Has("unknown"))
}

func TestScoringRegistry_ResolveReturnsFreshInstances(t *testing.T) {
	r := NewScoringRegistry()
	a := r.Resolve(BuyInDistributionKey).(*BuyInDistribution)
	a.Cost = 100
	b := r.Resolve(BuyInDistributionKey).(*BuyInDistribution)
	assert.Equal(t, buyInCost, b.Cost)
}

func TestDecayRegistry_Resolve(t *testing.T) {
	r := NewDecayRegistry()
	assert.Equal(t, GlobalAttendanceKey, r.DefaultKey())
	assert.Equal(t, GlobalAttendanceKey, r.Resolve("").Key())
	assert.Equal(t, GlobalAttendanceKey, r.Resolve("linear").Key())
	assert.Equal(t, []string{GlobalAttendanceKey}, r.Keys())
}
