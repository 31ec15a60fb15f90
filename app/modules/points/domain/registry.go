package pointsdomain

import (
	"maps"
	"slices"
	"strings"
)

// Registry resolves strategy keys to fresh strategy instances.
// It is immutable after construction.
type Registry[T any] struct {
	constructors map[string]func() T
	defaultKey   string
}

func newRegistry[T any](defaultKey string, constructors map[string]func() T) *Registry[T] {
	return &Registry[T]{constructors: constructors, defaultKey: defaultKey}
}

// NewScoringRegistry returns the registry of scoring strategies.
// Unknown keys resolve to buy-in distribution.
func NewScoringRegistry() *Registry[ScoringStrategy] {
	return newRegistry(BuyInDistributionKey, map[string]func() ScoringStrategy{
		BuyInDistributionKey: func() ScoringStrategy { return NewBuyInDistribution() },
		BountyKey:            func() ScoringStrategy { return NewBounty() },
	})
}

// NewDecayRegistry returns the registry of decay strategies.
// Unknown keys resolve to global attendance decay.
func NewDecayRegistry() *Registry[DecayStrategy] {
	return newRegistry(GlobalAttendanceKey, map[string]func() DecayStrategy{
		GlobalAttendanceKey: func() DecayStrategy { return NewGlobalAttendanceDecay() },
	})
}

// Resolve never fails: an empty or unrecognised key yields the default strategy.
func (r *Registry[T]) Resolve(key string) T {
	if ctor, ok := r.constructors[strings.TrimSpace(key)]; ok {
		return ctor()
	}
	return r.constructors[r.defaultKey]()
}

// Has reports whether key names a registered strategy.
func (r *Registry[T]) Has(key string) bool {
	_, ok := r.constructors[strings.TrimSpace(key)]
	return ok
}

// DefaultKey is the key used for unknown lookups.
func (r *Registry[T]) DefaultKey() string { return r.defaultKey }

// Keys lists registered keys in sorted order.
func (r *Registry[T]) Keys() []string {
	return slices.Sorted(maps.Keys(r.constructors))
}
