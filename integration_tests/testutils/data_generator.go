//go:build integration

package testutils

import (
	"context"
	"fmt"
	"time"

	pointsservice "github.com/Black-And-White-Club/poker-points/app/modules/points/application"
	pointsdomain "github.com/Black-And-White-Club/poker-points/app/modules/points/domain"
	"github.com/brianvoe/gofakeit/v7"
)

// TestDataGenerator provides methods to create test data for integration tests
type TestDataGenerator struct {
	faker *gofakeit.Faker
	seed  int64
}

// NewTestDataGenerator creates a new test data generator with optional seed
func NewTestDataGenerator(seed ...int64) *TestDataGenerator {
	var s int64
	if len(seed) > 0 {
		s = seed[0]
	} else {
		s = time.Now().UnixNano()
	}
	return &TestDataGenerator{faker: gofakeit.New(uint64(s)), seed: s}
}

// Seed returns the seed, for reproducing a failing run.
func (g *TestDataGenerator) Seed() int64 { return g.seed }

// UserIDs returns n distinct user ids.
func (g *TestDataGenerator) UserIDs(n int) []string {
	seen := make(map[string]struct{}, n)
	ids := make([]string, 0, n)
	for len(ids) < n {
		id := fmt.Sprintf("%s-%d", g.faker.Username(), g.faker.IntRange(100, 999))
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// SeasonName returns a plausible season name.
func (g *TestDataGenerator) SeasonName() string {
	return fmt.Sprintf("%s %s League", g.faker.Adjective(), g.faker.Animal())
}

// Season creates and activates a season with n members and returns the
// season and the membership ids in creation order.
func (g *TestDataGenerator) Season(ctx context.Context, svc pointsservice.Service, n int) (*pointsservice.SeasonView, []int64, error) {
	season, err := svc.CreateSeason(ctx, pointsservice.CreateSeasonRequest{
		Name:      g.SeasonName(),
		StartDate: time.Now().UTC().Truncate(time.Second),
		Activate:  true,
	})
	if err != nil {
		return nil, nil, err
	}
	ids := make([]int64, 0, n)
	for _, user := range g.UserIDs(n) {
		m, err := svc.EnsureMembership(ctx, season.ID, user)
		if err != nil {
			return nil, nil, err
		}
		ids = append(ids, m.ID)
	}
	return season, ids, nil
}

// RankedEvent builds an event where membershipIDs finish in the given order.
func RankedEvent(id int64, seasonID, strategy string, membershipIDs []int64) pointsdomain.EventSnapshot {
	event := pointsdomain.EventSnapshot{
		ID:                id,
		SeasonID:          seasonID,
		ScoringStrategy:   strategy,
		TotalParticipants: len(membershipIDs),
	}
	for i, mid := range membershipIDs {
		mid, rank := mid, i+1
		event.Participations = append(event.Participations, pointsdomain.Participation{
			MembershipID: &mid,
			Rank:         &rank,
		})
	}
	return event
}
