package services

import (
	"context"
	"math"
	"testing"

	"playdate-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// northOf returns the point km kilometers due north of the origin
func northOf(km float64) *models.Coordinate {
	return &models.Coordinate{Latitude: km / (6371 * math.Pi / 180)}
}

func ptr[T any](v T) *T { return &v }

func seedRankingPool(t *testing.T, env *testEnv) {
	t.Helper()
	env.addUser(t, "owner", "Owner")
	env.addDog(t, models.Dog{ID: "me", OwnerID: "owner", Gender: models.GenderMale, Coordinate: northOf(0)})
	env.addDog(t, models.Dog{ID: "near", OwnerID: "o1", Gender: models.GenderFemale, Coordinate: northOf(30)})
	env.addDog(t, models.Dog{ID: "far", OwnerID: "o2", Gender: models.GenderFemale, Coordinate: northOf(75)})
	env.addDog(t, models.Dog{ID: "pending", OwnerID: "o3", Gender: models.GenderFemale, Coordinate: northOf(1)})
	env.addDog(t, models.Dog{ID: "accepted", OwnerID: "o4", Gender: models.GenderFemale, Coordinate: northOf(1)})
	env.addDog(t, models.Dog{ID: "rejected", OwnerID: "o5", Gender: models.GenderMale, Coordinate: northOf(10)})
	env.addDog(t, models.Dog{ID: "reactive", OwnerID: "o6", Gender: models.GenderMale,
		Behavior: &models.DogBehavior{Triggers: []string{"bikes", "kids"}}})

	ctx := context.Background()
	for _, r := range []models.MatchRequest{
		{ID: "r1", FromDogID: "me", ToDogID: "pending", Status: models.MatchStatusPending},
		{ID: "r2", FromDogID: "accepted", ToDogID: "me", Status: models.MatchStatusAccepted},
		{ID: "r3", FromDogID: "me", ToDogID: "rejected", Status: models.MatchStatusRejected},
	} {
		require.NoError(t, env.store.MatchRequests.Create(ctx, &r))
	}
}

func TestRankDistanceScoring(t *testing.T) {
	env := newTestEnv(t)
	seedRankingPool(t, env)

	ranked, err := env.ranking.Rank(context.Background(), RankRequest{
		RequesterDogID:  "me",
		CandidateDogIDs: []string{"far", "near"},
		Filters:         &models.FilterSettings{MaxDistanceInKm: ptr(60.0)},
	})
	require.NoError(t, err)
	require.Len(t, ranked, 2)

	assert.Equal(t, "near", ranked[0].Dog.ID)
	assert.InDelta(t, 150, ranked[0].LocationScore, 0.01)
	assert.InDelta(t, 150, ranked[0].Score, 0.01)

	assert.Equal(t, "far", ranked[1].Dog.ID)
	assert.Zero(t, ranked[1].LocationScore)
	assert.Zero(t, ranked[1].Score)
}

func TestRankExclusions(t *testing.T) {
	env := newTestEnv(t)
	seedRankingPool(t, env)

	ranked, err := env.ranking.Rank(context.Background(), RankRequest{
		RequesterDogID:  "me",
		CandidateDogIDs: []string{"me", "pending", "accepted", "rejected", "near", "near", "ghost", "far"},
		SeenDogIDs:      []string{"far"},
	})
	require.NoError(t, err)

	ids := make([]string, 0, len(ranked))
	for _, r := range ranked {
		ids = append(ids, r.Dog.ID)
	}
	assert.ElementsMatch(t, []string{"rejected", "near"}, ids)
}

func TestRankDropsNegativeTotals(t *testing.T) {
	env := newTestEnv(t)
	seedRankingPool(t, env)

	filters := &models.FilterSettings{SelectedTriggerTags: []string{"bikes", "kids", "bikes"}}
	ranked, err := env.ranking.Rank(context.Background(), RankRequest{
		RequesterDogID:  "me",
		CandidateDogIDs: []string{"reactive", "far"},
		Filters:         filters,
	})
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, "far", ranked[0].Dog.ID)
}

func TestRankHardFilters(t *testing.T) {
	env := newTestEnv(t)
	seedRankingPool(t, env)

	ranked, err := env.ranking.Rank(context.Background(), RankRequest{
		RequesterDogID:  "me",
		CandidateDogIDs: []string{"rejected", "near", "far"},
		Filters:         &models.FilterSettings{SelectedGender: "female"},
	})
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	for _, r := range ranked {
		assert.Equal(t, models.GenderFemale, r.Dog.Gender)
		// 5 for the gender filter plus location within the default 60 km
		assert.InDelta(t, r.CompatibilityScore+r.LocationScore, r.Score, 1e-9)
		assert.Equal(t, 5.0, r.CompatibilityScore)
	}
}

func TestRankTiesKeepCandidateOrder(t *testing.T) {
	env := newTestEnv(t)
	env.addDog(t, models.Dog{ID: "me", OwnerID: "owner"})
	for _, id := range []string{"c", "a", "b"} {
		env.addDog(t, models.Dog{ID: id, OwnerID: "o-" + id})
	}

	ranked, err := env.ranking.Rank(context.Background(), RankRequest{
		RequesterDogID:  "me",
		CandidateDogIDs: []string{"c", "a", "b"},
	})
	require.NoError(t, err)
	require.Len(t, ranked, 3)
	assert.Equal(t, "c", ranked[0].Dog.ID)
	assert.Equal(t, "a", ranked[1].Dog.ID)
	assert.Equal(t, "b", ranked[2].Dog.ID)
}

func TestRankLocationOverride(t *testing.T) {
	env := newTestEnv(t)
	seedRankingPool(t, env)

	ranked, err := env.ranking.Rank(context.Background(), RankRequest{
		RequesterDogID:  "me",
		CandidateDogIDs: []string{"far"},
		Location:        northOf(70),
	})
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.InDelta(t, (60-5)*5, ranked[0].LocationScore, 0.01)
}

func TestRankErrors(t *testing.T) {
	env := newTestEnv(t)
	seedRankingPool(t, env)

	_, err := env.ranking.Rank(context.Background(), RankRequest{})
	requireKind(t, err, KindValidation)

	_, err = env.ranking.Rank(context.Background(), RankRequest{RequesterDogID: "nobody", CandidateDogIDs: []string{"near"}})
	assert.ErrorIs(t, err, ErrDogNotFound)

	ranked, err := env.ranking.Rank(context.Background(), RankRequest{RequesterDogID: "me"})
	require.NoError(t, err)
	assert.NotNil(t, ranked)
	assert.Empty(t, ranked)
}
