package scoring

import (
	"math"
	"testing"
	"time"

	"playdate-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func boolPtr(b bool) *bool { return &b }

func kmNorth(cfg Config, from models.Coordinate, km float64) models.Coordinate {
	return models.Coordinate{
		Latitude:  from.Latitude + km/(cfg.EarthRadiusKm*math.Pi/180),
		Longitude: from.Longitude,
	}
}

func TestDistance(t *testing.T) {
	cfg := DefaultConfig()
	london := models.Coordinate{Latitude: 51.5074, Longitude: -0.1278}
	paris := models.Coordinate{Latitude: 48.8566, Longitude: 2.3522}

	assert.InDelta(t, 343.5, cfg.Distance(london, paris), 1.0)
	assert.InDelta(t, 0, cfg.Distance(london, london), 1e-9)
	assert.InDelta(t, 30, cfg.Distance(london, kmNorth(cfg, london, 30)), 1e-6)
}

func TestLocationScore(t *testing.T) {
	cfg := DefaultConfig()
	origin := models.Coordinate{Latitude: 52.52, Longitude: 13.405}

	near := kmNorth(cfg, origin, 30)
	far := kmNorth(cfg, origin, 75)

	assert.InDelta(t, 150, cfg.LocationScore(&origin, &near, 60), 1e-6)
	assert.Equal(t, 0.0, cfg.LocationScore(&origin, &far, 60))
	assert.Equal(t, 0.0, cfg.LocationScore(nil, &near, 60))
	assert.Equal(t, 0.0, cfg.LocationScore(&origin, nil, 60))

	prev := math.Inf(1)
	for km := 0.0; km <= 80; km += 5 {
		p := kmNorth(cfg, origin, km)
		score := cfg.LocationScore(&origin, &p, 60)
		assert.LessOrEqual(t, score, prev, "score must not grow with distance (%v km)", km)
		if km > 60 {
			assert.Equal(t, 0.0, score)
		}
		prev = score
	}
}

func TestMaxDistance(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 60.0, cfg.MaxDistance(nil))
	assert.Equal(t, 60.0, cfg.MaxDistance(&models.FilterSettings{}))

	d := 25.0
	assert.Equal(t, 25.0, cfg.MaxDistance(&models.FilterSettings{MaxDistanceInKm: &d}))
}

func TestAgeInYears(t *testing.T) {
	dob := now.AddDate(0, 0, -730)
	assert.InDelta(t, 2.0, AgeInYears(dob, now), 1e-9)

	// partial days are dropped
	dob = now.Add(-(365*24 + 23) * time.Hour)
	assert.InDelta(t, 1.0, AgeInYears(dob, now), 1e-9)
}

func TestGenderNeuterScore(t *testing.T) {
	tests := []struct {
		name      string
		requester models.Dog
		candidate models.Dog
		want      float64
	}{
		{"opposite one neutered", models.Dog{Gender: models.GenderMale, IsNeutered: boolPtr(true)}, models.Dog{Gender: models.GenderFemale}, 10},
		{"opposite both intact", models.Dog{Gender: models.GenderMale}, models.Dog{Gender: models.GenderFemale, IsNeutered: boolPtr(false)}, 0},
		{"same both neutered", models.Dog{Gender: models.GenderFemale, IsNeutered: boolPtr(true)}, models.Dog{Gender: models.GenderFemale, IsNeutered: boolPtr(true)}, 5},
		{"same one intact", models.Dog{Gender: models.GenderMale, IsNeutered: boolPtr(true)}, models.Dog{Gender: models.GenderMale}, 0},
		{"unknown gender", models.Dog{IsNeutered: boolPtr(true)}, models.Dog{Gender: models.GenderFemale}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenderNeuterScore(&tt.requester, &tt.candidate))
		})
	}
}

func TestPassesHardFilters(t *testing.T) {
	dob := now.AddDate(-3, 0, 0)
	candidate := models.Dog{
		ID:         "c1",
		Gender:     models.GenderFemale,
		Size:       "Medium",
		DOB:        &dob,
		IsNeutered: boolPtr(false),
	}

	assert.True(t, PassesHardFilters(&candidate, nil, now))
	assert.True(t, PassesHardFilters(&candidate, &models.FilterSettings{SelectedGender: "any"}, now))
	assert.True(t, PassesHardFilters(&candidate, &models.FilterSettings{SelectedGender: "female"}, now))
	assert.False(t, PassesHardFilters(&candidate, &models.FilterSettings{SelectedGender: "male"}, now))
	assert.False(t, PassesHardFilters(&candidate, &models.FilterSettings{NeuteredOnly: true}, now))
	assert.False(t, PassesHardFilters(&candidate, &models.FilterSettings{SelectedSizes: []string{"Small", "Large"}}, now))
	assert.True(t, PassesHardFilters(&candidate, &models.FilterSettings{SelectedSizes: []string{"Medium"}}, now))
	assert.True(t, PassesHardFilters(&candidate, &models.FilterSettings{PreferredAgeRange: &[2]float64{1, 5}}, now))
	assert.False(t, PassesHardFilters(&candidate, &models.FilterSettings{PreferredAgeRange: &[2]float64{4, 8}}, now))

	noDob := candidate
	noDob.DOB = nil
	assert.False(t, PassesHardFilters(&noDob, &models.FilterSettings{PreferredAgeRange: &[2]float64{0, 20}}, now))
}

func TestCompatibility(t *testing.T) {
	dob := now.AddDate(-2, 0, 0)
	requester := models.Dog{ID: "r", Gender: models.GenderMale, IsNeutered: boolPtr(true)}
	candidate := models.Dog{
		ID:           "c",
		Gender:       models.GenderFemale,
		Size:         "Small",
		DOB:          &dob,
		IsNeutered:   boolPtr(true),
		HealthStatus: "healthy",
		Behavior: &models.DogBehavior{
			PlayStyles:   []string{"chase", "tug"},
			Environments: []string{"park"},
			Triggers:     []string{"bikes", "loud noises", "cats"},
		},
	}

	t.Run("no filters", func(t *testing.T) {
		b := Compatibility(&requester, &candidate, nil, now)
		assert.Equal(t, 10.0, b.Compatibility())
	})

	t.Run("every filter", func(t *testing.T) {
		filters := &models.FilterSettings{
			SelectedGender:          "female",
			NeuteredOnly:            true,
			SelectedSizes:           []string{"Small"},
			SelectedPlayStyleTags:   []string{"tug", "fetch"},
			SelectedEnvironmentTags: []string{"park"},
			SelectedTriggerTags:     []string{"bikes", "cats", "kids"},
			SelectedHealthStatus:    "healthy",
			PreferredAgeRange:       &[2]float64{1, 3},
		}
		require.True(t, PassesHardFilters(&candidate, filters, now))

		b := Compatibility(&requester, &candidate, filters, now)
		assert.Equal(t, 10.0, b.GenderNeuter)
		assert.Equal(t, 5.0+10+3+5+3+1+3, b.Filters)
		assert.Equal(t, 10.0, b.Triggers, "two matched triggers cost 5 each")
		assert.Equal(t, 10.0+30-10, b.Compatibility())
	})

	t.Run("no behavior", func(t *testing.T) {
		bare := candidate
		bare.Behavior = nil
		b := Compatibility(&requester, &bare, &models.FilterSettings{SelectedTriggerTags: []string{"bikes"}}, now)
		assert.Equal(t, 0.0, b.Triggers)
	})
}

func TestBreakdownTotal(t *testing.T) {
	b := Breakdown{GenderNeuter: 5, Filters: 8, Triggers: 15, Location: 20}
	assert.Equal(t, -2.0, b.Compatibility())
	assert.Equal(t, 18.0, b.Total())
}
