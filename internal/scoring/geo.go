package scoring

import (
	"math"

	"playdate-backend/internal/models"
)

// Config holds the constants used by the scorers
type Config struct {
	DistanceWeight       float64
	DefaultMaxDistanceKm float64
	EarthRadiusKm        float64
}

// DefaultConfig returns the production scoring constants
func DefaultConfig() Config {
	return Config{
		DistanceWeight:       5,
		DefaultMaxDistanceKm: 60,
		EarthRadiusKm:        6371,
	}
}

// Distance returns the great-circle distance between two points in kilometers
func (c Config) Distance(a, b models.Coordinate) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(b.Latitude - a.Latitude)
	dLon := toRad(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Latitude))*math.Cos(toRad(b.Latitude))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return c.EarthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// MaxDistance resolves the filter's max distance, falling back to the default
func (c Config) MaxDistance(filters *models.FilterSettings) float64 {
	if filters != nil && filters.MaxDistanceInKm != nil && *filters.MaxDistanceInKm > 0 {
		return *filters.MaxDistanceInKm
	}
	return c.DefaultMaxDistanceKm
}

// LocationScore rewards proximity linearly up to maxDistance. Either
// coordinate missing scores 0.
func (c Config) LocationScore(from, to *models.Coordinate, maxDistance float64) float64 {
	if from == nil || to == nil {
		return 0
	}
	distance := c.Distance(*from, *to)
	if distance > maxDistance {
		return 0
	}
	return math.Max(0, (maxDistance-distance)*c.DistanceWeight)
}
