package scoring

import (
	"strings"
	"time"

	"playdate-backend/internal/models"
)

const (
	oppositeGenderNeuteredPoints = 10
	sameGenderNeuteredPoints     = 5
	genderFilterPoints           = 5
	neuteredOnlyPoints           = 10
	sizePoints                   = 3
	playStylePoints              = 5
	environmentPoints            = 3
	healthStatusPoints           = 1
	agePoints                    = 3
	triggerPenalty               = 5
)

const hoursPerDay = 24

// Breakdown is a candidate's score split into its parts
type Breakdown struct {
	GenderNeuter float64 `json:"genderNeuter"`
	Filters      float64 `json:"filters"`
	Triggers     float64 `json:"triggers"`
	Location     float64 `json:"location"`
}

// Compatibility is the score before location is added
func (b Breakdown) Compatibility() float64 {
	return b.GenderNeuter + b.Filters - b.Triggers
}

// Total is the ranking score
func (b Breakdown) Total() float64 {
	return b.Compatibility() + b.Location
}

// AgeInYears counts whole elapsed days and divides by 365
func AgeInYears(dob, now time.Time) float64 {
	days := int(now.Sub(dob).Hours() / hoursPerDay)
	return float64(days) / 365
}

func genderFilterActive(filters *models.FilterSettings) bool {
	if filters == nil {
		return false
	}
	g := strings.ToLower(filters.SelectedGender)
	return g != "" && g != "any"
}

// PassesHardFilters reports whether the candidate survives every
// eliminating filter.
func PassesHardFilters(candidate *models.Dog, filters *models.FilterSettings, now time.Time) bool {
	if filters == nil {
		return true
	}
	if genderFilterActive(filters) && !strings.EqualFold(string(candidate.Gender), filters.SelectedGender) {
		return false
	}
	if filters.NeuteredOnly && !candidate.Neutered() {
		return false
	}
	if len(filters.SelectedSizes) > 0 && !contains(filters.SelectedSizes, candidate.Size) {
		return false
	}
	if filters.PreferredAgeRange != nil {
		if candidate.DOB == nil || !inAgeRange(*candidate.DOB, *filters.PreferredAgeRange, now) {
			return false
		}
	}
	return true
}

// GenderNeuterScore scores the pairing of two dogs by gender and neuter status
func GenderNeuterScore(requester, candidate *models.Dog) float64 {
	if requester == nil || requester.Gender == "" || candidate.Gender == "" {
		return 0
	}
	same := requester.Gender == candidate.Gender
	switch {
	case !same && (requester.Neutered() || candidate.Neutered()):
		return oppositeGenderNeuteredPoints
	case same && requester.Neutered() && candidate.Neutered():
		return sameGenderNeuteredPoints
	default:
		return 0
	}
}

// Compatibility scores a candidate that already passed the hard filters.
// Location is left at zero; the ranking service fills it in.
func Compatibility(requester, candidate *models.Dog, filters *models.FilterSettings, now time.Time) Breakdown {
	b := Breakdown{GenderNeuter: GenderNeuterScore(requester, candidate)}
	if filters == nil {
		return b
	}

	var behavior models.DogBehavior
	if candidate.Behavior != nil {
		behavior = *candidate.Behavior
	}

	if genderFilterActive(filters) && strings.EqualFold(string(candidate.Gender), filters.SelectedGender) {
		b.Filters += genderFilterPoints
	}
	if filters.NeuteredOnly && candidate.Neutered() {
		b.Filters += neuteredOnlyPoints
	}
	if contains(filters.SelectedSizes, candidate.Size) {
		b.Filters += sizePoints
	}
	if overlaps(filters.SelectedPlayStyleTags, behavior.PlayStyles) {
		b.Filters += playStylePoints
	}
	if overlaps(filters.SelectedEnvironmentTags, behavior.Environments) {
		b.Filters += environmentPoints
	}
	if filters.SelectedHealthStatus != "" && candidate.HealthStatus == filters.SelectedHealthStatus {
		b.Filters += healthStatusPoints
	}
	if filters.PreferredAgeRange != nil && candidate.DOB != nil && inAgeRange(*candidate.DOB, *filters.PreferredAgeRange, now) {
		b.Filters += agePoints
	}

	b.Triggers = float64(countShared(filters.SelectedTriggerTags, behavior.Triggers) * triggerPenalty)
	return b
}

func inAgeRange(dob time.Time, r [2]float64, now time.Time) bool {
	age := AgeInYears(dob, now)
	return age >= r[0] && age <= r[1]
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func overlaps(selected, have []string) bool {
	return countShared(selected, have) > 0
}

// countShared counts distinct selected tags present in have
func countShared(selected, have []string) int {
	if len(selected) == 0 || len(have) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(have))
	for _, t := range have {
		set[t] = struct{}{}
	}
	seen := make(map[string]struct{}, len(selected))
	n := 0
	for _, t := range selected {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := set[t]; ok {
			n++
		}
	}
	return n
}
