package models

import "time"

// DogMode gates meet-up eligibility
type DogMode string

const (
	DogModePuppy  DogMode = "puppy"
	DogModeSocial DogMode = "social"
)

// Valid reports whether the mode is one of the known modes
func (m DogMode) Valid() bool {
	return m == DogModePuppy || m == DogModeSocial
}

// Gender of a dog
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Coordinate is a WGS84 point
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DogBehavior holds the tag lists used for matching
type DogBehavior struct {
	PlayStyles   []string `json:"playStyles"`
	Environments []string `json:"preferredPlayEnvironments"`
	Triggers     []string `json:"triggersAndSensitivities"`
}

// Dog represents a dog profile
type Dog struct {
	ID                   string       `json:"id"`
	OwnerID              string       `json:"ownerId"`
	Name                 string       `json:"name"`
	Gender               Gender       `json:"gender"`
	Size                 string       `json:"size"`
	Breed                string       `json:"breed,omitempty"`
	DOB                  *time.Time   `json:"dob,omitempty"`
	ImageURLs            []string     `json:"imageURLs"`
	Mode                 DogMode      `json:"mode"`
	IsNeutered           *bool        `json:"isNeutered,omitempty"`
	Behavior             *DogBehavior `json:"behavior,omitempty"`
	HealthStatus         string       `json:"healthStatus,omitempty"`
	Coordinate           *Coordinate  `json:"coordinate,omitempty"`
	CoreVaccination1Date *time.Time   `json:"coreVaccination1Date,omitempty"`
	CoreVaccination2Date *time.Time   `json:"coreVaccination2Date,omitempty"`
}

// Neutered treats an unknown neuter status as intact
func (d *Dog) Neutered() bool {
	return d.IsNeutered != nil && *d.IsNeutered
}

// FirstImage returns the first profile image or an empty string
func (d *Dog) FirstImage() string {
	if len(d.ImageURLs) == 0 {
		return ""
	}
	return d.ImageURLs[0]
}

// HasCoreVaccinations reports whether both core vaccination dates are set
func (d *Dog) HasCoreVaccinations() bool {
	return d.CoreVaccination1Date != nil && d.CoreVaccination2Date != nil
}

// FilterSettings are the optional candidate filters chosen by the requester
type FilterSettings struct {
	MaxDistanceInKm         *float64    `json:"maxDistanceInKm,omitempty"`
	SelectedGender          string      `json:"selectedGender,omitempty"`
	SelectedSizes           []string    `json:"selectedSizes,omitempty"`
	SelectedPlayStyleTags   []string    `json:"selectedPlayStyleTags,omitempty"`
	SelectedEnvironmentTags []string    `json:"selectedEnvironmentTags,omitempty"`
	SelectedTriggerTags     []string    `json:"selectedTriggerTags,omitempty"`
	SelectedHealthStatus    string      `json:"selectedHealthStatus,omitempty"`
	NeuteredOnly            bool        `json:"neuteredOnly,omitempty"`
	PreferredAgeRange       *[2]float64 `json:"preferredAgeRange,omitempty"`
}

// ScoredDog is one entry of a ranked candidate list
type ScoredDog struct {
	Dog                Dog     `json:"dog"`
	Score              float64 `json:"score"`
	CompatibilityScore float64 `json:"compatibilityScore"`
	LocationScore      float64 `json:"locationScore"`
}
