package domain

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// AstroSignal is the opaque numeric result of the compute collaborator.
// It is immutable once received and is never shown to the user as raw
// values; only tone-adjusted language derived from it is.
type AstroSignal struct {
	GainSignal  string  `json:"gain_signal"`
	RiskSignal  string  `json:"risk_signal"`
	PhaseSignal string  `json:"phase_signal"`
	Confidence  float64 `json:"confidence"`
}

var (
	dobDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dobTimeRe = regexp.MustCompile(`^([01]?\d|2[0-3]):[0-5]\d(:[0-5]\d)?$`)
)

// BirthDetails is the structured birth-detail tuple. Latitude, Longitude and
// Timezone come from geocoding; City/State/Country are the pre-geocode form.
// Coordinates are pointers so an absent value is distinguishable from a
// genuine 0: only geocoding or validated input sets them.
type BirthDetails struct {
	DOBDate   string   `json:"dob_date"`
	DOBTime   string   `json:"dob_time"`
	City      string   `json:"city,omitempty"`
	State     string   `json:"state,omitempty"`
	Country   string   `json:"country,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Timezone  string   `json:"timezone,omitempty"`
}

// Validate checks the pre-geocode fields: date and time formats plus a
// non-empty city and country.
func (b *BirthDetails) Validate() error {
	if !dobDateRe.MatchString(b.DOBDate) {
		return fmt.Errorf("invalid dob_date %q: want YYYY-MM-DD", b.DOBDate)
	}
	if !dobTimeRe.MatchString(b.DOBTime) {
		return fmt.Errorf("invalid dob_time %q: want HH:MM or HH:MM:SS", b.DOBTime)
	}
	if strings.TrimSpace(b.City) == "" || strings.TrimSpace(b.Country) == "" {
		return fmt.Errorf("city and country are required")
	}
	return nil
}

// ComputeReady reports whether the full tuple the compute collaborator
// requires is present: date, time, coordinates, and timezone.
func (b *BirthDetails) ComputeReady() bool {
	if b == nil {
		return false
	}
	if !dobDateRe.MatchString(b.DOBDate) || !dobTimeRe.MatchString(b.DOBTime) {
		return false
	}
	if b.Latitude == nil || b.Longitude == nil {
		return false
	}
	if math.IsNaN(*b.Latitude) || math.IsNaN(*b.Longitude) {
		return false
	}
	return strings.TrimSpace(b.Timezone) != ""
}

// ParseBirthDetails parses the legacy comma-separated form
// "YYYY-MM-DD, HH:MM[:SS], City, State, Country". Kept for callers that
// still accept freeform input; structured input should use BirthDetails
// directly. Returns nil when the text does not validate.
func ParseBirthDetails(text string) *BirthDetails {
	var parts []string
	for _, p := range strings.Split(text, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) < 5 {
		return nil
	}
	b := &BirthDetails{
		DOBDate: parts[0],
		DOBTime: parts[1],
		City:    parts[2],
		State:   parts[3],
		Country: parts[4],
	}
	if err := b.Validate(); err != nil {
		return nil
	}
	return b
}
