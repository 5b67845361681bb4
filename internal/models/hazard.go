package models

import "time"

type HazardType string

const (
	HazardTypeSpeedCam HazardType = "speed_cam"
	HazardTypePolice   HazardType = "police"
	HazardTypeAccident HazardType = "accident"
	HazardTypeDanger   HazardType = "danger"
)

// Valid reports whether t is one of the four known hazard types.
func (t HazardType) Valid() bool {
	switch t {
	case HazardTypeSpeedCam, HazardTypePolice, HazardTypeAccident, HazardTypeDanger:
		return true
	}
	return false
}

// AnonymousReporter is recorded when a report carries no user ID.
const AnonymousReporter = "anonymous"

type Hazard struct {
	ID         string
	Type       HazardType
	Latitude   float64
	Longitude  float64
	ReporterID string
	Verifiers  []string // unique, unordered; grows only via idempotent add
	CreatedAt  time.Time
}

type Coordinates struct {
	Latitude  float64
	Longitude float64
}

func (h *Hazard) Coordinates() Coordinates {
	return Coordinates{
		Latitude:  h.Latitude,
		Longitude: h.Longitude,
	}
}

// VerifiedBy reports whether userID already verified the hazard.
func (h *Hazard) VerifiedBy(userID string) bool {
	for _, v := range h.Verifiers {
		if v == userID {
			return true
		}
	}
	return false
}
