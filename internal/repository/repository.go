package repository

import (
	"context"
	"errors"

	"github.com/vaibhavx77/rover-app/internal/models"
)

var (
	ErrInvalidHazardType = errors.New("repository: invalid hazard type")
	ErrInvalidLocation   = errors.New("repository: invalid location")
	ErrNotFound          = errors.New("repository: hazard not found")
	ErrUnauthorized      = errors.New("repository: requester is not the reporter")
)

const (
	// DefaultRadiusMeters applies when a radius query does not specify one.
	DefaultRadiusMeters = 5000.0
	// MaxResults caps every radius query.
	MaxResults = 100
)

type RadiusQuery struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters float64 // 0 means DefaultRadiusMeters
	Limit        int     // 0 means MaxResults; higher values are clamped
}

type HazardRepository interface {
	// Create validates and persists a new hazard with a fresh ID and an
	// empty verifier set.
	Create(ctx context.Context, typ models.HazardType, lat, lng float64, reporterID string) (*models.Hazard, error)
	// FindWithinRadius returns hazards within the spherical radius of the
	// center, in store-native order. Callers must not depend on ordering.
	FindWithinRadius(ctx context.Context, q RadiusQuery) ([]models.Hazard, error)
	// AddVerifier idempotently inserts userID into the hazard's verifier
	// set and returns the updated record.
	AddVerifier(ctx context.Context, hazardID, userID string) (*models.Hazard, error)
	// Delete removes the hazard if requesterID matches its reporter.
	Delete(ctx context.Context, hazardID, requesterID string) error
}

type JournalRepository interface {
	AppendEvent(ctx context.Context, e *models.JournalEntry) error
}
