package api

import (
	"github.com/vaibhavx77/rover-app/internal/models"
)

type locationResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type hazardResponse struct {
	ID         string           `json:"id"`
	Type       string           `json:"type"`
	Location   locationResponse `json:"location"`
	VerifiedBy []string         `json:"verifiedBy"`
}

func toHazardList(hazards []models.Hazard) []hazardResponse {
	out := make([]hazardResponse, 0, len(hazards))

	for _, h := range hazards {
		verifiedBy := h.Verifiers
		if verifiedBy == nil {
			verifiedBy = []string{}
		}
		out = append(out, hazardResponse{
			ID:   h.ID,
			Type: string(h.Type),
			Location: locationResponse{
				Lat: h.Latitude,
				Lng: h.Longitude,
			},
			VerifiedBy: verifiedBy,
		})
	}

	return out
}
