package geo

import (
	"math"
	"testing"
)

func TestRegionOf(t *testing.T) {
	tests := []struct {
		name string
		lat  float64
		lng  float64
		want RegionKey
	}{
		{"manhattan", 40.7128, -74.0060, "40.71_-74.01"},
		{"origin", 0, 0, "0.00_0.00"},
		{"negative lat", -33.8688, 151.2093, "-33.87_151.21"},
		{"domain edges", 90, -180, "90.00_-180.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RegionOf(tt.lat, tt.lng)
			if err != nil {
				t.Fatalf("RegionOf(%v, %v) error: %v", tt.lat, tt.lng, err)
			}
			if got != tt.want {
				t.Errorf("RegionOf(%v, %v) = %q, want %q", tt.lat, tt.lng, got, tt.want)
			}
		})
	}
}

func TestRegionOf_Deterministic(t *testing.T) {
	first, err := RegionOf(40.7128, -74.0060)
	if err != nil {
		t.Fatalf("RegionOf error: %v", err)
	}
	for i := 0; i < 100; i++ {
		got, err := RegionOf(40.7128, -74.0060)
		if err != nil {
			t.Fatalf("RegionOf error: %v", err)
		}
		if got != first {
			t.Fatalf("RegionOf unstable: got %q, want %q", got, first)
		}
	}
}

func TestRegionOf_AdjacentCellsDiffer(t *testing.T) {
	a, _ := RegionOf(40.7128, -74.0060)
	b, _ := RegionOf(40.70, -74.00)
	if a == b {
		t.Errorf("expected distinct regions, both %q", a)
	}
}

func TestRegionOf_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		lat  float64
		lng  float64
	}{
		{"lat too high", 90.01, 0},
		{"lat too low", -90.01, 0},
		{"lng too high", 0, 180.01},
		{"lng too low", 0, -180.01},
		{"nan lat", math.NaN(), 0},
		{"nan lng", 0, math.NaN()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := RegionOf(tt.lat, tt.lng); err != ErrInvalidCoordinate {
				t.Errorf("RegionOf(%v, %v) error = %v, want ErrInvalidCoordinate", tt.lat, tt.lng, err)
			}
		})
	}
}

func TestDistanceMeters(t *testing.T) {
	// Times Square to the Empire State Building, roughly 1.1 km.
	d := DistanceMeters(40.7580, -73.9855, 40.7484, -73.9857)
	if d < 1000 || d > 1200 {
		t.Errorf("expected ~1.1km, got %.0fm", d)
	}

	if d := DistanceMeters(40.7128, -74.0060, 40.7128, -74.0060); d != 0 {
		t.Errorf("zero distance expected, got %.2fm", d)
	}
}
