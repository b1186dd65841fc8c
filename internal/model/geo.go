// Package model defines the shared record types flowing through the ranking
// pipeline: candidate areas, facilities, and the scored records derived from
// them. All types are immutable after construction; scoring stages produce
// new records rather than mutating inputs.
package model

import "fmt"

// GeoPoint is a WGS84 coordinate pair in decimal degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate checks that both coordinates are within range.
func (p GeoPoint) Validate() error {
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("latitude %.6f outside [-90, 90]", p.Lat)
	}
	if p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("longitude %.6f outside [-180, 180]", p.Lon)
	}
	return nil
}
