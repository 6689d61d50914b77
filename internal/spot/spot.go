// Package spot defines the overnight-stay spot domain model and its
// repository contract. The package has no HTTP or CSV dependencies and
// can be used by any frontend.
package spot

import (
	"time"

	"github.com/google/uuid"
)

// Type classifies a spot into one of a fixed set of facility types.
type Type string

const (
	TypeParkingLot      Type = "parking_lot"
	TypeRoadsideStation Type = "roadside_station"
	TypeRVPark          Type = "rv_park"
	TypeCampground      Type = "campground"
	TypeOther           Type = "other"
)

// Types lists all valid facility types in display order.
var Types = []Type{TypeParkingLot, TypeRoadsideStation, TypeRVPark, TypeCampground, TypeOther}

// ParseType returns the Type matching s, or false if s is not a valid type.
func ParseType(s string) (Type, bool) {
	for _, t := range Types {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Candidate is a validated spot record ready for insertion. It is produced
// by the CSV schema mapper or by the admin create/update handlers and
// consumed immediately; it is never stored as an intermediate entity.
//
// Coordinates holds [longitude, latitude], longitude first, matching the
// PostGIS/GeoJSON axis order.
type Candidate struct {
	Name          string     `json:"name"`
	Coordinates   [2]float64 `json:"coordinates"`
	Prefecture    string     `json:"prefecture"`
	Address       string     `json:"address"`
	SpotType      Type       `json:"spotType"`
	HasRoof       bool       `json:"hasRoof"`
	HasPower      bool       `json:"hasPower"`
	PricePerNight float64    `json:"pricePerNight"`
	Restrictions  []string   `json:"restrictions"`
	Amenities     []string   `json:"amenities"`
	Notes         string     `json:"notes"`
	SubmittedBy   string     `json:"submittedBy"`
}

// Lng returns the candidate's longitude.
func (c *Candidate) Lng() float64 { return c.Coordinates[0] }

// Lat returns the candidate's latitude.
func (c *Candidate) Lat() float64 { return c.Coordinates[1] }

// Spot is a persisted directory entry.
type Spot struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Coordinates   [2]float64 `json:"coordinates"`
	Prefecture    string     `json:"prefecture"`
	Address       string     `json:"address"`
	SpotType      Type       `json:"spotType"`
	HasRoof       bool       `json:"hasRoof"`
	HasPower      bool       `json:"hasPower"`
	PricePerNight float64    `json:"pricePerNight"`
	Restrictions  []string   `json:"restrictions"`
	Amenities     []string   `json:"amenities"`
	Notes         string     `json:"notes"`
	SubmittedBy   string     `json:"submittedBy"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Summary is the read projection used for duplicate comparison: just enough
// to name a conflicting spot and measure the distance to it.
type Summary struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Coordinates [2]float64 `json:"coordinates"`
}

// Lng returns the summary's longitude.
func (s Summary) Lng() float64 { return s.Coordinates[0] }

// Lat returns the summary's latitude.
func (s Summary) Lat() float64 { return s.Coordinates[1] }

// ListFilter narrows and pages a spot listing.
type ListFilter struct {
	Prefecture string
	SpotType   Type
	Limit      int
	Offset     int
}
