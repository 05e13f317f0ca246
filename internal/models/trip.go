package models

import (
	"time"

	"github.com/uptrace/bun"
)

type TripStatus string

const (
	TripScheduled TripStatus = "SCHEDULED"
	TripBoarding  TripStatus = "BOARDING"
	TripDeparted  TripStatus = "DEPARTED"
	TripArrived   TripStatus = "ARRIVED"
	TripCancelled TripStatus = "CANCELLED"
)

type Trip struct {
	bun.BaseModel `bun:"table:trips,alias:trip"`

	ID              string     `bun:"id,pk" json:"id"`
	RouteID         string     `bun:"route_id,notnull" json:"route_id"`
	BusID           string     `bun:"bus_id,notnull" json:"bus_id"`
	Date            string     `bun:"date,notnull" json:"date"`
	DepartureAt     time.Time  `bun:"departure_at,notnull" json:"departure_at"`
	ArrivalEstimate time.Time  `bun:"arrival_estimate,nullzero" json:"arrival_estimate"`
	Status          TripStatus `bun:"status,notnull" json:"status"`

	Route *Route `bun:"rel:belongs-to,join:route_id=id" json:"-"`
	Bus   *Bus   `bun:"rel:belongs-to,join:bus_id=id" json:"-"`
}

// SellsTickets reports whether new holds or tickets may still be
// created against the trip.
func (t *Trip) SellsTickets() bool {
	return t.Status == TripScheduled || t.Status == TripBoarding
}
