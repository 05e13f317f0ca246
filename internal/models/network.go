package models

import (
	"github.com/uptrace/bun"
)

// Route is the administrative line a bus serves, e.g. "Bogotá → Medellín".
// CRUD for routes, stops and buses lives outside this service; the engine
// only reads them.
type Route struct {
	bun.BaseModel `bun:"table:routes,alias:route"`

	ID          string `bun:"id,pk" json:"id"`
	Origin      string `bun:"origin,notnull" json:"origin"`
	Destination string `bun:"destination,notnull" json:"destination"`
}

// Stop belongs to a route and carries a strictly increasing position.
// Positions define the segment coordinate space: a passenger travels
// the half-open range [from position, to position).
type Stop struct {
	bun.BaseModel `bun:"table:stops,alias:stop"`

	ID       string `bun:"id,pk" json:"id"`
	RouteID  string `bun:"route_id,notnull" json:"route_id"`
	Name     string `bun:"name,notnull" json:"name"`
	Position int    `bun:"position,notnull" json:"position"`

	Route *Route `bun:"rel:belongs-to,join:route_id=id" json:"-"`
}

type Bus struct {
	bun.BaseModel `bun:"table:buses,alias:bus"`

	ID       string `bun:"id,pk" json:"id"`
	Plate    string `bun:"plate,unique,notnull" json:"plate"`
	Capacity int    `bun:"capacity,notnull" json:"capacity"`
}

// Seat is static per-bus inventory, independent of any trip.
type Seat struct {
	bun.BaseModel `bun:"table:seats,alias:seat"`

	ID        string `bun:"id,pk" json:"id"`
	BusID     string `bun:"bus_id,notnull" json:"bus_id"`
	Number    string `bun:"number,notnull" json:"number"`
	SeatClass string `bun:"seat_class,notnull" json:"seat_class"`
}

// FareRule prices a segment of a route. Lookups fall back to a default
// price when no rule matches.
type FareRule struct {
	bun.BaseModel `bun:"table:fare_rules,alias:fare_rule"`

	ID           string  `bun:"id,pk" json:"id"`
	RouteID      string  `bun:"route_id,notnull" json:"route_id"`
	FromPosition int     `bun:"from_position,notnull" json:"from_position"`
	ToPosition   int     `bun:"to_position,notnull" json:"to_position"`
	BasePrice    float64 `bun:"base_price,notnull" json:"base_price"`
}
