// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// Address is the structured street address of a restaurant.
//
// Coord holds [longitude, latitude] in that order — the same order the
// upstream inspection dataset uses, so imported records round-trip cleanly.
type Address struct {
	Building string     `json:"building"`
	Street   string     `json:"street"`
	Zipcode  string     `json:"zipcode"`
	Coord    [2]float64 `json:"coord"` // [longitude, latitude]
}

// Grade is one entry in a restaurant's inspection history.
type Grade struct {
	Date  time.Time `json:"date"`
	Grade string    `json:"grade"`
	Score int       `json:"score"`
}

// Restaurant represents one restaurant record in the directory.
//
// TWO IDENTIFIERS:
//   - ID is OUR primary key (an xid), assigned by the store on create.
//   - RestaurantID is the external business identifier from the source
//     dataset (e.g. "40356018"). It is a string, it is NOT guaranteed unique,
//     and it is the field paginated listings are sorted by.
//
// Grades is an append-style history: insertion order is meaningful and must
// be preserved through storage and serialization.
type Restaurant struct {
	ID           string    `json:"id"`
	RestaurantID string    `json:"restaurantId"`
	Name         string    `json:"name"`
	Borough      string    `json:"borough"`
	Cuisine      string    `json:"cuisine"`
	Address      Address   `json:"address"`
	Grades       []Grade   `json:"grades"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
