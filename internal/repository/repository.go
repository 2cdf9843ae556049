// Package repository defines the storage interfaces the service layer
// programs against. Concrete implementations live in subpackages (sqlite).
package repository

import (
	"context"

	"github.com/sakif/restaurant-directory/internal/model"
)

// PageOptions selects one page of a listing.
//
// Page is 1-indexed: the result is the slice
// [(Page-1)*PerPage, Page*PerPage) of the full, sorted result set. Sorting
// happens BEFORE slicing so pages are stable and reproducible across calls.
type PageOptions struct {
	Page    int
	PerPage int
	Borough string // optional exact-match filter; "" means unfiltered
}

// Filters narrows an unpaginated restaurant query. Both fields are optional
// and combined with logical AND; zero values mean "no filter".
type Filters struct {
	Cuisine string
	Borough string
}

// RestaurantRepository is the query contract over restaurant records.
//
// Error-kind discipline (see internal/apperror): implementations return
// ErrInvalidID for malformed identifiers, ErrNotFound for well-formed ids
// with no matching record, and plain wrapped errors for infrastructure
// failures. Callers branch with errors.Is — never on error strings.
type RestaurantRepository interface {
	Create(ctx context.Context, r *model.Restaurant) error
	GetByID(ctx context.Context, id string) (*model.Restaurant, error)
	ListPage(ctx context.Context, opts PageOptions) ([]model.Restaurant, error)
	ListByFilters(ctx context.Context, f Filters) ([]model.Restaurant, error)
	Update(ctx context.Context, r *model.Restaurant) error
	// Delete reports whether a record was removed. A missing record is
	// (false, nil), not an error.
	Delete(ctx context.Context, id string) (bool, error)
}

// UserRepository is the credential store contract.
type UserRepository interface {
	// Create persists a new user. Returns ErrConflict if the username is
	// already taken — the signup flow renders a specific message for that.
	Create(ctx context.Context, user *model.User) error
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}
