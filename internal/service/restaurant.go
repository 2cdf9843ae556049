// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// The service takes a repository.RestaurantRepository (interface), NOT a
// *sqlite.DB. Tests pass a fake; swapping SQLite for Postgres is a one-line
// change in server.go; and this package never imports database code.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/restaurant-directory/internal/apperror"
	"github.com/sakif/restaurant-directory/internal/model"
	"github.com/sakif/restaurant-directory/internal/repository"
)

// Pagination bounds. The clamp stops a caller from requesting the entire
// directory in one page.
const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// RestaurantPartial is a partial update: only non-nil fields are applied.
//
// WHY POINTER FIELDS?
// JSON can't distinguish `"name": ""` from an absent "name" when decoding
// into plain strings — both land as "". With *string, an absent field stays
// nil and an explicit empty string arrives as a pointer to "". That is
// exactly the merge contract: fields omitted are left untouched, fields
// supplied (even to clear them) are written.
type RestaurantPartial struct {
	RestaurantID *string        `json:"restaurantId"`
	Name         *string        `json:"name"`
	Borough      *string        `json:"borough"`
	Cuisine      *string        `json:"cuisine"`
	Address      *model.Address `json:"address"`
	Grades       *[]model.Grade `json:"grades"`
}

// RestaurantService handles business logic for the restaurant directory.
type RestaurantService struct {
	repo   repository.RestaurantRepository
	logger *slog.Logger
}

// NewRestaurantService creates a RestaurantService.
// The caller decides WHICH repository implementation to inject (SQLite in
// production, a fake in tests).
func NewRestaurantService(repo repository.RestaurantRepository, logger *slog.Logger) *RestaurantService {
	return &RestaurantService{
		repo:   repo,
		logger: logger,
	}
}

// Create validates and saves a new restaurant.
//
// Name, cuisine, borough, and the external restaurantId are all required
// and non-empty — records without them are useless to every query path.
// The repository assigns the internal id and timestamps.
func (s *RestaurantService) Create(ctx context.Context, r *model.Restaurant) (*model.Restaurant, error) {
	r.Name = strings.TrimSpace(r.Name)
	r.Borough = strings.TrimSpace(r.Borough)
	r.Cuisine = strings.TrimSpace(r.Cuisine)
	r.RestaurantID = strings.TrimSpace(r.RestaurantID)

	switch {
	case r.Name == "":
		return nil, apperror.ValidationFailed("name", "restaurant name is required")
	case r.Cuisine == "":
		return nil, apperror.ValidationFailed("cuisine", "cuisine is required")
	case r.Borough == "":
		return nil, apperror.ValidationFailed("borough", "borough is required")
	case r.RestaurantID == "":
		return nil, apperror.ValidationFailed("restaurantId", "restaurantId is required")
	}

	if err := s.repo.Create(ctx, r); err != nil {
		s.logger.Error("failed to create restaurant",
			slog.String("name", r.Name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating restaurant: %w", err)
	}

	s.logger.Info("restaurant created",
		slog.String("id", r.ID),
		slog.String("restaurantId", r.RestaurantID),
		slog.String("name", r.Name),
	)

	return r, nil
}

// GetByID retrieves a restaurant by its internal id.
// Propagates the repository's ErrInvalidID/ErrNotFound unchanged — they are
// already proper apperrors with renderable messages.
func (s *RestaurantService) GetByID(ctx context.Context, id string) (*model.Restaurant, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperror.ValidationFailed("id", "restaurant id is required")
	}
	return s.repo.GetByID(ctx, id)
}

// ListPage returns one page of the optionally borough-filtered directory,
// sorted by restaurantId ascending.
//
// page is 1-indexed; anything below 1 is a caller error (the handler maps
// it to 400 before we get here, but the service guards anyway). perPage is
// clamped to [1, MaxPerPage], defaulting to DefaultPerPage.
func (s *RestaurantService) ListPage(ctx context.Context, page, perPage int, borough string) ([]model.Restaurant, error) {
	if page < 1 {
		return nil, apperror.ValidationFailed("page", "page must be 1 or greater")
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	restaurants, err := s.repo.ListPage(ctx, repository.PageOptions{
		Page:    page,
		PerPage: perPage,
		Borough: strings.TrimSpace(borough),
	})
	if err != nil {
		s.logger.Error("failed to list restaurants", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing restaurants: %w", err)
	}

	return restaurants, nil
}

// Search returns the unpaginated set of restaurants matching the optional
// cuisine/borough filters (ANDed). Empty filters return the whole directory.
func (s *RestaurantService) Search(ctx context.Context, cuisine, borough string) ([]model.Restaurant, error) {
	restaurants, err := s.repo.ListByFilters(ctx, repository.Filters{
		Cuisine: strings.TrimSpace(cuisine),
		Borough: strings.TrimSpace(borough),
	})
	if err != nil {
		s.logger.Error("failed to search restaurants", slog.String("error", err.Error()))
		return nil, fmt.Errorf("searching restaurants: %w", err)
	}

	return restaurants, nil
}

// Update merge-updates a restaurant.
//
// STRATEGY: "Fetch then merge then save"
//  1. Fetch the existing record (ErrInvalidID / ErrNotFound surface here)
//  2. Apply ONLY the fields present in the partial — nil pointers mean
//     "leave untouched"; an empty partial is a no-op apart from updated_at
//  3. Validate the merged record still has its required fields
//  4. Write the full row back
func (s *RestaurantService) Update(ctx context.Context, id string, partial RestaurantPartial) (*model.Restaurant, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperror.ValidationFailed("id", "restaurant id is required")
	}

	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if partial.RestaurantID != nil {
		r.RestaurantID = strings.TrimSpace(*partial.RestaurantID)
	}
	if partial.Name != nil {
		r.Name = strings.TrimSpace(*partial.Name)
	}
	if partial.Borough != nil {
		r.Borough = strings.TrimSpace(*partial.Borough)
	}
	if partial.Cuisine != nil {
		r.Cuisine = strings.TrimSpace(*partial.Cuisine)
	}
	if partial.Address != nil {
		r.Address = *partial.Address
	}
	if partial.Grades != nil {
		r.Grades = *partial.Grades
	}

	// The merged record must still satisfy the create-time invariants —
	// a partial can't blank out a required field.
	switch {
	case r.Name == "":
		return nil, apperror.ValidationFailed("name", "restaurant name is required")
	case r.Cuisine == "":
		return nil, apperror.ValidationFailed("cuisine", "cuisine is required")
	case r.Borough == "":
		return nil, apperror.ValidationFailed("borough", "borough is required")
	case r.RestaurantID == "":
		return nil, apperror.ValidationFailed("restaurantId", "restaurantId is required")
	}

	if err := s.repo.Update(ctx, r); err != nil {
		s.logger.Error("failed to update restaurant",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("restaurant updated",
		slog.String("id", r.ID),
		slog.String("name", r.Name),
	)

	return r, nil
}

// Delete removes a restaurant by id and reports whether a record was
// removed. A miss is (false, nil) — the repository contract, passed through.
func (s *RestaurantService) Delete(ctx context.Context, id string) (bool, error) {
	if strings.TrimSpace(id) == "" {
		return false, apperror.ValidationFailed("id", "restaurant id is required")
	}

	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}

	if removed {
		s.logger.Info("restaurant deleted", slog.String("id", id))
	}
	return removed, nil
}
