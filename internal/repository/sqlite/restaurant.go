package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/restaurant-directory/internal/apperror"
	"github.com/sakif/restaurant-directory/internal/model"
	"github.com/sakif/restaurant-directory/internal/repository"
)

// COMPILE-TIME INTERFACE CHECK:
// `var _ X = (*Y)(nil)` assigns a nil *Y to a variable of interface type X.
// If *Y stops implementing X, the compiler errors here immediately instead
// of at some distant call site.
var _ repository.RestaurantRepository = (*DB)(nil)

// parseID validates that id is a well-formed xid.
//
// MALFORMED vs MISSING:
// A malformed id can never match any record, but it is a DIFFERENT error
// kind than "no record found" — the first is a client input error
// (ErrInvalidID → 400), the second a legitimate miss (ErrNotFound → 404).
// Checking the format up front keeps the distinction a first-class contract
// instead of something inferred from a failed query.
func parseID(id string) error {
	if _, err := xid.FromString(id); err != nil {
		return apperror.InvalidID(id)
	}
	return nil
}

// restaurantColumns is the SELECT list every restaurant query shares.
// Scan order in scanRestaurant must match this exactly.
const restaurantColumns = `id, restaurant_id, name, borough, cuisine,
	building, street, zipcode, longitude, latitude, grades,
	created_at, updated_at`

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanRestaurant reads one row into a model.Restaurant, decoding the grades
// JSON column back into the ordered history slice.
func scanRestaurant(s scanner) (*model.Restaurant, error) {
	var r model.Restaurant
	var gradesJSON string

	err := s.Scan(
		&r.ID,
		&r.RestaurantID,
		&r.Name,
		&r.Borough,
		&r.Cuisine,
		&r.Address.Building,
		&r.Address.Street,
		&r.Address.Zipcode,
		&r.Address.Coord[0],
		&r.Address.Coord[1],
		&gradesJSON,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(gradesJSON), &r.Grades); err != nil {
		return nil, fmt.Errorf("decoding grades for restaurant %s: %w", r.ID, err)
	}

	return &r, nil
}

// encodeGrades serializes the grades history for storage. A nil slice
// becomes "[]" so the column never holds SQL NULL or the JSON literal null.
func encodeGrades(grades []model.Grade) (string, error) {
	if grades == nil {
		return "[]", nil
	}
	b, err := json.Marshal(grades)
	if err != nil {
		return "", fmt.Errorf("encoding grades: %w", err)
	}
	return string(b), nil
}

// Create inserts a new restaurant record.
//
// The store assigns the identity: a fresh xid and both timestamps are
// written back into the caller's struct (pointer receiver — the caller sees
// the stored record after this returns).
//
// PARAMETERIZED QUERIES (the ? placeholders):
// NEVER build SQL strings with fmt.Sprintf or string concatenation —
// that's how SQL injection happens. The driver escapes each ? argument.
func (db *DB) Create(ctx context.Context, r *model.Restaurant) error {
	r.ID = xid.New().String()

	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now

	grades, err := encodeGrades(r.Grades)
	if err != nil {
		return fmt.Errorf("sqlite: creating restaurant: %w", err)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO restaurants (id, restaurant_id, name, borough, cuisine,
		 building, street, zipcode, longitude, latitude, grades,
		 created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID,
		r.RestaurantID,
		r.Name,
		r.Borough,
		r.Cuisine,
		r.Address.Building,
		r.Address.Street,
		r.Address.Zipcode,
		r.Address.Coord[0],
		r.Address.Coord[1],
		grades,
		r.CreatedAt,
		r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating restaurant: %w", err)
	}

	return nil
}

// GetByID retrieves a single restaurant by its internal id.
//
// Returns apperror.ErrInvalidID for a malformed id (checked before the
// store is touched) and apperror.ErrNotFound when no row matches.
func (db *DB) GetByID(ctx context.Context, id string) (*model.Restaurant, error) {
	if err := parseID(id); err != nil {
		return nil, err
	}

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+restaurantColumns+` FROM restaurants WHERE id = ?`, id)

	r, err := scanRestaurant(row)
	if err != nil {
		// sql.ErrNoRows is a sentinel — database/sql doesn't wrap it,
		// so == is the correct check here.
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("restaurant", id)
		}
		return nil, fmt.Errorf("sqlite: getting restaurant %s: %w", id, err)
	}

	return r, nil
}

// ListPage returns one page of the (optionally borough-filtered) directory.
//
// ORDER BEFORE SLICE:
// The full result set is sorted by restaurant_id ascending BEFORE the
// LIMIT/OFFSET is applied — that is what makes page N stable and
// reproducible across calls. restaurant_id is not unique, so the internal
// id breaks ties; without a total order, rows on page boundaries could
// appear on two pages or on none.
//
// A page beyond the result set returns an empty slice, not an error.
func (db *DB) ListPage(ctx context.Context, opts repository.PageOptions) ([]model.Restaurant, error) {
	page := opts.Page
	if page < 1 {
		page = 1
	}
	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	offset := (page - 1) * perPage

	query := `SELECT ` + restaurantColumns + ` FROM restaurants`
	args := []any{}
	if opts.Borough != "" {
		query += ` WHERE borough = ?`
		args = append(args, opts.Borough)
	}
	query += ` ORDER BY restaurant_id ASC, id ASC LIMIT ? OFFSET ?`
	args = append(args, perPage, offset)

	return db.queryRestaurants(ctx, query, args...)
}

// ListByFilters returns the unpaginated set of restaurants matching the
// given filters. Both filters are optional and ANDed; no filters returns
// the whole collection. Sorted by restaurant_id for deterministic output.
func (db *DB) ListByFilters(ctx context.Context, f repository.Filters) ([]model.Restaurant, error) {
	query := `SELECT ` + restaurantColumns + ` FROM restaurants`
	args := []any{}
	where := ""

	if f.Cuisine != "" {
		where = ` WHERE cuisine = ?`
		args = append(args, f.Cuisine)
	}
	if f.Borough != "" {
		if where == "" {
			where = ` WHERE borough = ?`
		} else {
			where += ` AND borough = ?`
		}
		args = append(args, f.Borough)
	}

	query += where + ` ORDER BY restaurant_id ASC, id ASC`

	return db.queryRestaurants(ctx, query, args...)
}

// queryRestaurants runs a multi-row restaurant SELECT and scans the results.
//
// defer rows.Close() is not optional: sql.Rows holds a pool connection, and
// a leaked one is gone for the life of the process.
func (db *DB) queryRestaurants(ctx context.Context, query string, args ...any) ([]model.Restaurant, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing restaurants: %w", err)
	}
	defer rows.Close()

	restaurants := []model.Restaurant{}
	for rows.Next() {
		r, err := scanRestaurant(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning restaurant row: %w", err)
		}
		restaurants = append(restaurants, *r)
	}

	// rows.Err() catches failures that happened DURING iteration
	// (e.g. the connection dropping mid-scan).
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating restaurants: %w", err)
	}

	return restaurants, nil
}

// Update writes a full restaurant row.
//
// Merge semantics live in the service layer (fetch, apply partial, save) —
// by the time Update runs, r is the complete post-merge record. id and
// created_at are immutable; updated_at is stamped here.
func (db *DB) Update(ctx context.Context, r *model.Restaurant) error {
	if err := parseID(r.ID); err != nil {
		return err
	}

	r.UpdatedAt = time.Now()

	grades, err := encodeGrades(r.Grades)
	if err != nil {
		return fmt.Errorf("sqlite: updating restaurant %s: %w", r.ID, err)
	}

	result, err := db.conn.ExecContext(ctx,
		`UPDATE restaurants
		 SET restaurant_id = ?, name = ?, borough = ?, cuisine = ?,
		     building = ?, street = ?, zipcode = ?, longitude = ?, latitude = ?,
		     grades = ?, updated_at = ?
		 WHERE id = ?`,
		r.RestaurantID,
		r.Name,
		r.Borough,
		r.Cuisine,
		r.Address.Building,
		r.Address.Street,
		r.Address.Zipcode,
		r.Address.Coord[0],
		r.Address.Coord[1],
		grades,
		r.UpdatedAt,
		r.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating restaurant %s: %w", r.ID, err)
	}

	// RowsAffected distinguishes "updated" from "no such row" without a
	// second query.
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("restaurant", r.ID)
	}

	return nil
}

// Delete removes a restaurant by id and reports whether a row was removed.
//
// A well-formed id that matches nothing is (false, nil) — NOT an error.
// Only a malformed id errors (ErrInvalidID).
func (db *DB) Delete(ctx context.Context, id string) (bool, error) {
	if err := parseID(id); err != nil {
		return false, err
	}

	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM restaurants WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("sqlite: deleting restaurant %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}
