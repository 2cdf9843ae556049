package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/restaurant-directory/internal/apperror"
	"github.com/sakif/restaurant-directory/internal/model"
	"github.com/sakif/restaurant-directory/internal/service"
)

// RestaurantHandler serves the restaurant directory endpoints.
//
// Handlers stay thin on purpose: decode the request, call the service,
// encode the response. All business rules (validation, merge semantics,
// pagination clamping) live in the service layer so they're testable
// without HTTP.
type RestaurantHandler struct {
	svc    *service.RestaurantService
	logger *slog.Logger
}

func NewRestaurantHandler(svc *service.RestaurantService, logger *slog.Logger) *RestaurantHandler {
	return &RestaurantHandler{svc: svc, logger: logger}
}

// queryInt parses an optional integer query parameter. An absent parameter
// yields the fallback; a present-but-unparseable one is a client error.
func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.ValidationFailed(name, "must be an integer")
	}
	return n, nil
}

// HandleList returns one page of the directory.
//
// HTTP: GET /api/restaurants?page=1&perPage=20&borough=Bronx
//
// All three parameters are optional. A page past the end of the collection
// is a valid request — it answers 200 with an empty array, so clients can
// walk pages until one comes back empty.
func (h *RestaurantHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		writeError(w, err)
		return
	}
	perPage, err := queryInt(r, "perPage", service.DefaultPerPage)
	if err != nil {
		writeError(w, err)
		return
	}
	borough := r.URL.Query().Get("borough")

	restaurants, err := h.svc.ListPage(r.Context(), page, perPage, borough)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, restaurants)
}

// HandleSearch returns all restaurants matching the given filters.
//
// HTTP: GET /api/restaurants/search?cuisine=Thai&borough=Bronx
//
// Filters are ANDed; no filters returns the entire collection.
func (h *RestaurantHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	cuisine := r.URL.Query().Get("cuisine")
	borough := r.URL.Query().Get("borough")

	restaurants, err := h.svc.Search(r.Context(), cuisine, borough)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, restaurants)
}

// HandleGetByID returns a single restaurant.
//
// HTTP: GET /api/restaurants/{id}
//
// A malformed id is 400 (invalid_id); a well-formed id with no record
// is 404 (not_found). The two are different failures and the client
// should be able to tell them apart.
func (h *RestaurantHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	restaurant, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, restaurant)
}

// HandleCreate adds a restaurant to the directory.
//
// HTTP: POST /api/restaurants  (requires authentication)
//
// 201 with the stored record — including the assigned id and timestamps —
// on success.
func (h *RestaurantHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var restaurant model.Restaurant
	if err := json.NewDecoder(r.Body).Decode(&restaurant); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON"))
		return
	}

	created, err := h.svc.Create(r.Context(), &restaurant)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// HandleUpdate merges a partial update into an existing restaurant.
//
// HTTP: PUT /api/restaurants/{id}  (requires authentication)
//
// Only fields PRESENT in the body change — an absent field is left alone,
// which is why the body decodes into RestaurantPartial (pointer fields)
// rather than a bare Restaurant, where "absent" and "zero value" would be
// indistinguishable.
func (h *RestaurantHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var partial service.RestaurantPartial
	if err := json.NewDecoder(r.Body).Decode(&partial); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON"))
		return
	}

	updated, err := h.svc.Update(r.Context(), id, partial)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// HandleDelete removes a restaurant.
//
// HTTP: DELETE /api/restaurants/{id}  (requires authentication)
//
// Always 200 for a well-formed id: the body reports whether a record was
// actually removed. Deleting something already gone is not an error —
// the world is already in the state the caller asked for.
func (h *RestaurantHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	deleted, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}
