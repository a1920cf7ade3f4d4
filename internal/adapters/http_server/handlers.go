// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"tour_dataset/internal/app"
	"tour_dataset/internal/domain"
)

type Handlers struct{ Q *app.QueryService }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// entityPaths maps URL collection names to entity types.
var entityPaths = map[string]string{
	"airports":      domain.EntityAirport,
	"flight_routes": domain.EntityFlightRoute,
	"bus_stops":     domain.EntityBusStop,
	"bus_routes":    domain.EntityBusRoute,
	"countries":     domain.EntityCountry,
	"cities":        domain.EntityCity,
	"meals":         domain.EntityMeal,
	"hotels":        domain.EntityHotel,
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/entities/{type}", h.listEntities)
	s.mux.Get("/v1/entities/{type}/{id}", h.getEntity)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeJSON answers 304 when the client already holds this version.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write body")
	}
}

func entityType(w http.ResponseWriter, r *http.Request) (string, bool) {
	t, ok := entityPaths[chi.URLParam(r, "type")]
	if !ok {
		writeProblem(w, http.StatusNotFound, "Unknown entity type", "type must be one of airports, flight_routes, bus_stops, bus_routes, countries, cities, meals, hotels")
	}
	return t, ok
}

func (h *Handlers) getEntity(w http.ResponseWriter, r *http.Request) {
	t, ok := entityType(w, r)
	if !ok {
		return
	}
	snap, err := h.Q.GetSnapshot(r.Context(), t, chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Not Found", "entity not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("type", t).Msg("get snapshot failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	writeJSON(w, r, snap)
}

func (h *Handlers) listEntities(w http.ResponseWriter, r *http.Request) {
	t, ok := entityType(w, r)
	if !ok {
		return
	}

	limit := 50
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 200 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 200")
			return
		}
		limit = l
	}
	var after int64
	if as := r.URL.Query().Get("after"); as != "" {
		a, err := strconv.ParseInt(as, 10, 64)
		if err != nil || a < 0 {
			writeProblem(w, http.StatusBadRequest, "Invalid cursor", "after must be a non-negative event id")
			return
		}
		after = a
	}

	// Oldest first; aligns with the snapshots index on (entity_type, last_event_id)
	page, err := h.Q.ListSnapshots(r.Context(), domain.SnapshotQuery{EntityType: t, Limit: limit, AfterEventID: after})
	if err != nil {
		log.Error().Err(err).Str("type", t).Msg("list snapshots failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	writeJSON(w, r, page)
}
