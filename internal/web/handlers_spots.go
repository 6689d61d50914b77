package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hokuro/spotd/internal/spot"
)

// ListResponse is the JSON body for spot listings.
type ListResponse struct {
	Spots []spot.Spot `json:"spots"`
	Total int         `json:"total"`
}

// handleListSpots serves the public listing with optional prefecture and
// spot-type filters plus pagination. Responses are cached per normalized
// query until the next admin write.
func (s *Server) handleListSpots(w http.ResponseWriter, r *http.Request) {
	filter := spot.ListFilter{
		Prefecture: r.URL.Query().Get("prefecture"),
		Limit:      parseIntParam(r, "limit", 50),
		Offset:     parseIntParam(r, "offset", 0),
	}
	if raw := r.URL.Query().Get("type"); raw != "" {
		t, ok := spot.ParseType(raw)
		if !ok {
			respondError(w, r, fmt.Errorf("unknown spot type %q", raw), http.StatusBadRequest)
			return
		}
		filter.SpotType = t
	}

	key := fmt.Sprintf("prefecture=%s&type=%s&limit=%d&offset=%d",
		filter.Prefecture, filter.SpotType, filter.Limit, filter.Offset)

	if s.cfg.Cache.Enabled {
		if cached, ok := s.listCache.Get(key); ok {
			writeJSON(w, cached)
			return
		}
	}

	spots, total, err := s.repo.List(r.Context(), filter)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if spots == nil {
		spots = []spot.Spot{}
	}

	resp := ListResponse{Spots: spots, Total: total}
	if s.cfg.Cache.Enabled {
		s.listCache.Set(key, resp)
	}
	writeJSON(w, resp)
}

// handleGetSpot serves one spot by ID.
func (s *Server) handleGetSpot(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "spotID"))
	if err != nil {
		respondError(w, r, fmt.Errorf("invalid spot ID"), http.StatusBadRequest)
		return
	}

	sp, err := s.repo.Get(r.Context(), id)
	if err == spot.ErrNotFound {
		respondError(w, r, err, http.StatusNotFound)
		return
	}
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, sp)
}

// createRequest is the body for admin create/update.
type createRequest struct {
	spot.Candidate
}

// handleCreateSpot inserts a single spot. The same duplicate rule used by
// the bulk import applies: a conflicting neighbor rejects the create with
// 409 and names the existing spot.
func (s *Server) handleCreateSpot(w http.ResponseWriter, r *http.Request) {
	cand, ok := s.decodeCandidate(w, r)
	if !ok {
		return
	}

	match, err := s.deduper.Check(r.Context(), cand)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if match != nil {
		respondError(w, r,
			fmt.Errorf("duplicate of existing spot %q (about %.0fm away)", match.Spot.Name, match.DistanceM),
			http.StatusConflict)
		return
	}

	created, err := s.repo.Insert(r.Context(), cand)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	s.listCache.Invalidate()
	writeJSONStatus(w, http.StatusCreated, created)
}

// handleUpdateSpot replaces an existing spot's fields.
func (s *Server) handleUpdateSpot(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "spotID"))
	if err != nil {
		respondError(w, r, fmt.Errorf("invalid spot ID"), http.StatusBadRequest)
		return
	}

	cand, ok := s.decodeCandidate(w, r)
	if !ok {
		return
	}

	updated, err := s.repo.Update(r.Context(), id, cand)
	if err == spot.ErrNotFound {
		respondError(w, r, err, http.StatusNotFound)
		return
	}
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	s.listCache.Invalidate()
	writeJSON(w, updated)
}

// handleDeleteSpot removes a spot.
func (s *Server) handleDeleteSpot(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "spotID"))
	if err != nil {
		respondError(w, r, fmt.Errorf("invalid spot ID"), http.StatusBadRequest)
		return
	}

	err = s.repo.Delete(r.Context(), id)
	if err == spot.ErrNotFound {
		respondError(w, r, err, http.StatusNotFound)
		return
	}
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	s.listCache.Invalidate()
	w.WriteHeader(http.StatusNoContent)
}

// decodeCandidate reads and validates a candidate from the request body.
func (s *Server) decodeCandidate(w http.ResponseWriter, r *http.Request) (*spot.Candidate, bool) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, fmt.Errorf("invalid JSON body: %w", err), http.StatusBadRequest)
		return nil, false
	}
	cand := req.Candidate

	if cand.Name == "" {
		respondError(w, r, fmt.Errorf("name is required"), http.StatusBadRequest)
		return nil, false
	}
	if lat := cand.Lat(); lat < -90 || lat > 90 {
		respondError(w, r, fmt.Errorf("latitude out of range"), http.StatusBadRequest)
		return nil, false
	}
	if lng := cand.Lng(); lng < -180 || lng > 180 {
		respondError(w, r, fmt.Errorf("longitude out of range"), http.StatusBadRequest)
		return nil, false
	}
	if _, ok := spot.ParseType(string(cand.SpotType)); !ok {
		respondError(w, r, fmt.Errorf("unknown spot type %q", cand.SpotType), http.StatusBadRequest)
		return nil, false
	}
	return &cand, true
}

// parseIntParam reads a non-negative integer query parameter with a default.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return defaultVal
	}
	return v
}
