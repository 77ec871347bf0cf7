package api

import (
	"net/http"

	"sportspot/internal/models"

	"github.com/gorilla/mux"
)

func (s *HTTPServer) handleListVenues(w http.ResponseWriter, r *http.Request) {
	venues, err := s.venues.List(r.Context(), r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeData(w, http.StatusOK, venues)
}

func (s *HTTPServer) handleFeaturedVenues(w http.ResponseWriter, r *http.Request) {
	venues, err := s.venues.Featured(r.Context())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeData(w, http.StatusOK, venues)
}

func (s *HTTPServer) handleGetVenue(w http.ResponseWriter, r *http.Request) {
	venue, err := s.venues.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeData(w, http.StatusOK, venue)
}

func (s *HTTPServer) handleVenueAvailability(w http.ResponseWriter, r *http.Request) {
	availability, err := s.venues.Availability(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeData(w, http.StatusOK, availability)
}

func (s *HTTPServer) handleCreateVenue(w http.ResponseWriter, r *http.Request) {
	var venue models.Venue
	if err := decodeJSON(w, r, &venue); err != nil {
		writeError(w, s.logger, err)
		return
	}
	created, err := s.venues.Create(r.Context(), &venue)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeData(w, http.StatusCreated, created)
}

func (s *HTTPServer) handleUpdateVenue(w http.ResponseWriter, r *http.Request) {
	var venue models.Venue
	if err := decodeJSON(w, r, &venue); err != nil {
		writeError(w, s.logger, err)
		return
	}
	updated, err := s.venues.Update(r.Context(), mux.Vars(r)["id"], &venue)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeData(w, http.StatusOK, updated)
}

func (s *HTTPServer) handleDeleteVenue(w http.ResponseWriter, r *http.Request) {
	if err := s.venues.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeData(w, http.StatusOK, message{Message: "Venue deleted"})
}
