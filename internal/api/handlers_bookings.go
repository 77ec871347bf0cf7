package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"sportspot/internal/domain"
	"sportspot/internal/export"
	"sportspot/internal/models"

	"github.com/gorilla/mux"
)

// defaultExportDays is the export window when only from is given.
const defaultExportDays = 30

func (s *HTTPServer) handleCheckAvailability(w http.ResponseWriter, r *http.Request) {
	var req models.AvailabilityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	availability, err := s.bookings.CheckAvailability(r.Context(), req)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeData(w, http.StatusOK, availability)
}

func (s *HTTPServer) handleListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := s.bookings.ListByUser(r.Context(), identityFrom(r.Context()), r.URL.Query().Get("userId"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeData(w, http.StatusOK, bookings)
}

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req models.BookingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	booking, err := s.bookings.Create(r.Context(), identityFrom(r.Context()), req)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeData(w, http.StatusCreated, booking)
}

func (s *HTTPServer) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	if err := s.bookings.Cancel(r.Context(), identityFrom(r.Context()), mux.Vars(r)["id"]); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeData(w, http.StatusOK, message{Message: "Booking cancelled"})
}

func parseDateParam(name, raw string, fallback time.Time) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	date, err := models.ParseDate(raw)
	if err != nil {
		return time.Time{}, domain.Validation(name, err.Error())
	}
	return date, nil
}

func (s *HTTPServer) handleExportBookings(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	query := r.URL.Query()
	from, err := parseDateParam("from", query.Get("from"), today)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	to, err := parseDateParam("to", query.Get("to"), from.AddDate(0, 0, defaultExportDays))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	bookings, err := s.bookings.BookingsInRange(r.Context(), from, to)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteBookings(&buf, from, to, bookings); err != nil {
		s.logger.Error().Err(err).Msg("Failed to render bookings export")
		writeError(w, s.logger, domain.Infrastructure("could not build export", err))
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(from, to)))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
