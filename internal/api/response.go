package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"sportspot/internal/domain"
	"sportspot/internal/models"

	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

type dataEnvelope struct {
	OK   bool        `json:"ok"`
	Data interface{} `json:"data"`
}

type errorBody struct {
	Kind      domain.Kind       `json:"kind"`
	Message   string            `json:"message"`
	Field     string            `json:"field,omitempty"`
	Retryable bool              `json:"retryable,omitempty"`
	Conflicts []*models.Booking `json:"conflictingBookings,omitempty"`
}

type errorEnvelope struct {
	OK    bool      `json:"ok"`
	Error errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeData(w http.ResponseWriter, statusCode int, data any) {
	writeJSON(w, statusCode, dataEnvelope{OK: true, Data: data})
}

// writeError renders err in the error envelope. Errors that are not
// *domain.Error are reported as infrastructure with a generic message.
func writeError(w http.ResponseWriter, logger *zerolog.Logger, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		logger.Error().Err(err).Msg("Unclassified error")
		de = domain.Infrastructure("internal error, please retry", err)
	}

	writeJSON(w, domain.HTTPStatus(de.Kind), errorEnvelope{Error: errorBody{
		Kind:      de.Kind,
		Message:   de.Message,
		Field:     de.Field,
		Retryable: de.Retryable(),
		Conflicts: de.Conflicts,
	}})
}

type message struct {
	Message string `json:"message"`
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.Validation("body", "request body is required")
		}
		return domain.Validation("body", "invalid JSON body")
	}
	return nil
}
