package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/nullable"

	"github.com/district-compass/school-search-api/internal/app/search"
	"github.com/district-compass/school-search-api/internal/app/sessions"
)

type errorBody struct {
	Code      string                            `json:"code"`
	Message   string                            `json:"message"`
	Details   nullable.Nullable[map[string]any] `json:"details,omitempty"`
	RequestID nullable.Nullable[string]         `json:"requestId,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code string, message string, details map[string]any) {
	var er errorResponse
	er.Error.Code = code
	er.Error.Message = message
	if details != nil {
		er.Error.Details = nullable.NewNullableWithValue(details)
	}
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		er.Error.RequestID = nullable.NewNullableWithValue(rid)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(er)
}

// writeAppError maps application-layer errors onto the HTTP error envelope.
func writeAppError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var ae *sessions.Error
	if errors.As(err, &ae) {
		writeError(w, r, ae.Status, ae.Code, ae.Message, ae.Details)
		return
	}

	switch {
	case errors.Is(err, search.ErrSessionClosed):
		writeError(w, r, http.StatusConflict, "SESSION_CLOSED", "The session has been closed.", nil)
	case errors.Is(err, search.ErrDistrictNotInResults):
		writeError(w, r, http.StatusUnprocessableEntity, "SELECTION_NOT_IN_RESULTS",
			"The district is not part of the current result set.", map[string]any{"field": "leaid"})
	case errors.Is(err, search.ErrSchoolNotInResults):
		writeError(w, r, http.StatusUnprocessableEntity, "SELECTION_NOT_IN_RESULTS",
			"The school is not part of the current result set.", map[string]any{"field": "ncessch"})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// Client went away; nothing sensible to write.
	default:
		log.Error("unhandled error", "err", err, "path", r.URL.Path)
		writeError(w, r, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
	}
}
