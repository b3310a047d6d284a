package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/lorandme/restaurant-api/internal/domain/auth"
	"github.com/lorandme/restaurant-api/internal/domain/catalog"
	"github.com/lorandme/restaurant-api/internal/domain/order"
	"github.com/lorandme/restaurant-api/internal/storage/postgres"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: code, Message: msg})
}

// writeDomainError maps a domain error onto an HTTP status. Anything not in
// the taxonomy is a 500 with the detail kept out of the response body.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var validation *auth.ValidationError

	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", validation.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid_credentials", auth.ErrInvalidCredentials.Error())
	case errors.Is(err, auth.ErrEmailTaken):
		writeError(w, http.StatusConflict, "email_taken", auth.ErrEmailTaken.Error())
	case errors.Is(err, order.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "unauthenticated", order.ErrUnauthenticated.Error())
	case errors.Is(err, catalog.ErrNameRequired):
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", catalog.ErrNameRequired.Error())
	case errors.Is(err, catalog.ErrCategoryInUse):
		writeError(w, http.StatusConflict, "category_in_use", catalog.ErrCategoryInUse.Error())
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, auth.ErrUserNotFound),
		errors.Is(err, postgres.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "not_found", "")
	default:
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "")
	}
}

// pathID parses the {id} route parameter. ok is false after an error
// response has already been written.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_id", "path id must be a positive integer")
		return 0, false
	}
	return id, true
}

// decodeJSON parses the request body into v. ok is false after an error
// response has already been written.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}
