package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	apperrors "talksy/errors"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// respondError maps domain sentinels onto HTTP statuses. Anything
// unmapped is a 500 with a generic body so internals never leak to the
// client.
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrUserAlreadyExists):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, apperrors.ErrUserNotFound),
		errors.Is(err, apperrors.ErrGroupNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		status, message = http.StatusUnauthorized, err.Error()
	case errors.Is(err, apperrors.ErrNotGroupMember),
		errors.Is(err, apperrors.ErrNotGroupAdmin),
		errors.Is(err, apperrors.ErrCannotRemoveAdmin):
		status, message = http.StatusForbidden, err.Error()
	case errors.Is(err, apperrors.ErrInvalidPassword),
		errors.Is(err, apperrors.ErrPasswordMismatch),
		errors.Is(err, apperrors.ErrEmptyMessage),
		errors.Is(err, apperrors.ErrUnsupportedImage),
		errors.Is(err, apperrors.ErrGroupNameRequired):
		status, message = http.StatusBadRequest, err.Error()
	}

	respondJSON(w, status, errorBody{Error: message})
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return false
	}
	return true
}
