package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fatihgnc/taskman-api/internal/api/middleware"
	"github.com/fatihgnc/taskman-api/internal/api/shared"
	"github.com/fatihgnc/taskman-api/internal/domain"
)

// Field whitelists for the PATCH endpoints. Any other key in the payload is
// rejected outright, before anything is decoded or persisted.
var (
	allowedUserUpdateFields = []string{"name", "email", "password", "age"}
	allowedTaskUpdateFields = []string{"description", "completed"}
)

// decodeStrict decodes the request body into v, rejecting payloads that
// carry keys outside the allowed set or values of the wrong type. The error
// wraps domain.ErrValidation so it maps to a 400.
func decodeStrict(r *http.Request, allowed []string, v interface{}) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return domain.NewValidationError("body", "could not be read", domain.ErrValidation)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return domain.NewValidationError("body", "is not a JSON object", domain.ErrValidation)
	}
	if len(raw) == 0 {
		return domain.NewValidationError("body", "contains no updatable fields", domain.ErrValidation)
	}

	for key := range raw {
		if !contains(allowed, key) {
			return domain.NewValidationError(key, "is not an updatable field", domain.ErrValidation)
		}
	}

	if err := json.Unmarshal(body, v); err != nil {
		return domain.NewValidationError("body",
			fmt.Sprintf("has a wrong type for one of %s", strings.Join(allowed, ", ")),
			domain.ErrValidation)
	}
	return nil
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// requireUser pulls the authenticated user out of the request context. A
// missing user means the auth middleware did not run; answer 401.
func requireUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user, ok := middleware.GetUser(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Please authenticate")
		return nil, false
	}
	return user, true
}

// requireSession additionally yields the exact token the request
// authenticated with, for the logout endpoints.
func requireSession(w http.ResponseWriter, r *http.Request) (*domain.User, string, bool) {
	user, ok := requireUser(w, r)
	if !ok {
		return nil, "", false
	}
	token, ok := middleware.GetToken(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Please authenticate")
		return nil, "", false
	}
	return user, token, true
}

// getPathUUID extracts and parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}

	return id, nil
}
