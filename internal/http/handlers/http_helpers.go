package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/stockmanager/backend/internal/auth"
	"github.com/stockmanager/backend/internal/ledger"
	"github.com/stockmanager/backend/internal/repo"
)

// GetRoleFromContext reads the caller's role from the bearer token.
func GetRoleFromContext(r *http.Request) (string, error) {
	_, claims, err := auth.TokenClaims(r.Header.Get("Authorization"))
	if err != nil {
		return "", err
	}
	if role, ok := claims["role"].(string); ok {
		return role, nil
	}
	return "", nil
}

// GetUserIDFromContext reads the caller's user id from the bearer token.
func GetUserIDFromContext(r *http.Request) (int, error) {
	_, claims, err := auth.TokenClaims(r.Header.Get("Authorization"))
	if err != nil {
		return 0, err
	}
	if sub, ok := claims["sub"].(float64); ok {
		return int(sub), nil
	}
	return 0, nil
}

// GetUserNameFromContext reads the caller's display name from the bearer token.
func GetUserNameFromContext(r *http.Request) (string, error) {
	_, claims, err := auth.TokenClaims(r.Header.Get("Authorization"))
	if err != nil {
		return "", err
	}
	if name, ok := claims["name"].(string); ok {
		return name, nil
	}
	return "", nil
}

// readJSON tries to read the body of a request and converts it into JSON
func readJSON(w http.ResponseWriter, r *http.Request, data any) error {
	maxBytes := 1048576 // one megabyte
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	err := dec.Decode(data)
	if err != nil {
		return fmt.Errorf("failed to read JSON: %w", err)
	}

	err = dec.Decode(&struct{}{})
	if err != io.EOF {
		return errors.New("body must have only a single json value")
	}

	return nil
}

// writeJSON takes a response status code and arbitrary data and writes a json response to the client
func writeJSON(w http.ResponseWriter, status int, data any, headers ...http.Header) error {
	out, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if len(headers) > 0 {
		for key, value := range headers[0] {
			w.Header()[key] = value
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(out)
	if err != nil {
		return fmt.Errorf("failed to write to response: %w", err)
	}

	return nil
}

// ledgerError maps a stock ledger error to its HTTP status and message.
// Unknown errors come back as 500.
func ledgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrInvalidMovementType),
		errors.Is(err, ledger.ErrInvalidQuantity),
		errors.Is(err, ledger.ErrMissingFields),
		errors.Is(err, ledger.ErrSupplierRequired),
		errors.Is(err, ledger.ErrSupplierMismatch):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, repo.ErrProductNotFound),
		errors.Is(err, repo.ErrSupplierNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, repo.ErrInvalidQuantityChange):
		http.Error(w, "insufficient stock", http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
