package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"famledger/internal/core"
	"famledger/internal/services"
)

// FamilyIDHeader carries the family scope on every API request. Auth is
// terminated upstream; the header is trusted as-is.
const FamilyIDHeader = "X-Family-ID"

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy onto HTTP status codes: validation
// failures are the caller's fault, missing records are 404, storage trouble
// surfaces as a bad gateway, and a held scheduler lease is a conflict.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrLeaseHeld):
		status = http.StatusConflict
	case errors.Is(err, core.ErrValidation), errors.Is(err, core.ErrRuleExhausted):
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrPersistence):
		status = http.StatusBadGateway
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

// familyID extracts the family scope from the request headers.
func familyID(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.Header.Get(FamilyIDHeader))
	if id == "" {
		return "", fmt.Errorf("%w: missing %s header", core.ErrValidation, FamilyIDHeader)
	}
	return id, nil
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", core.ErrValidation, err)
	}
	return nil
}

// parseDate parses a date string in YYYY-MM-DD format.
func parseDate(dateStr string) (core.Date, error) {
	parsedTime, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return core.Date{}, fmt.Errorf("%w: invalid date %q, want YYYY-MM-DD", core.ErrValidation, dateStr)
	}
	return core.Date{Time: parsedTime}, nil
}

func formatDate(d core.Date) string {
	if d.IsEmpty() {
		return ""
	}
	return d.Format("2006-01-02")
}

// parseAmount converts a decimal amount string to minor units.
func parseAmount(amountStr string) (int64, error) {
	minor, err := core.ParseDecimalToMinor(amountStr)
	if err != nil {
		return 0, err
	}
	return minor, nil
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
