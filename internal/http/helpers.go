package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"financas/internal/core"
	"financas/internal/storage"
)

// userHeader carries the authenticated user. Authentication itself is
// handled upstream; the API trusts the header.
const userHeader = "X-User-ID"

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// writeError maps domain and storage errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, core.ErrNotOwner):
		// Not-owner reads as 404 so the API does not leak which IDs exist.
		status = http.StatusNotFound
	case errors.Is(err, storage.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidArgument),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrUnknownNature),
		errors.Is(err, core.ErrEmptyName):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeBadRequest(w http.ResponseWriter, format string, args ...any) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf(format, args...)})
}

// requireUser extracts the user ID header. Zero and garbage are
// rejected.
func requireUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := strings.TrimSpace(r.Header.Get(userHeader))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing or invalid " + userHeader + " header"})
		return 0, false
	}
	return id, true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		writeBadRequest(w, "invalid %s", name)
		return 0, false
	}
	return id, true
}

// queryMonth reads ?month=YYYY-MM, defaulting to the current month.
func queryMonth(w http.ResponseWriter, r *http.Request) (core.Month, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("month"))
	if raw == "" {
		return core.MonthOf(time.Now()), true
	}
	m, err := core.ParseMonth(raw)
	if err != nil {
		writeBadRequest(w, "invalid month %q, want YYYY-MM", raw)
		return core.Month{}, false
	}
	return m, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeBadRequest(w, "invalid request body: %v", err)
		return false
	}
	return true
}

func parseMoneyField(w http.ResponseWriter, field, raw string) (core.Money, bool) {
	m, err := core.ParseMoney(raw)
	if err != nil {
		writeBadRequest(w, "invalid %s %q", field, raw)
		return core.MoneyZero, false
	}
	return m, true
}

func parseDateField(w http.ResponseWriter, field, raw string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		writeBadRequest(w, "invalid %s %q, want YYYY-MM-DD", field, raw)
		return time.Time{}, false
	}
	return t, true
}

func parseMonthField(w http.ResponseWriter, field, raw string) (core.Month, bool) {
	m, err := core.ParseMonth(raw)
	if err != nil {
		writeBadRequest(w, "invalid %s %q, want YYYY-MM", field, raw)
		return core.Month{}, false
	}
	return m, true
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// clientIP extracts the caller address, preferring X-Forwarded-For.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host := r.RemoteAddr
	if i := strings.LastIndexByte(host, ':'); i >= 0 {
		return host[:i]
	}
	return host
}
