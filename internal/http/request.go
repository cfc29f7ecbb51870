package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"drivefin/internal/goals"
)

// MaxBodyBytes caps every request body.
const MaxBodyBytes = 1 << 20

var errBadBody = errors.New("invalid request body")

// decodeJSON reads one JSON document into dst, rejecting unknown fields,
// trailing data and bodies over MaxBodyBytes.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return fmt.Errorf("%w: empty body", errBadBody)
		case errors.As(err, &maxErr):
			return fmt.Errorf("%w: body exceeds %d bytes", errBadBody, maxErr.Limit)
		default:
			return fmt.Errorf("%w: %v", errBadBody, err)
		}
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data", errBadBody)
	}
	return nil
}

// readBody returns the raw body, capped at MaxBodyBytes.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadBody, err)
	}
	return b, nil
}

// goalQuery reads the goal list filters. status and category accept
// repeated or comma-separated values; unknown values are ignored.
func goalQuery(q url.Values) (goals.Criteria, goals.SortKey) {
	c := goals.Criteria{
		Statuses:   goals.ParseStatuses(q["status"]...),
		Categories: goals.ParseCategories(q["category"]...),
		Search:     sanitizeInput(q.Get("q")),
	}
	return c, goals.ParseSortKey(q.Get("sort"))
}

// sanitizeInput trims s and strips control characters other than tab and
// newlines.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}

// bearerToken extracts the token from an "Authorization: Bearer" header.
func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
