package handler

import (
	"net/http"
	"time"
)

const dateLayout = "2006-01-02"

// parseDateQuery reads an optional yyyy-mm-dd query parameter.
func parseDateQuery(r *http.Request, key string) (*time.Time, error) {
	return parseDateField(r.URL.Query().Get(key))
}

// parseDateField parses an optional yyyy-mm-dd value; empty means absent.
func parseDateField(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
