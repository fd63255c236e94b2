package handler

import (
	"net/http"
	"time"
)

const dateLayout = "2006-01-02"
const monthLayout = "2006-01"

func parseDateQuery(r *http.Request, key string) (*time.Time, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// parseMonthQuery reads a YYYY-MM query value, defaulting to the current month.
func parseMonthQuery(r *http.Request, key string) (time.Time, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return time.Now(), nil
	}
	return time.Parse(monthLayout, value)
}
