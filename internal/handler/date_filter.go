package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
)

const dateLayout = "2006-01-02"

func queryInt(r *http.Request, key string, fallback int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func parsePage(r *http.Request, defaultLimit int) (page, limit int) {
	page = queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}
	limit = queryInt(r, "limit", defaultLimit)
	return page, limit
}

// exportFilename stamps the date range onto a download name; an open range
// falls back to the current time. to is the exclusive bound.
func exportFilename(prefix string, from, to *time.Time) string {
	if from != nil && to != nil {
		return fmt.Sprintf("%s_%s_%s", prefix,
			from.Format("20060102"), to.AddDate(0, 0, -1).Format("20060102"))
	}
	return fmt.Sprintf("%s_%s", prefix, time.Now().Format("20060102_150405"))
}

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
