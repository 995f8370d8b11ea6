package handler

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateQuery(t *testing.T) {
	r := httptest.NewRequest("GET", "/sessions?startDate=2026-03-09", nil)
	parsed, err := parseDateQuery(r, "startDate")
	require.NoError(t, err)
	require.NotNil(t, parsed)
	assert.Equal(t, time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC), *parsed)

	missing, err := parseDateQuery(r, "endDate")
	require.NoError(t, err)
	assert.Nil(t, missing)

	r = httptest.NewRequest("GET", "/sessions?startDate=09.03.2026", nil)
	_, err = parseDateQuery(r, "startDate")
	assert.Error(t, err)
}

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest("GET", "/users?limit=25&bad=x", nil)
	assert.Equal(t, 25, queryInt(r, "limit", 10))
	assert.Equal(t, 10, queryInt(r, "bad", 10))
	assert.Equal(t, 10, queryInt(r, "missing", 10))
}

func TestExportFilename(t *testing.T) {
	from := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC) // exclusive
	assert.Equal(t, "sessions_20260301_20260331", exportFilename("sessions", &from, &to))

	open := exportFilename("car_washes", &from, nil)
	assert.Contains(t, open, "car_washes_")
}

func TestParsePage(t *testing.T) {
	r := httptest.NewRequest("GET", "/users?page=3&limit=25", nil)
	page, limit := parsePage(r, 10)
	assert.Equal(t, 3, page)
	assert.Equal(t, 25, limit)

	r = httptest.NewRequest("GET", "/users", nil)
	page, limit = parsePage(r, 10)
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, limit)

	r = httptest.NewRequest("GET", "/users?page=abc&limit=-5", nil)
	page, limit = parsePage(r, 10)
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, limit)
}
