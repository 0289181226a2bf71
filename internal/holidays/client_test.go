package holidays_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glhours/glhours/internal/holidays"
)

type memCache struct {
	years map[int][]holidays.Holiday
}

func newMemCache() *memCache {
	return &memCache{years: make(map[int][]holidays.Holiday)}
}

func (m *memCache) GetHolidays(year int) ([]holidays.Holiday, bool, error) {
	hs, ok := m.years[year]
	return hs, ok, nil
}

func (m *memCache) PutHolidays(year int, hs []holidays.Holiday) error {
	m.years[year] = hs
	return nil
}

func TestYearPassesPayloadThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2024", r.URL.Path)
		fmt.Fprint(w, `[
			{"date":"2024-03-29","name":"Sexta-feira Santa","type":"national"},
			{"date":"2024-05-01","name":"Dia do Trabalho","type":"national"}
		]`)
	}))
	defer srv.Close()

	c := holidays.NewClient(srv.URL, nil, nil)
	hs, err := c.Year(context.Background(), 2024)
	require.NoError(t, err)

	assert.Equal(t, []holidays.Holiday{
		{Date: "2024-03-29", Name: "Sexta-feira Santa", Type: "national"},
		{Date: "2024-05-01", Name: "Dia do Trabalho", Type: "national"},
	}, hs)
}

func TestYearUsesCache(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `[{"date":"2024-01-01","name":"Confraternização mundial","type":"national"}]`)
	}))
	defer srv.Close()

	c := holidays.NewClient(srv.URL, newMemCache(), nil)

	_, err := c.Year(context.Background(), 2024)
	require.NoError(t, err)
	_, err = c.Year(context.Background(), 2024)
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "second fetch is served from the cache")
}

func TestYearErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := holidays.NewClient(srv.URL, nil, nil)
	_, err := c.Year(context.Background(), 2024)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestYearMalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"oops":true}`)
	}))
	defer srv.Close()

	c := holidays.NewClient(srv.URL, nil, nil)
	_, err := c.Year(context.Background(), 2024)
	require.Error(t, err)
}
