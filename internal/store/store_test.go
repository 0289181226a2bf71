package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glhours/glhours/internal/holidays"
	"github.com/glhours/glhours/internal/store"
)

func openTestDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.OpenAt(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestTokenRoundTrip(t *testing.T) {
	db := openTestDB(t)

	tok, err := db.Token()
	require.NoError(t, err)
	assert.Empty(t, tok, "no token before login")

	require.NoError(t, db.SaveToken("glpat-abc123"))

	tok, err = db.Token()
	require.NoError(t, err)
	assert.Equal(t, "glpat-abc123", tok)

	require.NoError(t, db.SaveToken("glpat-replaced"))
	tok, err = db.Token()
	require.NoError(t, err)
	assert.Equal(t, "glpat-replaced", tok)

	require.NoError(t, db.ClearToken())
	tok, err = db.Token()
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestHolidayCache(t *testing.T) {
	db := openTestDB(t)

	_, ok, err := db.GetHolidays(2024)
	require.NoError(t, err)
	assert.False(t, ok, "cache miss for unseen year")

	hs := []holidays.Holiday{
		{Date: "2024-03-29", Name: "Sexta-feira Santa", Type: "national"},
		{Date: "2024-05-01", Name: "Dia do Trabalho", Type: "national"},
	}
	require.NoError(t, db.PutHolidays(2024, hs))

	got, ok, err := db.GetHolidays(2024)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, hs, got)

	// Replacing a year overwrites the previous payload.
	require.NoError(t, db.PutHolidays(2024, hs[:1]))
	got, ok, err = db.GetHolidays(2024)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, got, 1)
}
