package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Dkrayten/newswire/internal/models"
)

func TestCategoryValid(t *testing.T) {
	for _, c := range models.Categories() {
		require.True(t, c.Valid(), "category %q", c)
	}

	require.False(t, models.Category("Sports").Valid())
	require.False(t, models.Category("technology").Valid())
	require.False(t, models.Category("").Valid())
}

func TestNewsRecordRoundTrip(t *testing.T) {
	rec := models.NewsRecord{
		ID:        421337,
		Title:     "Major Breakthrough in World Sector",
		Content:   "Detailed report about recent developments in the World sector.",
		Category:  models.CategoryWorld,
		Timestamp: time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC),
		Keywords:  []string{"diplomacy", "summit"},
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var decoded models.NewsRecord
	require.NoError(t, json.Unmarshal(data, &decoded))

	require.Equal(t, rec.ID, decoded.ID)
	require.Equal(t, rec.Title, decoded.Title)
	require.Equal(t, rec.Content, decoded.Content)
	require.Equal(t, rec.Category, decoded.Category)
	require.True(t, rec.Timestamp.Equal(decoded.Timestamp))
	require.Equal(t, rec.Keywords, decoded.Keywords)
}

func TestNewsRecordWireShape(t *testing.T) {
	rec := models.NewsRecord{
		Title:     "t",
		Content:   "c",
		Category:  models.CategoryScience,
		Timestamp: time.Now().UTC(),
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	// id is optional on the wire and omitted when zero.
	require.NotContains(t, raw, "id")
	require.Contains(t, raw, "title")
	require.Contains(t, raw, "content")
	require.Contains(t, raw, "category")
	require.Contains(t, raw, "timestamp")
}
