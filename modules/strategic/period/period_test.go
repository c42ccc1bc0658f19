package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func mustCatalog(t *testing.T, n int) (*Catalog, []Period) {
	t.Helper()
	base := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	periods := make([]Period, n)
	for i := 0; i < n; i++ {
		start := base.AddDate(0, 0, i*14)
		end := start.AddDate(0, 0, 14)
		periods[i] = New(periodID(i), start, end)
	}
	c, err := NewCatalog(periods)
	require.NoError(t, err)
	return c, periods
}

func periodID(i int) string {
	return []string{"P1", "P2", "P3", "P4"}[i]
}

func TestCatalogOrderingAndLookup(t *testing.T) {
	c, periods := mustCatalog(t, 3)

	require.Equal(t, periods, c.Periods())

	got, ok := c.ByID("P2")
	require.True(t, ok)
	require.True(t, got.Equal(periods[1]))

	_, ok = c.ByID("missing")
	require.False(t, ok)

	last, ok := c.Last()
	require.True(t, ok)
	require.Equal(t, "P3", last.ID)

	idx, ok := c.Index(periods[2])
	require.True(t, ok)
	require.Equal(t, 2, idx)
}

func TestCatalogRejectsDuplicateIDs(t *testing.T) {
	now := time.Now()
	_, err := NewCatalog([]Period{
		New("P1", now, now.AddDate(0, 0, 14)),
		New("P1", now, now.AddDate(0, 0, 14)),
	})
	require.Error(t, err)
}

func TestEmptyCatalogHasNoLast(t *testing.T) {
	c, err := NewCatalog(nil)
	require.NoError(t, err)
	_, ok := c.Last()
	require.False(t, ok)
	require.Equal(t, 0, c.Len())
}
