package ranking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/islandpros/directory_api/internal/models"
)

func entry(id int64, score int, lastActive *time.Time, statusUpdated time.Time) models.DirectoryEntry {
	return models.DirectoryEntry{
		Provider: models.Provider{
			ID:                  id,
			StatusLastUpdatedAt: statusUpdated,
		},
		TrustScore:   score,
		LastActiveAt: lastActive,
	}
}

func ids(entries []models.DirectoryEntry) []int64 {
	out := make([]int64, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestSortByTrustScore(t *testing.T) {
	entries := []models.DirectoryEntry{
		entry(1, 110, nil, refNow),
		entry(2, 310, nil, refNow),
		entry(3, 260, nil, refNow),
	}
	Sort(entries)
	assert.Equal(t, []int64{2, 3, 1}, ids(entries))
}

func TestSortNullLastActiveSortsLast(t *testing.T) {
	older := timePtr(refNow.Add(-30 * 24 * time.Hour))
	newer := timePtr(refNow.Add(-time.Minute))

	entries := []models.DirectoryEntry{
		entry(1, 110, nil, refNow),
		entry(2, 110, older, refNow.Add(-48*time.Hour)),
		entry(3, 110, newer, refNow.Add(-48*time.Hour)),
	}
	Sort(entries)
	assert.Equal(t, []int64{3, 2, 1}, ids(entries))
}

func TestSortLowerScoreWithActivityStillBelowHigherScore(t *testing.T) {
	entries := []models.DirectoryEntry{
		entry(1, 110, timePtr(refNow), refNow),
		entry(2, 310, nil, refNow.Add(-time.Hour)),
	}
	Sort(entries)
	assert.Equal(t, []int64{2, 1}, ids(entries))
}

func TestSortStatusUpdatedBreaksTies(t *testing.T) {
	active := timePtr(refNow.Add(-time.Hour))
	entries := []models.DirectoryEntry{
		entry(1, 10, active, refNow.Add(-2*time.Hour)),
		entry(2, 10, active, refNow.Add(-time.Hour)),
	}
	Sort(entries)
	assert.Equal(t, []int64{2, 1}, ids(entries))
}

func TestSortIDBreaksFullTies(t *testing.T) {
	active := timePtr(refNow.Add(-time.Hour))
	entries := []models.DirectoryEntry{
		entry(9, 10, active, refNow),
		entry(4, 10, active, refNow),
		entry(7, 10, active, refNow),
	}
	Sort(entries)
	assert.Equal(t, []int64{4, 7, 9}, ids(entries))

	noActivity := []models.DirectoryEntry{entry(3, 0, nil, refNow), entry(1, 0, nil, refNow)}
	Sort(noActivity)
	assert.Equal(t, []int64{1, 3}, ids(noActivity))
}

func TestCompareIsAntisymmetric(t *testing.T) {
	active := timePtr(refNow)
	pairs := [][2]models.DirectoryEntry{
		{entry(1, 10, active, refNow), entry(2, 10, active, refNow)},
		{entry(1, 10, nil, refNow), entry(2, 10, active, refNow)},
		{entry(1, 110, nil, refNow), entry(2, 10, active, refNow)},
	}
	for _, p := range pairs {
		a, b := p[0], p[1]
		assert.Equal(t, -Compare(&a, &b), Compare(&b, &a))
		assert.NotZero(t, Compare(&a, &b))
	}
}

func TestCompareLaterKeysOnlyMatterOnExactTies(t *testing.T) {
	// b has newer activity and status but a lower score; score wins.
	a := entry(5, 260, timePtr(refNow.Add(-time.Hour)), refNow.Add(-time.Hour))
	b := entry(1, 110, timePtr(refNow), refNow)
	assert.Negative(t, Compare(&a, &b))
}
