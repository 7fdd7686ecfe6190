package ranking

import (
	"cmp"
	"slices"
	"time"

	"github.com/islandpros/directory_api/internal/models"
)

// Compare orders two directory entries:
//  1. trust score, higher first
//  2. last active, newer first, providers without activity last
//  3. status last updated, newer first
//  4. id, lower first
//
// Ids are unique so Compare never returns 0 for distinct providers.
func Compare(a, b *models.DirectoryEntry) int {
	if c := cmp.Compare(b.TrustScore, a.TrustScore); c != 0 {
		return c
	}
	if c := compareLastActive(a.LastActiveAt, b.LastActiveAt); c != 0 {
		return c
	}
	if c := b.StatusLastUpdatedAt.Compare(a.StatusLastUpdatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// compareLastActive sorts descending with nil after every non-nil value.
func compareLastActive(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return b.Compare(*a)
}

// Sort orders entries in place using Compare.
func Sort(entries []models.DirectoryEntry) {
	slices.SortFunc(entries, func(a, b models.DirectoryEntry) int {
		return Compare(&a, &b)
	})
}
