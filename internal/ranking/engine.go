package ranking

import (
	"fmt"
	"slices"
	"time"

	"github.com/islandpros/directory_api/internal/models"
)

// badgeOrder is the output order of a provider's badge list.
var badgeOrder = map[models.Badge]int{
	models.BadgeGovApproved:    0,
	models.BadgeEmergencyReady: 1,
	models.BadgeVerified:       2,
}

// Rank annotates, filters and orders every provider in the snapshot.
// Every row is validated, including rows the filters would drop, so a
// corrupt record surfaces as an error instead of being hidden.
func Rank(snap *models.DirectorySnapshot, f Filters, now time.Time) ([]models.DirectoryEntry, error) {
	pred, err := BuildPredicate(f)
	if err != nil {
		return nil, err
	}

	badges, err := groupBadges(snap.Badges)
	if err != nil {
		return nil, err
	}
	areas := make(map[int64]IDSet)
	for _, pa := range snap.Areas {
		addID(areas, pa.ProviderID, pa.AreaID)
	}
	categories := make(map[int64]IDSet)
	for _, pc := range snap.Categories {
		addID(categories, pc.ProviderID, pc.CategoryID)
	}
	lastActive := IndexLastActive(snap.Activity)

	entries := make([]models.DirectoryEntry, 0, len(snap.Providers))
	for i := range snap.Providers {
		p := snap.Providers[i]
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("provider %d: %w", p.ID, err)
		}

		score, err := TrustScore(badges[p.ID], p.Plan, p.TrialEndAt, p.LifecycleStatus, now)
		if err != nil {
			return nil, fmt.Errorf("provider %d: %w", p.ID, err)
		}

		c := Candidate{Provider: &p, AreaIDs: areas[p.ID], CategoryIDs: categories[p.ID]}
		if !pred(c) {
			continue
		}

		held := badges[p.ID]
		if held == nil {
			held = []models.Badge{}
		}
		entries = append(entries, models.DirectoryEntry{
			Provider:     p,
			TrustScore:   score,
			LastActiveAt: lastActive.For(p.ID),
			Badges:       held,
			AreaIDs:      sortedIDs(c.AreaIDs),
			CategoryIDs:  sortedIDs(c.CategoryIDs),
		})
	}

	Sort(entries)
	return entries, nil
}

// groupBadges validates badge rows and returns a deduplicated, ordered
// badge list per provider.
func groupBadges(rows []models.ProviderBadge) (map[int64][]models.Badge, error) {
	out := make(map[int64][]models.Badge)
	for _, row := range rows {
		if !row.Badge.Valid() {
			return nil, fmt.Errorf("provider %d: %w", row.ProviderID,
				&models.ValidationError{Field: "badge", Value: string(row.Badge)})
		}
		if !slices.Contains(out[row.ProviderID], row.Badge) {
			out[row.ProviderID] = append(out[row.ProviderID], row.Badge)
		}
	}
	for id := range out {
		slices.SortFunc(out[id], func(a, b models.Badge) int {
			return badgeOrder[a] - badgeOrder[b]
		})
	}
	return out, nil
}

func addID(m map[int64]IDSet, providerID, id int64) {
	set, ok := m[providerID]
	if !ok {
		set = make(IDSet)
		m[providerID] = set
	}
	set[id] = struct{}{}
}

func sortedIDs(set IDSet) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
