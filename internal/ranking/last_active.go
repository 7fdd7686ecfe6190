package ranking

import (
	"time"

	"github.com/islandpros/directory_api/internal/models"
)

// LastActive returns the latest event time for one provider, or nil when
// the provider has no recorded activity.
func LastActive(providerID int64, events []models.ActivityEvent) *time.Time {
	var latest *time.Time
	for i := range events {
		e := &events[i]
		if e.ProviderID != providerID {
			continue
		}
		if latest == nil || e.CreatedAt.After(*latest) {
			t := e.CreatedAt
			latest = &t
		}
	}
	return latest
}

// LastActiveIndex maps provider id to its latest activity time.
type LastActiveIndex map[int64]time.Time

// IndexLastActive folds an event collection into a LastActiveIndex in one
// pass. It yields the same answer as calling LastActive per provider.
func IndexLastActive(events []models.ActivityEvent) LastActiveIndex {
	idx := make(LastActiveIndex)
	for _, e := range events {
		if cur, ok := idx[e.ProviderID]; !ok || e.CreatedAt.After(cur) {
			idx[e.ProviderID] = e.CreatedAt
		}
	}
	return idx
}

// For returns the last-active time for a provider, nil if it has none.
func (idx LastActiveIndex) For(providerID int64) *time.Time {
	t, ok := idx[providerID]
	if !ok {
		return nil
	}
	return &t
}
