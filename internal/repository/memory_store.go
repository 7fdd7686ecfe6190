package repository

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/islandpros/directory_api/internal/models"
	"github.com/islandpros/directory_api/internal/utils"
)

// MemoryStore implements the provider and reference stores in memory.
// Intended for tests and local demos; no Postgres required.
type MemoryStore struct {
	mu  sync.RWMutex
	now func() time.Time

	providers  map[int64]models.Provider
	badges     []models.ProviderBadge
	areaLinks  []models.ProviderArea
	catLinks   []models.ProviderCategory
	activity   []models.ActivityEvent
	categories []models.Category
	areas      []models.Area

	nextProviderID int64
	nextEventID    int64
	nextRefID      int64
}

// NewMemoryStore creates an empty MemoryStore. now stamps write times; nil
// means time.Now.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		now:       now,
		providers: make(map[int64]models.Provider),
	}
}

// Snapshot copies every collection under one read lock.
func (s *MemoryStore) Snapshot(_ context.Context) (*models.DirectorySnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &models.DirectorySnapshot{
		Providers:  make([]models.Provider, 0, len(s.providers)),
		Badges:     slices.Clone(s.badges),
		Areas:      slices.Clone(s.areaLinks),
		Categories: slices.Clone(s.catLinks),
		Activity:   slices.Clone(s.activity),
	}
	for _, p := range s.providers {
		snap.Providers = append(snap.Providers, p)
	}
	slices.SortFunc(snap.Providers, func(a, b models.Provider) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return snap, nil
}

// Put inserts or replaces a provider row as-is. A zero ID is assigned.
func (s *MemoryStore) Put(p models.Provider) models.Provider {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == 0 {
		s.nextProviderID++
		p.ID = s.nextProviderID
	} else if p.ID > s.nextProviderID {
		s.nextProviderID = p.ID
	}
	s.providers[p.ID] = p
	return p
}

// LinkBadge, LinkArea, LinkCategory and AppendActivity add raw association
// rows without any checks.
func (s *MemoryStore) LinkBadge(providerID int64, badge models.Badge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.badges = append(s.badges, models.ProviderBadge{ProviderID: providerID, Badge: badge, AssignedBy: "seed", CreatedAt: s.now()})
}

func (s *MemoryStore) LinkArea(providerID, areaID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.areaLinks = append(s.areaLinks, models.ProviderArea{ProviderID: providerID, AreaID: areaID})
}

func (s *MemoryStore) LinkCategory(providerID, categoryID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catLinks = append(s.catLinks, models.ProviderCategory{ProviderID: providerID, CategoryID: categoryID})
}

func (s *MemoryStore) AppendActivity(providerID int64, eventType string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextEventID++
	s.activity = append(s.activity, models.ActivityEvent{ID: s.nextEventID, ProviderID: providerID, EventType: eventType, CreatedAt: at})
}

// GetByID returns a provider by ID.
func (s *MemoryStore) GetByID(_ context.Context, id int64) (*models.Provider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.providers[id]
	if !ok {
		return nil, utils.ErrProviderNotFound
	}
	return &p, nil
}

// Create inserts a provider with its links and a REGISTERED event.
func (s *MemoryStore) Create(_ context.Context, p *models.Provider, categoryIDs, areaIDs []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range categoryIDs {
		if !s.hasCategory(id) {
			return utils.ErrCategoryNotFound
		}
	}
	for _, id := range areaIDs {
		if !s.hasArea(id) {
			return utils.ErrAreaNotFound
		}
	}

	now := s.now()
	s.nextProviderID++
	p.ID = s.nextProviderID
	p.CreatedAt = now
	p.StatusLastUpdatedAt = now
	s.providers[p.ID] = *p

	s.setCategories(p.ID, categoryIDs)
	s.setAreas(p.ID, areaIDs)
	s.appendEvent(p.ID, models.EventRegistered)
	return nil
}

// UpdateStatus changes status, stamps the change time and records an event.
func (s *MemoryStore) UpdateStatus(_ context.Context, id int64, status models.ProviderStatus) error {
	return s.update(id, func(p *models.Provider) error {
		p.Status = status
		p.StatusLastUpdatedAt = s.now()
		s.appendEvent(id, models.EventStatusChanged)
		return nil
	})
}

// UpdatePlan changes plan and trial end.
func (s *MemoryStore) UpdatePlan(_ context.Context, id int64, plan models.Plan, trialEndAt *time.Time) error {
	return s.update(id, func(p *models.Provider) error {
		p.Plan = plan
		p.TrialEndAt = trialEndAt
		return nil
	})
}

// TransitionLifecycle moves the provider to next when check allows it.
func (s *MemoryStore) TransitionLifecycle(_ context.Context, id int64, next models.LifecycleStatus, check func(from, to models.LifecycleStatus) error) error {
	return s.update(id, func(p *models.Provider) error {
		if err := check(p.LifecycleStatus, next); err != nil {
			return err
		}
		p.LifecycleStatus = next
		return nil
	})
}

// AddBadge assigns a badge; duplicates return utils.ErrDuplicateBadge.
func (s *MemoryStore) AddBadge(_ context.Context, b *models.ProviderBadge) error {
	return s.update(b.ProviderID, func(_ *models.Provider) error {
		for _, existing := range s.badges {
			if existing.ProviderID == b.ProviderID && existing.Badge == b.Badge {
				return utils.ErrDuplicateBadge
			}
		}
		b.CreatedAt = s.now()
		s.badges = append(s.badges, *b)
		return nil
	})
}

// RemoveBadge removes a badge assignment.
func (s *MemoryStore) RemoveBadge(_ context.Context, id int64, badge models.Badge) error {
	return s.update(id, func(_ *models.Provider) error {
		before := len(s.badges)
		s.badges = slices.DeleteFunc(s.badges, func(b models.ProviderBadge) bool {
			return b.ProviderID == id && b.Badge == badge
		})
		if len(s.badges) == before {
			return utils.ErrBadgeNotFound
		}
		return nil
	})
}

// ReplaceCategories replaces the provider's category links.
func (s *MemoryStore) ReplaceCategories(_ context.Context, id int64, categoryIDs []int64) error {
	return s.update(id, func(_ *models.Provider) error {
		for _, cid := range categoryIDs {
			if !s.hasCategory(cid) {
				return utils.ErrCategoryNotFound
			}
		}
		s.setCategories(id, categoryIDs)
		return nil
	})
}

// ReplaceAreas replaces the provider's area links.
func (s *MemoryStore) ReplaceAreas(_ context.Context, id int64, areaIDs []int64) error {
	return s.update(id, func(_ *models.Provider) error {
		for _, aid := range areaIDs {
			if !s.hasArea(aid) {
				return utils.ErrAreaNotFound
			}
		}
		s.setAreas(id, areaIDs)
		return nil
	})
}

// InsertActivity appends an activity event.
func (s *MemoryStore) InsertActivity(_ context.Context, id int64, eventType string) (*models.ActivityEvent, error) {
	var ev models.ActivityEvent
	err := s.update(id, func(_ *models.Provider) error {
		ev = s.appendEvent(id, eventType)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// ListCategories returns categories ordered by name.
func (s *MemoryStore) ListCategories(_ context.Context) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := slices.Clone(s.categories)
	if out == nil {
		out = []models.Category{}
	}
	slices.SortFunc(out, func(a, b models.Category) int {
		return cmp.Or(strings.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

// ListAreas returns areas, filtered to island when set.
func (s *MemoryStore) ListAreas(_ context.Context, island models.Island) ([]models.Area, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Area{}
	for _, a := range s.areas {
		if island == "" || a.Island == island {
			out = append(out, a)
		}
	}
	return out, nil
}

// CreateCategory inserts a category. Slugs are unique.
func (s *MemoryStore) CreateCategory(_ context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.ContainsFunc(s.categories, func(e models.Category) bool { return e.Slug == c.Slug }) {
		return utils.ErrDuplicateCategory
	}
	s.nextRefID++
	c.ID = s.nextRefID
	s.categories = append(s.categories, *c)
	return nil
}

// CreateArea inserts an area. Names are unique per island.
func (s *MemoryStore) CreateArea(_ context.Context, a *models.Area) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.ContainsFunc(s.areas, func(e models.Area) bool { return e.Island == a.Island && e.Name == a.Name }) {
		return utils.ErrDuplicateArea
	}
	s.nextRefID++
	a.ID = s.nextRefID
	s.areas = append(s.areas, *a)
	return nil
}

// update applies fn to a provider under the write lock, which serialises
// writers the same way the row lock does in Postgres.
func (s *MemoryStore) update(id int64, fn func(p *models.Provider) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.providers[id]
	if !ok {
		return utils.ErrProviderNotFound
	}
	if err := fn(&p); err != nil {
		return err
	}
	s.providers[id] = p
	return nil
}

func (s *MemoryStore) appendEvent(providerID int64, eventType string) models.ActivityEvent {
	s.nextEventID++
	ev := models.ActivityEvent{ID: s.nextEventID, ProviderID: providerID, EventType: eventType, CreatedAt: s.now()}
	s.activity = append(s.activity, ev)
	return ev
}

func (s *MemoryStore) setCategories(providerID int64, ids []int64) {
	s.catLinks = slices.DeleteFunc(s.catLinks, func(l models.ProviderCategory) bool { return l.ProviderID == providerID })
	for _, id := range dedupe(ids) {
		s.catLinks = append(s.catLinks, models.ProviderCategory{ProviderID: providerID, CategoryID: id})
	}
}

func (s *MemoryStore) setAreas(providerID int64, ids []int64) {
	s.areaLinks = slices.DeleteFunc(s.areaLinks, func(l models.ProviderArea) bool { return l.ProviderID == providerID })
	for _, id := range dedupe(ids) {
		s.areaLinks = append(s.areaLinks, models.ProviderArea{ProviderID: providerID, AreaID: id})
	}
}

func (s *MemoryStore) hasCategory(id int64) bool {
	return slices.ContainsFunc(s.categories, func(c models.Category) bool { return c.ID == id })
}

func (s *MemoryStore) hasArea(id int64) bool {
	return slices.ContainsFunc(s.areas, func(a models.Area) bool { return a.ID == id })
}

func dedupe(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
