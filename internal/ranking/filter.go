package ranking

import (
	"strconv"

	"github.com/islandpros/directory_api/internal/models"
)

// Filters are the optional directory query constraints. A nil field
// imposes no constraint.
type Filters struct {
	Island     *models.Island
	AreaID     *int64
	CategoryID *int64
	Status     *models.ProviderStatus
}

// Validate rejects unknown island or status values.
func (f Filters) Validate() error {
	if f.Island != nil && !f.Island.Valid() {
		return &models.ValidationError{Field: "island", Value: string(*f.Island)}
	}
	if f.Status != nil && !f.Status.Valid() {
		return &models.ValidationError{Field: "status", Value: string(*f.Status)}
	}
	return nil
}

// IDSet is a set of area or category ids.
type IDSet map[int64]struct{}

// Has reports membership; a nil set contains nothing.
func (s IDSet) Has(id int64) bool {
	_, ok := s[id]
	return ok
}

// Candidate is a provider with the associations the predicate needs.
type Candidate struct {
	Provider    *models.Provider
	AreaIDs     IDSet
	CategoryIDs IDSet
}

// Predicate decides whether a candidate stays in the result.
type Predicate func(c Candidate) bool

func notArchived(c Candidate) bool {
	return c.Provider.LifecycleStatus != models.LifecycleArchived
}

// BuildPredicate composes the filters into one AND-ed predicate. Archived
// providers are always rejected, whatever the filters say.
func BuildPredicate(f Filters) (Predicate, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	conds := []Predicate{notArchived}

	if f.Island != nil {
		island := *f.Island
		conds = append(conds, func(c Candidate) bool {
			return c.Provider.Island == island
		})
	}
	if f.AreaID != nil {
		areaID := *f.AreaID
		conds = append(conds, func(c Candidate) bool {
			return c.AreaIDs.Has(areaID)
		})
	}
	if f.CategoryID != nil {
		categoryID := *f.CategoryID
		conds = append(conds, func(c Candidate) bool {
			return c.CategoryIDs.Has(categoryID)
		})
	}
	if f.Status != nil {
		status := *f.Status
		conds = append(conds, func(c Candidate) bool {
			return c.Provider.Status == status
		})
	}

	return func(c Candidate) bool {
		for _, cond := range conds {
			if !cond(c) {
				return false
			}
		}
		return true
	}, nil
}

// ParseFilters builds Filters from raw query values. Empty strings mean
// "no constraint".
func ParseFilters(island, areaID, categoryID, status string) (Filters, error) {
	var f Filters
	if island != "" {
		i, err := models.ParseIsland(island)
		if err != nil {
			return Filters{}, err
		}
		f.Island = &i
	}
	if status != "" {
		s, err := models.ParseStatus(status)
		if err != nil {
			return Filters{}, err
		}
		f.Status = &s
	}
	if areaID != "" {
		id, err := strconv.ParseInt(areaID, 10, 64)
		if err != nil {
			return Filters{}, &models.ValidationError{Field: "area_id", Value: areaID}
		}
		f.AreaID = &id
	}
	if categoryID != "" {
		id, err := strconv.ParseInt(categoryID, 10, 64)
		if err != nil {
			return Filters{}, &models.ValidationError{Field: "category_id", Value: categoryID}
		}
		f.CategoryID = &id
	}
	return f, nil
}
