package models

import (
	"time"

	"github.com/lib/pq"
)

// Island identifies one of the three main US Virgin Islands.
type Island string

const (
	IslandSTT Island = "STT" // St. Thomas
	IslandSTJ Island = "STJ" // St. John
	IslandSTX Island = "STX" // St. Croix
)

// Valid reports whether the island code is recognised.
func (i Island) Valid() bool {
	switch i {
	case IslandSTT, IslandSTJ, IslandSTX:
		return true
	}
	return false
}

// ParseIsland validates a raw island code.
func ParseIsland(raw string) (Island, error) {
	i := Island(raw)
	if !i.Valid() {
		return "", &ValidationError{Field: "island", Value: raw}
	}
	return i, nil
}

// ProviderStatus is the availability status shown to end users.
type ProviderStatus string

const (
	StatusOpenNow       ProviderStatus = "OPEN_NOW"
	StatusBusyLimited   ProviderStatus = "BUSY_LIMITED"
	StatusNotTakingWork ProviderStatus = "NOT_TAKING_WORK"
)

// Valid reports whether the status is recognised.
func (s ProviderStatus) Valid() bool {
	switch s {
	case StatusOpenNow, StatusBusyLimited, StatusNotTakingWork:
		return true
	}
	return false
}

// ParseStatus validates a raw availability status.
func ParseStatus(raw string) (ProviderStatus, error) {
	s := ProviderStatus(raw)
	if !s.Valid() {
		return "", &ValidationError{Field: "status", Value: raw}
	}
	return s, nil
}

// Plan is the subscription plan of a provider.
type Plan string

const (
	PlanFree    Plan = "FREE"
	PlanPremium Plan = "PREMIUM"
)

// Valid reports whether the plan is recognised.
func (p Plan) Valid() bool {
	return p == PlanFree || p == PlanPremium
}

// ParsePlan validates a raw plan value.
func ParsePlan(raw string) (Plan, error) {
	p := Plan(raw)
	if !p.Valid() {
		return "", &ValidationError{Field: "plan", Value: raw}
	}
	return p, nil
}

// LifecycleStatus is the administrative state of a provider record.
type LifecycleStatus string

const (
	LifecycleActive        LifecycleStatus = "ACTIVE"
	LifecyclePendingReview LifecycleStatus = "PENDING_REVIEW"
	LifecycleSuspended     LifecycleStatus = "SUSPENDED"
	LifecycleArchived      LifecycleStatus = "ARCHIVED"
)

// Valid reports whether the lifecycle status is recognised.
func (l LifecycleStatus) Valid() bool {
	switch l {
	case LifecycleActive, LifecyclePendingReview, LifecycleSuspended, LifecycleArchived:
		return true
	}
	return false
}

// ParseLifecycle validates a raw lifecycle status.
func ParseLifecycle(raw string) (LifecycleStatus, error) {
	l := LifecycleStatus(raw)
	if !l.Valid() {
		return "", &ValidationError{Field: "lifecycle_status", Value: raw}
	}
	return l, nil
}

// Provider represents a registered business in the directory.
type Provider struct {
	ID                  int64           `db:"id" json:"id"`
	Name                string          `db:"name" json:"name"`
	Phone               string          `db:"phone" json:"phone"`
	Whatsapp            *string         `db:"whatsapp" json:"whatsapp,omitempty"`
	ContactMethods      pq.StringArray  `db:"contact_methods" json:"contactMethods"`
	Island              Island          `db:"island" json:"island"`
	Status              ProviderStatus  `db:"status" json:"status"`
	Plan                Plan            `db:"plan" json:"plan"`
	TrialEndAt          *time.Time      `db:"trial_end_at" json:"trialEndAt,omitempty"`
	LifecycleStatus     LifecycleStatus `db:"lifecycle_status" json:"lifecycleStatus"`
	StatusLastUpdatedAt time.Time       `db:"status_last_updated_at" json:"statusLastUpdatedAt"`
	CreatedAt           time.Time       `db:"created_at" json:"createdAt"`
}

// Validate checks every enum-valued field of a fetched provider row.
func (p *Provider) Validate() error {
	if !p.Island.Valid() {
		return &ValidationError{Field: "island", Value: string(p.Island)}
	}
	if !p.Status.Valid() {
		return &ValidationError{Field: "status", Value: string(p.Status)}
	}
	if !p.Plan.Valid() {
		return &ValidationError{Field: "plan", Value: string(p.Plan)}
	}
	if !p.LifecycleStatus.Valid() {
		return &ValidationError{Field: "lifecycle_status", Value: string(p.LifecycleStatus)}
	}
	return nil
}
