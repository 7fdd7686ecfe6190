package models

import "time"

// Badge is a trust marker assigned to a provider by an administrator.
type Badge string

const (
	BadgeVerified       Badge = "VERIFIED"
	BadgeGovApproved    Badge = "GOV_APPROVED"
	BadgeEmergencyReady Badge = "EMERGENCY_READY"
)

// Valid reports whether the badge is recognised.
func (b Badge) Valid() bool {
	switch b {
	case BadgeVerified, BadgeGovApproved, BadgeEmergencyReady:
		return true
	}
	return false
}

// ParseBadge validates a raw badge value.
func ParseBadge(raw string) (Badge, error) {
	b := Badge(raw)
	if !b.Valid() {
		return "", &ValidationError{Field: "badge", Value: raw}
	}
	return b, nil
}

// Category is a service category such as "Electrician".
type Category struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
	Slug string `db:"slug" json:"slug"`
}

// Area is a neighbourhood or district on one island.
type Area struct {
	ID     int64  `db:"id" json:"id"`
	Name   string `db:"name" json:"name"`
	Island Island `db:"island" json:"island"`
}

// ProviderCategory links a provider to a category.
type ProviderCategory struct {
	ProviderID int64 `db:"provider_id"`
	CategoryID int64 `db:"category_id"`
}

// ProviderArea links a provider to an area it serves.
type ProviderArea struct {
	ProviderID int64 `db:"provider_id"`
	AreaID     int64 `db:"area_id"`
}

// ProviderBadge records a badge assignment with its audit metadata.
type ProviderBadge struct {
	ProviderID int64     `db:"provider_id" json:"providerId"`
	Badge      Badge     `db:"badge" json:"badge"`
	AssignedBy string    `db:"assigned_by" json:"assignedBy"`
	Notes      *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// Activity event types emitted by write paths.
const (
	EventRegistered       = "REGISTERED"
	EventStatusChanged    = "STATUS_CHANGED"
	EventProfileUpdated   = "PROFILE_UPDATED"
	EventContactRequested = "CONTACT_REQUESTED"
)

// ActivityEvent is one row of the append-only provider activity log.
type ActivityEvent struct {
	ID         int64     `db:"id" json:"id"`
	ProviderID int64     `db:"provider_id" json:"providerId"`
	EventType  string    `db:"event_type" json:"eventType"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// DirectorySnapshot is a logically consistent read of everything the
// ranking engine needs.
type DirectorySnapshot struct {
	Providers  []Provider
	Badges     []ProviderBadge
	Areas      []ProviderArea
	Categories []ProviderCategory
	Activity   []ActivityEvent
}

// DirectoryEntry is a provider annotated with its derived ranking fields.
type DirectoryEntry struct {
	Provider
	TrustScore   int        `json:"trustScore"`
	LastActiveAt *time.Time `json:"lastActiveAt"`
	Badges       []Badge    `json:"badges"`
	AreaIDs      []int64    `json:"areaIds"`
	CategoryIDs  []int64    `json:"categoryIds"`
}
