package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/islandpros/directory_api/internal/metrics"
	"github.com/islandpros/directory_api/internal/models"
	"github.com/islandpros/directory_api/internal/sse"
	"github.com/islandpros/directory_api/internal/utils"
)

// RegisterProviderInput is the payload for registering a provider. Enum
// fields arrive raw and are validated here. Empty status, plan and
// lifecycle fall back to OPEN_NOW, FREE and ACTIVE.
type RegisterProviderInput struct {
	Name            string     `json:"name" binding:"required"`
	Phone           string     `json:"phone" binding:"required"`
	Whatsapp        *string    `json:"whatsapp"`
	ContactMethods  []string   `json:"contactMethods"`
	Island          string     `json:"island" binding:"required"`
	Status          string     `json:"status"`
	Plan            string     `json:"plan"`
	TrialEndAt      *time.Time `json:"trialEndAt"`
	LifecycleStatus string     `json:"lifecycleStatus"`
	CategoryIDs     []int64    `json:"categoryIds"`
	AreaIDs         []int64    `json:"areaIds"`
}

// ProviderService owns the provider write paths.
type ProviderService struct {
	store    ProviderWriter
	metrics  *metrics.Metrics
	notifier sse.ProviderNotifier
}

// NewProviderService constructs a ProviderService. m and notifier may be nil.
func NewProviderService(store ProviderWriter, m *metrics.Metrics, notifier sse.ProviderNotifier) *ProviderService {
	if notifier == nil {
		notifier = sse.NopNotifier{}
	}
	return &ProviderService{store: store, metrics: m, notifier: notifier}
}

// Register validates and inserts a new provider.
func (s *ProviderService) Register(ctx context.Context, in RegisterProviderInput) (*models.Provider, error) {
	p, err := in.toProvider()
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, p, in.CategoryIDs, in.AreaIDs); err != nil {
		return nil, s.writeFailed("register", 0, err)
	}

	s.metrics.IncrementProviderWrite("register")
	s.notifier.NotifyProviderChanged(sse.EventProviderRegistered, p.ID, p.Name)
	log.Info().Int64("provider_id", p.ID).Str("island", string(p.Island)).Msg("Provider registered")
	return p, nil
}

// ChangeStatus updates the availability status and its change time.
func (s *ProviderService) ChangeStatus(ctx context.Context, id int64, raw string) error {
	status, err := models.ParseStatus(raw)
	if err != nil {
		return err
	}
	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		return s.writeFailed("status", id, err)
	}
	s.metrics.IncrementProviderWrite("status")
	s.notifier.NotifyProviderChanged(sse.EventProviderStatusChanged, id, string(status))
	log.Info().Int64("provider_id", id).Str("status", string(status)).Msg("Provider status changed")
	return nil
}

// ChangePlan switches the subscription plan. Moving to FREE clears the
// trial end.
func (s *ProviderService) ChangePlan(ctx context.Context, id int64, raw string, trialEndAt *time.Time) error {
	plan, err := models.ParsePlan(raw)
	if err != nil {
		return err
	}
	if plan == models.PlanFree {
		trialEndAt = nil
	}
	if err := s.store.UpdatePlan(ctx, id, plan, trialEndAt); err != nil {
		return s.writeFailed("plan", id, err)
	}
	s.metrics.IncrementProviderWrite("plan")
	s.notifier.NotifyProviderChanged(sse.EventProviderPlanChanged, id, string(plan))
	log.Info().Int64("provider_id", id).Str("plan", string(plan)).Msg("Provider plan changed")
	return nil
}

// TransitionLifecycle moves a provider to a new lifecycle status. ARCHIVED
// is terminal.
func (s *ProviderService) TransitionLifecycle(ctx context.Context, id int64, raw string) error {
	next, err := models.ParseLifecycle(raw)
	if err != nil {
		return err
	}
	if err := s.store.TransitionLifecycle(ctx, id, next, CheckLifecycleTransition); err != nil {
		return s.writeFailed("lifecycle", id, err)
	}
	s.metrics.IncrementProviderWrite("lifecycle")
	s.notifier.NotifyProviderChanged(sse.EventProviderLifecycleChanged, id, string(next))
	log.Info().Int64("provider_id", id).Str("lifecycle_status", string(next)).Msg("Provider lifecycle changed")
	return nil
}

// CheckLifecycleTransition rejects any move out of ARCHIVED.
func CheckLifecycleTransition(from, to models.LifecycleStatus) error {
	if from == models.LifecycleArchived && to != models.LifecycleArchived {
		return fmt.Errorf("%w: %s to %s", utils.ErrInvalidTransition, from, to)
	}
	return nil
}

// AssignBadge grants a badge to a provider.
func (s *ProviderService) AssignBadge(ctx context.Context, id int64, raw, assignedBy string, notes *string) (*models.ProviderBadge, error) {
	badge, err := models.ParseBadge(raw)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(assignedBy) == "" {
		return nil, &models.ValidationError{Field: "assigned_by", Value: assignedBy}
	}

	b := &models.ProviderBadge{ProviderID: id, Badge: badge, AssignedBy: assignedBy, Notes: notes}
	if err := s.store.AddBadge(ctx, b); err != nil {
		return nil, s.writeFailed("badge_assign", id, err)
	}
	s.metrics.IncrementProviderWrite("badge_assign")
	s.notifier.NotifyProviderChanged(sse.EventProviderBadgesChanged, id, "+"+string(badge))
	log.Info().Int64("provider_id", id).Str("badge", string(badge)).Str("assigned_by", assignedBy).Msg("Badge assigned")
	return b, nil
}

// RemoveBadge revokes a badge.
func (s *ProviderService) RemoveBadge(ctx context.Context, id int64, raw string) error {
	badge, err := models.ParseBadge(raw)
	if err != nil {
		return err
	}
	if err := s.store.RemoveBadge(ctx, id, badge); err != nil {
		return s.writeFailed("badge_remove", id, err)
	}
	s.metrics.IncrementProviderWrite("badge_remove")
	s.notifier.NotifyProviderChanged(sse.EventProviderBadgesChanged, id, "-"+string(badge))
	log.Info().Int64("provider_id", id).Str("badge", string(badge)).Msg("Badge removed")
	return nil
}

// SetCategories replaces the provider's categories.
func (s *ProviderService) SetCategories(ctx context.Context, id int64, categoryIDs []int64) error {
	if err := s.store.ReplaceCategories(ctx, id, categoryIDs); err != nil {
		return s.writeFailed("categories", id, err)
	}
	s.metrics.IncrementProviderWrite("categories")
	return nil
}

// SetAreas replaces the provider's service areas.
func (s *ProviderService) SetAreas(ctx context.Context, id int64, areaIDs []int64) error {
	if err := s.store.ReplaceAreas(ctx, id, areaIDs); err != nil {
		return s.writeFailed("areas", id, err)
	}
	s.metrics.IncrementProviderWrite("areas")
	return nil
}

// RecordActivity appends an activity event, which refreshes the
// provider's last-active time.
func (s *ProviderService) RecordActivity(ctx context.Context, id int64, eventType string) (*models.ActivityEvent, error) {
	switch eventType {
	case models.EventRegistered, models.EventStatusChanged, models.EventProfileUpdated, models.EventContactRequested:
	default:
		return nil, &models.ValidationError{Field: "event_type", Value: eventType}
	}

	ev, err := s.store.InsertActivity(ctx, id, eventType)
	if err != nil {
		return nil, s.writeFailed("activity", id, err)
	}
	s.metrics.IncrementProviderWrite("activity")
	return ev, nil
}

func (in RegisterProviderInput) toProvider() (*models.Provider, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, &models.ValidationError{Field: "name", Value: in.Name}
	}
	phone := strings.TrimSpace(in.Phone)
	if phone == "" {
		return nil, &models.ValidationError{Field: "phone", Value: in.Phone}
	}

	island, err := models.ParseIsland(in.Island)
	if err != nil {
		return nil, err
	}
	status, err := models.ParseStatus(defaultString(in.Status, string(models.StatusOpenNow)))
	if err != nil {
		return nil, err
	}
	plan, err := models.ParsePlan(defaultString(in.Plan, string(models.PlanFree)))
	if err != nil {
		return nil, err
	}
	lifecycle, err := models.ParseLifecycle(defaultString(in.LifecycleStatus, string(models.LifecycleActive)))
	if err != nil {
		return nil, err
	}

	contactMethods := pq.StringArray(in.ContactMethods)
	if contactMethods == nil {
		contactMethods = pq.StringArray{}
	}

	trialEndAt := in.TrialEndAt
	if plan == models.PlanFree {
		trialEndAt = nil
	}

	return &models.Provider{
		Name:            name,
		Phone:           phone,
		Whatsapp:        in.Whatsapp,
		ContactMethods:  contactMethods,
		Island:          island,
		Status:          status,
		Plan:            plan,
		TrialEndAt:      trialEndAt,
		LifecycleStatus: lifecycle,
	}, nil
}

// writeFailed passes domain errors through and wraps everything else as a
// storage failure.
func (s *ProviderService) writeFailed(op string, id int64, err error) error {
	if isDomainError(err) {
		return err
	}
	log.Error().Err(err).Str("operation", op).Int64("provider_id", id).Msg("Provider write failed")
	return fmt.Errorf("%w: %w", utils.ErrStorage, err)
}

func isDomainError(err error) bool {
	for _, target := range []error{
		utils.ErrValidation,
		utils.ErrProviderNotFound,
		utils.ErrCategoryNotFound,
		utils.ErrAreaNotFound,
		utils.ErrInvalidTransition,
		utils.ErrDuplicateBadge,
		utils.ErrBadgeNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
