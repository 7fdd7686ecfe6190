package service

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/islandpros/directory_api/internal/metrics"
	"github.com/islandpros/directory_api/internal/models"
	"github.com/islandpros/directory_api/internal/ranking"
	"github.com/islandpros/directory_api/internal/repository"
	"github.com/islandpros/directory_api/internal/sse"
	"github.com/islandpros/directory_api/internal/utils"
)

type ProviderServiceSuite struct {
	suite.Suite
	ctx       context.Context
	store     *repository.MemoryStore
	metrics   *metrics.Metrics
	providers *ProviderService
	directory *DirectoryService
	notifier  *recordingNotifier
	category  models.Category
	area      models.Area
}

type recordingNotifier struct {
	events []sse.EventType
	values []string
}

func (r *recordingNotifier) NotifyProviderChanged(event sse.EventType, _ int64, value string) {
	r.events = append(r.events, event)
	r.values = append(r.values, value)
}

func TestProviderServiceSuite(t *testing.T) {
	suite.Run(t, new(ProviderServiceSuite))
}

func (s *ProviderServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = repository.NewMemoryStore(fixedClock)
	s.metrics = metrics.NewWithRegistry(prometheus.NewRegistry())
	s.notifier = &recordingNotifier{}
	s.providers = NewProviderService(s.store, s.metrics, s.notifier)
	s.directory = NewDirectoryService(s.store, nil, fixedClock)

	s.category = models.Category{Name: "Plumber", Slug: "plumber"}
	s.Require().NoError(s.store.CreateCategory(s.ctx, &s.category))
	s.area = models.Area{Name: "Cruz Bay", Island: models.IslandSTJ}
	s.Require().NoError(s.store.CreateArea(s.ctx, &s.area))
}

func (s *ProviderServiceSuite) register(name string) *models.Provider {
	p, err := s.providers.Register(s.ctx, RegisterProviderInput{
		Name:        name,
		Phone:       "340-555-0199",
		Island:      "STJ",
		CategoryIDs: []int64{s.category.ID},
		AreaIDs:     []int64{s.area.ID},
	})
	s.Require().NoError(err)
	return p
}

func (s *ProviderServiceSuite) TestRegisterAppliesDefaults() {
	p := s.register("Island Pipes")

	s.NotZero(p.ID)
	s.Equal(models.StatusOpenNow, p.Status)
	s.Equal(models.PlanFree, p.Plan)
	s.Equal(models.LifecycleActive, p.LifecycleStatus)

	entry, err := s.directory.GetProvider(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal([]int64{s.category.ID}, entry.CategoryIDs)
	s.Equal([]int64{s.area.ID}, entry.AreaIDs)
	s.Require().NotNil(entry.LastActiveAt, "registration counts as activity")
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.ProviderWrites.WithLabelValues("register")))
}

func (s *ProviderServiceSuite) TestRegisterDropsTrialForFreePlan() {
	trialEnd := refNow.Add(time.Hour)
	p, err := s.providers.Register(s.ctx, RegisterProviderInput{
		Name: "Free", Phone: "1", Island: "STT", Plan: "FREE", TrialEndAt: &trialEnd,
	})
	s.Require().NoError(err)
	s.Nil(p.TrialEndAt)
}

func (s *ProviderServiceSuite) TestRegisterValidation() {
	cases := []struct {
		name  string
		in    RegisterProviderInput
		field string
	}{
		{"blank name", RegisterProviderInput{Name: "  ", Phone: "1", Island: "STT"}, "name"},
		{"blank phone", RegisterProviderInput{Name: "X", Island: "STT"}, "phone"},
		{"bad island", RegisterProviderInput{Name: "X", Phone: "1", Island: "PR"}, "island"},
		{"bad status", RegisterProviderInput{Name: "X", Phone: "1", Island: "STT", Status: "CLOSED"}, "status"},
		{"bad plan", RegisterProviderInput{Name: "X", Phone: "1", Island: "STT", Plan: "GOLD"}, "plan"},
		{"bad lifecycle", RegisterProviderInput{Name: "X", Phone: "1", Island: "STT", LifecycleStatus: "DELETED"}, "lifecycle_status"},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := s.providers.Register(s.ctx, tc.in)
			var verr *models.ValidationError
			s.Require().ErrorAs(err, &verr)
			s.Equal(tc.field, verr.Field)
		})
	}
}

func (s *ProviderServiceSuite) TestRegisterUnknownCategory() {
	_, err := s.providers.Register(s.ctx, RegisterProviderInput{
		Name: "X", Phone: "1", Island: "STT", CategoryIDs: []int64{999},
	})
	s.ErrorIs(err, utils.ErrCategoryNotFound)
}

func (s *ProviderServiceSuite) TestChangeStatusStampsTime() {
	later := refNow.Add(time.Hour)
	store := repository.NewMemoryStore(func() time.Time { return later })
	svc := NewProviderService(store, nil, nil)
	p := store.Put(models.Provider{
		Name: "X", Island: models.IslandSTT, Status: models.StatusOpenNow, Plan: models.PlanFree,
		LifecycleStatus: models.LifecycleActive, StatusLastUpdatedAt: refNow,
	})

	s.Require().NoError(svc.ChangeStatus(s.ctx, p.ID, "BUSY_LIMITED"))

	got, err := store.GetByID(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusBusyLimited, got.Status)
	s.True(got.StatusLastUpdatedAt.Equal(later))
}

func (s *ProviderServiceSuite) TestChangeStatusErrors() {
	p := s.register("X")

	err := s.providers.ChangeStatus(s.ctx, p.ID, "open")
	s.ErrorIs(err, utils.ErrValidation)

	err = s.providers.ChangeStatus(s.ctx, 999, "OPEN_NOW")
	s.ErrorIs(err, utils.ErrProviderNotFound)
	s.NotErrorIs(err, utils.ErrStorage)
}

func (s *ProviderServiceSuite) TestChangePlanAffectsScore() {
	p := s.register("X")
	trialEnd := refNow.Add(24 * time.Hour)

	s.Require().NoError(s.providers.ChangePlan(s.ctx, p.ID, "PREMIUM", &trialEnd))
	entry, err := s.directory.GetProvider(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(60, entry.TrustScore)

	s.Require().NoError(s.providers.ChangePlan(s.ctx, p.ID, "FREE", &trialEnd))
	got, err := s.store.GetByID(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Nil(got.TrialEndAt)
	entry, err = s.directory.GetProvider(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(10, entry.TrustScore)
}

func (s *ProviderServiceSuite) TestArchivedIsTerminal() {
	p := s.register("X")

	s.Require().NoError(s.providers.TransitionLifecycle(s.ctx, p.ID, "SUSPENDED"))
	s.Require().NoError(s.providers.TransitionLifecycle(s.ctx, p.ID, "ARCHIVED"))

	err := s.providers.TransitionLifecycle(s.ctx, p.ID, "ACTIVE")
	s.ErrorIs(err, utils.ErrInvalidTransition)

	entries, err := s.directory.ListProviders(s.ctx, ranking.Filters{})
	s.Require().NoError(err)
	s.Empty(entries)
}

func (s *ProviderServiceSuite) TestBadges() {
	p := s.register("X")

	b, err := s.providers.AssignBadge(s.ctx, p.ID, "GOV_APPROVED", "admin@islandpros.vi", nil)
	s.Require().NoError(err)
	s.Equal(refNow, b.CreatedAt)
	_, err = s.providers.AssignBadge(s.ctx, p.ID, "VERIFIED", "admin@islandpros.vi", nil)
	s.Require().NoError(err)

	_, err = s.providers.AssignBadge(s.ctx, p.ID, "GOV_APPROVED", "admin@islandpros.vi", nil)
	s.ErrorIs(err, utils.ErrDuplicateBadge)
	_, err = s.providers.AssignBadge(s.ctx, p.ID, "GOLD_STAR", "admin@islandpros.vi", nil)
	s.ErrorIs(err, utils.ErrValidation)
	_, err = s.providers.AssignBadge(s.ctx, p.ID, "VERIFIED", "", nil)
	s.ErrorIs(err, utils.ErrValidation)

	entry, err := s.directory.GetProvider(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(310, entry.TrustScore)

	s.Require().NoError(s.providers.RemoveBadge(s.ctx, p.ID, "GOV_APPROVED"))
	s.ErrorIs(s.providers.RemoveBadge(s.ctx, p.ID, "GOV_APPROVED"), utils.ErrBadgeNotFound)

	entry, err = s.directory.GetProvider(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(110, entry.TrustScore)

	s.Equal([]sse.EventType{
		sse.EventProviderRegistered,
		sse.EventProviderBadgesChanged,
		sse.EventProviderBadgesChanged,
		sse.EventProviderBadgesChanged,
	}, s.notifier.events)
	s.Equal([]string{"X", "+GOV_APPROVED", "+VERIFIED", "-GOV_APPROVED"}, s.notifier.values)
}

func (s *ProviderServiceSuite) TestReplaceAssociations() {
	p := s.register("X")
	other := models.Area{Name: "Coral Bay", Island: models.IslandSTJ}
	s.Require().NoError(s.store.CreateArea(s.ctx, &other))

	s.Require().NoError(s.providers.SetAreas(s.ctx, p.ID, []int64{other.ID, other.ID}))
	s.Require().NoError(s.providers.SetCategories(s.ctx, p.ID, nil))

	entry, err := s.directory.GetProvider(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal([]int64{other.ID}, entry.AreaIDs)
	s.Empty(entry.CategoryIDs)

	s.ErrorIs(s.providers.SetAreas(s.ctx, p.ID, []int64{12345}), utils.ErrAreaNotFound)
	s.ErrorIs(s.providers.SetCategories(s.ctx, 999, []int64{s.category.ID}), utils.ErrProviderNotFound)
}

func (s *ProviderServiceSuite) TestRecordActivity() {
	p := s.register("X")

	ev, err := s.providers.RecordActivity(s.ctx, p.ID, models.EventContactRequested)
	s.Require().NoError(err)
	s.Equal(p.ID, ev.ProviderID)

	_, err = s.providers.RecordActivity(s.ctx, p.ID, "CLICKED")
	s.ErrorIs(err, utils.ErrValidation)
}

func TestCheckLifecycleTransition(t *testing.T) {
	all := []models.LifecycleStatus{
		models.LifecycleActive, models.LifecyclePendingReview, models.LifecycleSuspended, models.LifecycleArchived,
	}
	for _, from := range all {
		for _, to := range all {
			err := CheckLifecycleTransition(from, to)
			if from == models.LifecycleArchived && to != models.LifecycleArchived {
				assert.ErrorIs(t, err, utils.ErrInvalidTransition, "%s -> %s", from, to)
			} else {
				require.NoError(t, err, "%s -> %s", from, to)
			}
		}
	}
}
