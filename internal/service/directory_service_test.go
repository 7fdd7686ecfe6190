package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/islandpros/directory_api/internal/metrics"
	"github.com/islandpros/directory_api/internal/models"
	"github.com/islandpros/directory_api/internal/ranking"
	"github.com/islandpros/directory_api/internal/repository"
	"github.com/islandpros/directory_api/internal/utils"
)

var refNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return refNow }

func seedProvider(s *repository.MemoryStore, name string, island models.Island, status models.ProviderStatus, statusAge time.Duration) models.Provider {
	return s.Put(models.Provider{
		Name:                name,
		Phone:               "340-555-0100",
		Island:              island,
		Status:              status,
		Plan:                models.PlanFree,
		LifecycleStatus:     models.LifecycleActive,
		StatusLastUpdatedAt: refNow.Add(-statusAge),
		CreatedAt:           refNow.Add(-30 * 24 * time.Hour),
	})
}

func entryIDs(entries []models.DirectoryEntry) []int64 {
	out := make([]int64, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

type failingStore struct{ err error }

func (f failingStore) Snapshot(context.Context) (*models.DirectorySnapshot, error) {
	return nil, f.err
}

func TestListProvidersOrdersByTrustScore(t *testing.T) {
	store := repository.NewMemoryStore(fixedClock)

	a := seedProvider(store, "A", models.IslandSTT, models.StatusOpenNow, time.Hour)
	store.LinkBadge(a.ID, models.BadgeVerified)

	trialEnd := refNow.Add(7 * 24 * time.Hour)
	b := seedProvider(store, "B", models.IslandSTT, models.StatusOpenNow, time.Hour)
	b.Plan = models.PlanPremium
	b.TrialEndAt = &trialEnd
	store.Put(b)
	store.LinkBadge(b.ID, models.BadgeEmergencyReady)

	c := seedProvider(store, "C", models.IslandSTT, models.StatusOpenNow, time.Hour)
	store.LinkBadge(c.ID, models.BadgeGovApproved)

	svc := NewDirectoryService(store, nil, fixedClock)
	entries, err := svc.ListProviders(context.Background(), ranking.Filters{})
	require.NoError(t, err)

	assert.Equal(t, []int64{c.ID, b.ID, a.ID}, entryIDs(entries))
	assert.Equal(t, 310, entries[0].TrustScore)
	assert.Equal(t, 260, entries[1].TrustScore)
	assert.Equal(t, 110, entries[2].TrustScore)
}

func TestListProvidersIslandAndAreaFilter(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore(fixedClock)

	charlotte := &models.Area{Name: "Charlotte Amalie", Island: models.IslandSTT}
	require.NoError(t, store.CreateArea(ctx, charlotte))

	a := seedProvider(store, "A", models.IslandSTT, models.StatusOpenNow, time.Hour)
	d := seedProvider(store, "D", models.IslandSTT, models.StatusOpenNow, 2*time.Hour)
	c := seedProvider(store, "C", models.IslandSTX, models.StatusOpenNow, time.Hour)
	for _, p := range []models.Provider{a, d, c} {
		store.LinkArea(p.ID, charlotte.ID)
	}

	island := models.IslandSTT
	svc := NewDirectoryService(store, nil, fixedClock)
	entries, err := svc.ListProviders(ctx, ranking.Filters{Island: &island, AreaID: &charlotte.ID})
	require.NoError(t, err)

	assert.ElementsMatch(t, []int64{a.ID, d.ID}, entryIDs(entries))
}

func TestListProvidersIslandStatusCategoryFilter(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore(fixedClock)

	electrician := &models.Category{Name: "Electrician", Slug: "electrician"}
	require.NoError(t, store.CreateCategory(ctx, electrician))

	a := seedProvider(store, "A", models.IslandSTT, models.StatusOpenNow, time.Hour)
	d := seedProvider(store, "D", models.IslandSTT, models.StatusBusyLimited, time.Hour)
	store.LinkCategory(a.ID, electrician.ID)
	store.LinkCategory(d.ID, electrician.ID)

	island := models.IslandSTT
	status := models.StatusOpenNow
	svc := NewDirectoryService(store, nil, fixedClock)
	entries, err := svc.ListProviders(ctx, ranking.Filters{Island: &island, Status: &status, CategoryID: &electrician.ID})
	require.NoError(t, err)

	assert.Equal(t, []int64{a.ID}, entryIDs(entries))
}

func TestListProvidersActivityBeforeInactivity(t *testing.T) {
	store := repository.NewMemoryStore(fixedClock)

	silent := seedProvider(store, "Silent", models.IslandSTJ, models.StatusOpenNow, time.Minute)
	active := seedProvider(store, "Active", models.IslandSTJ, models.StatusOpenNow, time.Hour)
	store.AppendActivity(active.ID, models.EventContactRequested, refNow.Add(-48*time.Hour))

	svc := NewDirectoryService(store, nil, fixedClock)
	entries, err := svc.ListProviders(context.Background(), ranking.Filters{})
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, []int64{active.ID, silent.ID}, entryIDs(entries))
	assert.Nil(t, entries[1].LastActiveAt)
	require.NotNil(t, entries[0].LastActiveAt)
	assert.True(t, entries[0].LastActiveAt.Equal(refNow.Add(-48*time.Hour)))
}

func TestListProvidersNeverReturnsArchived(t *testing.T) {
	store := repository.NewMemoryStore(fixedClock)

	kept := seedProvider(store, "Kept", models.IslandSTT, models.StatusOpenNow, time.Hour)
	gone := seedProvider(store, "Gone", models.IslandSTT, models.StatusOpenNow, time.Hour)
	gone.LifecycleStatus = models.LifecycleArchived
	store.Put(gone)
	store.LinkBadge(gone.ID, models.BadgeGovApproved)

	svc := NewDirectoryService(store, nil, fixedClock)
	entries, err := svc.ListProviders(context.Background(), ranking.Filters{})
	require.NoError(t, err)
	assert.Equal(t, []int64{kept.ID}, entryIDs(entries))

	_, err = svc.GetProvider(context.Background(), gone.ID)
	assert.ErrorIs(t, err, utils.ErrProviderNotFound)
}

func TestListProvidersIsIdempotent(t *testing.T) {
	store := repository.NewMemoryStore(fixedClock)
	for i, island := range []models.Island{models.IslandSTT, models.IslandSTJ, models.IslandSTX, models.IslandSTT} {
		p := seedProvider(store, "P", island, models.StatusOpenNow, time.Duration(i%2)*time.Hour)
		if i%2 == 0 {
			store.LinkBadge(p.ID, models.BadgeVerified)
		}
	}

	svc := NewDirectoryService(store, nil, fixedClock)
	first, err := svc.ListProviders(context.Background(), ranking.Filters{})
	require.NoError(t, err)
	second, err := svc.ListProviders(context.Background(), ranking.Filters{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestListProvidersEmptyResultIsNotNil(t *testing.T) {
	store := repository.NewMemoryStore(fixedClock)
	seedProvider(store, "A", models.IslandSTT, models.StatusOpenNow, time.Hour)

	missing := int64(999)
	svc := NewDirectoryService(store, nil, fixedClock)
	entries, err := svc.ListProviders(context.Background(), ranking.Filters{AreaID: &missing})
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestListProvidersRejectsInvalidFilter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)
	svc := NewDirectoryService(repository.NewMemoryStore(fixedClock), m, fixedClock)

	bad := models.Island("PR")
	_, err := svc.ListProviders(context.Background(), ranking.Filters{Island: &bad})

	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrValidation)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.QueryErrors.WithLabelValues("validation")))
}

func TestListProvidersRejectsMalformedRow(t *testing.T) {
	store := repository.NewMemoryStore(fixedClock)
	seedProvider(store, "Good", models.IslandSTT, models.StatusOpenNow, time.Hour)
	bad := seedProvider(store, "Bad", models.IslandSTT, models.StatusOpenNow, time.Hour)
	bad.Status = "CLOSED"
	store.Put(bad)

	svc := NewDirectoryService(store, nil, fixedClock)
	entries, err := svc.ListProviders(context.Background(), ranking.Filters{})

	require.Error(t, err)
	assert.Nil(t, entries)
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "status", verr.Field)
}

func TestListProvidersWrapsStorageFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)
	cause := errors.New("connection refused")
	svc := NewDirectoryService(failingStore{err: cause}, m, fixedClock)

	_, err := svc.ListProviders(context.Background(), ranking.Filters{})

	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrStorage)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.QueryErrors.WithLabelValues("storage")))
}

func TestListProvidersRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)
	store := repository.NewMemoryStore(fixedClock)
	seedProvider(store, "A", models.IslandSTT, models.StatusOpenNow, time.Hour)

	svc := NewDirectoryService(store, m, fixedClock)
	_, err := svc.ListProviders(context.Background(), ranking.Filters{})
	require.NoError(t, err)

	assert.Equal(t, 1, testutil.CollectAndCount(m.QueryLatency))
	assert.Equal(t, 1, testutil.CollectAndCount(m.QueryResults))
}

func TestGetProvider(t *testing.T) {
	store := repository.NewMemoryStore(fixedClock)
	p := seedProvider(store, "A", models.IslandSTT, models.StatusOpenNow, time.Hour)
	store.LinkBadge(p.ID, models.BadgeVerified)

	svc := NewDirectoryService(store, nil, fixedClock)
	entry, err := svc.GetProvider(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, entry.ID)
	assert.Equal(t, 110, entry.TrustScore)
	assert.Equal(t, []models.Badge{models.BadgeVerified}, entry.Badges)

	_, err = svc.GetProvider(context.Background(), 404)
	assert.ErrorIs(t, err, utils.ErrProviderNotFound)
}

func TestGetProviderValidatesWholeSnapshot(t *testing.T) {
	store := repository.NewMemoryStore(fixedClock)
	good := seedProvider(store, "Good", models.IslandSTT, models.StatusOpenNow, time.Hour)
	bad := seedProvider(store, "Bad", models.IslandSTX, models.StatusOpenNow, time.Hour)
	bad.Plan = "GOLD"
	store.Put(bad)

	svc := NewDirectoryService(store, nil, fixedClock)
	entry, err := svc.GetProvider(context.Background(), good.ID)

	assert.Nil(t, entry)
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "plan", verr.Field)
}
