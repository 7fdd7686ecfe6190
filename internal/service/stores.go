package service

import (
	"context"
	"time"

	"github.com/islandpros/directory_api/internal/models"
)

// ProviderStore supplies the consistent read view the directory ranks over.
type ProviderStore interface {
	Snapshot(ctx context.Context) (*models.DirectorySnapshot, error)
}

// ProviderWriter mutates provider state. Implementations serialise writes
// per provider id.
type ProviderWriter interface {
	GetByID(ctx context.Context, id int64) (*models.Provider, error)
	Create(ctx context.Context, p *models.Provider, categoryIDs, areaIDs []int64) error
	UpdateStatus(ctx context.Context, id int64, status models.ProviderStatus) error
	UpdatePlan(ctx context.Context, id int64, plan models.Plan, trialEndAt *time.Time) error
	TransitionLifecycle(ctx context.Context, id int64, next models.LifecycleStatus, check func(from, to models.LifecycleStatus) error) error
	AddBadge(ctx context.Context, b *models.ProviderBadge) error
	RemoveBadge(ctx context.Context, id int64, badge models.Badge) error
	ReplaceCategories(ctx context.Context, id int64, categoryIDs []int64) error
	ReplaceAreas(ctx context.Context, id int64, areaIDs []int64) error
	InsertActivity(ctx context.Context, id int64, eventType string) (*models.ActivityEvent, error)
}

// ReferenceStore reads and creates categories and areas.
type ReferenceStore interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListAreas(ctx context.Context, island models.Island) ([]models.Area, error)
	CreateCategory(ctx context.Context, c *models.Category) error
	CreateArea(ctx context.Context, a *models.Area) error
}

// ReferenceCache holds the reference lists between reads. Lists are stored
// under a generation; Invalidate starts a new one, so a list loaded before
// an invalidation can never be served after it.
type ReferenceCache interface {
	Generation(ctx context.Context) (int64, error)
	GetCategories(ctx context.Context, gen int64) ([]models.Category, error)
	SetCategories(ctx context.Context, gen int64, categories []models.Category) error
	GetAreas(ctx context.Context, gen int64, island models.Island) ([]models.Area, error)
	SetAreas(ctx context.Context, gen int64, island models.Island, areas []models.Area) error
	Invalidate(ctx context.Context) error
}
