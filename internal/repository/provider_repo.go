package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/islandpros/directory_api/internal/database"
	"github.com/islandpros/directory_api/internal/models"
	"github.com/islandpros/directory_api/internal/utils"
)

const (
	pqForeignKeyViolation = "23503"
	pqUniqueViolation     = "23505"
)

// ProviderRepository handles data access for providers and their
// badge, area, category and activity rows.
type ProviderRepository struct {
	db           *sqlx.DB
	queryTimeout time.Duration
}

// NewProviderRepository creates a new ProviderRepository. queryTimeout
// bounds a single snapshot read; zero disables it.
func NewProviderRepository(db *sqlx.DB, queryTimeout time.Duration) *ProviderRepository {
	return &ProviderRepository{db: db, queryTimeout: queryTimeout}
}

const providerColumns = `id, name, phone, whatsapp, contact_methods, island, status, plan,
	trial_end_at, lifecycle_status, status_last_updated_at, created_at`

// ============================================
// Directory snapshot
// ============================================

// Snapshot reads providers and every association the ranking engine needs
// inside one read-only REPEATABLE READ transaction. Activity is reduced to
// the latest event per provider.
func (r *ProviderRepository) Snapshot(ctx context.Context) (*models.DirectorySnapshot, error) {
	if r.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.queryTimeout)
		defer cancel()
	}

	snap := &models.DirectorySnapshot{}
	err := database.InSnapshot(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.SelectContext(ctx, &snap.Providers,
			`SELECT `+providerColumns+` FROM providers ORDER BY id`); err != nil {
			return fmt.Errorf("select providers: %w", err)
		}
		if err := tx.SelectContext(ctx, &snap.Badges,
			`SELECT provider_id, badge, assigned_by, notes, created_at FROM provider_badges`); err != nil {
			return fmt.Errorf("select provider badges: %w", err)
		}
		if err := tx.SelectContext(ctx, &snap.Areas,
			`SELECT provider_id, area_id FROM provider_areas`); err != nil {
			return fmt.Errorf("select provider areas: %w", err)
		}
		if err := tx.SelectContext(ctx, &snap.Categories,
			`SELECT provider_id, category_id FROM provider_categories`); err != nil {
			return fmt.Errorf("select provider categories: %w", err)
		}
		if err := tx.SelectContext(ctx, &snap.Activity, `
			SELECT DISTINCT ON (provider_id) id, provider_id, event_type, created_at
			FROM activity_events
			ORDER BY provider_id, created_at DESC`); err != nil {
			return fmt.Errorf("select activity: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// ============================================
// Provider CRUD
// ============================================

// GetByID returns a provider by ID.
func (r *ProviderRepository) GetByID(ctx context.Context, id int64) (*models.Provider, error) {
	var p models.Provider
	err := r.db.GetContext(ctx, &p, `SELECT `+providerColumns+` FROM providers WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, utils.ErrProviderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a provider with its category and area links and records
// a REGISTERED activity event. ID and timestamps are filled in on p.
func (r *ProviderRepository) Create(ctx context.Context, p *models.Provider, categoryIDs, areaIDs []int64) error {
	return database.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const q = `
			INSERT INTO providers
				(name, phone, whatsapp, contact_methods, island, status, plan, trial_end_at, lifecycle_status)
			VALUES ($1, $2, $3, COALESCE($4::text[], '{}'), $5, $6, $7, $8, $9)
			RETURNING id, status_last_updated_at, created_at`

		if err := tx.QueryRowxContext(ctx, q,
			p.Name,
			p.Phone,
			p.Whatsapp,
			p.ContactMethods,
			p.Island,
			p.Status,
			p.Plan,
			p.TrialEndAt,
			p.LifecycleStatus,
		).Scan(&p.ID, &p.StatusLastUpdatedAt, &p.CreatedAt); err != nil {
			return err
		}

		if err := insertCategories(ctx, tx, p.ID, categoryIDs); err != nil {
			return err
		}
		if err := insertAreas(ctx, tx, p.ID, areaIDs); err != nil {
			return err
		}
		_, err := insertActivity(ctx, tx, p.ID, models.EventRegistered)
		return err
	})
}

// UpdateStatus changes the availability status, stamps
// status_last_updated_at and records a STATUS_CHANGED event.
func (r *ProviderRepository) UpdateStatus(ctx context.Context, id int64, status models.ProviderStatus) error {
	return r.withProviderLock(ctx, id, func(tx *sqlx.Tx) error {
		const q = `UPDATE providers SET status = $2, status_last_updated_at = NOW() WHERE id = $1`
		if _, err := tx.ExecContext(ctx, q, id, status); err != nil {
			return err
		}
		_, err := insertActivity(ctx, tx, id, models.EventStatusChanged)
		return err
	})
}

// UpdatePlan changes the subscription plan and trial end.
func (r *ProviderRepository) UpdatePlan(ctx context.Context, id int64, plan models.Plan, trialEndAt *time.Time) error {
	return r.withProviderLock(ctx, id, func(tx *sqlx.Tx) error {
		const q = `UPDATE providers SET plan = $2, trial_end_at = $3 WHERE id = $1`
		_, err := tx.ExecContext(ctx, q, id, plan, trialEndAt)
		return err
	})
}

// TransitionLifecycle moves a provider to next after check approves the
// transition from its current, locked lifecycle status.
func (r *ProviderRepository) TransitionLifecycle(ctx context.Context, id int64, next models.LifecycleStatus, check func(from, to models.LifecycleStatus) error) error {
	return r.withProviderLock(ctx, id, func(tx *sqlx.Tx) error {
		var current models.LifecycleStatus
		if err := tx.GetContext(ctx, &current, `SELECT lifecycle_status FROM providers WHERE id = $1`, id); err != nil {
			return err
		}
		if err := check(current, next); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `UPDATE providers SET lifecycle_status = $2 WHERE id = $1`, id, next)
		return err
	})
}

// ============================================
// Badges
// ============================================

// AddBadge assigns a badge. Assigning a badge the provider already holds
// returns utils.ErrDuplicateBadge.
func (r *ProviderRepository) AddBadge(ctx context.Context, b *models.ProviderBadge) error {
	return r.withProviderLock(ctx, b.ProviderID, func(tx *sqlx.Tx) error {
		const q = `
			INSERT INTO provider_badges (provider_id, badge, assigned_by, notes)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (provider_id, badge) DO NOTHING
			RETURNING created_at`

		err := tx.QueryRowxContext(ctx, q, b.ProviderID, b.Badge, b.AssignedBy, b.Notes).Scan(&b.CreatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return utils.ErrDuplicateBadge
		}
		return err
	})
}

// RemoveBadge removes a badge assignment.
func (r *ProviderRepository) RemoveBadge(ctx context.Context, id int64, badge models.Badge) error {
	return r.withProviderLock(ctx, id, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM provider_badges WHERE provider_id = $1 AND badge = $2`, id, badge)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return utils.ErrBadgeNotFound
		}
		return nil
	})
}

// ============================================
// Associations
// ============================================

// ReplaceCategories replaces the provider's category links.
func (r *ProviderRepository) ReplaceCategories(ctx context.Context, id int64, categoryIDs []int64) error {
	return r.withProviderLock(ctx, id, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM provider_categories WHERE provider_id = $1`, id); err != nil {
			return err
		}
		return insertCategories(ctx, tx, id, categoryIDs)
	})
}

// ReplaceAreas replaces the provider's area links.
func (r *ProviderRepository) ReplaceAreas(ctx context.Context, id int64, areaIDs []int64) error {
	return r.withProviderLock(ctx, id, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM provider_areas WHERE provider_id = $1`, id); err != nil {
			return err
		}
		return insertAreas(ctx, tx, id, areaIDs)
	})
}

// ============================================
// Activity
// ============================================

// InsertActivity appends an activity event for a provider.
func (r *ProviderRepository) InsertActivity(ctx context.Context, id int64, eventType string) (*models.ActivityEvent, error) {
	var ev *models.ActivityEvent
	err := r.withProviderLock(ctx, id, func(tx *sqlx.Tx) error {
		var err error
		ev, err = insertActivity(ctx, tx, id, eventType)
		return err
	})
	return ev, err
}

// withProviderLock runs fn in a transaction holding the provider row lock,
// which serialises writers per provider id.
func (r *ProviderRepository) withProviderLock(ctx context.Context, id int64, fn func(tx *sqlx.Tx) error) error {
	return database.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var locked int64
		err := tx.QueryRowxContext(ctx, `SELECT id FROM providers WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
		if errors.Is(err, sql.ErrNoRows) {
			return utils.ErrProviderNotFound
		}
		if err != nil {
			return err
		}
		return fn(tx)
	})
}

func insertCategories(ctx context.Context, tx *sqlx.Tx, providerID int64, categoryIDs []int64) error {
	if len(categoryIDs) == 0 {
		return nil
	}
	const q = `
		INSERT INTO provider_categories (provider_id, category_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING`
	_, err := tx.ExecContext(ctx, q, providerID, pq.Array(categoryIDs))
	if isForeignKeyViolation(err) {
		return utils.ErrCategoryNotFound
	}
	return err
}

func insertAreas(ctx context.Context, tx *sqlx.Tx, providerID int64, areaIDs []int64) error {
	if len(areaIDs) == 0 {
		return nil
	}
	const q = `
		INSERT INTO provider_areas (provider_id, area_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING`
	_, err := tx.ExecContext(ctx, q, providerID, pq.Array(areaIDs))
	if isForeignKeyViolation(err) {
		return utils.ErrAreaNotFound
	}
	return err
}

func insertActivity(ctx context.Context, tx *sqlx.Tx, providerID int64, eventType string) (*models.ActivityEvent, error) {
	ev := &models.ActivityEvent{ProviderID: providerID, EventType: eventType}
	const q = `
		INSERT INTO activity_events (provider_id, event_type)
		VALUES ($1, $2)
		RETURNING id, created_at`
	if err := tx.QueryRowxContext(ctx, q, providerID, eventType).Scan(&ev.ID, &ev.CreatedAt); err != nil {
		return nil, err
	}
	return ev, nil
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}
