package trueke

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/truekeo/truekeo-api/internal/metrics"
	"github.com/truekeo/truekeo-api/internal/models"
	"github.com/truekeo/truekeo-api/internal/store"
)

// UserLookup resolves a user by ID. Satisfied by store.UserStore.
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// ItemLookup resolves an item by ID. Satisfied by store.ItemStore.
type ItemLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
}

// Hydrator turns raw trueke rows into fully nested Truekes by resolving
// their user and item references. Host references are mandatory: a record
// whose host user or host item cannot be resolved is dropped from the
// output. Taker references are optional, since a trueke may not yet have an
// accepted counter-offer. No failure inside a batch ever escapes the call.
type Hydrator struct {
	users UserLookup
	items ItemLookup
	log   *zap.Logger
}

// NewHydrator builds a Hydrator over the given lookups.
func NewHydrator(users UserLookup, items ItemLookup, log *zap.Logger) *Hydrator {
	return &Hydrator{users: users, items: items, log: log}
}

// batchCache is the request-scoped reference cache shared by every record in
// one batch. Lookups are deduplicated through singleflight so each distinct
// ID is fetched at most once per batch, and the maps are mutex-guarded
// because records hydrate on separate goroutines. Not-found is cached as nil
// so repeated dangling references cost one lookup, not one per record.
type batchCache struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
	items map[uuid.UUID]*models.Item
	group singleflight.Group
}

func newBatchCache() *batchCache {
	return &batchCache{
		users: make(map[uuid.UUID]*models.User),
		items: make(map[uuid.UUID]*models.Item),
	}
}

// HydrateBatch resolves a batch of raw rows concurrently. Output preserves
// input order; dropped records simply do not appear.
func (h *Hydrator) HydrateBatch(ctx context.Context, rows []store.TruekeRow) []models.Trueke {
	cache := newBatchCache()
	results := make([]*models.Trueke, len(rows))

	g, gctx := errgroup.WithContext(ctx)
	for i := range rows {
		g.Go(func() error {
			results[i] = h.hydrateOne(gctx, rows[i], cache)
			return nil
		})
	}
	_ = g.Wait() // goroutines never return errors

	// Indexed reassembly keeps output order aligned with input order.
	out := make([]models.Trueke, 0, len(rows))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
			metrics.HydrationRecords.WithLabelValues("hydrated").Inc()
		} else {
			metrics.HydrationRecords.WithLabelValues("dropped").Inc()
		}
	}
	return out
}

// Hydrate resolves a single row. A row whose mandatory references are broken
// comes back as ErrNotFound, matching how the caller treats a missing record.
func (h *Hydrator) Hydrate(ctx context.Context, row store.TruekeRow) (*models.Trueke, error) {
	out := h.HydrateBatch(ctx, []store.TruekeRow{row})
	if len(out) == 0 {
		return nil, models.ErrNotFound
	}
	return &out[0], nil
}

// hydrateOne resolves one record's references concurrently and assembles the
// nested Trueke, or returns nil to drop the record.
func (h *Hydrator) hydrateOne(ctx context.Context, row store.TruekeRow, cache *batchCache) *models.Trueke {
	status, err := models.ParseTruekeStatus(row.Status)
	if err != nil {
		h.log.Warn("dropping trueke with unrecognized status",
			zap.String("trueke_id", row.ID.String()), zap.Error(err))
		return nil
	}

	var (
		hostUser, takerUser *models.User
		hostItem, takerItem *models.Item
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hostUser = cache.user(gctx, h, row.HostUserID)
		return nil
	})
	g.Go(func() error {
		hostItem = cache.item(gctx, h, row.HostItemID)
		return nil
	})
	if row.TakerUserID != nil {
		g.Go(func() error {
			takerUser = cache.user(gctx, h, *row.TakerUserID)
			return nil
		})
	}
	if row.TakerItemID != nil {
		g.Go(func() error {
			takerItem = cache.item(gctx, h, *row.TakerItemID)
			return nil
		})
	}
	_ = g.Wait() // goroutines never return errors

	if hostUser == nil || hostItem == nil {
		h.log.Warn("dropping trueke with unresolvable host references",
			zap.String("trueke_id", row.ID.String()),
			zap.Bool("host_user_missing", hostUser == nil),
			zap.Bool("host_item_missing", hostItem == nil))
		return nil
	}

	t := &models.Trueke{
		ID:          row.ID,
		Title:       row.Title,
		HostUser:    hostUser,
		HostItem:    hostItem,
		TakerUser:   takerUser,
		TakerItem:   takerItem,
		ScheduledAt: row.ScheduledAt,
		Status:      status,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if row.Description != nil {
		t.Description = *row.Description
	}
	if row.Latitude != nil && row.Longitude != nil {
		t.Location = &models.GeoPoint{Latitude: *row.Latitude, Longitude: *row.Longitude}
	}
	return t
}

// user resolves a user reference through the batch cache. Lookup errors are
// logged and treated as not-found for that reference only.
func (c *batchCache) user(ctx context.Context, h *Hydrator, id uuid.UUID) *models.User {
	c.mu.Lock()
	if u, ok := c.users[id]; ok {
		c.mu.Unlock()
		metrics.HydrationLookups.WithLabelValues("user", "hit").Inc()
		return u
	}
	c.mu.Unlock()

	v, _, _ := c.group.Do("user:"+id.String(), func() (interface{}, error) {
		// Re-check under the flight: a caller that missed the map before an
		// earlier flight completed must not trigger a second fetch.
		c.mu.Lock()
		if u, ok := c.users[id]; ok {
			c.mu.Unlock()
			return u, nil
		}
		c.mu.Unlock()

		metrics.HydrationLookups.WithLabelValues("user", "miss").Inc()
		u, err := h.users.GetByID(ctx, id)
		if err != nil {
			if !errors.Is(err, models.ErrNotFound) {
				h.log.Warn("user lookup failed",
					zap.String("user_id", id.String()), zap.Error(err))
			}
			u = nil
		}
		c.mu.Lock()
		c.users[id] = u
		c.mu.Unlock()
		return u, nil
	})
	u, _ := v.(*models.User)
	return u
}

// item resolves an item reference through the batch cache, with the same
// contained failure semantics as user.
func (c *batchCache) item(ctx context.Context, h *Hydrator, id uuid.UUID) *models.Item {
	c.mu.Lock()
	if it, ok := c.items[id]; ok {
		c.mu.Unlock()
		metrics.HydrationLookups.WithLabelValues("item", "hit").Inc()
		return it
	}
	c.mu.Unlock()

	v, _, _ := c.group.Do("item:"+id.String(), func() (interface{}, error) {
		c.mu.Lock()
		if it, ok := c.items[id]; ok {
			c.mu.Unlock()
			return it, nil
		}
		c.mu.Unlock()

		metrics.HydrationLookups.WithLabelValues("item", "miss").Inc()
		it, err := h.items.GetByID(ctx, id)
		if err != nil {
			if !errors.Is(err, models.ErrNotFound) {
				h.log.Warn("item lookup failed",
					zap.String("item_id", id.String()), zap.Error(err))
			}
			it = nil
		}
		c.mu.Lock()
		c.items[id] = it
		c.mu.Unlock()
		return it, nil
	})
	it, _ := v.(*models.Item)
	return it
}
