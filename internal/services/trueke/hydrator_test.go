package trueke

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/truekeo/truekeo-api/internal/models"
	"github.com/truekeo/truekeo-api/internal/store"
)

// fakeUserLookup counts lookups per ID so tests can assert deduplication.
type fakeUserLookup struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
	errs  map[uuid.UUID]error
	calls map[uuid.UUID]int
}

func newFakeUserLookup() *fakeUserLookup {
	return &fakeUserLookup{
		users: make(map[uuid.UUID]*models.User),
		errs:  make(map[uuid.UUID]error),
		calls: make(map[uuid.UUID]int),
	}
}

func (f *fakeUserLookup) add(u *models.User) {
	f.users[u.ID] = u
}

func (f *fakeUserLookup) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[id]++
	if err, ok := f.errs[id]; ok {
		return nil, err
	}
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, models.ErrNotFound
}

func (f *fakeUserLookup) callCount(id uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[id]
}

type fakeItemLookup struct {
	mu    sync.Mutex
	items map[uuid.UUID]*models.Item
	errs  map[uuid.UUID]error
	calls map[uuid.UUID]int
}

func newFakeItemLookup() *fakeItemLookup {
	return &fakeItemLookup{
		items: make(map[uuid.UUID]*models.Item),
		errs:  make(map[uuid.UUID]error),
		calls: make(map[uuid.UUID]int),
	}
}

func (f *fakeItemLookup) add(it *models.Item) {
	f.items[it.ID] = it
}

func (f *fakeItemLookup) GetByID(_ context.Context, id uuid.UUID) (*models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[id]++
	if err, ok := f.errs[id]; ok {
		return nil, err
	}
	if it, ok := f.items[id]; ok {
		return it, nil
	}
	return nil, models.ErrNotFound
}

func (f *fakeItemLookup) callCount(id uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[id]
}

func newTestUser(username string) *models.User {
	return &models.User{ID: uuid.New(), Username: username}
}

func newTestItem(owner uuid.UUID, name string) *models.Item {
	return &models.Item{
		ID:        uuid.New(),
		UserID:    owner,
		Name:      name,
		Condition: models.ConditionGood,
		Status:    models.ItemAvailable,
	}
}

func rowFor(user *models.User, item *models.Item, title string) store.TruekeRow {
	return store.TruekeRow{
		ID:         uuid.New(),
		Title:      title,
		HostUserID: user.ID,
		HostItemID: item.ID,
		Status:     string(models.TruekeOpen),
	}
}

func TestHydrateBatchPreservesOrder(t *testing.T) {
	users := newFakeUserLookup()
	items := newFakeItemLookup()
	h := NewHydrator(users, items, zap.NewNop())

	var rows []store.TruekeRow
	titles := []string{"bike", "guitar", "lamp", "skates", "books"}
	for _, title := range titles {
		u := newTestUser("host-" + title)
		it := newTestItem(u.ID, title)
		users.add(u)
		items.add(it)
		rows = append(rows, rowFor(u, it, title))
	}

	out := h.HydrateBatch(context.Background(), rows)
	require.Len(t, out, len(titles))
	for i, title := range titles {
		assert.Equal(t, title, out[i].Title)
		assert.Equal(t, rows[i].ID, out[i].ID)
	}
}

func TestHydrateBatchDropsBrokenHostReferences(t *testing.T) {
	users := newFakeUserLookup()
	items := newFakeItemLookup()
	h := NewHydrator(users, items, zap.NewNop())

	goodUser := newTestUser("alice")
	goodItem := newTestItem(goodUser.ID, "bike")
	users.add(goodUser)
	items.add(goodItem)

	good := rowFor(goodUser, goodItem, "good")

	missingUser := good
	missingUser.ID = uuid.New()
	missingUser.Title = "missing-user"
	missingUser.HostUserID = uuid.New()

	missingItem := good
	missingItem.ID = uuid.New()
	missingItem.Title = "missing-item"
	missingItem.HostItemID = uuid.New()

	badStatus := good
	badStatus.ID = uuid.New()
	badStatus.Title = "bad-status"
	badStatus.Status = "PENDING"

	out := h.HydrateBatch(context.Background(),
		[]store.TruekeRow{missingUser, good, missingItem, badStatus})

	require.Len(t, out, 1)
	assert.Equal(t, "good", out[0].Title)
	assert.Equal(t, goodUser.ID, out[0].HostUser.ID)
	assert.Equal(t, goodItem.ID, out[0].HostItem.ID)
}

func TestHydrateBatchKeepsRecordWithMissingTaker(t *testing.T) {
	users := newFakeUserLookup()
	items := newFakeItemLookup()
	h := NewHydrator(users, items, zap.NewNop())

	host := newTestUser("host")
	hostItem := newTestItem(host.ID, "bike")
	users.add(host)
	items.add(hostItem)

	row := rowFor(host, hostItem, "half-accepted")
	danglingTaker := uuid.New()
	row.TakerUserID = &danglingTaker
	row.Status = string(models.TruekeReserved)

	out := h.HydrateBatch(context.Background(), []store.TruekeRow{row})
	require.Len(t, out, 1)
	assert.Nil(t, out[0].TakerUser)
	assert.Nil(t, out[0].TakerItem)
}

func TestHydrateBatchLooksUpEachIDOnce(t *testing.T) {
	users := newFakeUserLookup()
	items := newFakeItemLookup()
	h := NewHydrator(users, items, zap.NewNop())

	host := newTestUser("prolific")
	users.add(host)

	var rows []store.TruekeRow
	for i := 0; i < 20; i++ {
		it := newTestItem(host.ID, "item")
		items.add(it)
		rows = append(rows, rowFor(host, it, "t"))
	}

	out := h.HydrateBatch(context.Background(), rows)
	require.Len(t, out, 20)
	assert.Equal(t, 1, users.callCount(host.ID))
}

func TestHydrateBatchCachesNotFound(t *testing.T) {
	users := newFakeUserLookup()
	items := newFakeItemLookup()
	h := NewHydrator(users, items, zap.NewNop())

	ghost := uuid.New()
	var rows []store.TruekeRow
	for i := 0; i < 10; i++ {
		it := newTestItem(ghost, "item")
		items.add(it)
		rows = append(rows, store.TruekeRow{
			ID:         uuid.New(),
			Title:      "t",
			HostUserID: ghost,
			HostItemID: it.ID,
			Status:     string(models.TruekeOpen),
		})
	}

	out := h.HydrateBatch(context.Background(), rows)
	assert.Empty(t, out)
	assert.Equal(t, 1, users.callCount(ghost))
}

func TestHydrateBatchContainsLookupErrors(t *testing.T) {
	users := newFakeUserLookup()
	items := newFakeItemLookup()
	h := NewHydrator(users, items, zap.NewNop())

	okUser := newTestUser("ok")
	okItem := newTestItem(okUser.ID, "fine")
	users.add(okUser)
	items.add(okItem)

	brokenUser := uuid.New()
	users.errs[brokenUser] = errors.New("connection reset")
	brokenItem := newTestItem(brokenUser, "cursed")
	items.add(brokenItem)

	out := h.HydrateBatch(context.Background(), []store.TruekeRow{
		{ID: uuid.New(), Title: "broken", HostUserID: brokenUser, HostItemID: brokenItem.ID, Status: string(models.TruekeOpen)},
		rowFor(okUser, okItem, "ok"),
	})

	require.Len(t, out, 1)
	assert.Equal(t, "ok", out[0].Title)
}

func TestHydrateSingleBrokenRowIsNotFound(t *testing.T) {
	h := NewHydrator(newFakeUserLookup(), newFakeItemLookup(), zap.NewNop())

	row := store.TruekeRow{
		ID:         uuid.New(),
		Title:      "orphan",
		HostUserID: uuid.New(),
		HostItemID: uuid.New(),
		Status:     string(models.TruekeOpen),
	}
	_, err := h.Hydrate(context.Background(), row)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
