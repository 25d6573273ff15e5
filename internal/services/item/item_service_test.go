package item

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/truekeo/truekeo-api/internal/models"
)

// fakeItemStore keeps items in memory and counts delete calls.
type fakeItemStore struct {
	items       map[uuid.UUID]*models.Item
	deleteCalls int
}

func newFakeItemStore() *fakeItemStore {
	return &fakeItemStore{items: make(map[uuid.UUID]*models.Item)}
}

func (f *fakeItemStore) Create(_ context.Context, item *models.Item) error {
	item.ID = uuid.New()
	copied := *item
	f.items[item.ID] = &copied
	return nil
}

func (f *fakeItemStore) GetByID(_ context.Context, id uuid.UUID) (*models.Item, error) {
	it, ok := f.items[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *it
	return &copied, nil
}

func (f *fakeItemStore) ListByUser(_ context.Context, userID uuid.UUID, status *models.ItemStatus) ([]models.Item, error) {
	var out []models.Item
	for _, it := range f.items {
		if it.UserID != userID {
			continue
		}
		if status != nil && it.Status != *status {
			continue
		}
		out = append(out, *it)
	}
	return out, nil
}

func (f *fakeItemStore) UpdateStatus(_ context.Context, id uuid.UUID, status models.ItemStatus) error {
	it, ok := f.items[id]
	if !ok {
		return models.ErrNotFound
	}
	it.Status = status
	return nil
}

func (f *fakeItemStore) AppendImageURL(_ context.Context, id uuid.UUID, url string) error {
	it, ok := f.items[id]
	if !ok {
		return models.ErrNotFound
	}
	it.ImageURLs = append(it.ImageURLs, url)
	return nil
}

func (f *fakeItemStore) Delete(_ context.Context, id uuid.UUID) error {
	f.deleteCalls++
	if _, ok := f.items[id]; !ok {
		return models.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func TestCreateAndGetRoundTrip(t *testing.T) {
	store := newFakeItemStore()
	svc := NewItemService(store, zap.NewNop())
	owner := uuid.New()

	created, err := svc.Create(context.Background(), owner, CreateInput{
		Name:      "Trek 820",
		Brand:     "Trek",
		Condition: "GOOD",
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Trek 820", got.Name)
	assert.Equal(t, "Trek", got.Brand)
	assert.Equal(t, models.ConditionGood, got.Condition)
	assert.Equal(t, models.ItemAvailable, got.Status)
}

func TestCreateRejectsUnknownCondition(t *testing.T) {
	svc := NewItemService(newFakeItemStore(), zap.NewNop())

	_, err := svc.Create(context.Background(), uuid.New(), CreateInput{
		Name:      "mystery box",
		Condition: "MINT",
	})
	assert.True(t, models.IsPrecondition(err))
}

func TestCreateUnauthenticated(t *testing.T) {
	svc := NewItemService(newFakeItemStore(), zap.NewNop())

	_, err := svc.Create(context.Background(), uuid.Nil, CreateInput{Name: "x", Condition: "NEW"})
	assert.ErrorIs(t, err, models.ErrNotAuthenticated)
}

func TestDeleteReservedItemNeverReachesStore(t *testing.T) {
	store := newFakeItemStore()
	svc := NewItemService(store, zap.NewNop())
	owner := uuid.New()

	for _, status := range []models.ItemStatus{models.ItemReserved, models.ItemExchanged} {
		item := &models.Item{UserID: owner, Name: "locked", Condition: models.ConditionGood, Status: status}
		require.NoError(t, store.Create(context.Background(), item))
		store.items[item.ID].Status = status

		err := svc.Delete(context.Background(), owner, item.ID)
		assert.True(t, models.IsPrecondition(err), "status %s", status)
	}
	assert.Zero(t, store.deleteCalls)
}

func TestDeleteAvailableItem(t *testing.T) {
	store := newFakeItemStore()
	svc := NewItemService(store, zap.NewNop())
	owner := uuid.New()

	created, err := svc.Create(context.Background(), owner, CreateInput{Name: "bike", Condition: "FAIR"})
	require.NoError(t, err)

	// Someone else must not be able to delete it.
	err = svc.Delete(context.Background(), uuid.New(), created.ID)
	assert.ErrorIs(t, err, models.ErrForbidden)

	require.NoError(t, svc.Delete(context.Background(), owner, created.ID))
	_, err = svc.Get(context.Background(), created.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdateStatusFollowsLifecycle(t *testing.T) {
	store := newFakeItemStore()
	svc := NewItemService(store, zap.NewNop())
	owner := uuid.New()

	created, err := svc.Create(context.Background(), owner, CreateInput{Name: "bike", Condition: "NEW"})
	require.NoError(t, err)

	// AVAILABLE cannot jump straight to EXCHANGED.
	_, err = svc.UpdateStatus(context.Background(), owner, created.ID, models.ItemExchanged)
	assert.True(t, models.IsPrecondition(err))

	reserved, err := svc.UpdateStatus(context.Background(), owner, created.ID, models.ItemReserved)
	require.NoError(t, err)
	assert.Equal(t, models.ItemReserved, reserved.Status)

	exchanged, err := svc.UpdateStatus(context.Background(), owner, created.ID, models.ItemExchanged)
	require.NoError(t, err)
	assert.Equal(t, models.ItemExchanged, exchanged.Status)
}
