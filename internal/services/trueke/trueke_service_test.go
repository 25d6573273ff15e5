package trueke

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/truekeo/truekeo-api/internal/models"
	"github.com/truekeo/truekeo-api/internal/store"
)

// fakeTruekeStore keeps rows in memory and counts writes. afterGet, when
// set, runs after every GetByID so tests can interleave a concurrent write
// between a service's read and its status update.
type fakeTruekeStore struct {
	rows        map[uuid.UUID]*store.TruekeRow
	createCalls int
	afterGet    func()
}

func newFakeTruekeStore() *fakeTruekeStore {
	return &fakeTruekeStore{rows: make(map[uuid.UUID]*store.TruekeRow)}
}

func (f *fakeTruekeStore) Create(_ context.Context, row *store.TruekeRow) error {
	f.createCalls++
	row.ID = uuid.New()
	copied := *row
	f.rows[row.ID] = &copied
	return nil
}

func (f *fakeTruekeStore) GetByID(_ context.Context, id uuid.UUID) (*store.TruekeRow, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *row
	if f.afterGet != nil {
		f.afterGet()
	}
	return &copied, nil
}

func (f *fakeTruekeStore) ListOpen(_ context.Context, _, _ int) ([]store.TruekeRow, error) {
	var out []store.TruekeRow
	for _, row := range f.rows {
		if row.Status == string(models.TruekeOpen) {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeTruekeStore) ListByUser(_ context.Context, userID uuid.UUID) ([]store.TruekeRow, error) {
	var out []store.TruekeRow
	for _, row := range f.rows {
		if row.HostUserID == userID || (row.TakerUserID != nil && *row.TakerUserID == userID) {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeTruekeStore) UpdateDetails(_ context.Context, row *store.TruekeRow) error {
	if _, ok := f.rows[row.ID]; !ok {
		return models.ErrNotFound
	}
	copied := *row
	f.rows[row.ID] = &copied
	return nil
}

func (f *fakeTruekeStore) UpdateStatus(_ context.Context, id uuid.UUID, from, to models.TruekeStatus, takerUserID, takerItemID *uuid.UUID) error {
	row, ok := f.rows[id]
	if !ok {
		return models.ErrNotFound
	}
	if row.Status != string(from) {
		return models.Preconditionf("trueke is no longer %s", from)
	}
	row.Status = string(to)
	if takerUserID != nil {
		row.TakerUserID = takerUserID
	}
	if takerItemID != nil {
		row.TakerItemID = takerItemID
	}
	return nil
}

func (f *fakeTruekeStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.rows[id]; !ok {
		return models.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

// fakeItemStore wraps the lookup fake with the mutating half of the store.
type fakeItemStore struct {
	*fakeItemLookup
}

func newFakeItemStore() *fakeItemStore {
	return &fakeItemStore{fakeItemLookup: newFakeItemLookup()}
}

func (f *fakeItemStore) Create(_ context.Context, item *models.Item) error {
	item.ID = uuid.New()
	f.add(item)
	return nil
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
	if _, ok := f.items[id]; !ok {
		return models.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func newTestService() (*TruekeService, *fakeTruekeStore, *fakeItemStore, *fakeUserLookup) {
	truekes := newFakeTruekeStore()
	items := newFakeItemStore()
	users := newFakeUserLookup()
	hydrator := NewHydrator(users, items, zap.NewNop())
	svc := NewTruekeService(truekes, items, hydrator, zap.NewNop())
	return svc, truekes, items, users
}

func TestCreateUnauthenticatedWritesNothing(t *testing.T) {
	svc, truekes, _, _ := newTestService()

	_, err := svc.Create(context.Background(), uuid.Nil, CreateInput{
		Title:      "bike for guitar",
		HostItemID: uuid.New(),
	})

	assert.ErrorIs(t, err, models.ErrNotAuthenticated)
	assert.Zero(t, truekes.createCalls)
}

func TestCreateRequiresOwnedAvailableItem(t *testing.T) {
	svc, truekes, items, users := newTestService()

	host := newTestUser("alice")
	users.add(host)
	stranger := newTestUser("bob")
	users.add(stranger)

	theirs := newTestItem(stranger.ID, "guitar")
	items.add(theirs)
	reserved := newTestItem(host.ID, "lamp")
	reserved.Status = models.ItemReserved
	items.add(reserved)

	_, err := svc.Create(context.Background(), host.ID, CreateInput{Title: "t", HostItemID: theirs.ID})
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = svc.Create(context.Background(), host.ID, CreateInput{Title: "t", HostItemID: reserved.ID})
	assert.True(t, models.IsPrecondition(err))

	assert.Zero(t, truekes.createCalls)
}

func TestCreateAndGetRoundTrip(t *testing.T) {
	svc, _, items, users := newTestService()

	host := newTestUser("alice")
	users.add(host)
	bike := newTestItem(host.ID, "bike")
	items.add(bike)

	created, err := svc.Create(context.Background(), host.ID, CreateInput{
		Title:       "bike for anything musical",
		Description: "city bike, rides fine",
		HostItemID:  bike.ID,
		Location:    &models.GeoPoint{Latitude: 40.4168, Longitude: -3.7038},
	})
	require.NoError(t, err)
	assert.Equal(t, models.TruekeOpen, created.Status)
	assert.Equal(t, host.ID, created.HostUser.ID)
	assert.Equal(t, bike.ID, created.HostItem.ID)
	assert.Nil(t, created.TakerUser)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, got.Title)
	assert.Equal(t, "city bike, rides fine", got.Description)
	require.NotNil(t, got.Location)
	assert.InDelta(t, 40.4168, got.Location.Latitude, 1e-9)
}

func TestUpdateReplacesAndClearsOptionalFields(t *testing.T) {
	svc, _, items, users := newTestService()

	host := newTestUser("alice")
	users.add(host)
	bike := newTestItem(host.ID, "bike")
	items.add(bike)

	when := time.Date(2026, 9, 12, 18, 0, 0, 0, time.UTC)
	created, err := svc.Create(context.Background(), host.ID, CreateInput{
		Title:       "bike for guitar",
		Description: "meet downtown",
		HostItemID:  bike.ID,
		Location:    &models.GeoPoint{Latitude: 40.4, Longitude: -3.7},
		ScheduledAt: &when,
	})
	require.NoError(t, err)

	// Omitting the optional fields clears them.
	updated, err := svc.Update(context.Background(), host.ID, created.ID, UpdateInput{
		Title: "bike for any instrument",
	})
	require.NoError(t, err)
	assert.Equal(t, "bike for any instrument", updated.Title)
	assert.Empty(t, updated.Description)
	assert.Nil(t, updated.Location)
	assert.Nil(t, updated.ScheduledAt)

	_, err = svc.Update(context.Background(), host.ID, created.ID, UpdateInput{})
	assert.True(t, models.IsPrecondition(err))
}

func TestAcceptReservesBothItems(t *testing.T) {
	svc, _, items, users := newTestService()

	host := newTestUser("alice")
	taker := newTestUser("bob")
	users.add(host)
	users.add(taker)
	hostItem := newTestItem(host.ID, "bike")
	takerItem := newTestItem(taker.ID, "guitar")
	items.add(hostItem)
	items.add(takerItem)

	created, err := svc.Create(context.Background(), host.ID, CreateInput{Title: "t", HostItemID: hostItem.ID})
	require.NoError(t, err)

	accepted, err := svc.Accept(context.Background(), taker.ID, created.ID, takerItem.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TruekeReserved, accepted.Status)
	require.NotNil(t, accepted.TakerUser)
	assert.Equal(t, taker.ID, accepted.TakerUser.ID)

	assert.Equal(t, models.ItemReserved, items.items[hostItem.ID].Status)
	assert.Equal(t, models.ItemReserved, items.items[takerItem.ID].Status)
}

func TestAcceptLosesRaceToConcurrentAccept(t *testing.T) {
	svc, truekes, items, users := newTestService()

	host := newTestUser("alice")
	fast := newTestUser("bob")
	slow := newTestUser("carol")
	users.add(host)
	users.add(fast)
	users.add(slow)
	hostItem := newTestItem(host.ID, "bike")
	fastItem := newTestItem(fast.ID, "guitar")
	slowItem := newTestItem(slow.ID, "lamp")
	items.add(hostItem)
	items.add(fastItem)
	items.add(slowItem)

	created, err := svc.Create(context.Background(), host.ID, CreateInput{Title: "t", HostItemID: hostItem.ID})
	require.NoError(t, err)

	// A competing accept lands between the loser's read and its write.
	truekes.afterGet = func() {
		truekes.afterGet = nil
		row := truekes.rows[created.ID]
		row.Status = string(models.TruekeReserved)
		row.TakerUserID = &fast.ID
		row.TakerItemID = &fastItem.ID
	}

	_, err = svc.Accept(context.Background(), slow.ID, created.ID, slowItem.ID)
	assert.True(t, models.IsPrecondition(err))

	// The winner keeps the reservation and the loser's item stays free.
	row := truekes.rows[created.ID]
	assert.Equal(t, string(models.TruekeReserved), row.Status)
	assert.Equal(t, fast.ID, *row.TakerUserID)
	assert.Equal(t, models.ItemAvailable, items.items[slowItem.ID].Status)
}

func TestAcceptOwnTruekeRejected(t *testing.T) {
	svc, _, items, users := newTestService()

	host := newTestUser("alice")
	users.add(host)
	hostItem := newTestItem(host.ID, "bike")
	other := newTestItem(host.ID, "lamp")
	items.add(hostItem)
	items.add(other)

	created, err := svc.Create(context.Background(), host.ID, CreateInput{Title: "t", HostItemID: hostItem.ID})
	require.NoError(t, err)

	_, err = svc.Accept(context.Background(), host.ID, created.ID, other.ID)
	assert.True(t, models.IsPrecondition(err))
}

func TestCancelReleasesReservedItems(t *testing.T) {
	svc, _, items, users := newTestService()

	host := newTestUser("alice")
	taker := newTestUser("bob")
	users.add(host)
	users.add(taker)
	hostItem := newTestItem(host.ID, "bike")
	takerItem := newTestItem(taker.ID, "guitar")
	items.add(hostItem)
	items.add(takerItem)

	created, err := svc.Create(context.Background(), host.ID, CreateInput{Title: "t", HostItemID: hostItem.ID})
	require.NoError(t, err)
	_, err = svc.Accept(context.Background(), taker.ID, created.ID, takerItem.ID)
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), taker.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TruekeCancelled, cancelled.Status)

	assert.Equal(t, models.ItemAvailable, items.items[hostItem.ID].Status)
	assert.Equal(t, models.ItemAvailable, items.items[takerItem.ID].Status)
}

func TestCompleteMarksItemsExchanged(t *testing.T) {
	svc, _, items, users := newTestService()

	host := newTestUser("alice")
	taker := newTestUser("bob")
	users.add(host)
	users.add(taker)
	hostItem := newTestItem(host.ID, "bike")
	takerItem := newTestItem(taker.ID, "guitar")
	items.add(hostItem)
	items.add(takerItem)

	created, err := svc.Create(context.Background(), host.ID, CreateInput{Title: "t", HostItemID: hostItem.ID})
	require.NoError(t, err)
	_, err = svc.Accept(context.Background(), taker.ID, created.ID, takerItem.ID)
	require.NoError(t, err)

	// Only the host closes the deal.
	_, err = svc.Complete(context.Background(), taker.ID, created.ID)
	assert.ErrorIs(t, err, models.ErrForbidden)

	completed, err := svc.Complete(context.Background(), host.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TruekeCompleted, completed.Status)
	assert.Equal(t, models.ItemExchanged, items.items[hostItem.ID].Status)
	assert.Equal(t, models.ItemExchanged, items.items[takerItem.ID].Status)
}

func TestDeleteOnlyWhileOpen(t *testing.T) {
	svc, truekes, items, users := newTestService()

	host := newTestUser("alice")
	taker := newTestUser("bob")
	users.add(host)
	users.add(taker)
	hostItem := newTestItem(host.ID, "bike")
	takerItem := newTestItem(taker.ID, "guitar")
	items.add(hostItem)
	items.add(takerItem)

	created, err := svc.Create(context.Background(), host.ID, CreateInput{Title: "t", HostItemID: hostItem.ID})
	require.NoError(t, err)
	_, err = svc.Accept(context.Background(), taker.ID, created.ID, takerItem.ID)
	require.NoError(t, err)

	err = svc.Delete(context.Background(), host.ID, created.ID)
	assert.True(t, models.IsPrecondition(err))
	assert.Contains(t, truekes.rows, created.ID)
}
