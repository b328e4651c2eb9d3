package itinerary_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanderplan/wanderplan/internal/itinerary"
	"github.com/wanderplan/wanderplan/internal/keystore"
)

func newStore(kv keystore.Store) *itinerary.Store {
	return itinerary.NewStore(itinerary.StoreConfig{
		Store:  kv,
		Logger: zerolog.Nop(),
	})
}

// sampleItinerary has two days, one shared activity id across days, and a
// break whose price must never count toward the total.
func sampleItinerary() itinerary.SavedItinerary {
	return itinerary.SavedItinerary{
		CityID:     "city_lisbon",
		CityName:   "Lisbon",
		Currency:   "EUR",
		CreatedAt:  time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC),
		TotalPrice: 95,
		Days: []itinerary.DayPlan{
			{
				Date:     "2024-06-01",
				DayLabel: "Day 1",
				Activities: []itinerary.PlannedActivity{
					{ID: "act_tram", Title: "Tram 28 ride", Time: "09:00", Duration: "2h", Category: "sightseeing", Price: 35, Currency: "EUR"},
					{ID: "act_lunch", Title: "Lunch break", Time: "12:00", Duration: "1h", Price: 20, IsBreak: true},
					{ID: "act_castle", Title: "Castle tour", Time: "14:00", Duration: "3h", Category: "culture", Price: 40, Currency: "EUR", PaymentStatus: itinerary.PaymentPending},
				},
			},
			{
				Date:     "2024-06-02",
				DayLabel: "Day 2",
				Activities: []itinerary.PlannedActivity{
					// Same id as day 1's tram on purpose; lookups are day-scoped.
					{ID: "act_tram", Title: "Belém tram", Time: "10:00", Duration: "2h", Category: "sightseeing", Price: 20, Currency: "EUR"},
				},
			},
		},
	}
}

func assertPriceInvariant(t *testing.T, it *itinerary.SavedItinerary) {
	t.Helper()
	require.NotNil(t, it)
	assert.Equal(t, it.SumActivityPrices(), it.TotalPrice,
		"totalPrice must equal the sum of non-break activity prices")
}

func TestStore_MutatorsNoOpWhenEmpty(t *testing.T) {
	kv := keystore.NewMemoryStore()
	s := newStore(kv)
	ctx := context.Background()

	require.NoError(t, s.UpdateActivity(ctx, 0, "act_tram", itinerary.PlannedActivity{ID: "act_tram"}))
	require.NoError(t, s.RemoveActivity(ctx, 0, "act_tram"))
	require.NoError(t, s.AddCustomActivity(ctx, 0, itinerary.PlannedActivity{Title: "Beach"}))
	require.NoError(t, s.UpdatePaymentStatus(ctx, 0, "act_tram", itinerary.PaymentPaid))
	require.NoError(t, s.UpdateNote(ctx, 0, "act_tram", "bring sunscreen"))

	assert.Nil(t, s.Current())

	// Nothing was persisted either.
	_, err := kv.Get(ctx, "wanderplan:saved_itinerary")
	assert.ErrorIs(t, err, keystore.ErrKeyNotFound)
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	kv := keystore.NewMemoryStore()
	ctx := context.Background()

	saved := sampleItinerary()
	require.NoError(t, newStore(kv).Save(ctx, saved))

	// A fresh store simulates a process restart.
	loaded, err := newStore(kv).Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, saved, *loaded)
}

func TestStore_LoadNothingPersisted(t *testing.T) {
	s := newStore(keystore.NewMemoryStore())

	loaded, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, loaded)
	assert.Nil(t, s.Current())
}

func TestStore_LoadMalformedPayload(t *testing.T) {
	kv := keystore.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, "wanderplan:saved_itinerary", []byte("{broken")))

	loaded, err := newStore(kv).Load(ctx)
	require.NoError(t, err, "a malformed payload must not surface as an error")
	assert.Nil(t, loaded)
}

func TestStore_SaveTrustsCallerTotalPrice(t *testing.T) {
	kv := keystore.NewMemoryStore()
	s := newStore(kv)
	ctx := context.Background()

	it := sampleItinerary()
	it.TotalPrice = 999 // wrong on purpose
	require.NoError(t, s.Save(ctx, it))

	// Save does not re-validate.
	assert.Equal(t, float64(999), s.Current().TotalPrice)

	// The next fine-grained mutation re-derives the invariant.
	require.NoError(t, s.UpdateNote(ctx, 0, "act_tram", "window seat"))
	assert.Equal(t, float64(999), s.Current().TotalPrice, "note updates never recompute")

	require.NoError(t, s.RemoveActivity(ctx, 1, "act_tram"))
	assertPriceInvariant(t, s.Current())
}

func TestStore_PriceInvariantAfterEveryMutation(t *testing.T) {
	kv := keystore.NewMemoryStore()
	s := newStore(kv)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleItinerary()))

	require.NoError(t, s.AddCustomActivity(ctx, 1, itinerary.PlannedActivity{
		ID: "act_beach", Title: "Beach afternoon", Time: "15:00", Duration: "4h", Price: 12,
	}))
	assertPriceInvariant(t, s.Current())
	assert.Equal(t, float64(107), s.Current().TotalPrice)

	require.NoError(t, s.UpdateActivity(ctx, 0, "act_castle", itinerary.PlannedActivity{
		ID: "act_castle", Title: "Castle tour with guide", Time: "19:00", Duration: "5h", Price: 55, Currency: "EUR",
	}))
	assertPriceInvariant(t, s.Current())
	assert.Equal(t, float64(122), s.Current().TotalPrice)

	require.NoError(t, s.RemoveActivity(ctx, 0, "act_tram"))
	assertPriceInvariant(t, s.Current())
	assert.Equal(t, float64(87), s.Current().TotalPrice)

	// The break's price stays excluded throughout.
	require.NoError(t, s.RemoveActivity(ctx, 0, "act_lunch"))
	assertPriceInvariant(t, s.Current())
	assert.Equal(t, float64(87), s.Current().TotalPrice)
}

func TestStore_UpdateActivityLocksTimeAndDuration(t *testing.T) {
	s := newStore(keystore.NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleItinerary()))

	require.NoError(t, s.UpdateActivity(ctx, 0, "act_tram", itinerary.PlannedActivity{
		ID:       "act_tram",
		Title:    "Tram 28 panoramic ride",
		Time:     "14:00", // must be ignored
		Duration: "6h",    // must be ignored
		Category: "sightseeing",
		Price:    45,
		Currency: "EUR",
	}))

	got := s.Current().Days[0].Activities[0]
	assert.Equal(t, "09:00", got.Time, "update must not move the schedule slot")
	assert.Equal(t, "2h", got.Duration, "update must not change the duration")
	assert.Equal(t, "Tram 28 panoramic ride", got.Title)
	assert.Equal(t, float64(45), got.Price)
}

func TestStore_CrossDayIDCollisionIsScoped(t *testing.T) {
	s := newStore(keystore.NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleItinerary()))

	// Both days carry an "act_tram"; only day 1's copy may change.
	require.NoError(t, s.UpdateActivity(ctx, 1, "act_tram", itinerary.PlannedActivity{
		ID: "act_tram", Title: "Belém tram at sunset", Price: 25,
	}))

	day0 := s.Current().Days[0].Activities[0]
	day1 := s.Current().Days[1].Activities[0]
	assert.Equal(t, "Tram 28 ride", day0.Title, "other days must stay untouched")
	assert.Equal(t, "Belém tram at sunset", day1.Title)
	assertPriceInvariant(t, s.Current())
}

func TestStore_AddCustomActivityForcesFlags(t *testing.T) {
	s := newStore(keystore.NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleItinerary()))

	// Caller-supplied values for the forced fields are discarded.
	require.NoError(t, s.AddCustomActivity(ctx, 0, itinerary.PlannedActivity{
		Title:         "Fado night",
		Time:          "21:00",
		Duration:      "2h",
		Price:         30,
		IsCustom:      false,
		PaymentStatus: itinerary.PaymentPaid,
	}))

	acts := s.Current().Days[0].Activities
	got := acts[len(acts)-1]
	assert.True(t, got.IsCustom)
	assert.Equal(t, itinerary.PaymentPending, got.PaymentStatus)
	assert.True(t, strings.HasPrefix(got.ID, "act_"), "missing id should be minted")
	assertPriceInvariant(t, s.Current())
}

func TestStore_PaymentAndNoteArePriceNeutral(t *testing.T) {
	s := newStore(keystore.NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleItinerary()))
	before := s.Current().TotalPrice

	for i := 0; i < 5; i++ {
		require.NoError(t, s.UpdatePaymentStatus(ctx, 0, "act_castle", itinerary.PaymentPaid))
		require.NoError(t, s.UpdateNote(ctx, 0, "act_castle", "ask for the rooftop"))
	}

	it := s.Current()
	assert.Equal(t, before, it.TotalPrice)
	assert.Equal(t, itinerary.PaymentPaid, it.Days[0].Activities[2].PaymentStatus)
	assert.Equal(t, "ask for the rooftop", it.Days[0].Activities[2].Note)
}

func TestStore_NotFoundIsNoOp(t *testing.T) {
	kv := keystore.NewMemoryStore()
	s := newStore(kv)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleItinerary()))
	before := marshal(t, s.Current())
	persistedBefore, err := kv.Get(ctx, "wanderplan:saved_itinerary")
	require.NoError(t, err)

	require.NoError(t, s.UpdateActivity(ctx, 9, "act_tram", itinerary.PlannedActivity{ID: "act_tram"}))
	require.NoError(t, s.UpdateActivity(ctx, 0, "act_ghost", itinerary.PlannedActivity{ID: "act_ghost"}))
	require.NoError(t, s.RemoveActivity(ctx, -1, "act_tram"))
	require.NoError(t, s.RemoveActivity(ctx, 0, "act_ghost"))
	require.NoError(t, s.AddCustomActivity(ctx, 9, itinerary.PlannedActivity{Title: "Nowhere"}))
	require.NoError(t, s.UpdatePaymentStatus(ctx, 0, "act_ghost", itinerary.PaymentPaid))
	require.NoError(t, s.UpdateNote(ctx, 9, "act_tram", "lost"))

	assert.Equal(t, before, marshal(t, s.Current()), "itinerary must be byte-for-byte identical")

	persistedAfter, err := kv.Get(ctx, "wanderplan:saved_itinerary")
	require.NoError(t, err)
	assert.Equal(t, persistedBefore, persistedAfter, "no-ops must not rewrite the persisted copy")
}

func TestStore_ClearResetsState(t *testing.T) {
	kv := keystore.NewMemoryStore()
	s := newStore(kv)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleItinerary()))
	require.NoError(t, s.Clear(ctx))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	// Mutators are back to no-ops.
	require.NoError(t, s.AddCustomActivity(ctx, 0, itinerary.PlannedActivity{Title: "Beach"}))
	assert.Nil(t, s.Current())
}

func TestStore_PersistFailureKeepsMemoryAuthoritative(t *testing.T) {
	kv := &flakyStore{MemoryStore: keystore.NewMemoryStore()}
	s := newStore(kv)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleItinerary()))

	kv.failWrites = true
	err := s.RemoveActivity(ctx, 0, "act_castle")
	require.Error(t, err, "the failed write must be surfaced")

	// The in-memory state keeps the mutation and the invariant.
	it := s.Current()
	assert.Len(t, it.Days[0].Activities, 2)
	assertPriceInvariant(t, it)
}

func TestStore_ConcurrentSaveAndMutate(t *testing.T) {
	s := newStore(keystore.NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleItinerary()))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Save(ctx, sampleItinerary())
		}()
		go func() {
			defer wg.Done()
			_ = s.UpdateNote(ctx, 0, "act_castle", "window seat")
			_ = s.UpdatePaymentStatus(ctx, 0, "act_castle", itinerary.PaymentPaid)
			_, _ = s.Load(ctx)
		}()
	}
	wg.Wait()

	assertPriceInvariant(t, s.Current())
}

func TestStore_CurrentReturnsACopy(t *testing.T) {
	s := newStore(keystore.NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleItinerary()))

	it := s.Current()
	it.Days[0].Activities[0].Price = 9999

	assert.Equal(t, float64(35), s.Current().Days[0].Activities[0].Price,
		"mutating a returned itinerary must not leak into the store")
}

func marshal(t *testing.T, it *itinerary.SavedItinerary) []byte {
	t.Helper()
	data, err := json.Marshal(it)
	require.NoError(t, err)
	return data
}

// flakyStore wraps MemoryStore and fails writes on demand.
type flakyStore struct {
	*keystore.MemoryStore
	failWrites bool
}

var errWriteFailed = errors.New("write failed")

func (s *flakyStore) Set(ctx context.Context, key string, value []byte) error {
	if s.failWrites {
		return errWriteFailed
	}
	return s.MemoryStore.Set(ctx, key, value)
}
