package itinerary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wanderplan/wanderplan/internal/keystore"
)

// planningKey is the persistence key for the saved itinerary.
const planningKey = "wanderplan:saved_itinerary"

// StoreConfig holds configuration for the itinerary store.
type StoreConfig struct {
	Store  keystore.Store
	Logger zerolog.Logger
}

// Store owns the saved itinerary. It has two states: empty (no itinerary)
// and loaded. The fine-grained mutators are no-ops while empty; while
// loaded they keep TotalPrice equal to the sum of all non-break activity
// prices by recomputing it with a full re-scan after every price-bearing
// change, then persist the whole itinerary before returning.
type Store struct {
	store  keystore.Store
	logger zerolog.Logger

	mu      sync.Mutex
	current *SavedItinerary
}

// NewStore creates an empty itinerary store.
func NewStore(cfg StoreConfig) *Store {
	return &Store{
		store:  cfg.Store,
		logger: cfg.Logger,
	}
}

// Current returns a copy of the loaded itinerary, or nil when empty.
func (s *Store) Current() *SavedItinerary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// Save replaces the itinerary wholesale and persists it. The caller-supplied
// TotalPrice is trusted; it is only re-derived by subsequent fine-grained
// mutations.
func (s *Store) Save(ctx context.Context, it SavedItinerary) error {
	s.mu.Lock()
	s.current = it.Clone()
	// Snapshot under the lock; persist must not read the published record
	// while a concurrent mutator writes through it.
	snapshot := s.current.Clone()
	s.mu.Unlock()

	return s.persist(ctx, snapshot)
}

// Load reads and parses the persisted itinerary. On success it replaces the
// in-memory state and returns the itinerary; an absent key empties the
// store and yields nil; a malformed payload is logged and yields nil
// without an error.
func (s *Store) Load(ctx context.Context) (*SavedItinerary, error) {
	data, err := s.store.Get(ctx, planningKey)
	if err != nil {
		if errors.Is(err, keystore.ErrKeyNotFound) {
			s.setCurrent(nil)
			return nil, nil
		}
		s.logger.Warn().Err(err).Msg("failed to read saved itinerary")
		return nil, fmt.Errorf("reading saved itinerary: %w", err)
	}

	var it SavedItinerary
	if err := json.Unmarshal(data, &it); err != nil {
		s.logger.Warn().Err(err).Msg("ignoring malformed persisted itinerary")
		s.setCurrent(nil)
		return nil, nil
	}

	// Clone before publishing; once &it is the current record, mutators
	// may write through it.
	out := it.Clone()
	s.setCurrent(&it)
	return out, nil
}

// Clear removes the persisted itinerary and empties the store. The store
// empties even when the removal fails.
func (s *Store) Clear(ctx context.Context) error {
	s.setCurrent(nil)

	if err := s.store.Remove(ctx, planningKey); err != nil {
		s.logger.Warn().Err(err).Msg("failed to remove persisted itinerary")
		return fmt.Errorf("removing saved itinerary: %w", err)
	}
	return nil
}

// UpdateActivity replaces the activity matched by id within day dayIndex
// with replacement, preserving the old Time and Duration so editing an
// activity's content never moves its schedule slot. TotalPrice is
// recomputed by full re-scan. A missing day or activity is a silent no-op.
func (s *Store) UpdateActivity(ctx context.Context, dayIndex int, activityID string, replacement PlannedActivity) error {
	return s.mutate(ctx, func(it *SavedItinerary) bool {
		day, ok := dayAt(it, dayIndex)
		if !ok {
			return false
		}
		for i, act := range day.Activities {
			if act.ID != activityID {
				continue
			}
			replacement.Time = act.Time
			replacement.Duration = act.Duration
			day.Activities[i] = replacement
			it.TotalPrice = it.SumActivityPrices()
			return true
		}
		return false
	})
}

// RemoveActivity filters the activity matched by id out of day dayIndex and
// recomputes TotalPrice by full re-scan. A missing day is a silent no-op.
func (s *Store) RemoveActivity(ctx context.Context, dayIndex int, activityID string) error {
	return s.mutate(ctx, func(it *SavedItinerary) bool {
		day, ok := dayAt(it, dayIndex)
		if !ok {
			return false
		}

		kept := day.Activities[:0]
		for _, act := range day.Activities {
			if act.ID != activityID {
				kept = append(kept, act)
			}
		}
		if len(kept) == len(day.Activities) {
			return false
		}

		day.Activities = kept
		it.TotalPrice = it.SumActivityPrices()
		return true
	})
}

// AddCustomActivity appends the activity to day dayIndex, forcing
// IsCustom=true and PaymentStatus=pending regardless of the supplied
// values, and recomputes TotalPrice. An activity without an id gets a
// fresh one. A missing day is a silent no-op.
func (s *Store) AddCustomActivity(ctx context.Context, dayIndex int, act PlannedActivity) error {
	return s.mutate(ctx, func(it *SavedItinerary) bool {
		day, ok := dayAt(it, dayIndex)
		if !ok {
			return false
		}

		if act.ID == "" {
			act.ID = "act_" + uuid.New().String()[:22]
		}
		act.IsCustom = true
		act.PaymentStatus = PaymentPending

		day.Activities = append(day.Activities, act)
		it.TotalPrice = it.SumActivityPrices()
		return true
	})
}

// UpdatePaymentStatus sets the payment status on the matched activity.
// Payment changes never affect price, so TotalPrice is not recomputed.
// A missing day or activity is a silent no-op.
func (s *Store) UpdatePaymentStatus(ctx context.Context, dayIndex int, activityID string, status PaymentStatus) error {
	return s.mutate(ctx, func(it *SavedItinerary) bool {
		act, ok := activityAt(it, dayIndex, activityID)
		if !ok {
			return false
		}
		act.PaymentStatus = status
		return true
	})
}

// UpdateNote sets the note on the matched activity. No price recompute.
// A missing day or activity is a silent no-op.
func (s *Store) UpdateNote(ctx context.Context, dayIndex int, activityID string, note string) error {
	return s.mutate(ctx, func(it *SavedItinerary) bool {
		act, ok := activityAt(it, dayIndex, activityID)
		if !ok {
			return false
		}
		act.Note = note
		return true
	})
}

// mutate applies fn to the loaded itinerary and persists it when fn reports
// a change. While the store is empty, or when fn matches nothing, the call
// is a no-op with no persistence side effect.
func (s *Store) mutate(ctx context.Context, fn func(*SavedItinerary) bool) error {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return nil
	}
	changed := fn(s.current)
	if !changed {
		s.mu.Unlock()
		return nil
	}
	snapshot := s.current.Clone()
	s.mu.Unlock()

	return s.persist(ctx, snapshot)
}

// persist writes the itinerary under the planning key. A write failure is
// logged and returned; the in-memory state stays authoritative until the
// next reload.
func (s *Store) persist(ctx context.Context, it *SavedItinerary) error {
	data, err := json.Marshal(it)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to serialize itinerary")
		return fmt.Errorf("serializing itinerary: %w", err)
	}

	if err := s.store.Set(ctx, planningKey, data); err != nil {
		s.logger.Warn().Err(err).Msg("failed to persist itinerary")
		return fmt.Errorf("persisting itinerary: %w", err)
	}

	return nil
}

func (s *Store) setCurrent(it *SavedItinerary) {
	s.mu.Lock()
	s.current = it
	s.mu.Unlock()
}

// dayAt returns the day at index, guarding against out-of-range indices.
func dayAt(it *SavedItinerary, dayIndex int) (*DayPlan, bool) {
	if dayIndex < 0 || dayIndex >= len(it.Days) {
		return nil, false
	}
	return &it.Days[dayIndex], true
}

// activityAt returns the activity matched by id within the given day.
func activityAt(it *SavedItinerary, dayIndex int, activityID string) (*PlannedActivity, bool) {
	day, ok := dayAt(it, dayIndex)
	if !ok {
		return nil, false
	}
	for i := range day.Activities {
		if day.Activities[i].ID == activityID {
			return &day.Activities[i], true
		}
	}
	return nil, false
}
