package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/wanderplan/wanderplan/internal/keystore"
)

// Persistence keys.
const (
	draftKey     = "wanderplan:trip_draft"
	pilotSeenKey = "wanderplan:pilot_wizard_seen"
)

// dateLayout is the wire format for calendar dates.
const dateLayout = "2006-01-02"

// BuilderConfig holds configuration for the draft builder.
type BuilderConfig struct {
	Store  keystore.Store
	Logger zerolog.Logger
}

// Builder accumulates partial trip-plan updates into a single coherent
// draft record. Persistence is on demand (Save), not on every mutation;
// the in-memory draft stays authoritative when a write fails.
type Builder struct {
	store  keystore.Store
	logger zerolog.Logger

	mu      sync.Mutex
	current TripDraftRequest
}

// NewBuilder creates a draft builder holding the default draft record.
func NewBuilder(cfg BuilderConfig) *Builder {
	return &Builder{
		store:   cfg.Store,
		logger:  cfg.Logger,
		current: DefaultDraft(),
	}
}

// Current returns a copy of the current draft.
func (b *Builder) Current() TripDraftRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return cloneDraft(b.current)
}

// Update merges the patch into the current draft, field by field, and
// returns the resulting draft. When either date is present in the patch,
// DurationDays is recomputed from the merged dates: 0 when either date is
// absent after the merge, unchanged when a non-empty date fails to parse.
func (b *Builder) Update(patch TripPlanPatch) TripDraftRequest {
	b.mu.Lock()
	defer b.mu.Unlock()

	d := &b.current

	if patch.DestinationID != nil {
		d.DestinationID = *patch.DestinationID
	}
	if patch.Destination != nil {
		city := *patch.Destination
		d.Destination = &city
	}
	if patch.Mode != nil {
		d.Mode = *patch.Mode
	}
	if patch.StartDate != nil {
		d.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		d.EndDate = *patch.EndDate
	}
	if patch.Travelers != nil {
		applyTravelersPatch(&d.Travelers, patch.Travelers)
	}
	if patch.Context != nil {
		d.Context = *patch.Context
	}
	if patch.Pace != nil {
		d.Pace = *patch.Pace
	}
	if patch.Interests != nil {
		d.Interests = append([]string(nil), (*patch.Interests)...)
	}
	if patch.BudgetTier != nil {
		d.BudgetTier = *patch.BudgetTier
	}
	if patch.Transport != nil {
		d.Transport = *patch.Transport
	}

	if patch.StartDate != nil || patch.EndDate != nil {
		b.rederiveDuration()
	}

	return cloneDraft(b.current)
}

// Reset replaces the current draft with the default record. It has no
// persistence side effect.
func (b *Builder) Reset() TripDraftRequest {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.current = DefaultDraft()
	return cloneDraft(b.current)
}

// Save serializes the current draft and writes it under the draft key,
// trimming the destination to {id, name}. A write failure is logged and
// returned; the in-memory draft is kept as-is (best-effort local cache).
func (b *Builder) Save(ctx context.Context) error {
	b.mu.Lock()
	record := toPersisted(b.current)
	b.mu.Unlock()

	data, err := json.Marshal(record)
	if err != nil {
		b.logger.Warn().Err(err).Msg("failed to serialize trip draft")
		return fmt.Errorf("serializing trip draft: %w", err)
	}

	if err := b.store.Set(ctx, draftKey, data); err != nil {
		b.logger.Warn().Err(err).Msg("failed to persist trip draft")
		return fmt.Errorf("persisting trip draft: %w", err)
	}

	return nil
}

// Load reads the persisted draft and merges it over the default record, so
// fields missing from an older persisted version fall back to defaults.
// An absent key or a malformed payload leaves the draft unchanged and is
// not an error.
func (b *Builder) Load(ctx context.Context) error {
	data, err := b.store.Get(ctx, draftKey)
	if err != nil {
		if errors.Is(err, keystore.ErrKeyNotFound) {
			return nil
		}
		b.logger.Warn().Err(err).Msg("failed to read trip draft")
		return fmt.Errorf("reading trip draft: %w", err)
	}

	var record persistedDraft
	if err := json.Unmarshal(data, &record); err != nil {
		b.logger.Warn().Err(err).Msg("ignoring malformed persisted trip draft")
		return nil
	}

	b.mu.Lock()
	b.current = fromPersisted(record)
	b.mu.Unlock()
	return nil
}

// Clear removes the persisted draft and resets the in-memory draft to the
// default record. The reset happens even when the removal fails.
func (b *Builder) Clear(ctx context.Context) error {
	b.mu.Lock()
	b.current = DefaultDraft()
	b.mu.Unlock()

	if err := b.store.Remove(ctx, draftKey); err != nil {
		b.logger.Warn().Err(err).Msg("failed to remove persisted trip draft")
		return fmt.Errorf("removing trip draft: %w", err)
	}
	return nil
}

// PilotSeen reports whether the pilot wizard has been shown. Absent or
// unreadable state counts as not seen.
func (b *Builder) PilotSeen(ctx context.Context) bool {
	data, err := b.store.Get(ctx, pilotSeenKey)
	if err != nil {
		if !errors.Is(err, keystore.ErrKeyNotFound) {
			b.logger.Warn().Err(err).Msg("failed to read pilot wizard flag")
		}
		return false
	}

	seen, err := strconv.ParseBool(string(data))
	if err != nil {
		return false
	}
	return seen
}

// SetPilotSeen persists the pilot wizard flag.
func (b *Builder) SetPilotSeen(ctx context.Context, seen bool) error {
	if err := b.store.Set(ctx, pilotSeenKey, []byte(strconv.FormatBool(seen))); err != nil {
		b.logger.Warn().Err(err).Msg("failed to persist pilot wizard flag")
		return fmt.Errorf("persisting pilot wizard flag: %w", err)
	}
	return nil
}

// rederiveDuration recomputes DurationDays from the stored dates. Callers
// must hold b.mu.
func (b *Builder) rederiveDuration() {
	d := &b.current

	if d.StartDate == "" || d.EndDate == "" {
		d.DurationDays = 0
		return
	}

	days, ok := daysBetween(d.StartDate, d.EndDate)
	if !ok {
		// Unparseable dates leave the derived field untouched.
		return
	}
	d.DurationDays = days
}

// daysBetween returns ceil((end-start)/1 day) clamped at zero, and whether
// both dates parsed.
func daysBetween(start, end string) (int, bool) {
	startAt, err := time.Parse(dateLayout, start)
	if err != nil {
		return 0, false
	}
	endAt, err := time.Parse(dateLayout, end)
	if err != nil {
		return 0, false
	}

	diff := endAt.Sub(startAt)
	if diff <= 0 {
		return 0, true
	}

	days := int(diff / (24 * time.Hour))
	if diff%(24*time.Hour) != 0 {
		days++
	}
	return days, true
}

// applyTravelersPatch applies a travelers patch field by field.
func applyTravelersPatch(t *Travelers, patch *TravelersPatch) {
	if patch.Adults != nil {
		t.Adults = *patch.Adults
	}
	if patch.Children != nil {
		t.Children = *patch.Children
	}
	if patch.ChildrenAgeGroups != nil {
		t.ChildrenAgeGroups = append([]string(nil), (*patch.ChildrenAgeGroups)...)
	}
	if patch.ChildrenByAgeGroup != nil {
		counts := make(map[string]int, len(*patch.ChildrenByAgeGroup))
		for band, n := range *patch.ChildrenByAgeGroup {
			counts[band] = n
		}
		t.ChildrenByAgeGroup = counts
	}
}

// toPersisted converts a draft to its wire form, trimming the destination
// to {id, name}.
func toPersisted(d TripDraftRequest) persistedDraft {
	record := persistedDraft{
		DestinationID: d.DestinationID,
		Mode:          d.Mode,
		StartDate:     d.StartDate,
		EndDate:       d.EndDate,
		DurationDays:  d.DurationDays,
		Context:       d.Context,
		Pace:          d.Pace,
		Interests:     append([]string(nil), d.Interests...),
		BudgetTier:    d.BudgetTier,
		Transport:     d.Transport,
	}

	if d.Destination != nil {
		record.Destination = &CityRef{ID: d.Destination.ID, Name: d.Destination.Name}
	}

	travelers := d.Travelers
	record.Travelers = &travelers

	return record
}

// fromPersisted merges a persisted record over the default draft.
func fromPersisted(record persistedDraft) TripDraftRequest {
	d := DefaultDraft()

	if record.DestinationID != "" {
		d.DestinationID = record.DestinationID
	}
	if record.Destination != nil {
		d.Destination = &City{ID: record.Destination.ID, Name: record.Destination.Name}
	}
	if record.Mode != "" {
		d.Mode = record.Mode
	}
	d.StartDate = record.StartDate
	d.EndDate = record.EndDate
	d.DurationDays = record.DurationDays
	if record.Travelers != nil {
		d.Travelers = *record.Travelers
	}
	if record.Context != "" {
		d.Context = record.Context
	}
	if record.Pace != "" {
		d.Pace = record.Pace
	}
	if record.Interests != nil {
		d.Interests = append([]string(nil), record.Interests...)
	}
	if record.BudgetTier != "" {
		d.BudgetTier = record.BudgetTier
	}
	if record.Transport != "" {
		d.Transport = record.Transport
	}

	// Older persisted versions may predate the derived field; keep it
	// consistent with the stored dates.
	if d.StartDate != "" && d.EndDate != "" {
		if days, ok := daysBetween(d.StartDate, d.EndDate); ok {
			d.DurationDays = days
		}
	}

	return d
}

// cloneDraft returns a copy that shares no mutable state with the draft.
func cloneDraft(d TripDraftRequest) TripDraftRequest {
	cpy := d

	if d.Destination != nil {
		city := *d.Destination
		cpy.Destination = &city
	}
	cpy.Interests = append([]string(nil), d.Interests...)
	cpy.Travelers.ChildrenAgeGroups = append([]string(nil), d.Travelers.ChildrenAgeGroups...)
	if d.Travelers.ChildrenByAgeGroup != nil {
		counts := make(map[string]int, len(d.Travelers.ChildrenByAgeGroup))
		for band, n := range d.Travelers.ChildrenByAgeGroup {
			counts[band] = n
		}
		cpy.Travelers.ChildrenByAgeGroup = counts
	}

	return cpy
}
