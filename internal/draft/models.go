// Package draft provides the trip draft builder: it accumulates the
// multi-step planning questionnaire into a single request record with
// derived fields, persisted on demand to the local key-value store.
package draft

// PlanMode represents the planning style chosen by the user.
type PlanMode string

const (
	ModeFree  PlanMode = "FREE"
	ModePilot PlanMode = "PILOT"
)

// TripContext represents who the user is traveling with.
type TripContext string

const (
	ContextCouple  TripContext = "COUPLE"
	ContextFamily  TripContext = "FAMILY"
	ContextFriends TripContext = "FRIENDS"
	ContextSolo    TripContext = "SOLO"
)

// Pace represents the desired intensity of the trip.
type Pace string

const (
	PaceRelax    Pace = "RELAX"
	PaceBalanced Pace = "BALANCED"
	PaceIntense  Pace = "INTENSE"
)

// BudgetTier represents the spending level for the trip.
type BudgetTier string

const (
	BudgetEconomy  BudgetTier = "ECONOMY"
	BudgetModerate BudgetTier = "MODERATE"
	BudgetComfort  BudgetTier = "COMFORT"
)

// Transport represents how the user plans to get around.
type Transport string

const (
	TransportSelf      Transport = "SELF"
	TransportCarRental Transport = "CAR_RENTAL"
	TransportDriver    Transport = "DRIVER"
	TransportUnsure    Transport = "UNSURE"
)

// ChildAgeGroups is the fixed set of child age bands.
var ChildAgeGroups = []string{"0-3", "4-10", "11+"}

// City is a destination as delivered by the activities API.
// Only ID and Name survive persistence; the rest is display data.
type City struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Country  string `json:"country,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// CityRef is the persisted form of a destination: id and name only.
type CityRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Travelers describes the travel party.
type Travelers struct {
	Adults             int            `json:"adults"`
	Children           int            `json:"children"`
	ChildrenAgeGroups  []string       `json:"childrenAgeGroups,omitempty"`
	ChildrenByAgeGroup map[string]int `json:"childrenByAgeGroup,omitempty"`
}

// TripDraftRequest is the in-progress trip request built across the
// planning wizard steps. DurationDays is derived from the dates and is
// never independently settable.
type TripDraftRequest struct {
	DestinationID string      `json:"destinationId,omitempty"`
	Destination   *City       `json:"destination,omitempty"`
	Mode          PlanMode    `json:"mode"`
	StartDate     string      `json:"startDate,omitempty"`
	EndDate       string      `json:"endDate,omitempty"`
	DurationDays  int         `json:"durationDays"`
	Travelers     Travelers   `json:"travelers"`
	Context       TripContext `json:"context,omitempty"`
	Pace          Pace        `json:"pace"`
	Interests     []string    `json:"interests,omitempty"`
	BudgetTier    BudgetTier  `json:"budgetTier"`
	Transport     Transport   `json:"transport,omitempty"`
}

// DefaultDraft returns the fixed default trip draft record.
func DefaultDraft() TripDraftRequest {
	return TripDraftRequest{
		Mode: ModePilot,
		Travelers: Travelers{
			Adults:   2,
			Children: 0,
		},
		Pace:       PaceBalanced,
		BudgetTier: BudgetModerate,
	}
}

// TravelersPatch is a partial update for the travel party. Fields set to
// nil are left untouched.
type TravelersPatch struct {
	Adults             *int            `json:"adults,omitempty"`
	Children           *int            `json:"children,omitempty"`
	ChildrenAgeGroups  *[]string       `json:"childrenAgeGroups,omitempty"`
	ChildrenByAgeGroup *map[string]int `json:"childrenByAgeGroup,omitempty"`
}

// TripPlanPatch is a partial update for the trip draft. Fields set to nil
// are left untouched; the patch is applied field by field so a nested
// update never widens into a shallow merge.
type TripPlanPatch struct {
	DestinationID *string         `json:"destinationId,omitempty"`
	Destination   *City           `json:"destination,omitempty"`
	Mode          *PlanMode       `json:"mode,omitempty"`
	StartDate     *string         `json:"startDate,omitempty"`
	EndDate       *string         `json:"endDate,omitempty"`
	Travelers     *TravelersPatch `json:"travelers,omitempty"`
	Context       *TripContext    `json:"context,omitempty"`
	Pace          *Pace           `json:"pace,omitempty"`
	Interests     *[]string       `json:"interests,omitempty"`
	BudgetTier    *BudgetTier     `json:"budgetTier,omitempty"`
	Transport     *Transport      `json:"transport,omitempty"`
}

// persistedDraft is the wire form written to the key-value store. The
// destination is trimmed to a CityRef; everything else mirrors the draft.
type persistedDraft struct {
	DestinationID string      `json:"destinationId,omitempty"`
	Destination   *CityRef    `json:"destination,omitempty"`
	Mode          PlanMode    `json:"mode,omitempty"`
	StartDate     string      `json:"startDate,omitempty"`
	EndDate       string      `json:"endDate,omitempty"`
	DurationDays  int         `json:"durationDays"`
	Travelers     *Travelers  `json:"travelers,omitempty"`
	Context       TripContext `json:"context,omitempty"`
	Pace          Pace        `json:"pace,omitempty"`
	Interests     []string    `json:"interests,omitempty"`
	BudgetTier    BudgetTier  `json:"budgetTier,omitempty"`
	Transport     Transport   `json:"transport,omitempty"`
}
