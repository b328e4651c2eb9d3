// Package generation provides the client for the external itinerary
// generation service, which turns a trip draft into a fully formed
// day-by-day itinerary.
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/wanderplan/wanderplan/internal/draft"
	"github.com/wanderplan/wanderplan/internal/itinerary"
	"github.com/wanderplan/wanderplan/internal/resilience"
)

// DefaultBaseURL is the generation service base URL.
const DefaultBaseURL = "https://api.wanderplan.app/generator"

// ClientConfig holds configuration for the generation client.
type ClientConfig struct {
	// BaseURL is the service base URL (optional).
	BaseURL string

	// APIKey authenticates against the generation service (optional).
	APIKey string

	// HTTPClient is the HTTP client to use (optional). If nil, uses a
	// resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client calls the itinerary generation service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new generation client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig("generation"))
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Generate submits the trip draft and returns the generated itinerary. The
// returned TotalPrice is taken as supplied; the itinerary store only
// re-derives it on subsequent fine-grained mutations.
func (c *Client) Generate(ctx context.Context, request draft.TripDraftRequest) (*itinerary.SavedItinerary, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("encoding generation request: %w", err)
	}

	url := c.baseURL + "/v1/itineraries:generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var it itinerary.SavedItinerary
	if err := json.NewDecoder(resp.Body).Decode(&it); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	c.logger.Debug().
		Str("city_id", it.CityID).
		Int("days", len(it.Days)).
		Msg("itinerary generated")

	return &it, nil
}
