package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
)

// MapsSearch queries a Google-Maps-compatible places endpoint for candidate
// restaurants: name, area, rating, review volume, price tier, open hours.
type MapsSearch struct {
	APIKey     string
	BaseURL    string
	MaxResults int
	Client     *http.Client
}

var _ Invoker = (*MapsSearch)(nil)

// MapsOption configures a MapsSearch tool.
type MapsOption func(*MapsSearch)

// WithMapsBaseURL sets the places endpoint URL.
func WithMapsBaseURL(baseURL string) MapsOption {
	return func(m *MapsSearch) {
		m.BaseURL = baseURL
	}
}

// WithMapsMaxResults sets the number of results to request (1-20).
func WithMapsMaxResults(n int) MapsOption {
	return func(m *MapsSearch) {
		if n < 1 {
			n = 1
		}
		if n > 20 {
			n = 20
		}
		m.MaxResults = n
	}
}

// WithMapsClient sets the HTTP client used for requests.
func WithMapsClient(client *http.Client) MapsOption {
	return func(m *MapsSearch) {
		m.Client = client
	}
}

// NewMapsSearch creates a new maps search tool.
// If apiKey is empty, it tries to read from GMAP_API_KEY environment variable.
func NewMapsSearch(apiKey string, opts ...MapsOption) (*MapsSearch, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GMAP_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("GMAP_API_KEY not set")
	}

	m := &MapsSearch{
		APIKey:     apiKey,
		BaseURL:    "https://places.googleapis.com/v1/places:searchText",
		MaxResults: 10,
		Client:     &http.Client{},
	}

	for _, opt := range opts {
		opt(m)
	}

	return m, nil
}

// Name returns the registry name of the tool.
func (m *MapsSearch) Name() string {
	return NameMapsSearch
}

// Description returns the planner-facing description of the tool.
func (m *MapsSearch) Description() string {
	return "Search Google Maps for candidate restaurants; returns venue list with " +
		"ratings, price tiers, review counts and opening hours. Input is a search query."
}

// mapsResponse is the wire shape of the places endpoint.
type mapsResponse struct {
	Places []struct {
		DisplayName  string  `json:"display_name"`
		Address      string  `json:"formatted_address"`
		Area         string  `json:"area"`
		Rating       float64 `json:"rating"`
		ReviewsCount int     `json:"user_ratings_total"`
		PriceLevel   string  `json:"price_level"`
		OpenNow      bool    `json:"open_now"`
		Link         string  `json:"link"`
	} `json:"places"`
}

// Invoke performs one places search. params must carry a "query" string.
func (m *MapsSearch) Invoke(ctx context.Context, params map[string]any) (any, error) {
	query, _ := params["query"].(string)
	if query == "" {
		return nil, fmt.Errorf("gmap.search: query parameter is required")
	}

	values := url.Values{}
	values.Set("q", query)
	values.Set("limit", fmt.Sprintf("%d", m.MaxResults))

	reqURL := fmt.Sprintf("%s?%s", m.BaseURL, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Goog-Api-Key", m.APIKey)

	resp, err := m.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("maps api returned status: %d", resp.StatusCode)
	}

	var result mapsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	rows := make([]map[string]any, 0, len(result.Places))
	for _, p := range result.Places {
		rows = append(rows, map[string]any{
			"name":          p.DisplayName,
			"address":       p.Address,
			"area":          p.Area,
			"rating":        p.Rating,
			"reviews_count": p.ReviewsCount,
			"price_level":   p.PriceLevel,
			"open_now":      p.OpenNow,
			"link":          p.Link,
		})
	}
	return rows, nil
}
