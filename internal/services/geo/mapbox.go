package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// MapboxClient talks to the Mapbox Geocoding v5 API.
type MapboxClient struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

// NewMapboxClient builds a geocoding client. baseURL is normally
// https://api.mapbox.com and is overridable for tests.
func NewMapboxClient(baseURL, accessToken string) *MapboxClient {
	return &MapboxClient{
		baseURL:     baseURL,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Feature is one geocoding result.
type Feature struct {
	ID        string    `json:"id"`
	PlaceType []string  `json:"place_type"`
	Text      string    `json:"text"`
	Address   string    `json:"address"`
	PlaceName string    `json:"place_name"`
	Center    []float64 `json:"center"`
	Context   []struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"context"`
}

type featureCollection struct {
	Features []Feature `json:"features"`
}

// Forward resolves free text into ranked place features.
func (c *MapboxClient) Forward(ctx context.Context, query string, limit int) ([]Feature, error) {
	endpoint := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%s.json", c.baseURL, url.PathEscape(query))
	params := url.Values{
		"access_token": {c.accessToken},
		"limit":        {fmt.Sprintf("%d", limit)},
	}
	return c.fetch(ctx, endpoint+"?"+params.Encode())
}

// Reverse resolves coordinates into address features, most specific first.
func (c *MapboxClient) Reverse(ctx context.Context, lat, lng float64) ([]Feature, error) {
	endpoint := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%f,%f.json", c.baseURL, lng, lat)
	params := url.Values{
		"access_token": {c.accessToken},
		"types":        {"address,postcode,place"},
	}
	return c.fetch(ctx, endpoint+"?"+params.Encode())
}

func (c *MapboxClient) fetch(ctx context.Context, fullURL string) ([]Feature, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create geocoding request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("geocoding failed with status %d: %s", resp.StatusCode, string(body))
	}

	var collection featureCollection
	if err := json.NewDecoder(resp.Body).Decode(&collection); err != nil {
		return nil, fmt.Errorf("failed to decode geocoding response: %w", err)
	}
	return collection.Features, nil
}
