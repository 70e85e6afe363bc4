// Package geocode resolves coordinates to place names through the
// BigDataCloud client-side reverse geocoding endpoint.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"meetmap/pkg/location"
)

const DefaultBaseURL = "https://api.bigdatacloud.net/data/reverse-geocode-client"

// Place is the subset of the reverse geocoding answer shown to users.
type Place struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Locality    string  `json:"locality"`
	City        string  `json:"city"`
	Subdivision string  `json:"principalSubdivision"`
	CountryName string  `json:"countryName"`
	CountryCode string  `json:"countryCode"`
	Postcode    string  `json:"postcode"`
}

// Label joins the non-empty parts, most specific first.
func (p *Place) Label() string {
	parts := make([]string, 0, 3)
	seen := map[string]bool{}
	for _, s := range []string{p.City, p.Locality, p.Subdivision, p.CountryName} {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}

type Client struct {
	BaseURL  string
	Language string
	client   *http.Client
}

func NewClient(baseURL, language string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		BaseURL:  baseURL,
		Language: language,
		client:   &http.Client{Timeout: timeout},
	}
}

// Reverse looks up the place at p.
func (c *Client) Reverse(ctx context.Context, p location.GeoPoint) (*Place, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(p.Latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(p.Longitude, 'f', -1, 64))
	if c.Language != "" {
		q.Set("localityLanguage", c.Language)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reverse geocode: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reverse geocode failed: %d %s", resp.StatusCode, string(body))
	}
	var place Place
	if err := json.Unmarshal(body, &place); err != nil {
		return nil, fmt.Errorf("decode reverse geocode: %w", err)
	}
	return &place, nil
}
