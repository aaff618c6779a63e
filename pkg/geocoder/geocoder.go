package geocoder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://api.mapbox.com/geocoding/v5/mapbox.places"

// Config holds geocoder settings loaded from the environment.
type Config struct {
	AccessToken string        `env:"MAPBOX_TOKEN,required"`
	Timeout     time.Duration `env:"MAPBOX_TIMEOUT" envDefault:"10s"`
}

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64
	Lng float64
}

// Client resolves street addresses to coordinates using the Mapbox forward
// geocoding API.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New creates a geocoding client. Returns ErrMissingToken if the access token
// is empty so misconfiguration fails at startup, not on first use.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.AccessToken == "" {
		return nil, ErrMissingToken
	}
	c := &Client{
		token:      cfg.AccessToken,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type featureCollection struct {
	Features []struct {
		// Mapbox returns [lng, lat].
		Center []float64 `json:"center"`
	} `json:"features"`
}

// Geocode resolves an address to coordinates.
// Returns ErrNoResult when the address does not match any known place.
func (c *Client) Geocode(ctx context.Context, address string) (*Coordinates, error) {
	if address == "" {
		return nil, ErrNoResult
	}

	endpoint := fmt.Sprintf("%s/%s.json?access_token=%s&limit=1",
		c.baseURL, url.PathEscape(address), url.QueryEscape(c.token))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Join(ErrRequestFailed, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Join(ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Join(ErrRequestFailed, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var fc featureCollection
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		return nil, errors.Join(ErrRequestFailed, err)
	}

	if len(fc.Features) == 0 || len(fc.Features[0].Center) < 2 {
		return nil, ErrNoResult
	}

	center := fc.Features[0].Center
	return &Coordinates{Lat: center[1], Lng: center[0]}, nil
}
