// Package enrich resolves elevation and nearest-settlement annotations for
// projected points of interest. All lookups are non-fatal: a failure
// leaves the field unset and never aborts the run.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const DefaultElevationURL = "https://api.open-meteo.com/v1/elevation"

type config struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
}

type Option func(*config)

func WithBaseURL(u string) Option {
	return func(c *config) {
		c.baseURL = u
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) {
		c.client = hc
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// ElevationClient queries an external elevation service by coordinate.
type ElevationClient struct {
	cfg config
}

func NewElevationClient(opt ...Option) *ElevationClient {
	c := config{baseURL: DefaultElevationURL, client: http.DefaultClient, timeout: 5 * time.Second}
	for _, f := range opt {
		f(&c)
	}
	return &ElevationClient{cfg: c}
}

// Lookup returns the elevation in metres at (lat, lon).
func (c *ElevationClient) Lookup(ctx context.Context, lat, lon float64) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.timeout)
	defer cancel()
	q := url.Values{
		"latitude":  {strconv.FormatFloat(lat, 'f', 6, 64)},
		"longitude": {strconv.FormatFloat(lon, 'f', 6, 64)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("error building elevation request: %v", err)
	}
	res, err := c.cfg.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("error querying %s: %v", c.cfg.baseURL, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status querying %s: %s", c.cfg.baseURL, res.Status)
	}
	var payload struct {
		Elevation []float64 `json:"elevation"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("error decoding elevation response: %v", err)
	}
	if len(payload.Elevation) == 0 {
		return 0, fmt.Errorf("no elevation available for (%f, %f)", lat, lon)
	}
	return payload.Elevation[0], nil
}
