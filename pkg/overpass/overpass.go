// Package overpass queries an Overpass-style geographic feature service
// for tagged features within a corridor around a route.
package overpass

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const DefaultBaseURL = "https://overpass-api.de/api/interpreter"

// ErrCatalogUnavailable is returned when a catalog query cannot complete.
// A silently incomplete feature set is worse than an explicit failure, so
// callers must treat this as fatal.
var ErrCatalogUnavailable = errors.New("catalog unavailable")

// Selector restricts a query to features whose tag under Key has one of
// Values. Selectors are combined as a disjunction.
type Selector struct {
	Key    string
	Values []string
}

// Element is a single feature returned by the catalog.
type Element struct {
	ID     int64             `json:"id"`
	Type   string            `json:"type"`
	Lat    float64           `json:"lat"`
	Lon    float64           `json:"lon"`
	Center *Center           `json:"center,omitempty"`
	Tags   map[string]string `json:"tags"`
}

type Center struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Position returns the element's point coordinate. Ways carry it in the
// "center" member; elements with neither are skipped by callers.
func (e *Element) Position() (lat, lon float64, ok bool) {
	switch {
	case e.Type == "node":
		return e.Lat, e.Lon, true
	case e.Center != nil:
		return e.Center.Lat, e.Center.Lon, true
	}
	return 0, 0, false
}

// Ref returns the element's stable catalog identifier, e.g. "node/12345".
func (e *Element) Ref() string {
	return fmt.Sprintf("%s/%d", e.Type, e.ID)
}

type Client struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

func New(opt ...Option) *Client {
	c := &Client{baseURL: DefaultBaseURL, client: http.DefaultClient, timeout: 25 * time.Second}
	for _, f := range opt {
		f(c)
	}
	return c
}

// FindAlongRoute retrieves all features matching one of the selectors that
// lie within radiusM of the corridor centreline. The corridor is a chain
// of (lat, lon) points; the service buffers it on both sides with round
// end caps, so features just beyond the route endpoints are still found.
func (c *Client) FindAlongRoute(ctx context.Context, corridor [][2]float64, radiusM float64, selectors []Selector) ([]Element, error) {
	return c.run(ctx, buildAroundQuery(corridor, radiusM, selectors, c.timeout))
}

// FindSettlements retrieves named populated places within radiusM of the
// corridor, for nearest-settlement enrichment.
func (c *Client) FindSettlements(ctx context.Context, corridor [][2]float64, radiusM float64) ([]Element, error) {
	sel := []Selector{{Key: "place", Values: []string{"city", "town", "village", "hamlet"}}}
	return c.run(ctx, buildAroundQuery(corridor, radiusM, sel, c.timeout))
}

func (c *Client) run(ctx context.Context, query string) ([]Element, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: error building request for %s: %v", ErrCatalogUnavailable, c.baseURL, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: error querying %s: %v", ErrCatalogUnavailable, c.baseURL, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status querying %s: %s", ErrCatalogUnavailable, c.baseURL, res.Status)
	}
	var payload struct {
		Elements []Element `json:"elements"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: error decoding response from %s: %v", ErrCatalogUnavailable, c.baseURL, err)
	}
	log.Debug().Int("elements", len(payload.Elements)).Msg("Catalog query complete")
	return payload.Elements, nil
}

// buildAroundQuery renders an Overpass QL query: one node and one way
// statement per selector, each constrained to radiusM around the corridor
// chain, with way coordinates reported as centre points.
func buildAroundQuery(corridor [][2]float64, radiusM float64, selectors []Selector, timeout time.Duration) string {
	var chain strings.Builder
	for _, p := range corridor {
		chain.WriteByte(',')
		chain.WriteString(strconv.FormatFloat(p[0], 'f', 6, 64))
		chain.WriteByte(',')
		chain.WriteString(strconv.FormatFloat(p[1], 'f', 6, 64))
	}
	radius := strconv.FormatFloat(radiusM, 'f', 0, 64)
	var b strings.Builder
	fmt.Fprintf(&b, "[out:json][timeout:%d];\n(\n", int(timeout.Seconds()))
	for _, sel := range selectors {
		pred := fmt.Sprintf("[%q~%q]", sel.Key, strings.Join(sel.Values, "|"))
		for _, kind := range []string{"node", "way"} {
			fmt.Fprintf(&b, "  %s(around:%s%s)%s;\n", kind, radius, chain.String(), pred)
		}
	}
	b.WriteString(");\nout center body;\n")
	return b.String()
}
