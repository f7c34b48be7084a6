// Package pipeline wires the track loader, route builder, spatial catalog
// query, classifier, projector and enrichment into a single run.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/twpayne/go-geom"

	"github.com/mrhoney81/routethink/pkg/crs"
	"github.com/mrhoney81/routethink/pkg/enrich"
	"github.com/mrhoney81/routethink/pkg/overpass"
	"github.com/mrhoney81/routethink/pkg/poi"
	"github.com/mrhoney81/routethink/pkg/route"
	"github.com/mrhoney81/routethink/pkg/track"
)

const (
	DefaultBufferDistanceM = 500.0
	DefaultWorkers         = 4

	// Minimum spacing of corridor centreline points handed to the catalog.
	// The query radius is widened by the same amount so downsampling the
	// centreline cannot lose candidates; exact membership is re-checked
	// against the full geometry after projection.
	corridorSpacingM = 200.0

	// How far from the route to look for settlements.
	settlementRadiusM = 5000.0
)

// Config is the full configuration for one pipeline run. There is no
// process-wide state; every run owns its configuration.
type Config struct {
	TrackFile       string
	BufferDistanceM float64
	RulesFile       string
	DedupThresholdM float64
	CatalogURL      string
	ElevationURL    string
	Timeout         time.Duration
	Workers         int
}

// Run executes the pipeline and returns the enriched points of interest
// sorted ascending by distance along the route. Geometry and catalog
// failures abort the run; enrichment failures leave fields unset.
func Run(ctx context.Context, cfg Config) ([]poi.Enriched, error) {
	if cfg.BufferDistanceM < 0 {
		return nil, fmt.Errorf("buffer distance must not be negative, got %f", cfg.BufferDistanceM)
	}
	rules := poi.DefaultRules()
	threshold := cfg.DedupThresholdM
	if cfg.RulesFile != "" {
		rc, err := poi.LoadRules(cfg.RulesFile)
		if err != nil {
			return nil, err
		}
		rules = rc.Rules
		if threshold == 0 {
			threshold = rc.DedupThresholdM
		}
	}
	if threshold == 0 {
		threshold = poi.DefaultDedupThresholdM
	}

	points, err := track.Load(cfg.TrackFile)
	if err != nil {
		return nil, err
	}
	proj, err := crs.ForTrack(points)
	if err != nil {
		return nil, err
	}
	rt, err := route.Build(points, proj)
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("crs", proj.Name()).
		Int("points", len(points)).
		Float64("length_km", rt.Length()/1000.0).
		Msg("Route built")

	var opts []overpass.Option
	if cfg.CatalogURL != "" {
		opts = append(opts, overpass.WithBaseURL(cfg.CatalogURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, overpass.WithTimeout(cfg.Timeout))
	}
	catalog := overpass.New(opts...)

	corridor := rt.Corridor(corridorSpacingM)
	elements, err := catalog.FindAlongRoute(ctx, corridor, cfg.BufferDistanceM+corridorSpacingM, selectors(rules))
	if err != nil {
		return nil, err
	}
	log.Info().Int("candidates", len(elements)).Msg("Catalog query returned")

	records := make([]poi.Record, 0, len(elements))
	for i := range elements {
		el := &elements[i]
		lat, lon, ok := el.Position()
		if !ok {
			continue
		}
		cat, ok := poi.Classify(el.Tags, rules)
		if !ok {
			continue
		}
		x, y, err := proj.Forward(lon, lat)
		if err != nil {
			log.Warn().Str("id", el.Ref()).Err(err).Msg("Skipping feature outside projection")
			continue
		}
		records = append(records, poi.Record{
			ID:       el.Ref(),
			Category: cat,
			Name:     el.Tags["name"],
			Lat:      lat,
			Lon:      lon,
			X:        x,
			Y:        y,
			Tags:     el.Tags,
		})
	}
	records = poi.Dedup(records, threshold)

	result := make([]poi.Enriched, 0, len(records))
	for _, r := range records {
		along, offset := rt.Project(geom.Coord{r.X, r.Y})
		if offset > cfg.BufferDistanceM {
			continue
		}
		result = append(result, poi.Enriched{
			Record:     r,
			DistanceKm: along / 1000.0,
			OffsetM:    offset,
			MapsLink:   fmt.Sprintf("https://www.google.com/maps?q=%f,%f", r.Lat, r.Lon),
		})
	}
	log.Info().Int("retained", len(result)).Msg("Classified and projected")

	settlements := settlementIndex(ctx, catalog, corridor, proj)
	var elevOpts []enrich.Option
	if cfg.ElevationURL != "" {
		elevOpts = append(elevOpts, enrich.WithBaseURL(cfg.ElevationURL))
	}
	workers := cfg.Workers
	if workers == 0 {
		workers = DefaultWorkers
	}
	enrich.Annotate(ctx, result, enrich.NewElevationClient(elevOpts...), settlements, workers)

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].DistanceKm != result[j].DistanceKm {
			return result[i].DistanceKm < result[j].DistanceKm
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// settlementIndex builds the nearest-settlement R-tree from the catalog. A
// failed settlement query degrades to an empty index: nearest-settlement
// is an enrichment field, not part of the core result.
func settlementIndex(ctx context.Context, catalog *overpass.Client, corridor [][2]float64, proj crs.Projector) *enrich.SettlementIndex {
	elements, err := catalog.FindSettlements(ctx, corridor, settlementRadiusM)
	if err != nil {
		log.Warn().Err(err).Msg("Settlement query failed; leaving settlements unset")
		return nil
	}
	settlements := make([]*enrich.Settlement, 0, len(elements))
	for i := range elements {
		el := &elements[i]
		name := el.Tags["name"]
		if name == "" {
			continue
		}
		lat, lon, ok := el.Position()
		if !ok {
			continue
		}
		x, y, err := proj.Forward(lon, lat)
		if err != nil {
			continue
		}
		settlements = append(settlements, &enrich.Settlement{
			Name:  name,
			Place: el.Tags["place"],
			X:     x,
			Y:     y,
		})
	}
	log.Info().Int("settlements", len(settlements)).Msg("Settlement index built")
	return enrich.NewSettlementIndex(settlements)
}

// selectors derives the catalog query predicates from the rule table,
// merging values per tag key while preserving rule order.
func selectors(rules []poi.Rule) []overpass.Selector {
	var sels []overpass.Selector
	index := make(map[string]int)
	for _, r := range rules {
		i, ok := index[r.Key]
		if !ok {
			i = len(sels)
			index[r.Key] = i
			sels = append(sels, overpass.Selector{Key: r.Key})
		}
		sels[i].Values = append(sels[i].Values, r.Values...)
	}
	return sels
}
