package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/mrhoney81/routethink/pkg/pipeline"
	"github.com/mrhoney81/routethink/pkg/poi"
)

func main() {
	app := &cli.App{
		Name:  "routethink",
		Usage: "Find shops and campsites along a GPX route",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "gpx-file",
				Aliases:  []string{"g"},
				Usage:    "GPX track to process",
				Required: true,
			},
			&cli.Float64Flag{
				Name:    "buffer",
				Aliases: []string{"b"},
				Usage:   "Corridor width either side of the route, in metres",
				Value:   pipeline.DefaultBufferDistanceM,
			},
			&cli.StringFlag{
				Name:  "rules",
				Usage: "YAML file overriding the category rule table",
			},
			&cli.Float64Flag{
				Name:  "dedup-threshold",
				Usage: "Distance in metres below which same-category features are merged",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format: json or csv",
				Value: "json",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Output file (default stdout)",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Catalog query timeout",
				Value: 25 * time.Second,
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent enrichment lookups",
				Value: pipeline.DefaultWorkers,
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Action: run,
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("Run failed")
	}
}

func run(c *cli.Context) error {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if c.Bool("verbose") {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	cfg := pipeline.Config{
		TrackFile:       c.String("gpx-file"),
		BufferDistanceM: c.Float64("buffer"),
		RulesFile:       c.String("rules"),
		DedupThresholdM: c.Float64("dedup-threshold"),
		Timeout:         c.Duration("timeout"),
		Workers:         c.Int("workers"),
	}
	result, err := pipeline.Run(context.Background(), cfg)
	if err != nil {
		return err
	}
	w := io.Writer(os.Stdout)
	if out := c.String("out"); out != "" {
		f, err := os.OpenFile(out, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("error creating output file %s: %v", out, err)
		}
		defer f.Close()
		w = f
	}
	switch c.String("format") {
	case "json":
		return writeJSON(w, result)
	case "csv":
		return writeCSV(w, result)
	}
	return fmt.Errorf("unknown output format %q", c.String("format"))
}

func writeJSON(w io.Writer, result []poi.Enriched) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(result)
}

func writeCSV(w io.Writer, result []poi.Enriched) error {
	cw := csv.NewWriter(w)
	header := []string{"distance_km", "category", "name", "latitude", "longitude", "elevation_m", "nearest_settlement", "maps_link"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, p := range result {
		elevation := ""
		if p.ElevationM != nil {
			elevation = strconv.FormatFloat(*p.ElevationM, 'f', 0, 64)
		}
		row := []string{
			strconv.FormatFloat(p.DistanceKm, 'f', 2, 64),
			p.Category.String(),
			p.Name,
			strconv.FormatFloat(p.Lat, 'f', 6, 64),
			strconv.FormatFloat(p.Lon, 'f', 6, 64),
			elevation,
			p.NearestSettlement,
			p.MapsLink,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
