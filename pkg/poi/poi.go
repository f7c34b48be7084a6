// Package poi defines point-of-interest records, the closed category set,
// the tag classification rule table, and deduplication.
package poi

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Category is the closed set of point-of-interest kinds the pipeline
// recognises.
type Category int

const (
	CategoryUnknown Category = iota
	Supermarket
	ConvenienceStore
	Bakery
	OtherShop
	Campsite
)

var categoryNames = map[Category]string{
	Supermarket:      "supermarket",
	ConvenienceStore: "convenience_store",
	Bakery:           "bakery",
	OtherShop:        "other_shop",
	Campsite:         "campsite",
}

func (c Category) String() string {
	if s, ok := categoryNames[c]; ok {
		return s
	}
	return "unknown"
}

func ParseCategory(s string) (Category, error) {
	for c, name := range categoryNames {
		if name == s {
			return c, nil
		}
	}
	return CategoryUnknown, fmt.Errorf("unknown category %q", s)
}

func (c Category) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Category) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseCategory(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

func (c Category) MarshalYAML() (interface{}, error) {
	return c.String(), nil
}

func (c *Category) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v, err := ParseCategory(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Record is a classified point of interest from the spatial catalog. X and
// Y are the planar coordinates in the route's projection; records are
// immutable once classified.
type Record struct {
	ID       string            `json:"id"`
	Category Category          `json:"category"`
	Name     string            `json:"name,omitempty"`
	Lat      float64           `json:"latitude"`
	Lon      float64           `json:"longitude"`
	X        float64           `json:"-"`
	Y        float64           `json:"-"`
	Tags     map[string]string `json:"-"`
}

// Enriched is the terminal output record handed to report generators,
// ordered ascending by distance along the route.
type Enriched struct {
	Record
	DistanceKm        float64  `json:"distance_km"`
	OffsetM           float64  `json:"offset_m"`
	ElevationM        *float64 `json:"elevation_m,omitempty"`
	NearestSettlement string   `json:"nearest_settlement,omitempty"`
	MapsLink          string   `json:"maps_link"`
}
