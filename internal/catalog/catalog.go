// Package catalog holds the travel reference data the search tools query:
// destinations, and hotels, attractions and restaurants keyed by destination.
package catalog

import (
	_ "embed"
	"fmt"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/tripagent/tripagent/internal/utils"
)

//go:embed catalog.yaml
var defaultData []byte

type Destination struct {
	Name               string   `yaml:"name" json:"name"`
	Country            string   `yaml:"country" json:"country"`
	Description        string   `yaml:"description" json:"description"`
	BestTimeToVisit    string   `yaml:"bestTimeToVisit" json:"bestTimeToVisit"`
	Latitude           float64  `yaml:"latitude" json:"latitude"`
	Longitude          float64  `yaml:"longitude" json:"longitude"`
	Timezone           string   `yaml:"-" json:"timezone,omitempty"`
	PopularAttractions []string `yaml:"popularAttractions" json:"popularAttractions"`
}

type Hotel struct {
	Name       string   `yaml:"name" json:"name"`
	Address    string   `yaml:"address" json:"address"`
	PriceRange string   `yaml:"priceRange" json:"priceRange"`
	Amenities  []string `yaml:"amenities" json:"amenities"`
	Rating     float64  `yaml:"rating" json:"rating"`
}

type Attraction struct {
	Name              string `yaml:"name" json:"name"`
	Location          string `yaml:"location" json:"location"`
	Description       string `yaml:"description" json:"description"`
	SuggestedDuration string `yaml:"suggestedDuration" json:"suggestedDuration"`
	Price             string `yaml:"price" json:"price"`
}

type Restaurant struct {
	Name       string  `yaml:"name" json:"name"`
	Location   string  `yaml:"location" json:"location"`
	Cuisine    string  `yaml:"cuisine" json:"cuisine"`
	PriceRange string  `yaml:"priceRange" json:"priceRange"`
	Rating     float64 `yaml:"rating" json:"rating"`
}

// keyed keeps document order so the first matching key is deterministic.
type keyed[T any] struct {
	Destination string `yaml:"destination"`
	Items       []T    `yaml:"items"`
}

type Catalog struct {
	Destinations []Destination       `yaml:"destinations"`
	Hotels       []keyed[Hotel]      `yaml:"hotels"`
	Attractions  []keyed[Attraction] `yaml:"attractions"`
	Restaurants  []keyed[Restaurant] `yaml:"restaurants"`
	timezones    TimezoneResolver
}

// TimezoneResolver maps coordinates to an IANA zone name ("" if unknown).
type TimezoneResolver interface {
	GetTimezoneName(lng float64, lat float64) string
}

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return Parse(defaultData)
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return &c, nil
}

// WithTimezones attaches a resolver used to annotate destination results.
func (c *Catalog) WithTimezones(r TimezoneResolver) *Catalog {
	c.timezones = r
	return c
}

// SearchDestinations matches the query against destination names and countries.
func (c *Catalog) SearchDestinations(query string) []Destination {
	matches := lo.Filter(c.Destinations, func(d Destination, _ int) bool {
		return utils.ContainsFold(d.Name, query) || utils.ContainsFold(d.Country, query)
	})
	if c.timezones == nil {
		return matches
	}
	return lo.Map(matches, func(d Destination, _ int) Destination {
		d.Timezone = c.timezones.GetTimezoneName(d.Longitude, d.Latitude)
		return d
	})
}

// HotelsFor returns the hotels of the first destination key containing term.
func (c *Catalog) HotelsFor(term string) ([]Hotel, bool) {
	return findKeyed(c.Hotels, term)
}

func (c *Catalog) AttractionsFor(term string) ([]Attraction, bool) {
	return findKeyed(c.Attractions, term)
}

func (c *Catalog) RestaurantsFor(term string) ([]Restaurant, bool) {
	return findKeyed(c.Restaurants, term)
}

func findKeyed[T any](entries []keyed[T], term string) ([]T, bool) {
	entry, ok := lo.Find(entries, func(e keyed[T]) bool {
		return utils.ContainsFold(e.Destination, term)
	})
	if !ok {
		return nil, false
	}
	return entry.Items, true
}
