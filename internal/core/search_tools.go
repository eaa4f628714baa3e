package core

import (
	"context"
	"encoding/json"

	"github.com/samber/lo"

	"github.com/tripagent/tripagent/internal/catalog"
	"github.com/tripagent/tripagent/internal/llm"
	"github.com/tripagent/tripagent/internal/utils"
)

// Not-found replies handed to the model instead of empty results.
const (
	NoDestinationsFound = "No destinations found matching your query."
	NoHotelsFound       = "No hotels found for this destination."
	NoAttractionsFound  = "No attractions found for this destination."
	NoRestaurantsFound  = "No restaurants found for this destination."
	NoRestaurantsMatch  = "No restaurants found matching your criteria."
)

type destinationQuery struct {
	Query string `json:"query" validate:"required" jsonschema_description:"The destination to search for"`
}

type destinationArgs struct {
	Destination string `json:"destination" validate:"required" jsonschema_description:"The destination to search in"`
}

type restaurantArgs struct {
	Destination string `json:"destination" validate:"required" jsonschema_description:"The destination to search restaurants in"`
	Cuisine     string `json:"cuisine,omitempty" jsonschema_description:"Type of cuisine to filter by"`
}

type SearchDestinationsTool struct {
	catalog *catalog.Catalog
}

func NewSearchDestinationsTool(c *catalog.Catalog) *SearchDestinationsTool {
	return &SearchDestinationsTool{catalog: c}
}

func (t *SearchDestinationsTool) Declaration() llm.ToolDeclaration {
	return llm.ToolDeclaration{
		Name:        "searchDestinations",
		Description: "Search for information about travel destinations",
		Parameters:  llm.ReflectParameters(&destinationQuery{}),
	}
}

func (t *SearchDestinationsTool) Execute(_ context.Context, _ int64, raw json.RawMessage) ToolResult {
	args, err := decodeArgs[destinationQuery]("searchDestinations", raw)
	if err != nil {
		return failure(err)
	}
	results := t.catalog.SearchDestinations(args.Query)
	if len(results) == 0 {
		return ToolResult{Output: NoDestinationsFound}
	}
	return ToolResult{Output: results}
}

type SearchHotelsTool struct {
	catalog *catalog.Catalog
}

func NewSearchHotelsTool(c *catalog.Catalog) *SearchHotelsTool {
	return &SearchHotelsTool{catalog: c}
}

func (t *SearchHotelsTool) Declaration() llm.ToolDeclaration {
	return llm.ToolDeclaration{
		Name:        "searchHotels",
		Description: "Search for hotels in a specific destination",
		Parameters:  llm.ReflectParameters(&destinationArgs{}),
	}
}

func (t *SearchHotelsTool) Execute(_ context.Context, _ int64, raw json.RawMessage) ToolResult {
	args, err := decodeArgs[destinationArgs]("searchHotels", raw)
	if err != nil {
		return failure(err)
	}
	hotels, ok := t.catalog.HotelsFor(args.Destination)
	if !ok {
		return ToolResult{Output: NoHotelsFound}
	}
	return ToolResult{Output: hotels}
}

type SearchAttractionsTool struct {
	catalog *catalog.Catalog
}

func NewSearchAttractionsTool(c *catalog.Catalog) *SearchAttractionsTool {
	return &SearchAttractionsTool{catalog: c}
}

func (t *SearchAttractionsTool) Declaration() llm.ToolDeclaration {
	return llm.ToolDeclaration{
		Name:        "searchAttractions",
		Description: "Search for attractions in a specific destination",
		Parameters:  llm.ReflectParameters(&destinationArgs{}),
	}
}

func (t *SearchAttractionsTool) Execute(_ context.Context, _ int64, raw json.RawMessage) ToolResult {
	args, err := decodeArgs[destinationArgs]("searchAttractions", raw)
	if err != nil {
		return failure(err)
	}
	attractions, ok := t.catalog.AttractionsFor(args.Destination)
	if !ok {
		return ToolResult{Output: NoAttractionsFound}
	}
	return ToolResult{Output: attractions}
}

type SearchRestaurantsTool struct {
	catalog *catalog.Catalog
}

func NewSearchRestaurantsTool(c *catalog.Catalog) *SearchRestaurantsTool {
	return &SearchRestaurantsTool{catalog: c}
}

func (t *SearchRestaurantsTool) Declaration() llm.ToolDeclaration {
	return llm.ToolDeclaration{
		Name:        "searchRestaurants",
		Description: "Search for restaurants in a specific destination",
		Parameters:  llm.ReflectParameters(&restaurantArgs{}),
	}
}

// Execute filters by destination first; the cuisine filter only runs over
// the restaurants of a matched destination.
func (t *SearchRestaurantsTool) Execute(_ context.Context, _ int64, raw json.RawMessage) ToolResult {
	args, err := decodeArgs[restaurantArgs]("searchRestaurants", raw)
	if err != nil {
		return failure(err)
	}
	restaurants, ok := t.catalog.RestaurantsFor(args.Destination)
	if !ok {
		return ToolResult{Output: NoRestaurantsFound}
	}
	if args.Cuisine != "" {
		restaurants = lo.Filter(restaurants, func(r catalog.Restaurant, _ int) bool {
			return utils.ContainsFold(r.Cuisine, args.Cuisine)
		})
	}
	if len(restaurants) == 0 {
		return ToolResult{Output: NoRestaurantsMatch}
	}
	return ToolResult{Output: restaurants}
}
