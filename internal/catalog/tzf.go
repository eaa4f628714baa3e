package catalog

import (
	"fmt"

	"github.com/ringsaturn/tzf"
)

// NewTimezoneFinder loads the bundled timezone polygons. Loading takes a
// noticeable amount of memory, so callers opt in via configuration.
func NewTimezoneFinder() (TimezoneResolver, error) {
	finder, err := tzf.NewDefaultFinder()
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone finder: %w", err)
	}
	return finder, nil
}
