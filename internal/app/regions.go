package app

import (
	"strings"

	"github.com/rs/zerolog/log"

	"tour_dataset/internal/domain"
)

// skiSuffix marks the winter-sport variant of a region that is already
// modeled without it, e.g. "austria-narty".
const skiSuffix = "-narty"

func stripSki(id string) string { return strings.TrimSuffix(id, skiSuffix) }

// ParseRegions builds countries and their cities from the flat region list.
// Cities may precede their country in the list, hence two passes.
func ParseRegions(regions []map[string]any) (*domain.Ordered[*domain.Country], error) {
	countries, _, err := parseRegions(regions)
	return countries, err
}

func parseRegions(regions []map[string]any) (*domain.Ordered[*domain.Country], int, error) {
	if regions == nil {
		return nil, 0, &domain.MissingInputError{Field: "destination_regions"}
	}

	countries := domain.NewOrdered[*domain.Country]()
	for _, r := range regions {
		id := lookupStr(r, "value")
		if lookupStr(r, "type") != "country" || strings.HasSuffix(id, skiSuffix) {
			continue
		}
		countries.Set(id, domain.NewCountry(id, lookupStr(r, "title")))
	}

	orphans := 0
	for _, r := range regions {
		if lookupStr(r, "type") != "province" {
			continue
		}
		id := lookupStr(r, "value")
		parent := stripSki(lookupStr(r, "parent"))
		country, ok := countries.Get(parent)
		if !ok {
			orphans++
			log.Debug().Str("city", id).Str("parent", parent).Msg("skipping city with unknown country")
			continue
		}
		country.Cities.Set(id, domain.City{Identifier: id, Title: lookupStr(r, "title")})
	}
	return countries, orphans, nil
}
