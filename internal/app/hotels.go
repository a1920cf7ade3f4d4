package app

import (
	"github.com/rs/zerolog/log"

	"tour_dataset/internal/domain"
)

// ingestHotel looks up or creates the hotel of a rate's hotel segment and
// registers its meal. Segments without geolocation are dropped (nil).
// The first segment seen for a title fixes rating, location and destination.
func (a *assembler) ingestHotel(segment map[string]any) *domain.Hotel {
	content := lookupMap(segment, "content")
	geo := lookupMap(content, "geolocation")
	if geo == nil {
		a.stats.HotelsWithoutGeolocation++
		log.Debug().Str("hotel", lookupStr(content, "title")).Msg("hotel without geolocation skipped")
		return nil
	}

	title := lookupStr(content, "title")
	hotel, ok := a.ds.Hotels.Get(title)
	if !ok {
		lat, _ := lookupFloat(geo, "lat")
		lng, _ := lookupFloat(geo, "lng")
		hotel = &domain.Hotel{
			Title:                title,
			Rating:               lookupInt(content, "hotelRating"),
			DestinationCountryID: stripSki(lookupStr(content, "destinations.country.id")),
			Latitude:             lat,
			Longitude:            lng,
			Meals:                []domain.Meal{},
			Rooms:                []domain.Room{},
		}
		if city := lookupStr(content, "destinations.province.id"); city != "" {
			hotel.DestinationCityID = &city
		}
		a.ds.Hotels.Set(title, hotel)
	}

	if raw := lookupMap(segment, "meal"); raw != nil && idString(raw["id"]) != "" {
		meal := domain.Meal{Identifier: idString(raw["id"]), Title: lookupStr(raw, "title")}
		a.ds.Meals.Set(meal.Identifier, meal)
		hotel.AddMeal(meal)
	}
	return hotel
}
