package app

import (
	"math/rand"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"tour_dataset/internal/domain"
)

// DefaultEventSeed keeps entity ids stable between exports of the same dataset.
const DefaultEventSeed = 44

type eventBuilder struct {
	rng    *rand.Rand
	lastID int64

	airports  map[string]string
	busStops  map[string]string
	countries map[string]string
	cities    map[string]string
	meals     map[string]string
}

// BuildEvents turns a dataset into creation events, one batch per script
// file. Entity ids come from a seeded generator so the same dataset always
// yields the same ids; later batches reference ids minted by earlier ones.
func BuildEvents(ds *domain.Dataset, seed int64) []domain.EventBatch {
	b := &eventBuilder{
		rng:       rand.New(rand.NewSource(seed)),
		airports:  map[string]string{},
		busStops:  map[string]string{},
		countries: map[string]string{},
		cities:    map[string]string{},
		meals:     map[string]string{},
	}
	return []domain.EventBatch{
		b.points("airports", domain.EntityAirport, ds.Airports, b.airports),
		b.routes("flight_routes", domain.EntityFlightRoute, "airport", ds.FlightRoutes, b.airports),
		b.points("bus_stops", domain.EntityBusStop, ds.BusStops, b.busStops),
		b.routes("bus_routes", domain.EntityBusRoute, "bus_stop", ds.BusRoutes, b.busStops),
		b.geography(ds.Countries),
		b.mealEvents(ds.Meals),
		b.hotels(ds.Hotels),
	}
}

func (b *eventBuilder) emit(entityType string, data map[string]any) domain.Event {
	// math/rand never fails to read
	id, _ := uuid.NewRandomFromReader(b.rng)
	b.lastID++
	return domain.Event{
		ID:         b.lastID,
		EntityID:   id.String(),
		EntityType: entityType,
		Name:       entityType + "Created",
		Data:       data,
	}
}

func (b *eventBuilder) points(name, entityType string, points *domain.Ordered[*domain.RoutePoint], ids map[string]string) domain.EventBatch {
	batch := domain.EventBatch{Name: name}
	for _, p := range points.Values() {
		ev := b.emit(entityType, map[string]any{"code": p.Code, "city": p.City})
		ids[p.Code] = ev.EntityID
		batch.Events = append(batch.Events, ev)
	}
	return batch
}

func (b *eventBuilder) routes(name, entityType, pointName string, routes *domain.Ordered[*domain.Route], ids map[string]string) domain.EventBatch {
	batch := domain.EventBatch{Name: name}
	for _, r := range routes.Values() {
		via := make([]string, 0, len(r.Via))
		for _, p := range r.Via {
			via = append(via, ids[p.Code])
		}
		batch.Events = append(batch.Events, b.emit(entityType, map[string]any{
			"origin_" + pointName + "_id":      ids[r.Origin.Code],
			"via_" + pointName + "_ids":        via,
			"destination_" + pointName + "_id": ids[r.Destination.Code],
		}))
	}
	return batch
}

func (b *eventBuilder) geography(countries *domain.Ordered[*domain.Country]) domain.EventBatch {
	batch := domain.EventBatch{Name: "countries_and_cities"}
	for _, c := range countries.Values() {
		ev := b.emit(domain.EntityCountry, map[string]any{"title": c.Title})
		b.countries[c.Identifier] = ev.EntityID
		batch.Events = append(batch.Events, ev)

		for _, city := range c.Cities.Values() {
			cev := b.emit(domain.EntityCity, map[string]any{"title": city.Title, "country_id": ev.EntityID})
			b.cities[city.Identifier] = cev.EntityID
			batch.Events = append(batch.Events, cev)
		}
	}
	return batch
}

func (b *eventBuilder) mealEvents(meals *domain.Ordered[domain.Meal]) domain.EventBatch {
	batch := domain.EventBatch{Name: "meals"}
	for _, m := range meals.Values() {
		ev := b.emit(domain.EntityMeal, map[string]any{"title": m.Title})
		b.meals[m.Identifier] = ev.EntityID
		batch.Events = append(batch.Events, ev)
	}
	return batch
}

func (b *eventBuilder) hotels(hotels *domain.Ordered[*domain.Hotel]) domain.EventBatch {
	batch := domain.EventBatch{Name: "hotels"}
	for _, h := range hotels.Values() {
		countryID, ok := b.countries[h.DestinationCountryID]
		if !ok {
			log.Warn().Str("hotel", h.Title).Str("country", h.DestinationCountryID).Msg("hotel country unknown, event skipped")
			continue
		}
		var cityID any
		if h.DestinationCityID != nil {
			if id, ok := b.cities[*h.DestinationCityID]; ok {
				cityID = id
			}
		}
		meals := make([]string, 0, len(h.Meals))
		for _, m := range h.Meals {
			meals = append(meals, b.meals[m.Identifier])
		}
		rooms := make([]map[string]any, 0, len(h.Rooms))
		maxPeople := 0
		for _, r := range h.Rooms {
			maxPeople = max(maxPeople, r.BedCount+r.ExtraBedCount)
			rooms = append(rooms, map[string]any{
				"title":           r.Title,
				"bed_count":       r.BedCount,
				"extra_bed_count": r.ExtraBedCount,
			})
		}
		batch.Events = append(batch.Events, b.emit(domain.EntityHotel, map[string]any{
			"title":                  h.Title,
			"hotel_rating":           h.Rating,
			"destination_country_id": countryID,
			"destination_city_id":    cityID,
			"latitude":               h.Latitude,
			"longitude":              h.Longitude,
			"meals":                  meals,
			"rooms":                  rooms,
			// largest room, extra beds included
			"max_people_per_reservation": maxPeople,
		}))
	}
	return batch
}

// Flatten returns the events of all batches in export order.
func Flatten(batches []domain.EventBatch) []domain.Event {
	var out []domain.Event
	for _, b := range batches {
		out = append(out, b.Events...)
	}
	return out
}

// Snapshots returns the post-creation snapshot of every event.
func Snapshots(batches []domain.EventBatch) []domain.Snapshot {
	var out []domain.Snapshot
	for _, b := range batches {
		for _, ev := range b.Events {
			out = append(out, ev.Snapshot())
		}
	}
	return out
}
