package app

import (
	"github.com/rs/zerolog/log"

	"tour_dataset/internal/domain"
)

// Stats counts what the assembly kept and what it dropped on purpose.
type Stats struct {
	Rates                    int
	OrphanCities             int
	HotelsWithoutGeolocation int
	SkippedRoomSections      int
	IncompleteHotels         int
}

type assembler struct {
	ds      *domain.Dataset
	flights routeTable
	buses   routeTable
	stats   Stats
}

func newAssembler() *assembler {
	ds := domain.NewDataset()
	return &assembler{
		ds:      ds,
		flights: routeTable{routes: ds.FlightRoutes, points: ds.Airports},
		buses:   routeTable{routes: ds.BusRoutes, points: ds.BusStops},
	}
}

// Assemble normalizes a raw bundle into a dataset in a single forward pass.
// It fails only when one of the four raw collections was never supplied.
func Assemble(raw domain.RawDataset) (*domain.Dataset, Stats, error) {
	if err := checkRaw(raw); err != nil {
		return nil, Stats{}, err
	}

	a := newAssembler()
	countries, orphans, err := parseRegions(raw.DestinationRegions)
	if err != nil {
		return nil, Stats{}, err
	}
	a.ds.Countries = countries
	a.stats.OrphanCities = orphans

	for _, rate := range raw.Rates {
		a.ingestRate(rate, raw.TransportDetails, raw.AllProductContent)
	}
	a.cleanup()

	log.Debug().
		Int("rates", a.stats.Rates).
		Int("hotels", a.ds.Hotels.Len()).
		Int("flight_routes", a.ds.FlightRoutes.Len()).
		Int("bus_routes", a.ds.BusRoutes.Len()).
		Msg("dataset assembled")
	return a.ds, a.stats, nil
}

func checkRaw(raw domain.RawDataset) error {
	switch {
	case raw.DestinationRegions == nil:
		return &domain.MissingInputError{Field: "destination_regions"}
	case raw.Rates == nil:
		return &domain.MissingInputError{Field: "rates"}
	case raw.TransportDetails == nil:
		return &domain.MissingInputError{Field: "transport_details"}
	case raw.AllProductContent == nil:
		return &domain.MissingInputError{Field: "all_product_content"}
	}
	return nil
}

func (a *assembler) ingestRate(
	rate map[string]any,
	transportDetails map[string][]map[string]any,
	allProductContent map[string]map[string]any,
) {
	id := idString(rate["id"])
	segments := transportDetails[id]
	content, ok := allProductContent[id]
	if !ok {
		content = allProductContent[idString(rate["supplierObjectId"])]
	}

	// the raw rate stays untouched; only the copy carries side data
	copied := deepCopyMap(rate)
	copied["detailedSegments"] = segments
	copied["productContent"] = content
	a.ds.Rates.Set(id, copied)
	a.stats.Rates++

	for _, seg := range segments {
		kind, ok := routeKindOf(lookupStr(seg, "type"))
		if !ok {
			continue
		}
		table := a.flights
		if kind == Bus {
			table = a.buses
		}
		resolveTransport(content, lookupMap(seg, "transportDetails"), table)
	}

	// a rate offers a single hotel: only its first hotel segment counts
	var hotel *domain.Hotel
	for _, raw := range lookupSlice(rate, "segments") {
		seg, ok := raw.(map[string]any)
		if !ok || lookupStr(seg, "type") != "hotel" {
			continue
		}
		hotel = a.ingestHotel(seg)
		break
	}
	if hotel == nil || content == nil {
		return
	}
	a.extractRooms(hotel, content)
}

// cleanup drops hotels that ended up without a meal or a room.
func (a *assembler) cleanup() {
	for _, h := range a.ds.Hotels.Values() {
		if h.Complete() {
			continue
		}
		a.ds.Hotels.Delete(h.Title)
		a.stats.IncompleteHotels++
	}
}
