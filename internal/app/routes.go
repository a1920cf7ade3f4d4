package app

import (
	"github.com/rs/zerolog/log"

	"tour_dataset/internal/domain"
)

type RouteKind int

const (
	Flight RouteKind = iota
	Bus
)

func (k RouteKind) String() string {
	switch k {
	case Flight:
		return "flight"
	case Bus:
		return "bus"
	}
	return "unknown"
}

// routeKindOf maps a detailed segment type to its route kind.
func routeKindOf(segmentType string) (RouteKind, bool) {
	switch segmentType {
	case "flight":
		return Flight, true
	case "bus":
		return Bus, true
	}
	return 0, false
}

// routeTable holds the routes and points of one route kind.
type routeTable struct {
	routes *domain.Ordered[*domain.Route]
	points *domain.Ordered[*domain.RoutePoint]
}

func pointFrom(m map[string]any) *domain.RoutePoint {
	return &domain.RoutePoint{Code: lookupStr(m, "code"), City: lookupStr(m, "city")}
}

// resolveTransport adds the route described by detail to t. Points whose
// city the source left as the bare code get the destination country title.
func resolveTransport(productContent, detail map[string]any, t routeTable) {
	if detail == nil {
		return
	}
	from, to := lookupMap(detail, "from"), lookupMap(detail, "to")
	if from == nil || to == nil {
		log.Debug().Msg("transport details without endpoints")
		return
	}

	origin, destination := pointFrom(from), pointFrom(to)
	countryTitle := lookupStr(productContent, "destination.country.title")
	for _, p := range []*domain.RoutePoint{origin, destination} {
		if p.City == p.Code && countryTitle != "" {
			p.City = countryTitle
		}
	}

	via := make([]*domain.RoutePoint, 0)
	for _, raw := range lookupSlice(detail, "via") {
		if m, ok := raw.(map[string]any); ok {
			via = append(via, pointFrom(m))
		}
	}

	route := &domain.Route{Origin: origin, Via: via, Destination: destination}
	t.routes.Set(route.Key(), route)
	for _, p := range route.Points() {
		t.points.Set(p.Code, p)
	}
}
