package domain

import "strings"

// RoutePoint is an airport or a bus stop.
type RoutePoint struct {
	Code string `json:"code"`
	// City may be inaccurate for bus stops.
	City string `json:"city"`
}

type Route struct {
	Origin      *RoutePoint   `json:"origin"`
	Via         []*RoutePoint `json:"via"`
	Destination *RoutePoint   `json:"destination"`
}

// Key joins the codes of every stop, in travel order, with hyphens.
func (r *Route) Key() string {
	codes := make([]string, 0, len(r.Via)+2)
	codes = append(codes, r.Origin.Code)
	for _, p := range r.Via {
		codes = append(codes, p.Code)
	}
	codes = append(codes, r.Destination.Code)
	return strings.Join(codes, "-")
}

// Points returns origin, via and destination in travel order.
func (r *Route) Points() []*RoutePoint {
	out := make([]*RoutePoint, 0, len(r.Via)+2)
	out = append(out, r.Origin)
	out = append(out, r.Via...)
	return append(out, r.Destination)
}
