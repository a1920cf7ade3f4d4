package domain

// Rate is a deep copy of a raw rate with "detailedSegments" and
// "productContent" attached.
type Rate = map[string]any

// RawDataset is what the source hands over. A nil collection was never
// fetched; an empty one is valid.
type RawDataset struct {
	DestinationRegions []map[string]any            `json:"destination_regions"`
	Rates              []map[string]any            `json:"rates"`
	TransportDetails   map[string][]map[string]any `json:"transport_details"`
	AllProductContent  map[string]map[string]any   `json:"all_product_content"`
}

type Dataset struct {
	Countries    *Ordered[*Country]    `json:"countries"`
	Airports     *Ordered[*RoutePoint] `json:"airports"`
	FlightRoutes *Ordered[*Route]      `json:"flight_routes"`
	BusStops     *Ordered[*RoutePoint] `json:"bus_stops"`
	BusRoutes    *Ordered[*Route]      `json:"bus_routes"`
	Hotels       *Ordered[*Hotel]      `json:"hotels"`
	Meals        *Ordered[Meal]        `json:"meals"`
	Rates        *Ordered[Rate]        `json:"rates"`
}

func NewDataset() *Dataset {
	return &Dataset{
		Countries:    NewOrdered[*Country](),
		Airports:     NewOrdered[*RoutePoint](),
		FlightRoutes: NewOrdered[*Route](),
		BusStops:     NewOrdered[*RoutePoint](),
		BusRoutes:    NewOrdered[*Route](),
		Hotels:       NewOrdered[*Hotel](),
		Meals:        NewOrdered[Meal](),
		Rates:        NewOrdered[Rate](),
	}
}
