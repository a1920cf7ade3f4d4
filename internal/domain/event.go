package domain

// Entity types written to the event log.
const (
	EntityAirport     = "Airport"
	EntityFlightRoute = "FlightRoute"
	EntityBusStop     = "BusStop"
	EntityBusRoute    = "BusRoute"
	EntityCountry     = "Country"
	EntityCity        = "City"
	EntityMeal        = "Meal"
	EntityHotel       = "Hotel"
)

// EntityTypes lists every entity type in export order.
var EntityTypes = []string{
	EntityAirport, EntityFlightRoute, EntityBusStop, EntityBusRoute,
	EntityCountry, EntityCity, EntityMeal, EntityHotel,
}

// Event creates one entity. IDs are sequential across a whole export.
type Event struct {
	ID         int64
	EntityID   string
	EntityType string
	Name       string // e.g. AirportCreated
	Data       map[string]any
}

func (e Event) Snapshot() Snapshot {
	return Snapshot{EntityID: e.EntityID, EntityType: e.EntityType, LastEventID: e.ID, Data: e.Data}
}

// EventBatch groups the events written to one script file, e.g. "airports".
type EventBatch struct {
	Name   string
	Events []Event
}

// Snapshot is the current state of an entity after its last event.
type Snapshot struct {
	EntityID    string         `json:"entity_id" bson:"entity_id"`
	EntityType  string         `json:"entity_type" bson:"entity_type"`
	LastEventID int64          `json:"last_event_id" bson:"last_event_id"`
	Data        map[string]any `json:"data" bson:"data"`
}
