package domain

import "slices"

// Meal is a board option, e.g. {"A", "All inclusive 24h"}. Compared by value.
type Meal struct {
	Identifier string `json:"identifier"`
	Title      string `json:"title"`
}

// Room is compared by value.
type Room struct {
	Title string `json:"title"`
	// BedCount excludes the extra beds.
	BedCount      int `json:"bed_count"`
	ExtraBedCount int `json:"extra_bed_count"`
}

type Hotel struct {
	Title string `json:"title"`
	// Rating is stars*10, so 35 means three and a half stars.
	Rating               int     `json:"hotel_rating"`
	DestinationCountryID string  `json:"destination_country_id"`
	DestinationCityID    *string `json:"destination_city_id"`
	Latitude             float64 `json:"latitude"`
	Longitude            float64 `json:"longitude"`
	Meals                []Meal  `json:"meals"`
	Rooms                []Room  `json:"rooms"`
}

// AddMeal appends m unless an equal meal is already listed.
func (h *Hotel) AddMeal(m Meal) bool {
	if slices.Contains(h.Meals, m) {
		return false
	}
	h.Meals = append(h.Meals, m)
	return true
}

// AddRoom appends r unless an equal room is already listed.
func (h *Hotel) AddRoom(r Room) bool {
	if slices.Contains(h.Rooms, r) {
		return false
	}
	h.Rooms = append(h.Rooms, r)
	return true
}

// Complete reports whether the hotel has at least one meal and one room.
func (h *Hotel) Complete() bool {
	return len(h.Meals) > 0 && len(h.Rooms) > 0
}
