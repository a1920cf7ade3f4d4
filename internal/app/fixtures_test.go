package app_test

import (
	"encoding/json"
	"testing"

	"tour_dataset/internal/domain"
)

func mustRaw(t *testing.T, js string) domain.RawDataset {
	t.Helper()
	var raw domain.RawDataset
	if err := json.Unmarshal([]byte(js), &raw); err != nil {
		t.Fatalf("fixture: %v", err)
	}
	return raw
}

// sampleRaw has two rates for the same hotel (different meals), one rate
// whose hotel lacks geolocation and one bus trip without a hotel.
const sampleRaw = `{
  "destination_regions": [
    {"type": "province", "value": "antalya", "title": "Antalya", "parent": "turcja"},
    {"type": "country", "value": "turcja", "title": "Turcja", "parent": null},
    {"type": "country", "value": "austria", "title": "Austria", "parent": null},
    {"type": "country", "value": "austria-narty", "title": "Austria (narty)", "parent": null},
    {"type": "province", "value": "tyrol", "title": "Tyrol", "parent": "austria-narty"},
    {"type": "province", "value": "nowhere", "title": "Nowhere", "parent": "atlantyda"}
  ],
  "rates": [
    {
      "id": "r1", "supplierObjectId": "s1",
      "segments": [
        {"type": "flight"},
        {"type": "hotel", "meal": {"id": "A", "title": "All inclusive"},
         "content": {"title": "Hotel Sol", "hotelRating": 45,
                     "destinations": {"country": {"id": "turcja"}, "province": {"id": "antalya"}},
                     "geolocation": {"lat": 36.85, "lng": 30.75}}}
      ]
    },
    {
      "id": "r2", "supplierObjectId": "s2",
      "segments": [
        {"type": "hotel", "meal": {"id": "HB", "title": "Half board"},
         "content": {"title": "Hotel Sol", "hotelRating": 30,
                     "destinations": {"country": {"id": "turcja-narty"}, "province": null},
                     "geolocation": {"lat": 1, "lng": 2}}}
      ]
    },
    {
      "id": "r3", "supplierObjectId": "s3",
      "segments": [
        {"type": "hotel", "meal": {"id": "BB", "title": "Breakfast"},
         "content": {"title": "Hotel Ghost", "hotelRating": 30,
                     "destinations": {"country": {"id": "turcja"}, "province": null},
                     "geolocation": null}}
      ]
    },
    {"id": "r4", "supplierObjectId": "s4", "segments": null}
  ],
  "transport_details": {
    "r1": [
      {"type": "flight", "transportDetails": {
        "from": {"code": "WAW", "city": "Warszawa"},
        "to": {"code": "AYT", "city": "AYT"},
        "via": []}},
      {"type": "flight", "transportDetails": {
        "from": {"code": "AYT", "city": "Antalya"},
        "to": {"code": "WAW", "city": "Warszawa"},
        "via": [{"code": "KRK", "city": "Kraków"}]}}
    ],
    "r2": [
      {"type": "flight", "transportDetails": {
        "from": {"code": "WAW", "city": "Warszawa"},
        "to": {"code": "AYT", "city": "Antalya"},
        "via": []}}
    ],
    "r3": null,
    "r4": [
      {"type": "bus", "transportDetails": {
        "from": {"code": "KTW-D", "city": "Katowice"},
        "to": {"code": "VIE-1", "city": "VIE-1"},
        "via": [{"code": "BRN", "city": "Brno"}]}},
      {"type": "bus", "transportDetails": null},
      {"type": "transfer", "transportDetails": {"from": {"code": "X"}, "to": {"code": "Y"}, "via": []}}
    ]
  },
  "all_product_content": {
    "r1": {
      "destination": {"country": {"id": "turcja", "title": "Turcja"}},
      "descriptions": [
        {"id": "hotel", "sections": [{"title": "Pokój 9-osobowy", "lists": []}]},
        {"id": "rooms", "sections": [
          {"title": "Pokój standardowy", "lists": [{"items": ["Pokój 2-osobowy z 1 dost", "klimatyzacja"]}]},
          {"title": "Apartament", "lists": [{"items": ["widok na morze"]}]}
        ]}
      ]
    },
    "r2": {
      "destination": {"country": {"id": "turcja", "title": "Turcja"}},
      "descriptions": [
        {"id": "rooms", "sections": [
          {"title": "Pokój standardowy", "lists": [{"items": ["Pokój 2-osobowy z 1 dost"]}]},
          {"title": "Pokój rodzinny 4 os", "lists": []}
        ]}
      ]
    },
    "r3": null,
    "r4": {"destination": {"country": {"id": "austria", "title": "Austria"}}, "descriptions": []}
  }
}`
