package app

import (
	"regexp"
	"strconv"

	"tour_dataset/internal/domain"
)

var (
	// "2-osobowy", "3 os"
	occupancyMarker = regexp.MustCompile(`[ \-]os`)
	// "z 1 dostawką", "-dost."
	extraBedMarker = regexp.MustCompile(`[ \-]dost`)
	digitRun       = regexp.MustCompile(`\d+`)
)

// ParseRoomSection approximates bed counts from a room section's free text.
// The title and the items of the first list are scanned in order; the first
// text holding an occupancy marker decides the result. Beds are the largest
// number before the marker, extra beds the largest number between it and a
// following extra-bed marker. ok is false when no text has the marker.
func ParseRoomSection(title string, items []string) (room domain.Room, ok bool) {
	candidates := append([]string{title}, items...)
	for _, text := range candidates {
		occ := occupancyMarker.FindStringIndex(text)
		if occ == nil {
			continue
		}
		room = domain.Room{Title: title, BedCount: maxNumber(text[:occ[0]], 1)}

		rest := text[occ[1]:]
		if extra := extraBedMarker.FindStringIndex(rest); extra != nil {
			room.ExtraBedCount = maxNumber(rest[:extra[0]], 1)
		}
		return room, true
	}
	return domain.Room{}, false
}

// maxNumber returns the largest digit run in s, never less than floor.
func maxNumber(s string, floor int) int {
	out := floor
	for _, run := range digitRun.FindAllString(s, -1) {
		if n, err := strconv.Atoi(run); err == nil && n > out {
			out = n
		}
	}
	return out
}

// extractRooms adds every parseable section of the "rooms" descriptions.
func (a *assembler) extractRooms(hotel *domain.Hotel, productContent map[string]any) {
	for _, raw := range lookupSlice(productContent, "descriptions") {
		desc, ok := raw.(map[string]any)
		if !ok || lookupStr(desc, "id") != "rooms" {
			continue
		}
		for _, rs := range lookupSlice(desc, "sections") {
			section, ok := rs.(map[string]any)
			if !ok {
				continue
			}
			var items []string
			if lists := lookupSlice(section, "lists"); len(lists) > 0 {
				if first, ok := lists[0].(map[string]any); ok {
					items = stringItems(lookupSlice(first, "items"))
				}
			}
			room, ok := ParseRoomSection(lookupStr(section, "title"), items)
			if !ok {
				a.stats.SkippedRoomSections++
				continue
			}
			hotel.AddRoom(room)
		}
	}
}
