package mysql

import (
	"encoding/json"
	"reflect"

	"tour_dataset/internal/domain"
)

// storedEvent is an events row as read back for conflict checks.
type storedEvent struct {
	entityID   string
	entityType string
	name       string
	data       []byte
}

// matches reports whether ev (with data as its encoded payload) is the
// event already stored. Payloads are compared decoded since MySQL
// normalizes JSON key order and spacing.
func (s storedEvent) matches(ev domain.Event, data []byte) bool {
	if s.entityID != ev.EntityID || s.entityType != ev.EntityType || s.name != ev.Name {
		return false
	}
	var a, b any
	if json.Unmarshal(s.data, &a) != nil || json.Unmarshal(data, &b) != nil {
		return false
	}
	return reflect.DeepEqual(a, b)
}
