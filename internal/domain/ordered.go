package domain

import (
	"bytes"
	"encoding/json"
)

// Ordered is a string-keyed map that remembers insertion order.
// Overwriting an existing key keeps its original position, so downstream
// numbering stays reproducible between runs.
type Ordered[V any] struct {
	keys  []string
	items map[string]V
}

func NewOrdered[V any]() *Ordered[V] {
	return &Ordered[V]{items: make(map[string]V)}
}

func (o *Ordered[V]) Set(key string, v V) {
	if o.items == nil {
		o.items = make(map[string]V)
	}
	if _, ok := o.items[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.items[key] = v
}

func (o *Ordered[V]) Get(key string) (V, bool) {
	v, ok := o.items[key]
	return v, ok
}

func (o *Ordered[V]) Has(key string) bool {
	_, ok := o.items[key]
	return ok
}

func (o *Ordered[V]) Delete(key string) {
	if _, ok := o.items[key]; !ok {
		return
	}
	delete(o.items, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

func (o *Ordered[V]) Len() int { return len(o.keys) }

// Keys returns a copy of the keys in insertion order.
func (o *Ordered[V]) Keys() []string {
	return append([]string(nil), o.keys...)
}

// Values returns the values in insertion order.
func (o *Ordered[V]) Values() []V {
	out := make([]V, 0, len(o.keys))
	for _, k := range o.keys {
		out = append(out, o.items[k])
	}
	return out
}

// MarshalJSON encodes the map as a JSON object, keys in insertion order.
func (o *Ordered[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(o.items[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
