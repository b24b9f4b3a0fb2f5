package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Ordered is a string-keyed mapping that remembers insertion order and
// keeps it through JSON encoding. The zero value is ready to use.
type Ordered[V any] struct {
	keys   []string
	values map[string]V
}

func NewOrdered[V any]() *Ordered[V] {
	return &Ordered[V]{}
}

// Set stores v under k. Existing keys keep their position.
func (o *Ordered[V]) Set(k string, v V) {
	if o.values == nil {
		o.values = make(map[string]V)
	}
	if _, exists := o.values[k]; !exists {
		o.keys = append(o.keys, k)
	}
	o.values[k] = v
}

func (o *Ordered[V]) Get(k string) (V, bool) {
	var zero V
	if o == nil {
		return zero, false
	}
	v, ok := o.values[k]
	return v, ok
}

// Keys returns the keys in insertion order.
func (o *Ordered[V]) Keys() []string {
	if o == nil {
		return nil
	}
	return append([]string(nil), o.keys...)
}

func (o *Ordered[V]) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Entry is Get with the value boxed, so any instantiation satisfies Entries.
func (o *Ordered[V]) Entry(k string) (any, bool) {
	return o.Get(k)
}

// Entries is a read-only ordered view over any Ordered instantiation.
type Entries interface {
	Keys() []string
	Entry(k string) (any, bool)
}

// Each calls fn for every entry in order.
func (o *Ordered[V]) Each(fn func(k string, v V)) {
	if o == nil {
		return
	}
	for _, k := range o.keys {
		fn(k, o.values[k])
	}
}

func (o *Ordered[V]) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("null"), nil
	}
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
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping its key order. When V is
// any, nested objects become *Ordered[any] so their order survives too.
func (o *Ordered[V]) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*o = Ordered[V]{}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("ordered: expected object, got %v", tok)
	}

	*o = Ordered[V]{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("ordered: expected string key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}

		var v V
		if target, isAny := any(&v).(*any); isAny {
			decoded, err := decodeAny(raw)
			if err != nil {
				return fmt.Errorf("key %q: %w", key, err)
			}
			*target = decoded
		} else if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
		o.Set(key, v)
	}
	_, err = dec.Token()
	return err
}

func decodeAny(raw json.RawMessage) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		nested := NewOrdered[any]()
		if err := nested.UnmarshalJSON(trimmed); err != nil {
			return nil, err
		}
		return nested, nil
	}
	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return nil, err
	}
	return v, nil
}
