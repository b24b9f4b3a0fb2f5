package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var ErrNotEventJSON = errors.New("expected a JSON object or array of objects")

// DecodeRawEvents parses a document holding one event object or a list
// of them. Numbers stay json.Number so integers survive unchanged. List
// items that are not objects are ignored.
func DecodeRawEvents(data []byte) ([]RawEvent, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data", ErrNotEventJSON)
	}

	switch v := doc.(type) {
	case map[string]any:
		return []RawEvent{RawEvent(v)}, nil
	case []any:
		out := make([]RawEvent, 0, len(v))
		for _, item := range v {
			if obj, ok := item.(map[string]any); ok {
				out = append(out, RawEvent(obj))
			}
		}
		return out, nil
	}
	return nil, ErrNotEventJSON
}
