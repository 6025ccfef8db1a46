// Package iojson writes command output as JSON: indented documents for
// single objects and JSON lines for lists.
package iojson

import (
	"encoding/json"
	"fmt"
	"io"
)

// Error is the document written to the error stream when output cannot be
// encoded.
type Error struct {
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// WriteWith writes obj to w as indented JSON. If obj cannot be encoded an
// Error document is written to ew instead and the encode error is returned.
func WriteWith(w, ew io.Writer, obj any) error {
	bits, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		_ = WriteError(ew, "could not encode output", map[string]any{"json_error": err.Error()})
		return fmt.Errorf("encode output: %w", err)
	}

	_, err = fmt.Fprintf(w, "%s\n", bits)
	return err
}

// WriteLine writes obj as a single line of JSON.
func WriteLine(w io.Writer, obj any) error {
	bits, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("marshal json line: %w", err)
	}

	_, err = fmt.Fprintf(w, "%s\n", bits)
	return err
}

// WriteLines writes each item as its own JSON line, stopping at the first
// failure.
func WriteLines[T any](w io.Writer, items []T) error {
	for i, item := range items {
		if err := WriteLine(w, item); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}

// WriteError writes an Error document to w.
func WriteError(w io.Writer, msg string, data map[string]any) error {
	return json.NewEncoder(w).Encode(Error{Message: msg, Data: data})
}
