package models

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrMissingField marks a required field absent from a raw record.
var ErrMissingField = errors.New("missing field")

// RawRecord is a single cleaned market record: field name to raw cell
// value. Missing cells are absent keys, so presence checks double as
// NA checks.
type RawRecord map[string]string

// Float returns the named field parsed as a float.
func (r RawRecord) Float(field string) (float64, error) {
	raw, ok := r[field]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingField, field)
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("field %s: %w", field, err)
	}
	return value, nil
}

// Int returns the named field parsed as an integer. Values stored as
// floats ("7.0") are accepted as long as they are whole.
func (r RawRecord) Int(field string) (int, error) {
	raw, ok := r[field]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingField, field)
	}
	if value, err := strconv.Atoi(raw); err == nil {
		return value, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("field %s: %w", field, err)
	}
	if value != float64(int(value)) {
		return 0, fmt.Errorf("field %s: %s is not an integer", field, raw)
	}
	return int(value), nil
}

// Has reports whether the field is present.
func (r RawRecord) Has(field string) bool {
	_, ok := r[field]
	return ok
}
