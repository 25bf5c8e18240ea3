// Package json decodes line-delimited JSON dumps into raw objects with typed,
// strict field accessors.
package json

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"sparkify/internal/etlerr"
)

var (
	// ErrMissing is returned when a required field is absent.
	ErrMissing = errors.New("missing field")
	// ErrNull is returned when a required field is JSON null.
	ErrNull = errors.New("null value")
)

// Object is a decoded JSON object whose values are still raw.
type Object map[string]json.RawMessage

func fieldErr(name string, err error) error {
	return etlerr.Parse("", 0, name, err)
}

// raw returns the raw value for name. present is false when the key is absent
// or the value is JSON null.
func (o Object) raw(name string) (json.RawMessage, bool) {
	v, ok := o[name]
	if !ok || isNull(v) {
		return nil, false
	}
	return v, true
}

// Has reports whether name is present (possibly null).
func (o Object) Has(name string) bool {
	_, ok := o[name]
	return ok
}

func (o Object) required(name string) (json.RawMessage, error) {
	v, ok := o[name]
	if !ok {
		return nil, fieldErr(name, ErrMissing)
	}
	if isNull(v) {
		return nil, fieldErr(name, ErrNull)
	}
	return v, nil
}

// String returns a required string field.
func (o Object) String(name string) (string, error) {
	v, err := o.required(name)
	if err != nil {
		return "", err
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", fieldErr(name, fmt.Errorf("want string, got %s", kindOf(v)))
	}
	return s, nil
}

// OptString returns a string field that may be absent or null.
func (o Object) OptString(name string) (*string, error) {
	v, ok := o.raw(name)
	if !ok {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return nil, fieldErr(name, fmt.Errorf("want string, got %s", kindOf(v)))
	}
	return &s, nil
}

// Float returns a required numeric field.
func (o Object) Float(name string) (float64, error) {
	v, err := o.required(name)
	if err != nil {
		return 0, err
	}
	return parseFloat(name, v)
}

// OptFloat returns a numeric field that may be absent or null.
func (o Object) OptFloat(name string) (*float64, error) {
	v, ok := o.raw(name)
	if !ok {
		return nil, nil
	}
	f, err := parseFloat(name, v)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Int returns a required integer field. Integral JSON numbers and strings
// holding a base-10 integer are accepted ("7", 7, 7.0).
func (o Object) Int(name string) (int64, error) {
	v, err := o.required(name)
	if err != nil {
		return 0, err
	}
	n, ok, err := parseInt(name, v)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fieldErr(name, errors.New("empty string"))
	}
	return n, nil
}

// OptInt returns an integer field that may be absent, null or an empty
// string.
func (o Object) OptInt(name string) (*int64, error) {
	v, ok := o.raw(name)
	if !ok {
		return nil, nil
	}
	n, ok, err := parseInt(name, v)
	if err != nil || !ok {
		return nil, err
	}
	return &n, nil
}

func parseFloat(name string, v json.RawMessage) (float64, error) {
	if v[0] == '"' {
		return 0, fieldErr(name, fmt.Errorf("want number, got string"))
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err != nil {
		return 0, fieldErr(name, fmt.Errorf("want number, got %s", kindOf(v)))
	}
	f, err := n.Float64()
	if err != nil {
		return 0, fieldErr(name, err)
	}
	return f, nil
}

// parseInt returns ok=false for an empty string.
func parseInt(name string, v json.RawMessage) (int64, bool, error) {
	if v[0] == '"' {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return 0, false, fieldErr(name, err)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, false, nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, false, fieldErr(name, fmt.Errorf("want integer, got %q", s))
		}
		return n, true, nil
	}

	var num json.Number
	if err := json.Unmarshal(v, &num); err != nil {
		return 0, false, fieldErr(name, fmt.Errorf("want integer, got %s", kindOf(v)))
	}
	if n, err := num.Int64(); err == nil {
		return n, true, nil
	}
	f, err := num.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt64 {
		return 0, false, fieldErr(name, fmt.Errorf("want integer, got %s", num.String()))
	}
	return int64(f), true, nil
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

func kindOf(v json.RawMessage) string {
	if len(v) == 0 {
		return "empty"
	}
	switch v[0] {
	case '"':
		return "string"
	case '{':
		return "object"
	case '[':
		return "array"
	case 't', 'f':
		return "bool"
	case 'n':
		return "null"
	default:
		return "number"
	}
}
