/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package metric holds the optional numeric values attached to a character:
// popularity, highest rating and appearance years.
package metric

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Value is either a finite number or unknown. The zero Value is unknown.
type Value struct {
	v  float64
	ok bool
}

// Some returns a known value, or None if f is NaN or infinite.
func Some(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}

	return Value{v: f, ok: true}
}

func None() Value {
	return Value{}
}

func (m Value) Get() (float64, bool) {
	return m.v, m.ok
}

func (m Value) Valid() bool {
	return m.ok
}

// Or returns m if it is known, otherwise fallback.
func (m Value) Or(fallback Value) Value {
	if m.ok {
		return m
	}

	return fallback
}

// Equal reports whether both values are unknown or both hold the same number.
func (m Value) Equal(o Value) bool {
	return m.ok == o.ok && (!m.ok || m.v == o.v)
}

func (m Value) String() string {
	if !m.ok {
		return "unknown"
	}

	return strconv.FormatFloat(m.v, 'f', -1, 64)
}

func (m Value) MarshalJSON() ([]byte, error) {
	if !m.ok {
		return []byte("null"), nil
	}

	return json.Marshal(m.v)
}

func (m *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = Parse(raw)

	return nil
}

// Parse coerces loosely typed input into a Value. Numeric strings are
// accepted; everything else is unknown.
func Parse(x any) Value {
	switch v := x.(type) {
	case nil:
		return None()
	case Value:
		return v
	case float64:
		return Some(v)
	case float32:
		return Some(float64(v))
	case int:
		return Some(float64(v))
	case int32:
		return Some(float64(v))
	case int64:
		return Some(float64(v))
	case uint:
		return Some(float64(v))
	case uint32:
		return Some(float64(v))
	case uint64:
		return Some(float64(v))
	case json.Number:
		return parseString(string(v))
	case string:
		return parseString(v)
	case gjson.Result:
		return ParseResult(v)
	default:
		return None()
	}
}

func parseString(s string) Value {
	s = strings.TrimSpace(s)
	if s == "" {
		return None()
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return None()
	}

	return Some(f)
}

// ParseResult reads a value decoded by gjson.
func ParseResult(r gjson.Result) Value {
	switch r.Type {
	case gjson.Number:
		return Some(r.Num)
	case gjson.String:
		return parseString(r.Str)
	default:
		return None()
	}
}

// NonNegative maps negative values to None. Datasets use -1 for "unknown".
func NonNegative(m Value) Value {
	if m.ok && m.v < 0 {
		return None()
	}

	return m
}

// Max returns the larger known value.
func Max(a, b Value) Value {
	switch {
	case !a.ok:
		return b
	case !b.ok:
		return a
	case b.v > a.v:
		return b
	default:
		return a
	}
}

// Min returns the smaller known value.
func Min(a, b Value) Value {
	switch {
	case !a.ok:
		return b
	case !b.ok:
		return a
	case b.v < a.v:
		return b
	default:
		return a
	}
}
