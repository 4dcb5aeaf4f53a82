package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Number is a JSON field that accepts either a number or a numeric string.
// null and "" leave it unset.
type Number struct {
	value *float64
}

// NewNumber returns a set Number.
func NewNumber(v float64) Number {
	return Number{value: &v}
}

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		n.value = nil
		return nil
	}

	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			n.value = nil
			return nil
		}
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("not a number: %s", data)
	}
	n.value = &v
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if n.value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.value)
}

// Float returns the value, or nil when unset.
func (n Number) Float() *float64 {
	if n.value == nil {
		return nil
	}
	v := *n.value
	return &v
}

// Int returns the value as a whole number, or nil when unset. ok is false for
// fractional values.
func (n Number) Int() (v *int, ok bool) {
	if n.value == nil {
		return nil, true
	}
	f := *n.value
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return nil, false
	}
	i := int(f)
	return &i, true
}
