package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Float is a float64 whose unknown (NaN or infinite) values encode as JSON null
type Float float64

// Unknown is the not-a-number sentinel used for every numeric value that could not be determined
func Unknown() float64 {
	return math.NaN()
}

// IsUnknown reports whether a value carries the unknown sentinel
func IsUnknown(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

// fromPtr maps a nil or non-finite stored value to the unknown sentinel
func fromPtr(v *float64) float64 {
	if v == nil || IsUnknown(*v) {
		return Unknown()
	}
	return *v
}

// Known reports whether the value is a finite number
func (f Float) Known() bool {
	return !IsUnknown(float64(f))
}

// MarshalJSON encodes unknown values as null
func (f Float) MarshalJSON() ([]byte, error) {
	if !f.Known() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(f))
}

// UnmarshalJSON decodes null back into the unknown sentinel
func (f *Float) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*f = Float(math.NaN())
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

// Text renders the value for delimited text output, an empty string when unknown
func (f Float) Text() string {
	if !f.Known() {
		return ""
	}
	return strconv.FormatFloat(float64(f), 'f', -1, 64)
}

// Ptr returns nil for unknown values, for storage in nullable columns
func (f Float) Ptr() *float64 {
	if !f.Known() {
		return nil
	}
	v := float64(f)
	return &v
}
