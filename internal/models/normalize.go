package models

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Raw field names understood by the entity constructors
const (
	KeyDesignation = "pdes"
	KeyName        = "name"
	KeyDiameter    = "diameter"
	KeyHazardous   = "pha"

	KeyApproachDesignation = "des"
	KeyCalendarDate        = "cd"
	KeyDistance            = "dist"
	KeyVelocity            = "v_rel"
)

var (
	neoKeys      = []string{KeyDesignation, KeyName, KeyDiameter, KeyHazardous}
	approachKeys = []string{KeyApproachDesignation, KeyCalendarDate, KeyDistance, KeyVelocity}
)

// RawRecord is one loosely-typed catalog record; a missing key means the value was absent
type RawRecord map[string]string

func (r RawRecord) lookup(key string) *string {
	v, ok := r[key]
	if !ok {
		return nil
	}
	return &v
}

// Unrecognized returns the sorted keys that none of the given field sets consume
func (r RawRecord) Unrecognized(known []string) []string {
	set := make(map[string]struct{}, len(known))
	for _, k := range known {
		set[k] = struct{}{}
	}

	var extra []string
	for k := range r {
		if _, ok := set[k]; !ok {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return extra
}

// NEOKeys lists the raw keys consumed by NEOFieldsFromRecord
func NEOKeys() []string {
	return append([]string(nil), neoKeys...)
}

// ApproachKeys lists the raw keys consumed by ApproachFieldsFromRecord
func ApproachKeys() []string {
	return append([]string(nil), approachKeys...)
}

// NEOFields enumerates every input recognized by NewNearEarthObject
// Nil pointers mean the value was absent from the source record
type NEOFields struct {
	Designation string
	Name        *string
	Diameter    *string
	Hazardous   *string
}

// ApproachFields enumerates every input recognized by NewCloseApproach
type ApproachFields struct {
	Designation  string
	CalendarDate string
	Distance     *string
	Velocity     *string
}

// NEOFieldsFromRecord projects a raw record onto the NEO inputs
func NEOFieldsFromRecord(r RawRecord) NEOFields {
	return NEOFields{
		Designation: r[KeyDesignation],
		Name:        r.lookup(KeyName),
		Diameter:    r.lookup(KeyDiameter),
		Hazardous:   r.lookup(KeyHazardous),
	}
}

// ApproachFieldsFromRecord projects a raw record onto the close approach inputs
func ApproachFieldsFromRecord(r RawRecord) ApproachFields {
	return ApproachFields{
		Designation:  r[KeyApproachDesignation],
		CalendarDate: r[KeyCalendarDate],
		Distance:     r.lookup(KeyDistance),
		Velocity:     r.lookup(KeyVelocity),
	}
}

// NormalizeName maps absent or blank names to nil; an empty string is never stored
func NormalizeName(raw *string) *string {
	if raw == nil {
		return nil
	}
	name := strings.TrimSpace(*raw)
	if name == "" {
		return nil
	}
	return &name
}

// NormalizeFloat parses an optional numeric string
// Absent and blank values yield the unknown sentinel silently, unparseable ones yield it with a diagnostic
func NormalizeFloat(field string, raw *string) (float64, *ValidationError) {
	if raw == nil {
		return Unknown(), nil
	}
	value := strings.TrimSpace(*raw)
	if value == "" {
		return Unknown(), nil
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return Unknown(), &ValidationError{
			Field:   field,
			Value:   *raw,
			Message: "not a number, treating as unknown",
			Err:     ErrMalformedScalar,
		}
	}
	if math.IsInf(f, 0) {
		return Unknown(), &ValidationError{
			Field:   field,
			Value:   *raw,
			Message: "not a finite number, treating as unknown",
			Err:     ErrMalformedScalar,
		}
	}
	return f, nil
}

// NormalizeHazard is true only for a case-insensitive "Y"
// An absent flag yields false together with a diagnostic, since well-formed input always carries it
func NormalizeHazard(raw *string) (bool, *ValidationError) {
	if raw == nil {
		return false, &ValidationError{
			Field:   KeyHazardous,
			Message: "hazard flag absent, treating as not hazardous",
			Err:     ErrAbsentFlag,
		}
	}
	return strings.EqualFold(strings.TrimSpace(*raw), "Y"), nil
}
