package models

import (
	"fmt"
	"strings"
)

// NearEarthObject represents a near-Earth object from the NEO catalog
// Identity and physical attributes are fixed at construction; approaches are added only by a Catalog
type NearEarthObject struct {
	designation string
	name        *string
	diameter    float64
	hazardous   bool

	// indices into the owning catalog's approach arena, in discovery order
	approaches []int
	linked     bool
}

// NEORecord is the flat serialized form of a NearEarthObject
type NEORecord struct {
	Name                 string `json:"name"`
	DiameterKm           Float  `json:"diameter_km"`
	PotentiallyHazardous bool   `json:"potentially_hazardous"`
}

// NewNearEarthObject builds a NEO from catalog fields
// Missing optional fields never fail; only an empty designation is rejected
func NewNearEarthObject(f NEOFields) (*NearEarthObject, Diagnostics, error) {
	designation := strings.TrimSpace(f.Designation)
	if designation == "" {
		return nil, nil, &ValidationError{
			Field:   KeyDesignation,
			Value:   f.Designation,
			Message: "primary designation is required",
			Err:     ErrMissingField,
		}
	}

	var diags Diagnostics

	diameter, verr := NormalizeFloat(KeyDiameter, f.Diameter)
	if verr != nil {
		diags = append(diags, verr)
	}

	hazardous, verr := NormalizeHazard(f.Hazardous)
	if verr != nil {
		diags = append(diags, verr)
	}

	return &NearEarthObject{
		designation: designation,
		name:        NormalizeName(f.Name),
		diameter:    diameter,
		hazardous:   hazardous,
	}, diags, nil
}

// RestoreNearEarthObject rebuilds a NEO from already-typed values, e.g. a database row
func RestoreNearEarthObject(designation string, name *string, diameter *float64, hazardous bool) (*NearEarthObject, error) {
	designation = strings.TrimSpace(designation)
	if designation == "" {
		return nil, &ValidationError{
			Field:   KeyDesignation,
			Message: "primary designation is required",
			Err:     ErrMissingField,
		}
	}

	return &NearEarthObject{
		designation: designation,
		name:        NormalizeName(name),
		diameter:    fromPtr(diameter),
		hazardous:   hazardous,
	}, nil
}

// Designation returns the unique primary designation
func (n *NearEarthObject) Designation() string { return n.designation }

// Name returns the IAU name and whether one is known
func (n *NearEarthObject) Name() (string, bool) {
	if n.name == nil {
		return "", false
	}
	return *n.name, true
}

// Diameter returns the diameter in kilometers, NaN when unknown
func (n *NearEarthObject) Diameter() float64 { return n.diameter }

// Hazardous reports whether the object is flagged potentially hazardous
func (n *NearEarthObject) Hazardous() bool { return n.hazardous }

// ApproachCount returns how many close approaches are linked to this object
func (n *NearEarthObject) ApproachCount() int { return len(n.approaches) }

// Fullname returns "designation (name)", or just the designation when unnamed
func (n *NearEarthObject) Fullname() string {
	if n.name != nil {
		return fmt.Sprintf("%s (%s)", n.designation, *n.name)
	}
	return n.designation
}

// Serialize flattens the object; an absent name becomes the empty string
func (n *NearEarthObject) Serialize() NEORecord {
	name, _ := n.Name()
	return NEORecord{
		Name:                 name,
		DiameterKm:           Float(n.diameter),
		PotentiallyHazardous: n.hazardous,
	}
}

func (n *NearEarthObject) String() string {
	hazard := "is not"
	if n.hazardous {
		hazard = "is"
	}
	if IsUnknown(n.diameter) {
		return fmt.Sprintf("NEO %s has an unknown diameter and %s potentially hazardous.", n.Fullname(), hazard)
	}
	return fmt.Sprintf("NEO %s has a diameter of %.3f km and %s potentially hazardous.", n.Fullname(), n.diameter, hazard)
}

// GoString is the debug form used by %#v
func (n *NearEarthObject) GoString() string {
	name := "nil"
	if n.name != nil {
		name = fmt.Sprintf("%q", *n.name)
	}
	return fmt.Sprintf("NearEarthObject(designation=%q, name=%s, diameter=%.3f, hazardous=%t)", n.designation, name, n.diameter, n.hazardous)
}
