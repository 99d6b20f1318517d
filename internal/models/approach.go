package models

import (
	"fmt"
	"strings"
	"time"

	"neo-platform/internal/dates"
)

const unlinked = -1

// CloseApproach represents one recorded pass of a NEO near Earth
type CloseApproach struct {
	// staged designation read from the source record, kept after linking for export
	designation string
	time        time.Time
	distance    float64
	velocity    float64

	// index into the owning catalog's NEO arena
	neo int
}

// ApproachRecord is the flat serialized form of a linked CloseApproach
type ApproachRecord struct {
	Designation string    `json:"designation"`
	DatetimeUTC string    `json:"datetime_utc"`
	DistanceAU  Float     `json:"distance_au"`
	VelocityKmS Float     `json:"velocity_km_s"`
	NEO         NEORecord `json:"neo"`
}

// NEOResolver resolves the object a close approach is linked to
type NEOResolver interface {
	NEOOf(ca *CloseApproach) (*NearEarthObject, error)
}

// NewCloseApproach builds an unlinked close approach from CAD fields
// A missing designation or an unparseable date rejects the record; bad numerics degrade to unknown
func NewCloseApproach(f ApproachFields) (*CloseApproach, Diagnostics, error) {
	designation := strings.TrimSpace(f.Designation)
	if designation == "" {
		return nil, nil, &ValidationError{
			Field:   KeyApproachDesignation,
			Value:   f.Designation,
			Message: "designation is required",
			Err:     ErrMissingField,
		}
	}

	t, err := dates.Parse(f.CalendarDate)
	if err != nil {
		return nil, nil, &ValidationError{
			Field:   KeyCalendarDate,
			Value:   f.CalendarDate,
			Message: "approach time is required and must be a calendar date",
			Err:     fmt.Errorf("%w: %v", ErrMissingField, err),
		}
	}

	var diags Diagnostics

	distance, verr := NormalizeFloat(KeyDistance, f.Distance)
	if verr != nil {
		diags = append(diags, verr)
	}

	velocity, verr := NormalizeFloat(KeyVelocity, f.Velocity)
	if verr != nil {
		diags = append(diags, verr)
	}

	return &CloseApproach{
		designation: designation,
		time:        t,
		distance:    distance,
		velocity:    velocity,
		neo:         unlinked,
	}, diags, nil
}

// RestoreCloseApproach rebuilds an unlinked close approach from typed values
func RestoreCloseApproach(designation string, t time.Time, distance, velocity *float64) (*CloseApproach, error) {
	designation = strings.TrimSpace(designation)
	if designation == "" {
		return nil, &ValidationError{
			Field:   KeyApproachDesignation,
			Message: "designation is required",
			Err:     ErrMissingField,
		}
	}
	if t.IsZero() {
		return nil, &ValidationError{
			Field:   KeyCalendarDate,
			Message: "approach time is required",
			Err:     ErrMissingField,
		}
	}

	ca := &CloseApproach{
		designation: designation,
		time:        t.UTC().Truncate(time.Minute),
		distance:    fromPtr(distance),
		velocity:    fromPtr(velocity),
		neo:         unlinked,
	}
	return ca, nil
}

// Designation returns the staged NEO designation from the source record
func (ca *CloseApproach) Designation() string { return ca.designation }

// Time returns the UTC approach time
func (ca *CloseApproach) Time() time.Time { return ca.time }

// TimeStr formats the approach time as "YYYY-MM-DD HH:MM"
func (ca *CloseApproach) TimeStr() string { return dates.Format(ca.time) }

// Distance returns the nominal approach distance in au, NaN when unknown
func (ca *CloseApproach) Distance() float64 { return ca.distance }

// Velocity returns the relative approach velocity in km/s, NaN when unknown
func (ca *CloseApproach) Velocity() float64 { return ca.velocity }

// Linked reports whether a catalog has attached this approach to its NEO
func (ca *CloseApproach) Linked() bool { return ca.neo != unlinked }

// Fullname returns the linked NEO's full name, falling back to the staged designation
func (ca *CloseApproach) Fullname(r NEOResolver) string {
	if r != nil && ca.Linked() {
		if neo, err := r.NEOOf(ca); err == nil {
			return neo.Fullname()
		}
	}
	return ca.designation
}

// record flattens the approach together with the NEO it is linked to
func (ca *CloseApproach) record(neo *NearEarthObject) (ApproachRecord, error) {
	if !ca.Linked() || neo == nil {
		return ApproachRecord{}, fmt.Errorf("serialize approach of %q at %s: %w", ca.designation, ca.TimeStr(), ErrNotLinked)
	}
	if neo.designation != ca.designation {
		return ApproachRecord{}, fmt.Errorf("serialize approach of %q with object %q: %w", ca.designation, neo.designation, ErrNotLinked)
	}

	return ApproachRecord{
		Designation: ca.designation,
		DatetimeUTC: ca.TimeStr(),
		DistanceAU:  Float(ca.distance),
		VelocityKmS: Float(ca.velocity),
		NEO:         neo.Serialize(),
	}, nil
}

// Describe renders the approach with the resolved full name of its object
func (ca *CloseApproach) Describe(r NEOResolver) string {
	return fmt.Sprintf("On %s, '%s' approaches Earth at a distance of %.2f au and a velocity of %.2f km/s.",
		ca.TimeStr(), ca.Fullname(r), ca.distance, ca.velocity)
}

func (ca *CloseApproach) String() string {
	return ca.Describe(nil)
}

// GoString is the debug form used by %#v
func (ca *CloseApproach) GoString() string {
	return fmt.Sprintf("CloseApproach(time=%q, distance=%.2f, velocity=%.2f, designation=%q, linked=%t)",
		ca.TimeStr(), ca.distance, ca.velocity, ca.designation, ca.Linked())
}
