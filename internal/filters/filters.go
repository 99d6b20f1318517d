package filters

import (
	"fmt"
	"time"

	"neo-platform/internal/dates"
	"neo-platform/internal/models"
)

// Op is the comparison an attribute filter applies
type Op int

const (
	OpEqual Op = iota
	OpAtLeast
	OpAtMost
)

func (o Op) String() string {
	switch o {
	case OpEqual:
		return "=="
	case OpAtLeast:
		return ">="
	case OpAtMost:
		return "<="
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// Criteria holds the optional bounds of an approach query; nil fields are not filtered on
type Criteria struct {
	Date        *time.Time
	StartDate   *time.Time
	EndDate     *time.Time
	DistanceMin *float64
	DistanceMax *float64
	VelocityMin *float64
	VelocityMax *float64
	DiameterMin *float64
	DiameterMax *float64
	Hazardous   *bool
}

// Validate rejects bounds that can never match together
func (c Criteria) Validate() error {
	if c.StartDate != nil && c.EndDate != nil && dates.Day(*c.StartDate).After(dates.Day(*c.EndDate)) {
		return fmt.Errorf("start date %s is after end date %s", c.StartDate.Format(dates.DayLayout), c.EndDate.Format(dates.DayLayout))
	}
	pairs := []struct {
		name     string
		min, max *float64
	}{
		{"distance", c.DistanceMin, c.DistanceMax},
		{"velocity", c.VelocityMin, c.VelocityMax},
		{"diameter", c.DiameterMin, c.DiameterMax},
	}
	for _, p := range pairs {
		if (p.min != nil && models.IsUnknown(*p.min)) || (p.max != nil && models.IsUnknown(*p.max)) {
			return fmt.Errorf("%s bound must be a finite number", p.name)
		}
		if p.min != nil && p.max != nil && *p.min > *p.max {
			return fmt.Errorf("%s min %g is greater than max %g", p.name, *p.min, *p.max)
		}
	}
	return nil
}

// IsZero reports whether no bound is set
func (c Criteria) IsZero() bool {
	return c == Criteria{}
}

// AttributeFilter compares one attribute of a linked approach against a reference value
type AttributeFilter[T float64 | time.Time | bool] struct {
	Name  string
	Op    Op
	Value T
	get   func(ca *models.CloseApproach, neo *models.NearEarthObject) T
	cmp   func(a, b T) int
}

// Match implements models.Matcher
func (f *AttributeFilter[T]) Match(ca *models.CloseApproach, neo *models.NearEarthObject) bool {
	if ca == nil || neo == nil {
		return false
	}
	v := f.get(ca, neo)
	// unknown numerics compare false against every bound
	if x, ok := any(v).(float64); ok && models.IsUnknown(x) {
		return false
	}
	c := f.cmp(v, f.Value)
	switch f.Op {
	case OpEqual:
		return c == 0
	case OpAtLeast:
		return c >= 0
	case OpAtMost:
		return c <= 0
	}
	return false
}

func (f *AttributeFilter[T]) String() string {
	return fmt.Sprintf("%s %s %v", f.Name, f.Op, f.Value)
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareDay(a, b time.Time) int {
	return dates.Day(a).Compare(dates.Day(b))
}

func compareBool(a, b bool) int {
	if a == b {
		return 0
	}
	if !a {
		return -1
	}
	return 1
}

func approachDay(ca *models.CloseApproach, _ *models.NearEarthObject) time.Time { return ca.Time() }

func approachDistance(ca *models.CloseApproach, _ *models.NearEarthObject) float64 { return ca.Distance() }

func approachVelocity(ca *models.CloseApproach, _ *models.NearEarthObject) float64 { return ca.Velocity() }

func neoDiameter(_ *models.CloseApproach, neo *models.NearEarthObject) float64 { return neo.Diameter() }

func neoHazardous(_ *models.CloseApproach, neo *models.NearEarthObject) bool { return neo.Hazardous() }

func dayFilter(op Op, v time.Time) models.Matcher {
	return &AttributeFilter[time.Time]{Name: "date", Op: op, Value: v, get: approachDay, cmp: compareDay}
}

func floatFilter(name string, op Op, v float64, get func(*models.CloseApproach, *models.NearEarthObject) float64) models.Matcher {
	return &AttributeFilter[float64]{Name: name, Op: op, Value: v, get: get, cmp: compareFloat}
}

// Build turns the criteria into matchers for models.Catalog.Query
func Build(c Criteria) []models.Matcher {
	var out []models.Matcher

	if c.Date != nil {
		out = append(out, dayFilter(OpEqual, *c.Date))
	}
	if c.StartDate != nil {
		out = append(out, dayFilter(OpAtLeast, *c.StartDate))
	}
	if c.EndDate != nil {
		out = append(out, dayFilter(OpAtMost, *c.EndDate))
	}

	bounds := []struct {
		name string
		op   Op
		v    *float64
		get  func(*models.CloseApproach, *models.NearEarthObject) float64
	}{
		{"distance", OpAtLeast, c.DistanceMin, approachDistance},
		{"distance", OpAtMost, c.DistanceMax, approachDistance},
		{"velocity", OpAtLeast, c.VelocityMin, approachVelocity},
		{"velocity", OpAtMost, c.VelocityMax, approachVelocity},
		{"diameter", OpAtLeast, c.DiameterMin, neoDiameter},
		{"diameter", OpAtMost, c.DiameterMax, neoDiameter},
	}
	for _, b := range bounds {
		if b.v != nil {
			out = append(out, floatFilter(b.name, b.op, *b.v, b.get))
		}
	}

	if c.Hazardous != nil {
		out = append(out, &AttributeFilter[bool]{Name: "hazardous", Op: OpEqual, Value: *c.Hazardous, get: neoHazardous, cmp: compareBool})
	}

	return out
}

// Limit returns at most n approaches from the front of the slice; n <= 0 means no limit
func Limit(approaches []*models.CloseApproach, n int) []*models.CloseApproach {
	if n <= 0 || n >= len(approaches) {
		return approaches
	}
	return approaches[:n]
}
