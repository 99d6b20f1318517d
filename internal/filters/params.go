package filters

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"neo-platform/internal/dates"
)

// Parameter names shared by the HTTP API and the CLI flags
const (
	ParamDate        = "date"
	ParamStartDate   = "start_date"
	ParamEndDate     = "end_date"
	ParamDistanceMin = "distance_min"
	ParamDistanceMax = "distance_max"
	ParamVelocityMin = "velocity_min"
	ParamVelocityMax = "velocity_max"
	ParamDiameterMin = "diameter_min"
	ParamDiameterMax = "diameter_max"
	ParamHazardous   = "hazardous"
)

// ParseValues builds criteria from string parameters; empty values are not filtered on
func ParseValues(get func(name string) string) (Criteria, error) {
	var c Criteria

	days := []struct {
		name string
		dst  **time.Time
	}{
		{ParamDate, &c.Date},
		{ParamStartDate, &c.StartDate},
		{ParamEndDate, &c.EndDate},
	}
	for _, d := range days {
		raw := strings.TrimSpace(get(d.name))
		if raw == "" {
			continue
		}
		t, err := dates.ParseDay(raw)
		if err != nil {
			return Criteria{}, fmt.Errorf("invalid %s: %w", d.name, err)
		}
		*d.dst = &t
	}

	bounds := []struct {
		name string
		dst  **float64
	}{
		{ParamDistanceMin, &c.DistanceMin},
		{ParamDistanceMax, &c.DistanceMax},
		{ParamVelocityMin, &c.VelocityMin},
		{ParamVelocityMax, &c.VelocityMax},
		{ParamDiameterMin, &c.DiameterMin},
		{ParamDiameterMax, &c.DiameterMax},
	}
	for _, b := range bounds {
		raw := strings.TrimSpace(get(b.name))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Criteria{}, fmt.Errorf("invalid %s %q, expected a number", b.name, raw)
		}
		*b.dst = &v
	}

	if raw := strings.TrimSpace(get(ParamHazardous)); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return Criteria{}, fmt.Errorf("invalid %s %q, expected true or false", ParamHazardous, raw)
		}
		c.Hazardous = &v
	}

	return c, c.Validate()
}
