package filters

import (
	"net/url"
	"testing"
)

func TestParseValues(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		check   func(t *testing.T, c Criteria)
		wantErr bool
	}{
		{
			name:  "empty",
			query: "",
			check: func(t *testing.T, c Criteria) {
				if !c.IsZero() {
					t.Errorf("criteria = %+v, want zero", c)
				}
			},
		},
		{
			name:  "all kinds",
			query: "date=2020-01-01&distance_max=0.1&velocity_min=5&hazardous=false",
			check: func(t *testing.T, c Criteria) {
				if c.Date == nil || c.Date.Format("2006-01-02") != "2020-01-01" {
					t.Errorf("Date = %v", c.Date)
				}
				if c.DistanceMax == nil || *c.DistanceMax != 0.1 {
					t.Errorf("DistanceMax = %v", c.DistanceMax)
				}
				if c.VelocityMin == nil || *c.VelocityMin != 5 {
					t.Errorf("VelocityMin = %v", c.VelocityMin)
				}
				if c.Hazardous == nil || *c.Hazardous {
					t.Errorf("Hazardous = %v", c.Hazardous)
				}
			},
		},
		{name: "bad date", query: "start_date=2020-Jan-01", wantErr: true},
		{name: "bad number", query: "diameter_min=big", wantErr: true},
		{name: "bad bool", query: "hazardous=maybe", wantErr: true},
		{name: "reversed range", query: "velocity_min=10&velocity_max=1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatal(err)
			}
			c, err := ParseValues(values.Get)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseValues() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, c)
			}
		})
	}
}
