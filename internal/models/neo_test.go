package models

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestNewNearEarthObject(t *testing.T) {
	tests := []struct {
		name        string
		fields      NEOFields
		wantErr     bool
		wantDiags   []string
		checkValues func(*testing.T, *NearEarthObject)
	}{
		{
			name: "fully populated",
			fields: NEOFields{
				Designation: "433",
				Name:        strPtr("Eros"),
				Diameter:    strPtr("16.84"),
				Hazardous:   strPtr("N"),
			},
			checkValues: func(t *testing.T, neo *NearEarthObject) {
				if neo.Designation() != "433" {
					t.Errorf("Designation() = %q, want 433", neo.Designation())
				}
				if name, ok := neo.Name(); !ok || name != "Eros" {
					t.Errorf("Name() = %q, %v", name, ok)
				}
				if neo.Diameter() != 16.84 {
					t.Errorf("Diameter() = %v, want 16.84", neo.Diameter())
				}
				if neo.Hazardous() {
					t.Error("Hazardous() should be false")
				}
				if neo.Fullname() != "433 (Eros)" {
					t.Errorf("Fullname() = %q", neo.Fullname())
				}
			},
		},
		{
			name: "unnamed with unknown diameter",
			fields: NEOFields{
				Designation: "2020 AB",
				Name:        strPtr(""),
				Diameter:    strPtr(""),
				Hazardous:   strPtr("y"),
			},
			checkValues: func(t *testing.T, neo *NearEarthObject) {
				if _, ok := neo.Name(); ok {
					t.Error("empty name should be absent")
				}
				if !math.IsNaN(neo.Diameter()) {
					t.Errorf("Diameter() = %v, want NaN", neo.Diameter())
				}
				if !neo.Hazardous() {
					t.Error("lowercase y should be hazardous")
				}
				if neo.Fullname() != "2020 AB" {
					t.Errorf("Fullname() = %q", neo.Fullname())
				}
			},
		},
		{
			name: "malformed diameter is recovered",
			fields: NEOFields{
				Designation: "1",
				Diameter:    strPtr("big"),
				Hazardous:   strPtr("N"),
			},
			wantDiags: []string{KeyDiameter},
			checkValues: func(t *testing.T, neo *NearEarthObject) {
				if !math.IsNaN(neo.Diameter()) {
					t.Errorf("Diameter() = %v, want NaN", neo.Diameter())
				}
			},
		},
		{
			name:      "absent hazard flag defaults to false",
			fields:    NEOFields{Designation: "433", Name: strPtr("Eros")},
			wantDiags: []string{KeyHazardous},
			checkValues: func(t *testing.T, neo *NearEarthObject) {
				if neo.Hazardous() {
					t.Error("absent flag should not be hazardous")
				}
			},
		},
		{
			name:    "missing designation",
			fields:  NEOFields{Designation: "  ", Hazardous: strPtr("N")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			neo, diags, err := NewNearEarthObject(tt.fields)

			if (err != nil) != tt.wantErr {
				t.Fatalf("NewNearEarthObject() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrMissingField) {
					t.Errorf("error should wrap ErrMissingField, got %v", err)
				}
				return
			}

			got := diags.Fields()
			if len(got) != len(tt.wantDiags) {
				t.Fatalf("diagnostic fields = %v, want %v", got, tt.wantDiags)
			}
			for i := range got {
				if got[i] != tt.wantDiags[i] {
					t.Errorf("diagnostic[%d] = %q, want %q", i, got[i], tt.wantDiags[i])
				}
			}

			if tt.checkValues != nil {
				tt.checkValues(t, neo)
			}
		})
	}
}

func TestNearEarthObject_Serialize(t *testing.T) {
	neo, _, err := NewNearEarthObject(NEOFields{Designation: "3200", Hazardous: strPtr("Y")})
	if err != nil {
		t.Fatalf("NewNearEarthObject() error = %v", err)
	}

	rec := neo.Serialize()
	if rec.Name != "" {
		t.Errorf("Name = %q, want empty string", rec.Name)
	}
	if rec.DiameterKm.Known() {
		t.Errorf("DiameterKm = %v, want unknown", rec.DiameterKm)
	}
	if !rec.PotentiallyHazardous {
		t.Error("PotentiallyHazardous should be true")
	}

	if _, ok := neo.Name(); ok {
		t.Error("Serialize must not change the in-memory name")
	}
}

func TestNearEarthObject_String(t *testing.T) {
	neo, _, _ := NewNearEarthObject(NEOFields{
		Designation: "433",
		Name:        strPtr("Eros"),
		Diameter:    strPtr("16.84"),
		Hazardous:   strPtr("N"),
	})
	want := "NEO 433 (Eros) has a diameter of 16.840 km and is not potentially hazardous."
	if neo.String() != want {
		t.Errorf("String() = %q, want %q", neo.String(), want)
	}

	unknown, _, _ := NewNearEarthObject(NEOFields{Designation: "X", Hazardous: strPtr("Y")})
	if !strings.Contains(unknown.String(), "unknown diameter") {
		t.Errorf("String() = %q, want unknown diameter", unknown.String())
	}
}

func TestRestoreNearEarthObject(t *testing.T) {
	if _, err := RestoreNearEarthObject("", nil, nil, false); !errors.Is(err, ErrMissingField) {
		t.Errorf("RestoreNearEarthObject() error = %v, want ErrMissingField", err)
	}

	d := 1.5
	neo, err := RestoreNearEarthObject("99942", strPtr("Apophis"), &d, true)
	if err != nil {
		t.Fatalf("RestoreNearEarthObject() error = %v", err)
	}
	if neo.Fullname() != "99942 (Apophis)" || neo.Diameter() != 1.5 || !neo.Hazardous() {
		t.Errorf("restored = %#v", neo)
	}
}

func TestNewNearEarthObject_InfiniteDiameter(t *testing.T) {
	for _, raw := range []string{"inf", "-inf"} {
		t.Run(raw, func(t *testing.T) {
			neo, diags, err := NewNearEarthObject(NEOFields{
				Designation: "433",
				Diameter:    strPtr(raw),
				Hazardous:   strPtr("N"),
			})
			if err != nil {
				t.Fatalf("NewNearEarthObject() error = %v", err)
			}
			if !math.IsNaN(neo.Diameter()) {
				t.Errorf("Diameter() = %v, want NaN", neo.Diameter())
			}
			if len(diags) != 1 || !errors.Is(diags[0], ErrMalformedScalar) {
				t.Errorf("diags = %v, want one ErrMalformedScalar", diags)
			}
		})
	}
}

func TestRestoreNearEarthObject_InfiniteDiameter(t *testing.T) {
	d := math.Inf(1)
	neo, err := RestoreNearEarthObject("433", nil, &d, false)
	if err != nil {
		t.Fatalf("RestoreNearEarthObject() error = %v", err)
	}
	if !math.IsNaN(neo.Diameter()) {
		t.Errorf("Diameter() = %v, want NaN", neo.Diameter())
	}
}
