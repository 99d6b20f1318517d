package models

import (
	"errors"
	"testing"
)

type designationMatcher string

func (d designationMatcher) Match(ca *CloseApproach, _ *NearEarthObject) bool {
	return ca.Designation() == string(d)
}

func buildApproach(t *testing.T, des, cd string) *CloseApproach {
	t.Helper()
	ca, _, err := NewCloseApproach(ApproachFields{
		Designation:  des,
		CalendarDate: cd,
		Distance:     strPtr("0.1"),
		Velocity:     strPtr("10"),
	})
	if err != nil {
		t.Fatalf("NewCloseApproach() error = %v", err)
	}
	return ca
}

func buildNEO(t *testing.T, des, name string) *NearEarthObject {
	t.Helper()
	neo, _, err := NewNearEarthObject(NEOFields{Designation: des, Name: strPtr(name), Hazardous: strPtr("N")})
	if err != nil {
		t.Fatalf("NewNearEarthObject() error = %v", err)
	}
	return neo
}

func TestNewCatalog_Links(t *testing.T) {
	eros := buildNEO(t, "433", "Eros")
	apophis := buildNEO(t, "99942", "Apophis")

	// discovery order, deliberately not sorted by time
	a1 := buildApproach(t, "433", "2000-Jan-01 00:00")
	a2 := buildApproach(t, "99942", "2029-Apr-13 21:46")
	a3 := buildApproach(t, "433", "1900-Dec-27 01:30")

	catalog, err := NewCatalog([]*NearEarthObject{eros, apophis}, []*CloseApproach{a1, a2, a3})
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}

	got := catalog.ApproachesOf(eros)
	if len(got) != 2 || got[0] != a1 || got[1] != a3 {
		t.Errorf("ApproachesOf(eros) = %v, want [a1 a3] in insertion order", got)
	}
	if eros.ApproachCount() != 2 || apophis.ApproachCount() != 1 {
		t.Errorf("approach counts = %d/%d", eros.ApproachCount(), apophis.ApproachCount())
	}

	for _, ca := range catalog.Approaches() {
		neo, err := catalog.NEOOf(ca)
		if err != nil {
			t.Fatalf("NEOOf() error = %v", err)
		}
		if neo.Designation() != ca.Designation() {
			t.Errorf("approach of %q linked to %q", ca.Designation(), neo.Designation())
		}
		found := false
		for _, back := range catalog.ApproachesOf(neo) {
			if back == ca {
				found = true
			}
		}
		if !found {
			t.Errorf("approach of %q missing from its NEO", ca.Designation())
		}
	}

	if neo, ok := catalog.NEOByName("Apophis"); !ok || neo != apophis {
		t.Errorf("NEOByName(Apophis) = %v, %v", neo, ok)
	}
	if neo, ok := catalog.NEOByDesignation("433"); !ok || neo != eros {
		t.Errorf("NEOByDesignation(433) = %v, %v", neo, ok)
	}
	if _, ok := catalog.NEOByName(""); ok {
		t.Error("empty name must not match")
	}

	hits := catalog.Query(designationMatcher("433"))
	if len(hits) != 2 {
		t.Errorf("Query() = %d approaches, want 2", len(hits))
	}
	if all := catalog.Query(); len(all) != 3 {
		t.Errorf("Query() with no matchers = %d, want 3", len(all))
	}
}

func TestNewCatalog_Errors(t *testing.T) {
	t.Run("unresolved designation", func(t *testing.T) {
		eros := buildNEO(t, "433", "Eros")
		orphan := buildApproach(t, "404", "2000-Jan-01 00:00")

		_, err := NewCatalog([]*NearEarthObject{eros}, []*CloseApproach{orphan})
		var linkErr *UnresolvedLinkError
		if !errors.As(err, &linkErr) {
			t.Fatalf("NewCatalog() error = %v, want UnresolvedLinkError", err)
		}
		if linkErr.Designation != "404" {
			t.Errorf("Designation = %q, want 404", linkErr.Designation)
		}
		if orphan.Linked() || eros.ApproachCount() != 0 {
			t.Error("failed build must not mutate entities")
		}
	})

	t.Run("duplicate designation", func(t *testing.T) {
		_, err := NewCatalog([]*NearEarthObject{buildNEO(t, "433", "Eros"), buildNEO(t, "433", "Other")}, nil)
		var dupErr *DuplicateDesignationError
		if !errors.As(err, &dupErr) {
			t.Fatalf("NewCatalog() error = %v, want DuplicateDesignationError", err)
		}
	})

	t.Run("relinking", func(t *testing.T) {
		eros := buildNEO(t, "433", "Eros")
		ca := buildApproach(t, "433", "2000-Jan-01 00:00")
		if _, err := NewCatalog([]*NearEarthObject{eros}, []*CloseApproach{ca}); err != nil {
			t.Fatalf("first NewCatalog() error = %v", err)
		}
		if _, err := NewCatalog([]*NearEarthObject{buildNEO(t, "433", "Eros")}, []*CloseApproach{ca}); !errors.Is(err, ErrAlreadyLinked) {
			t.Errorf("second NewCatalog() error = %v, want ErrAlreadyLinked", err)
		}
	})

	t.Run("foreign approach", func(t *testing.T) {
		other := buildApproach(t, "1", "2000-Jan-01 00:00")
		c1, err := NewCatalog([]*NearEarthObject{buildNEO(t, "1", "One")}, []*CloseApproach{other})
		if err != nil {
			t.Fatalf("NewCatalog() error = %v", err)
		}
		c2, err := NewCatalog([]*NearEarthObject{buildNEO(t, "2", "Two")}, nil)
		if err != nil {
			t.Fatalf("NewCatalog() error = %v", err)
		}
		if _, err := c1.NEOOf(other); err != nil {
			t.Errorf("NEOOf() in owning catalog error = %v", err)
		}
		if _, err := c2.NEOOf(other); !errors.Is(err, ErrNotLinked) {
			t.Errorf("NEOOf() in foreign catalog error = %v, want ErrNotLinked", err)
		}
	})

	t.Run("foreign approach with shared designation", func(t *testing.T) {
		mine := buildApproach(t, "433", "2000-Jan-01 00:00")
		theirs := buildApproach(t, "433", "2000-Jan-01 00:00")
		c1, err := NewCatalog([]*NearEarthObject{buildNEO(t, "433", "Eros")}, []*CloseApproach{mine})
		if err != nil {
			t.Fatalf("NewCatalog() error = %v", err)
		}
		if _, err := NewCatalog([]*NearEarthObject{buildNEO(t, "433", "Eros")}, []*CloseApproach{theirs}); err != nil {
			t.Fatalf("NewCatalog() error = %v", err)
		}

		if _, err := c1.Serialize(mine); err != nil {
			t.Errorf("Serialize() own approach error = %v", err)
		}
		if _, err := c1.Serialize(theirs); !errors.Is(err, ErrNotLinked) {
			t.Errorf("Serialize() foreign approach error = %v, want ErrNotLinked", err)
		}
	})
}
