package models

import (
	"fmt"
)

// Matcher decides whether a linked close approach belongs in a query result
type Matcher interface {
	Match(ca *CloseApproach, neo *NearEarthObject) bool
}

// Catalog owns the NEO and close approach arenas and the links between them
// NEOs refer to approaches and approaches refer to NEOs by arena index, never by pointer
type Catalog struct {
	neos          []*NearEarthObject
	approaches    []*CloseApproach
	byDesignation map[string]int
	byName        map[string]int
}

// NewCatalog indexes the NEOs and links every close approach to the NEO its designation names
// Each approach is appended to its NEO in the order given. Duplicate designations and
// designations matching no NEO abort construction.
func NewCatalog(neos []*NearEarthObject, approaches []*CloseApproach) (*Catalog, error) {
	c := &Catalog{
		neos:          make([]*NearEarthObject, 0, len(neos)),
		approaches:    make([]*CloseApproach, 0, len(approaches)),
		byDesignation: make(map[string]int, len(neos)),
		byName:        make(map[string]int),
	}

	for _, neo := range neos {
		if neo == nil {
			continue
		}
		if neo.linked {
			return nil, fmt.Errorf("index %q: %w", neo.designation, ErrAlreadyLinked)
		}
		if _, exists := c.byDesignation[neo.designation]; exists {
			return nil, &DuplicateDesignationError{Designation: neo.designation}
		}

		idx := len(c.neos)
		c.neos = append(c.neos, neo)
		c.byDesignation[neo.designation] = idx
		if neo.name != nil {
			if _, taken := c.byName[*neo.name]; !taken {
				c.byName[*neo.name] = idx
			}
		}
	}

	// resolve everything before mutating so a failed build leaves the entities untouched
	targets := make([]int, 0, len(approaches))
	for _, ca := range approaches {
		if ca == nil {
			continue
		}
		if ca.Linked() {
			return nil, fmt.Errorf("link approach of %q: %w", ca.designation, ErrAlreadyLinked)
		}

		neoIdx, ok := c.byDesignation[ca.designation]
		if !ok {
			return nil, &UnresolvedLinkError{Designation: ca.designation, Time: ca.time}
		}
		c.approaches = append(c.approaches, ca)
		targets = append(targets, neoIdx)
	}

	for caIdx, ca := range c.approaches {
		neoIdx := targets[caIdx]
		ca.neo = neoIdx
		c.neos[neoIdx].approaches = append(c.neos[neoIdx].approaches, caIdx)
	}

	for _, neo := range c.neos {
		neo.linked = true
	}

	return c, nil
}

// NEOs returns every object in catalog order
func (c *Catalog) NEOs() []*NearEarthObject {
	return append([]*NearEarthObject(nil), c.neos...)
}

// Approaches returns every close approach in catalog order
func (c *Catalog) Approaches() []*CloseApproach {
	return append([]*CloseApproach(nil), c.approaches...)
}

// NEOByDesignation looks an object up by its primary designation
func (c *Catalog) NEOByDesignation(designation string) (*NearEarthObject, bool) {
	idx, ok := c.byDesignation[designation]
	if !ok {
		return nil, false
	}
	return c.neos[idx], true
}

// NEOByName looks an object up by its IAU name; the first object loaded wins on a clash
func (c *Catalog) NEOByName(name string) (*NearEarthObject, bool) {
	if name == "" {
		return nil, false
	}
	idx, ok := c.byName[name]
	if !ok {
		return nil, false
	}
	return c.neos[idx], true
}

// NEOOf resolves the object a close approach is linked to
func (c *Catalog) NEOOf(ca *CloseApproach) (*NearEarthObject, error) {
	if ca == nil || !ca.Linked() || ca.neo >= len(c.neos) {
		return nil, ErrNotLinked
	}
	neo := c.neos[ca.neo]
	for _, i := range neo.approaches {
		if c.approaches[i] == ca {
			return neo, nil
		}
	}
	return nil, fmt.Errorf("approach of %q belongs to another catalog: %w", ca.designation, ErrNotLinked)
}

// ApproachesOf returns the close approaches of an object in discovery order
func (c *Catalog) ApproachesOf(neo *NearEarthObject) []*CloseApproach {
	if neo == nil {
		return nil
	}
	out := make([]*CloseApproach, 0, len(neo.approaches))
	for _, idx := range neo.approaches {
		if idx < len(c.approaches) {
			out = append(out, c.approaches[idx])
		}
	}
	return out
}

// Serialize flattens a linked close approach together with its object
// It is the only way to serialize an approach; approaches from another catalog return ErrNotLinked
func (c *Catalog) Serialize(ca *CloseApproach) (ApproachRecord, error) {
	neo, err := c.NEOOf(ca)
	if err != nil {
		return ApproachRecord{}, err
	}
	return ca.record(neo)
}

// Query returns, in catalog order, the close approaches accepted by every matcher
func (c *Catalog) Query(matchers ...Matcher) []*CloseApproach {
	var out []*CloseApproach
	for _, ca := range c.approaches {
		neo := c.neos[ca.neo]
		if matchAll(matchers, ca, neo) {
			out = append(out, ca)
		}
	}
	return out
}

func matchAll(matchers []Matcher, ca *CloseApproach, neo *NearEarthObject) bool {
	for _, m := range matchers {
		if m != nil && !m.Match(ca, neo) {
			return false
		}
	}
	return true
}
