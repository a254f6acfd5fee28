package search

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/geo2wiki/internal/geo"
)

// Params bounds one adaptive search. Radii are in meters. Params is built
// once before the loop and passed by value.
type Params struct {
	Center          geo.Coordinate
	InitialRadius   int
	MaxRadius       int
	RadiusIncrement int
	MinResults      int
	MaxResults      int
}

// Validate checks the invariants the loop relies on for termination.
func (p Params) Validate() error {
	if !p.Center.Valid() {
		return eris.Errorf("search: center %s out of range", p.Center)
	}
	if p.InitialRadius <= 0 {
		return eris.Errorf("search: initial radius must be positive, got %d", p.InitialRadius)
	}
	if p.MaxRadius < p.InitialRadius {
		return eris.Errorf("search: max radius %d below initial radius %d", p.MaxRadius, p.InitialRadius)
	}
	if p.RadiusIncrement <= 0 {
		return eris.Errorf("search: radius increment must be positive, got %d", p.RadiusIncrement)
	}
	if p.MinResults < 0 {
		return eris.Errorf("search: min results must not be negative, got %d", p.MinResults)
	}
	if p.MaxResults <= 0 {
		return eris.Errorf("search: max results must be positive, got %d", p.MaxResults)
	}
	return nil
}

// MaxIterations is the most iterations the loop can take for p.
func (p Params) MaxIterations() int {
	span := p.MaxRadius - p.InitialRadius
	n := span / p.RadiusIncrement
	if span%p.RadiusIncrement != 0 {
		n++
	}
	return n + 1
}
