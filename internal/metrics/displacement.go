// Package metrics provides per-trajectory scalar metrics for single-worker
// pipelines.
package metrics

import (
	"github.com/san-kum/cosray/internal/particle"
	"github.com/san-kum/cosray/internal/vec"
)

// SquareDisplacement tracks the squared distance from a fixed origin. For a
// diffusive walk its growth rate is the effective diffusion coefficient.
type SquareDisplacement struct {
	name   string
	origin vec.Vec3
	last   float64
}

func NewSquareDisplacement(origin vec.Vec3) *SquareDisplacement {
	return &SquareDisplacement{name: "square_displacement", origin: origin}
}

func (s *SquareDisplacement) Name() string { return s.name }

func (s *SquareDisplacement) Observe(c *particle.Candidate, t float64) {
	d := c.Position.Sub(s.origin)
	s.last = d.Dot(d)
}

func (s *SquareDisplacement) Value() float64 { return s.last }
func (s *SquareDisplacement) Reset()         { s.last = 0 }

// EnergyLoss reports the relative energy lost since the first observation.
type EnergyLoss struct {
	name    string
	initial float64
	current float64
	samples int
}

func NewEnergyLoss() *EnergyLoss {
	return &EnergyLoss{name: "energy_loss"}
}

func (e *EnergyLoss) Name() string { return e.name }

func (e *EnergyLoss) Observe(c *particle.Candidate, t float64) {
	if e.samples == 0 {
		e.initial = c.Energy
	}
	e.current = c.Energy
	e.samples++
}

func (e *EnergyLoss) Value() float64 {
	if e.samples == 0 || e.initial == 0 {
		return 0
	}
	return (e.initial - e.current) / e.initial
}

func (e *EnergyLoss) Reset() {
	e.initial = 0
	e.current = 0
	e.samples = 0
}
