// Package particle holds the mutable per-candidate simulation state and the
// module contract every propagation and interaction process implements.
package particle

import (
	"math"
	"math/rand"

	"github.com/san-kum/cosray/internal/unit"
	"github.com/san-kum/cosray/internal/vec"
)

// Candidate is the state of one pseudo-particle walked through the pipeline.
// Positions and step sizes are in meters, energies in joules. A candidate is
// owned by exactly one worker at a time; modules mutate it in place.
type Candidate struct {
	Position     vec.Vec3
	Direction    vec.Vec3 // unit length after every module
	Energy       float64
	ChargeNumber int
	MassNumber   int
	Redshift     float64

	CurrentStep float64 // length of the last performed step
	NextStep    float64 // proposed size for the next step
	PathLength  float64 // accumulated trajectory length
	Active      bool

	// Previous holds the kinematic state before the last module ran, for
	// processes that need the pre-step energy or position.
	Previous Snapshot

	// Stats accumulates step-control diagnostics over the trajectory.
	Stats StepStats
}

// StepStats counts step-control outcomes. Forced steps were accepted at the
// minimum step size without meeting the error tolerance.
type StepStats struct {
	Accepted int
	Rejected int
	Forced   int
}

// Snapshot is the subset of candidate state recorded before each mutation.
type Snapshot struct {
	Position  vec.Vec3
	Direction vec.Vec3
	Energy    float64
}

// New creates an active candidate at the origin of its trajectory.
func New(z, a int, energy float64, pos, dir vec.Vec3) *Candidate {
	return &Candidate{
		Position:     pos,
		Direction:    dir.Unit(),
		Energy:       energy,
		ChargeNumber: z,
		MassNumber:   a,
		Active:       true,
	}
}

func (c *Candidate) Clone() *Candidate {
	cp := *c
	return &cp
}

// Record stores the current kinematic state as the previous snapshot. The
// propagation module calls this at the start of each step.
func (c *Candidate) Record() {
	c.Previous = Snapshot{Position: c.Position, Direction: c.Direction, Energy: c.Energy}
}

// Charge returns the electric charge in coulomb.
func (c *Candidate) Charge() float64 {
	return float64(c.ChargeNumber) * unit.EPlus
}

// IsCharged reports whether the candidate couples to the magnetic field.
func (c *Candidate) IsCharged() bool { return c.ChargeNumber != 0 }

// IsNucleus reports whether the candidate is a nucleon or nucleus.
func (c *Candidate) IsNucleus() bool { return c.MassNumber >= 1 }

// Rigidity returns the energy-to-charge ratio in volts, which sets the
// magnetic deflection strength. It is infinite for neutral candidates;
// callers check IsCharged first.
func (c *Candidate) Rigidity() float64 {
	q := c.Charge()
	if q == 0 {
		return math.Inf(1)
	}
	return c.Energy / q
}

// Deactivate removes the candidate from further propagation.
func (c *Candidate) Deactivate() { c.Active = false }

// Module is one process applied to a candidate per simulation step. The
// random generator is owned by the calling worker; deterministic modules
// ignore it.
type Module interface {
	Process(c *Candidate, rng *rand.Rand) error
	Description() string
}
