package sim

import (
	"github.com/san-kum/cosray/internal/particle"
	"github.com/san-kum/cosray/internal/vec"
)

// Metric accumulates a scalar over one candidate's trajectory. Metrics are
// not synchronized; attach them only to pipelines run from a single worker.
type Metric interface {
	Name() string
	Observe(c *particle.Candidate, t float64)
	Value() float64
	Reset()
}

// Observer is notified after every completed step.
type Observer interface {
	OnStep(c *particle.Candidate, t float64)
}

// Trajectory records the history of one candidate through the pipeline.
type Trajectory struct {
	Positions []vec.Vec3
	Energies  []float64
	Times     []float64 // propagation time (s)
	Steps     int
}

// Result is the outcome of one ensemble run. Err is set when a module
// failed fatally for this candidate; the candidate is then inactive and the
// trajectory covers the steps completed before the failure.
type Result struct {
	Seed       int64
	Candidate  *particle.Candidate
	Trajectory *Trajectory
	Metrics    map[string]float64
	Err        error
}
