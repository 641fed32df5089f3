// Package diffusion implements stochastic transport of charged candidates
// through magnetic fields. The transport equation is solved per candidate by
// an Euler-Maruyama SDE scheme: deterministic advection along field lines
// via an embedded Cash-Karp 4(5) pair under adaptive step-size control, plus
// anisotropic Gaussian diffusion in the field-aligned frame.
package diffusion

import (
	"fmt"
	"math/rand"

	"github.com/san-kum/cosray/internal/field"
	"github.com/san-kum/cosray/internal/particle"
	"github.com/san-kum/cosray/internal/unit"
	"github.com/san-kum/cosray/internal/vec"
)

// SDE is the per-candidate transport module. Its configuration is immutable
// during propagation, so a single instance may serve many workers as long as
// each worker owns its candidates and random generator.
type SDE struct {
	field field.Sampler
	ctrl  StepController
	line  *FieldLine
	ten   TensorBuilder
	step  Stepper
}

// Parameter defaults. Steps are lengths; configurations given as propagation
// times convert via the speed of light.
const (
	DefaultTolerance = 1e-4
	DefaultMinStep   = 10 * unit.Parsec
	DefaultMaxStep   = 1 * unit.KiloParsec
	DefaultEpsilon   = 0.1
	DefaultAlpha     = 1.0 / 3.0 // Kolmogorov turbulence spectrum
	DefaultScale     = 1.0
)

// New creates a transport module for the given field with default
// parameters.
func New(f field.Sampler) (*SDE, error) {
	s := &SDE{
		field: f,
		ctrl: StepController{
			Tolerance: DefaultTolerance,
			MinStep:   DefaultMinStep,
			MaxStep:   DefaultMaxStep,
		},
		line: NewFieldLine(f),
		ten: TensorBuilder{
			Epsilon: DefaultEpsilon,
			Alpha:   DefaultAlpha,
			Scale:   DefaultScale,
			Kappa0:  defaultKappa0,
			RigRef:  defaultRigRef,
		},
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SDE) validate() error {
	if s.field == nil {
		return fmt.Errorf("diffusion: field sampler must not be nil")
	}
	if s.ctrl.MinStep <= 0 {
		return fmt.Errorf("diffusion: minStep must be positive, got %g", s.ctrl.MinStep)
	}
	if s.ctrl.MinStep > s.ctrl.MaxStep {
		return fmt.Errorf("diffusion: minStep %g exceeds maxStep %g", s.ctrl.MinStep, s.ctrl.MaxStep)
	}
	if s.ctrl.Tolerance <= 0 {
		return fmt.Errorf("diffusion: tolerance must be positive, got %g", s.ctrl.Tolerance)
	}
	if s.ten.Epsilon < 0 {
		return fmt.Errorf("diffusion: epsilon must be non-negative, got %g", s.ten.Epsilon)
	}
	return nil
}

// Process performs one transport step: it clamps the candidate's proposed
// step, iterates the adaptive field-line advection until a step is accepted,
// applies the diffusive increment, and writes position, direction, step
// bookkeeping and path length back onto the candidate.
//
// Field samples that fail deactivate the candidate and surface the error;
// the pipeline decides its disposition.
func (s *SDE) Process(c *particle.Candidate, rng *rand.Rand) error {
	c.Record()

	h := clamp(c.NextStep, s.ctrl.MinStep, s.ctrl.MaxStep)

	// Neutral candidates do not couple to the field: rectilinear motion.
	if !c.IsCharged() {
		c.Position = c.Position.Add(c.Direction.Scale(h))
		c.CurrentStep = h
		c.PathLength += h
		c.NextStep = s.ctrl.MaxStep
		c.Stats.Accepted++
		return nil
	}

	ten := s.ten.Build(c.Rigidity())

	// Propose/evaluate/retry until the controller accepts. Termination is
	// guaranteed: rejections shrink h toward MinStep, where acceptance is
	// forced.
	var lo, hi vec.Vec3
	var v Verdict
	for {
		var err error
		lo, hi, err = s.line.TryStep(c.Position, h)
		if err != nil {
			c.Deactivate()
			return fmt.Errorf("field-line step at %+v: %w", c.Position, err)
		}
		v = s.ctrl.Evaluate(lo, hi, h)
		if v.Accept {
			break
		}
		c.Stats.Rejected++
		h = v.Next
	}
	if v.Forced {
		c.Stats.Forced++
	}
	c.Stats.Accepted++

	// Tangent of the integrated field line; where the field vanished the
	// advection is zero and the previous direction carries the frame.
	tangent := hi.Sub(c.Position).Unit()
	if tangent.Norm() == 0 {
		tangent = c.Direction
	}

	pos := s.step.Apply(rng, hi, tangent, ten, h)
	if !pos.IsValid() {
		c.Deactivate()
		return fmt.Errorf("diffusion: non-finite position after stochastic step from %+v", c.Position)
	}

	// The new direction is the field tangent at the final position.
	b, err := s.field.At(pos)
	if err != nil {
		c.Deactivate()
		return fmt.Errorf("field sample at %+v: %w", pos, err)
	}
	dir := b.Unit()
	if dir.Norm() == 0 {
		dir = pos.Sub(c.Previous.Position).Unit()
		if dir.Norm() == 0 {
			dir = c.Direction
		}
	}

	c.Position = pos
	c.Direction = dir
	c.CurrentStep = h
	c.PathLength += h
	c.NextStep = v.Next
	return nil
}

// Description returns a human-readable summary of the module configuration.
func (s *SDE) Description() string {
	return fmt.Sprintf(
		"DiffusionSDE: tolerance %g, step [%g pc, %g pc], epsilon %g, alpha %g, scale %g",
		s.ctrl.Tolerance, s.ctrl.MinStep/unit.Parsec, s.ctrl.MaxStep/unit.Parsec,
		s.ten.Epsilon, s.ten.Alpha, s.ten.Scale)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
