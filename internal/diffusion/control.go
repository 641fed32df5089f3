package diffusion

import (
	"math"

	"github.com/san-kum/cosray/internal/vec"
)

// Step-size control constants, shared between shrink and growth.
const (
	ctrlSafety   = 0.9
	ctrlMinScale = 0.1 // largest shrink per rejection
	ctrlMaxScale = 5.0 // largest growth per acceptance
)

// StepController decides whether an embedded-pair step is acceptable and
// proposes the next step size. All step sizes are lengths in meters.
type StepController struct {
	Tolerance float64
	MinStep   float64
	MaxStep   float64
}

// Verdict is the outcome of one step evaluation. Forced marks an acceptance
// at MinStep where the error still exceeds the tolerance; the step is taken
// anyway to guarantee forward progress, at documented reduced accuracy.
type Verdict struct {
	Accept bool
	Forced bool
	Next   float64
}

// Evaluate compares the low- and high-order position estimates for a trial
// step h. The error metric is the estimate difference relative to the step
// length. On rejection Next holds the shrunk retry step; on acceptance it
// holds the proposed size for the following step.
func (c StepController) Evaluate(lo, hi vec.Vec3, h float64) Verdict {
	errRel := hi.Sub(lo).Norm() / h
	r := errRel / c.Tolerance

	if r <= 1 {
		return Verdict{Accept: true, Next: c.grow(h, r)}
	}

	// error too large: shrink and retry, unless already at the floor
	if h <= c.MinStep {
		return Verdict{Accept: true, Forced: true, Next: c.MinStep}
	}
	hNew := h * math.Max(ctrlMinScale, ctrlSafety*math.Pow(r, -0.25))
	return Verdict{Next: math.Max(hNew, c.MinStep)}
}

func (c StepController) grow(h, r float64) float64 {
	scale := ctrlMaxScale
	if r > 0 {
		scale = math.Min(ctrlMaxScale, ctrlSafety*math.Pow(r, -0.2))
		scale = math.Max(scale, 1.0)
	}
	return math.Min(h*scale, c.MaxStep)
}
