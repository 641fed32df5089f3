package diffusion

import (
	"math"
	"math/rand"

	"github.com/san-kum/cosray/internal/unit"
	"github.com/san-kum/cosray/internal/vec"
)

// Stepper injects the stochastic part of the SDE: an Euler-Maruyama
// diffusion increment drawn in the field-aligned frame and rotated into
// global coordinates along the tangent trihedron.
type Stepper struct{}

// Apply adds correlated Gaussian displacements to the advected position.
// Each principal axis i receives sqrt(2*D_i*dt)*eta with independent
// standard-normal eta; the step length h (meters) is converted to the
// integration time dt = h/c. Consumes exactly three draws from rng.
func (Stepper) Apply(rng *rand.Rand, pos, tangent vec.Vec3, ten Tensor, h float64) vec.Vec3 {
	dt := h / unit.CLight
	n, b := vec.Trihedron(tangent)

	sigPar := math.Sqrt(2 * ten.Par * dt)
	sigPerp := math.Sqrt(2 * ten.Perp * dt)

	d := tangent.Scale(sigPar * rng.NormFloat64()).
		Add(n.Scale(sigPerp * rng.NormFloat64())).
		Add(b.Scale(sigPerp * rng.NormFloat64()))
	return pos.Add(d)
}
