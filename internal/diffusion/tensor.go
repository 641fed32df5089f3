package diffusion

import "math"

// Tensor holds the principal diffusion coefficients (m²/s) in the local
// field-aligned frame: Par along the field tangent, Perp across it. The
// rotation into global coordinates happens when the stochastic increment is
// applied along the tangent trihedron.
type Tensor struct {
	Par  float64
	Perp float64
}

// TensorBuilder derives the anisotropic diffusion tensor from rigidity.
//
// The field-parallel coefficient follows a power law around a reference
// rigidity, DPar = Scale * Kappa0 * (|rig|/RigRef)^Alpha, and cross-field
// diffusion is suppressed by Epsilon: DPerp = Epsilon * DPar.
type TensorBuilder struct {
	Epsilon float64 // ratio of perpendicular to parallel diffusion
	Alpha   float64 // power-law index of the rigidity dependence
	Scale   float64 // normalization applied to Kappa0
	Kappa0  float64 // baseline diffusion coefficient at RigRef (m²/s)
	RigRef  float64 // reference rigidity (V)
}

// Galactic cosmic-ray propagation baseline: 6.1e24 m²/s at 4 GV.
const (
	defaultKappa0 = 6.1e24
	defaultRigRef = 4e9
)

// Build is a pure function of the rigidity; the same candidate state always
// yields the same tensor.
func (b TensorBuilder) Build(rig float64) Tensor {
	dPar := b.Scale * b.Kappa0 * math.Pow(math.Abs(rig)/b.RigRef, b.Alpha)
	return Tensor{Par: dPar, Perp: b.Epsilon * dPar}
}
