package field

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/cosray/internal/vec"
)

// Turbulent superimposes transverse plane waves with random phases and
// propagation directions on a mean field. Wave amplitudes follow a power-law
// turbulence spectrum between the configured outer and inner scales.
type Turbulent struct {
	mean  vec.Vec3
	waves []planeWave
}

type planeWave struct {
	k     vec.Vec3 // wave vector
	e     vec.Vec3 // polarization, perpendicular to k
	amp   float64
	phase float64
}

// NewTurbulent builds a turbulent field realization with nWaves modes between
// wavelengths lMin and lMax, total RMS strength bRMS, and spectral index
// gamma (5/3 for a Kolmogorov spectrum). The realization is fully determined
// by the supplied generator.
func NewTurbulent(mean vec.Vec3, bRMS, lMin, lMax, gamma float64, nWaves int, rng *rand.Rand) (*Turbulent, error) {
	if lMin <= 0 || lMax <= lMin {
		return nil, fmt.Errorf("field: invalid wavelength range [%g, %g]", lMin, lMax)
	}
	if nWaves < 1 {
		return nil, fmt.Errorf("field: need at least one wave mode, got %d", nWaves)
	}

	t := &Turbulent{mean: mean, waves: make([]planeWave, nWaves)}

	// Log-spaced wavenumbers with spectral amplitudes A(k) ~ k^(-gamma/2).
	kMin := 2 * math.Pi / lMax
	kMax := 2 * math.Pi / lMin
	norm := 0.0
	for i := range t.waves {
		f := float64(i) / float64(max(nWaves-1, 1))
		k := kMin * math.Pow(kMax/kMin, f)

		dir := randUnit(rng)
		// polarization transverse to the propagation direction
		n, b := vec.Trihedron(dir)
		psi := 2 * math.Pi * rng.Float64()
		pol := n.Scale(math.Cos(psi)).Add(b.Scale(math.Sin(psi)))

		amp := math.Pow(k, -gamma/2)
		norm += amp * amp

		t.waves[i] = planeWave{
			k:     dir.Scale(k),
			e:     pol,
			amp:   amp,
			phase: 2 * math.Pi * rng.Float64(),
		}
	}

	// scale so the sum of mode variances gives bRMS^2
	s := bRMS / math.Sqrt(norm/2)
	for i := range t.waves {
		t.waves[i].amp *= s
	}
	return t, nil
}

func (t *Turbulent) At(pos vec.Vec3) (vec.Vec3, error) {
	b := t.mean
	for _, w := range t.waves {
		b = b.Add(w.e.Scale(w.amp * math.Cos(w.k.Dot(pos)+w.phase)))
	}
	return b, nil
}

func randUnit(rng *rand.Rand) vec.Vec3 {
	z := 2*rng.Float64() - 1
	phi := 2 * math.Pi * rng.Float64()
	r := math.Sqrt(1 - z*z)
	return vec.Vec3{X: r * math.Cos(phi), Y: r * math.Sin(phi), Z: z}
}
