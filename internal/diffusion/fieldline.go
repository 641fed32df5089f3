package diffusion

import (
	"github.com/san-kum/cosray/internal/field"
	"github.com/san-kum/cosray/internal/vec"
)

// Cash-Karp coefficients (RK45)
var (
	ckB = [6][5]float64{
		{},
		{1.0 / 5.0},
		{3.0 / 40.0, 9.0 / 40.0},
		{3.0 / 10.0, -9.0 / 10.0, 6.0 / 5.0},
		{-11.0 / 54.0, 5.0 / 2.0, -70.0 / 27.0, 35.0 / 27.0},
		{1631.0 / 55296.0, 175.0 / 512.0, 575.0 / 13824.0, 44275.0 / 110592.0, 253.0 / 4096.0},
	}

	// 5th order weights
	ckC = [6]float64{37.0 / 378.0, 0, 250.0 / 621.0, 125.0 / 594.0, 0, 512.0 / 1771.0}

	// embedded 4th order weights
	ckCS = [6]float64{2825.0 / 27648.0, 0, 18575.0 / 48384.0, 13525.0 / 55296.0, 277.0 / 14336.0, 1.0 / 4.0}
)

// FieldLine advects a position along the local magnetic field tangent with an
// embedded Cash-Karp 4(5) pair. It holds no mutable state; the only side
// effects are field samples.
type FieldLine struct {
	field field.Sampler
}

func NewFieldLine(f field.Sampler) *FieldLine {
	return &FieldLine{field: f}
}

// TryStep advances pos by the trial step h (meters) along the field line and
// returns the embedded 4th- and 5th-order position estimates. A failed field
// sample aborts the step; a vanishing field contributes no advection.
func (f *FieldLine) TryStep(pos vec.Vec3, h float64) (lo, hi vec.Vec3, err error) {
	var k [6]vec.Vec3

	for i := 0; i < 6; i++ {
		y := pos
		for j := 0; j < i; j++ {
			y = y.Add(k[j].Scale(ckB[i][j] * h))
		}
		b, err := f.field.At(y)
		if err != nil {
			return vec.Zero(), vec.Zero(), err
		}
		k[i] = b.Unit() // field-line tangent, zero where the field vanishes
	}

	lo, hi = pos, pos
	for i := 0; i < 6; i++ {
		lo = lo.Add(k[i].Scale(ckCS[i] * h))
		hi = hi.Add(k[i].Scale(ckC[i] * h))
	}
	return lo, hi, nil
}
