package analysis

import (
	"math"
	"testing"

	"github.com/san-kum/cosray/internal/sim"
	"github.com/san-kum/cosray/internal/vec"
)

// lineResult builds a trajectory moving in a straight line from the origin,
// one snapshot per unit time.
func lineResult(dir vec.Vec3, steps int) *sim.Result {
	traj := &sim.Trajectory{Steps: steps}
	for i := 0; i <= steps; i++ {
		t := float64(i)
		traj.Positions = append(traj.Positions, dir.Scale(t))
		traj.Energies = append(traj.Energies, 1)
		traj.Times = append(traj.Times, t)
	}
	return &sim.Result{Trajectory: traj}
}

func TestMeanSquareDisplacement(t *testing.T) {
	results := []*sim.Result{
		lineResult(vec.Vec3{Z: 1}, 4),
		lineResult(vec.Vec3{Z: 3}, 4),
	}

	times, msd := MeanSquareDisplacement(results)
	if len(msd) != 5 {
		t.Fatalf("expected 5 snapshots, got %d", len(msd))
	}
	// <|x|²> = (t² + 9t²)/2 = 5t²
	for i, got := range msd {
		tt := times[i]
		want := 5 * tt * tt
		if math.Abs(got-want) > 1e-12*math.Max(want, 1) {
			t.Errorf("msd[%d] = %g, want %g", i, got, want)
		}
	}
}

func TestMeanSquareDisplacementTruncatesToShortest(t *testing.T) {
	results := []*sim.Result{
		lineResult(vec.Vec3{Z: 1}, 10),
		lineResult(vec.Vec3{Z: 1}, 3),
		nil,
		{Trajectory: nil},
	}

	_, msd := MeanSquareDisplacement(results)
	if len(msd) != 4 {
		t.Fatalf("expected truncation to 4 snapshots, got %d", len(msd))
	}
}

func TestAxisVariance(t *testing.T) {
	// symmetric pair: mean displacement zero, variance a² with a = t
	results := []*sim.Result{
		lineResult(vec.Vec3{X: 1}, 5),
		lineResult(vec.Vec3{X: -1}, 5),
	}

	times, varx := AxisVariance(results, AxisX)
	for i, got := range varx {
		want := times[i] * times[i]
		if math.Abs(got-want) > 1e-12*math.Max(want, 1) {
			t.Errorf("var_x[%d] = %g, want %g", i, got, want)
		}
	}

	_, varz := AxisVariance(results, AxisZ)
	for i, got := range varz {
		if got != 0 {
			t.Errorf("var_z[%d] = %g, want 0", i, got)
		}
	}
}

func TestRunningDiffusion(t *testing.T) {
	times := []float64{0, 1, 2, 3}
	variance := []float64{0, 4, 8, 12} // var = 4t, so D = 2

	d := RunningDiffusion(times, variance)
	if d[0] != 0 {
		t.Errorf("D(0) = %g, want 0", d[0])
	}
	for i := 1; i < len(d); i++ {
		if math.Abs(d[i]-2) > 1e-12 {
			t.Errorf("D[%d] = %g, want 2", i, d[i])
		}
	}
}

func TestFitSlope(t *testing.T) {
	times := []float64{0, 1, 2, 3, 4}
	vals := make([]float64, len(times))
	for i, tt := range times {
		vals[i] = 3*tt + 7
	}

	slope := FitSlope(times, vals)
	if math.Abs(slope-3) > 1e-12 {
		t.Errorf("slope = %g, want 3", slope)
	}

	if got := FitSlope([]float64{1}, []float64{2}); got != 0 {
		t.Errorf("degenerate fit = %g, want 0", got)
	}
}

func TestAnisotropy(t *testing.T) {
	s := math.Sqrt(10)
	results := []*sim.Result{
		lineResult(vec.Vec3{X: 1, Y: 1, Z: s}, 5),
		lineResult(vec.Vec3{X: -1, Y: -1, Z: -s}, 5),
	}

	// var_x = var_y = t², var_z = 10t² at every snapshot
	got := Anisotropy(results)
	if math.Abs(got-0.1) > 1e-12 {
		t.Errorf("anisotropy = %g, want 0.1", got)
	}
}

func TestEmptyEnsemble(t *testing.T) {
	times, msd := MeanSquareDisplacement(nil)
	if times != nil || msd != nil {
		t.Error("expected nil curves for empty ensemble")
	}
	if got := Anisotropy(nil); got != 0 {
		t.Errorf("anisotropy of empty ensemble = %g, want 0", got)
	}
}
