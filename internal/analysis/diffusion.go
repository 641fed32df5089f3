// Package analysis derives transport diagnostics from finished ensemble
// runs: mean square displacement curves, running diffusion coefficients,
// and the anisotropy of the spreading cloud.
package analysis

import (
	"github.com/san-kum/cosray/internal/sim"
	"github.com/san-kum/cosray/internal/vec"
)

// Axis indices for AxisVariance and Anisotropy.
const (
	AxisX = iota
	AxisY
	AxisZ
)

// MeanSquareDisplacement computes <|x(t)-x(0)|²> across the ensemble at each
// snapshot. Trajectories are aligned by snapshot index; the curves are
// truncated to the shortest trajectory so every point averages over the full
// ensemble. Results without a trajectory are skipped.
func MeanSquareDisplacement(results []*sim.Result) (times, msd []float64) {
	n := commonLength(results)
	if n == 0 {
		return nil, nil
	}

	times = make([]float64, n)
	msd = make([]float64, n)
	count := 0
	for _, r := range results {
		if r == nil || r.Trajectory == nil {
			continue
		}
		origin := r.Trajectory.Positions[0]
		for i := 0; i < n; i++ {
			d := r.Trajectory.Positions[i].Sub(origin)
			msd[i] += d.Dot(d)
			times[i] += r.Trajectory.Times[i]
		}
		count++
	}
	for i := 0; i < n; i++ {
		msd[i] /= float64(count)
		times[i] /= float64(count)
	}
	return times, msd
}

// AxisVariance computes the ensemble variance of the displacement component
// along one axis at each snapshot.
func AxisVariance(results []*sim.Result, axis int) (times, variance []float64) {
	n := commonLength(results)
	if n == 0 {
		return nil, nil
	}

	times = make([]float64, n)
	variance = make([]float64, n)
	sums := make([]float64, n)
	count := 0
	for _, r := range results {
		if r == nil || r.Trajectory == nil {
			continue
		}
		origin := r.Trajectory.Positions[0]
		for i := 0; i < n; i++ {
			d := component(r.Trajectory.Positions[i].Sub(origin), axis)
			sums[i] += d
			variance[i] += d * d
			times[i] += r.Trajectory.Times[i]
		}
		count++
	}
	for i := 0; i < n; i++ {
		mean := sums[i] / float64(count)
		variance[i] = variance[i]/float64(count) - mean*mean
		times[i] /= float64(count)
	}
	return times, variance
}

// RunningDiffusion converts a variance curve into the running diffusion
// coefficient D(t) = var(t) / (2t). The first point (t=0) is reported as 0.
func RunningDiffusion(times, variance []float64) []float64 {
	d := make([]float64, len(variance))
	for i := range variance {
		if times[i] > 0 {
			d[i] = variance[i] / (2 * times[i])
		}
	}
	return d
}

// FitSlope returns the least-squares slope of vals against times. For a
// diffusive variance curve the slope equals 2D along one axis.
func FitSlope(times, vals []float64) float64 {
	n := len(times)
	if n < 2 || len(vals) != n {
		return 0
	}
	var sumT, sumV, sumTT, sumTV float64
	for i := 0; i < n; i++ {
		sumT += times[i]
		sumV += vals[i]
		sumTT += times[i] * times[i]
		sumTV += times[i] * vals[i]
	}
	denom := float64(n)*sumTT - sumT*sumT
	if denom == 0 {
		return 0
	}
	return (float64(n)*sumTV - sumT*sumV) / denom
}

// Anisotropy is the ratio of mean perpendicular to parallel variance at the
// final common snapshot, with the parallel direction taken along z. For a
// cloud spreading with D_perp = epsilon * D_par the ratio recovers epsilon.
func Anisotropy(results []*sim.Result) float64 {
	_, vx := AxisVariance(results, AxisX)
	_, vy := AxisVariance(results, AxisY)
	_, vz := AxisVariance(results, AxisZ)
	if len(vz) == 0 || vz[len(vz)-1] == 0 {
		return 0
	}
	last := len(vz) - 1
	return (vx[last] + vy[last]) / (2 * vz[last])
}

func commonLength(results []*sim.Result) int {
	n := 0
	for _, r := range results {
		if r == nil || r.Trajectory == nil || len(r.Trajectory.Positions) == 0 {
			continue
		}
		if l := len(r.Trajectory.Positions); n == 0 || l < n {
			n = l
		}
	}
	return n
}

func component(v vec.Vec3, axis int) float64 {
	switch axis {
	case AxisX:
		return v.X
	case AxisY:
		return v.Y
	default:
		return v.Z
	}
}
