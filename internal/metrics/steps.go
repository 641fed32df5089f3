package metrics

import "github.com/san-kum/cosray/internal/particle"

// MeanStep averages the accepted step lengths over a trajectory.
type MeanStep struct {
	name    string
	sum     float64
	samples int
}

func NewMeanStep() *MeanStep { return &MeanStep{name: "mean_step"} }

func (m *MeanStep) Name() string { return m.name }

func (m *MeanStep) Observe(c *particle.Candidate, t float64) {
	m.sum += c.CurrentStep
	m.samples++
}

func (m *MeanStep) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanStep) Reset() {
	m.sum = 0
	m.samples = 0
}

// ForcedSteps reports how many steps were accepted at the minimum step size
// without meeting the error tolerance.
type ForcedSteps struct {
	name string
	last float64
}

func NewForcedSteps() *ForcedSteps { return &ForcedSteps{name: "forced_steps"} }

func (f *ForcedSteps) Name() string { return f.name }

func (f *ForcedSteps) Observe(c *particle.Candidate, t float64) {
	f.last = float64(c.Stats.Forced)
}

func (f *ForcedSteps) Value() float64 { return f.last }
func (f *ForcedSteps) Reset()         { f.last = 0 }
