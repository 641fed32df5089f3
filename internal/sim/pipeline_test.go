package sim

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/san-kum/cosray/internal/particle"
	"github.com/san-kum/cosray/internal/vec"
)

// driftModule advances the candidate one unit along its direction per step.
type driftModule struct {
	calls      int
	failAt     int
	stopAt     int
}

func (d *driftModule) Description() string { return "drift" }

func (d *driftModule) Process(c *particle.Candidate, rng *rand.Rand) error {
	d.calls++
	if d.failAt > 0 && d.calls >= d.failAt {
		return errors.New("synthetic failure")
	}
	c.Position = c.Position.Add(c.Direction)
	c.CurrentStep = 1
	c.PathLength += 1
	if d.stopAt > 0 && d.calls >= d.stopAt {
		c.Deactivate()
	}
	return nil
}

func newTestCandidate() *particle.Candidate {
	return particle.New(1, 1, 1.0, vec.Zero(), vec.Vec3{Z: 1})
}

func TestPipelineRun(t *testing.T) {
	mod := &driftModule{}
	p := NewPipeline(mod)
	c := newTestCandidate()

	traj, err := p.Run(context.Background(), c, rand.New(rand.NewSource(1)), 10)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if traj.Steps != 10 {
		t.Errorf("expected 10 steps, got %d", traj.Steps)
	}
	if len(traj.Positions) != 11 || len(traj.Times) != 11 {
		t.Errorf("trajectory should include the initial state: %d positions", len(traj.Positions))
	}
	if mod.calls != 10 {
		t.Errorf("module called %d times, want 10", mod.calls)
	}
	if c.Position.Z != 10 {
		t.Errorf("candidate at z=%f, want 10", c.Position.Z)
	}
}

func TestPipeline_StopsOnDeactivation(t *testing.T) {
	mod := &driftModule{stopAt: 3}
	p := NewPipeline(mod)
	c := newTestCandidate()

	traj, err := p.Run(context.Background(), c, rand.New(rand.NewSource(1)), 10)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if traj.Steps != 3 {
		t.Errorf("expected 3 steps before deactivation, got %d", traj.Steps)
	}
	if c.Active {
		t.Error("candidate should be inactive")
	}
}

func TestPipeline_ModuleErrorWrapped(t *testing.T) {
	mod := &driftModule{failAt: 4}
	p := NewPipeline(mod)
	c := newTestCandidate()

	traj, err := p.Run(context.Background(), c, rand.New(rand.NewSource(1)), 10)
	if err == nil {
		t.Fatal("expected error")
	}

	var te *particle.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %T", err)
	}
	if te.Step != 3 {
		t.Errorf("failure attributed to step %d, want 3", te.Step)
	}
	if te.Module != "drift" {
		t.Errorf("failure attributed to module %q", te.Module)
	}
	if traj.Steps != 3 {
		t.Errorf("trajectory should cover completed steps only, got %d", traj.Steps)
	}
}

func TestPipeline_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPipeline(&driftModule{})
	_, err := p.Run(ctx, newTestCandidate(), rand.New(rand.NewSource(1)), 10)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

type countMetric struct {
	count int
}

func (m *countMetric) Name() string                            { return "count" }
func (m *countMetric) Observe(c *particle.Candidate, t float64) { m.count++ }
func (m *countMetric) Value() float64                          { return float64(m.count) }
func (m *countMetric) Reset()                                  { m.count = 0 }

func TestPipeline_Metrics(t *testing.T) {
	p := NewPipeline(&driftModule{})
	m := &countMetric{}
	p.AddMetric(m)

	_, err := p.Run(context.Background(), newTestCandidate(), rand.New(rand.NewSource(1)), 7)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if m.count != 7 {
		t.Errorf("metric observed %d steps, want 7", m.count)
	}

	vals := p.MetricValues()
	if vals["count"] != 7 {
		t.Errorf("MetricValues = %v", vals)
	}
}
