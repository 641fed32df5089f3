// Package sim drives candidates through an ordered list of transport
// modules, sequentially for single trajectories or in parallel for seeded
// ensembles.
package sim

import (
	"context"
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/san-kum/cosray/internal/particle"
	"github.com/san-kum/cosray/internal/unit"
	"github.com/san-kum/cosray/internal/vec"
)

// Pipeline applies its modules to a candidate once per simulation step.
// The module list is fixed before running; the pipeline itself keeps no
// per-candidate state, so one pipeline may serve many workers as long as
// metrics and observers are only attached for single-worker use.
type Pipeline struct {
	modules   []particle.Module
	metrics   []Metric
	observers []Observer
	log       zerolog.Logger
}

func NewPipeline(modules ...particle.Module) *Pipeline {
	return &Pipeline{
		modules: modules,
		log:     zerolog.Nop(),
	}
}

func (p *Pipeline) AddModule(m particle.Module)  { p.modules = append(p.modules, m) }
func (p *Pipeline) AddMetric(m Metric)           { p.metrics = append(p.metrics, m) }
func (p *Pipeline) AddObserver(o Observer)       { p.observers = append(p.observers, o) }
func (p *Pipeline) SetLogger(l zerolog.Logger)   { p.log = l }

// Run propagates the candidate for at most steps steps. It stops early when
// the candidate is deactivated, a module fails, or the context is canceled.
// Module failures are fatal for the candidate and returned wrapped with the
// step context; the trajectory covers everything completed before.
func (p *Pipeline) Run(ctx context.Context, c *particle.Candidate, rng *rand.Rand, steps int) (*Trajectory, error) {
	traj := &Trajectory{
		Positions: make([]vec.Vec3, 0, steps+1),
		Energies:  make([]float64, 0, steps+1),
		Times:     make([]float64, 0, steps+1),
	}
	traj.Positions = append(traj.Positions, c.Position)
	traj.Energies = append(traj.Energies, c.Energy)
	traj.Times = append(traj.Times, 0)

	for _, m := range p.metrics {
		m.Reset()
	}

	for i := 0; i < steps && c.Active; i++ {
		select {
		case <-ctx.Done():
			return traj, ctx.Err()
		default:
		}

		for _, m := range p.modules {
			if err := m.Process(c, rng); err != nil {
				p.log.Debug().Int("step", i).Str("module", m.Description()).Err(err).
					Msg("candidate lost")
				return traj, &particle.TransportError{
					Step:    i,
					Time:    c.PathLength / unit.CLight,
					Module:  m.Description(),
					Wrapped: err,
				}
			}
		}

		t := c.PathLength / unit.CLight
		for _, m := range p.metrics {
			m.Observe(c, t)
		}
		for _, o := range p.observers {
			o.OnStep(c, t)
		}

		traj.Positions = append(traj.Positions, c.Position)
		traj.Energies = append(traj.Energies, c.Energy)
		traj.Times = append(traj.Times, t)
		traj.Steps++
	}
	return traj, nil
}

// MetricValues snapshots the attached metrics by name.
func (p *Pipeline) MetricValues() map[string]float64 {
	vals := make(map[string]float64, len(p.metrics))
	for _, m := range p.metrics {
		vals[m.Name()] = m.Value()
	}
	return vals
}
