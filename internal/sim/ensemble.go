package sim

import (
	"context"
	"math/rand"
	"sync"

	"github.com/rs/zerolog"

	"github.com/san-kum/cosray/internal/particle"
)

// Ensemble propagates many statistically independent copies of a prototype
// candidate in parallel. Run i gets its own generator seeded with
// seedStart+i, so ensembles are reproducible run to run and runs never share
// random state.
type Ensemble struct {
	pipeline  *Pipeline
	numRuns   int
	seedStart int64
	log       zerolog.Logger
}

func NewEnsemble(p *Pipeline, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{
		pipeline:  p,
		numRuns:   numRuns,
		seedStart: seedStart,
		log:       zerolog.Nop(),
	}
}

func (e *Ensemble) SetLogger(l zerolog.Logger) { e.log = l }

// Run returns one result per candidate. Per-candidate module failures are
// recorded on the result, not returned; only context cancellation aborts the
// whole ensemble.
func (e *Ensemble) Run(ctx context.Context, proto *particle.Candidate, steps int) ([]*Result, error) {
	results := make([]*Result, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			seed := e.seedStart + int64(idx)
			rng := rand.New(rand.NewSource(seed))
			c := proto.Clone()

			// the shared pipeline carries no metrics during ensemble runs;
			// per-run workers only touch their own candidate and generator
			worker := NewPipeline(e.pipeline.modules...)
			traj, err := worker.Run(ctx, c, rng, steps)

			results[idx] = &Result{
				Seed:       seed,
				Candidate:  c,
				Trajectory: traj,
				Err:        err,
			}

			e.log.Debug().
				Int64("seed", seed).
				Int("steps", traj.Steps).
				Bool("active", c.Active).
				Msg("run finished")
		}(i)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}
