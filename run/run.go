/*
package run drives a flow run: events are generated and analyzed in shards,
one per worker, and the partial results are merged at the end.
*/
package run

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/phil-mansfield/flowfly"
	"github.com/phil-mansfield/flowfly/generator"
	"github.com/phil-mansfield/flowfly/mcep"
	"github.com/phil-mansfield/flowfly/sample"
	"github.com/phil-mansfield/flowfly/stats"
)

// Config describes a run.
type Config struct {
	Events int
	// Seed must already be resolved: zero is a valid, fixed seed here.
	Seed uint64

	Generator generator.Config
	Estimator mcep.Config
	// Correlator is nil if mixed harmonics are not evaluated.
	Correlator *mcep.CorrelatorConfig
}

// Result holds the merged statistics of a run.
type Result struct {
	Seed    uint64
	Events  int
	Workers int

	Estimator  *mcep.Estimator
	Correlator *mcep.Correlator
}

// Output returns every output of the run, the estimator's first.
func (r *Result) Output() *stats.List {
	l := stats.NewList()
	l.Extend(r.Estimator.Output())
	if r.Correlator != nil {
		l.Extend(r.Correlator.Output())
	}
	return l
}

type shard struct {
	events int
	gen    *generator.Generator
	est    *mcep.Estimator
	corr   *mcep.Correlator
}

// Shards returns the number of events handled by each of the workers.
// Events are split into contiguous blocks which differ in size by at most one.
func Shards(events, workers int) []int {
	n := make([]int, workers)
	for w := range n {
		n[w] = events / workers
		if w < events%workers {
			n[w]++
		}
	}
	return n
}

func newShard(con *Config, w, events int) (*shard, error) {
	gcon := con.Generator
	var err error
	if gcon.Particles, err = con.Generator.Particles.Clone(); err != nil {
		return nil, err
	}

	sh := &shard{events: events}
	if sh.gen, err = generator.New(gcon, sample.NewStream(con.Seed, uint64(w))); err != nil {
		return nil, err
	}
	if sh.est, err = mcep.New(con.Estimator); err != nil {
		return nil, err
	}
	if con.Correlator != nil {
		if sh.corr, err = mcep.NewCorrelator(*con.Correlator); err != nil {
			return nil, err
		}
	}
	return sh, nil
}

func (sh *shard) run(ctx context.Context) error {
	for i := 0; i < sh.events; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		e, err := sh.gen.Next()
		if err != nil {
			return err
		}
		sh.est.Make(e)
		if sh.corr != nil {
			sh.corr.Make(e)
		}
	}

	sh.est.Finish()
	if sh.corr != nil {
		sh.corr.Finish()
	}
	return nil
}

// Run generates and analyzes con.Events events split across workers
// goroutines. Worker w draws from the stream (con.Seed, w), so a run is
// reproduced exactly by the same seed and worker count. The first error
// stops every worker.
func Run(ctx context.Context, con Config, workers int) (*Result, error) {
	if workers < 1 {
		return nil, flowfly.Configf("Threads", "must be positive, got %d", workers)
	} else if con.Events < 1 {
		return nil, flowfly.Configf("Events", "must be positive, got %d", con.Events)
	} else if con.Generator.Particles == nil {
		return nil, flowfly.Configf("Particles", "no particle sampler given")
	}
	if workers > con.Events {
		workers = con.Events
	}

	// Everything is built before the first event, so configuration errors
	// are always reported before any work is done.
	shards := make([]*shard, workers)
	for w, n := range Shards(con.Events, workers) {
		var err error
		if shards[w], err = newShard(&con, w, n); err != nil {
			return nil, err
		}
	}

	log.Printf(
		"Running %d events on %d workers with seed %d.",
		con.Events, workers, con.Seed,
	)

	g, gctx := errgroup.WithContext(ctx)
	for w := range shards {
		sh := shards[w]
		g.Go(func() error { return sh.run(gctx) })
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("flow run aborted: %w", err)
	}

	res := &Result{
		Seed: con.Seed, Events: con.Events, Workers: workers,
		Estimator: shards[0].est, Correlator: shards[0].corr,
	}
	for _, sh := range shards[1:] {
		res.Estimator.Merge(sh.est)
		if res.Correlator != nil {
			res.Correlator.Merge(sh.corr)
		}
	}

	return res, nil
}
