package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/eth2030/pairing/log"
	"github.com/eth2030/pairing/metrics"
)

func benchCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "bench",
		Usage: "time pairings, plain and with a shared precomputed table",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "iterations", Usage: "pairings per phase"},
			&cli.IntFlag{Name: "parallel", Usage: "goroutines sharing the precomputed table"},
			&cli.BoolFlag{Name: "metrics", Usage: "print the metrics registry in Prometheus text format"},
		},
		Action: func(cCtx *cli.Context) error {
			if cCtx.IsSet("iterations") {
				e.cfg.BenchIterations = cCtx.Int("iterations")
			}
			if cCtx.IsSet("parallel") {
				e.cfg.BenchParallel = cCtx.Int("parallel")
			}
			if err := e.cfg.Validate(); err != nil {
				return err
			}
			if err := e.bench(cCtx); err != nil {
				return err
			}
			if cCtx.Bool("metrics") {
				return metrics.DefaultRegistry.WriteText(e.stdout, "ibe")
			}
			return nil
		},
	}
}

// bench runs the plain pairing n times, then n precomputed pairings split
// across parallel goroutines that share one table. Latencies are reset
// first so the Miller loop means cover only this run.
func (e *env) bench(cCtx *cli.Context) error {
	eng, err := e.engine()
	if err != nil {
		return err
	}
	c := eng.Curve()
	n, par := e.cfg.BenchIterations, e.cfg.BenchParallel
	p := c.HashAndMapToG1([]byte("bench-g1"))
	q := eng.HashAndMapToG2([]byte("bench-g2"))

	metrics.DefaultRegistry.ResetLatencies()
	start := time.Now()
	for i := 0; i < n; i++ {
		if _, err := eng.Pairing(p, q); err != nil {
			return err
		}
	}
	plain := time.Since(start)
	plainLoop := metrics.MillerLoopTime.Mean()
	metrics.MillerLoopTime.Reset()

	table, err := eng.Precompute(q)
	if err != nil {
		return err
	}
	defer table.Release()

	start = time.Now()
	g, ctx := errgroup.WithContext(cCtx.Context)
	for w := 0; w < par; w++ {
		w := w
		g.Go(func() error {
			for i := w; i < n; i += par {
				if err := ctx.Err(); err != nil {
					return err
				}
				if _, err := eng.PrecomputedPairing(p, table); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	shared := time.Since(start)
	sharedLoop := metrics.MillerLoopTime.Mean()

	log.Info("Benchmark finished", "curve", c.String(), "iterations", n, "parallel", par)
	fmt.Fprintf(e.stdout, "curve          %s\n", c)
	fmt.Fprintf(e.stdout, "pairing        %d ops  %v/op  miller loop %v\n", n, plain/time.Duration(n), plainLoop)
	fmt.Fprintf(e.stdout, "precomputed    %d ops  %v/op  miller loop %v  (%d goroutines, wall clock)\n",
		n, shared/time.Duration(n), sharedLoop, par)
	return nil
}
