package main

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/lattice/internal/matrix"
)

func benchmarkCmd() *cli.Command {
	var (
		size    int64
		workers int64
		warmup  int64
		runs    int64
		seed    int64
	)

	return &cli.Command{
		Name:  "benchmark",
		Usage: "Compare sequential and concurrent multiply timings",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:        "size",
				Aliases:     []string{"n"},
				Usage:       "square matrix dimension",
				Value:       256,
				Destination: &size,
			},
			workersFlag(&workers),
			&cli.Int64Flag{
				Name:        "warmup",
				Usage:       "number of warmup runs",
				Value:       1,
				Destination: &warmup,
			},
			&cli.Int64Flag{
				Name:        "runs",
				Usage:       "number of timed runs",
				Value:       3,
				Destination: &runs,
			},
			&cli.Int64Flag{
				Name:        "seed",
				Usage:       "seed for the generated operands",
				Value:       1,
				Destination: &seed,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyWorkersConfig(cmd, LoadConfig(), &workers)
			n := int(size)
			w := resolveWorkers(workers)

			a := matrix.Random(n, n, seed)
			b := matrix.Random(n, n, seed+1)

			fmt.Println("=== Lattice Benchmark ===")
			fmt.Printf("CPUs: %d\n", runtime.NumCPU())
			fmt.Printf("Size: %dx%d, Workers: %d\n", n, n, w)

			oracle, err := matrix.Multiply(a, b)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: sequential multiply: %v", err), 1)
			}

			for i := int64(0); i < warmup; i++ {
				if _, err := matrix.MultiplyConcurrent(a, b, w); err != nil {
					return cli.Exit(fmt.Sprintf("error: warmup: %v", err), 1)
				}
			}

			seqAvg, err := timeRuns(int(runs), func() error {
				_, err := matrix.Multiply(a, b)
				return err
			})
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: sequential run: %v", err), 1)
			}

			pool, err := matrix.NewPool[float64](matrix.PoolConfig{Workers: w})
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: pool: %v", err), 1)
			}
			defer pool.Close()

			var last matrix.Matrix[float64]
			conAvg, err := timeRuns(int(runs), func() error {
				var runErr error
				last, runErr = pool.Multiply(a, b)
				return runErr
			})
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: concurrent run: %v", err), 1)
			}
			if !last.Equal(oracle) {
				return cli.Exit("error: concurrent result diverged from sequential oracle", 1)
			}

			fmt.Printf("Sequential: %v/run\n", seqAvg)
			fmt.Printf("Concurrent: %v/run (%.2fx)\n", conAvg, float64(seqAvg)/float64(conAvg))
			return nil
		},
	}
}

func timeRuns(runs int, fn func() error) (time.Duration, error) {
	if runs < 1 {
		runs = 1
	}
	start := time.Now()
	for i := 0; i < runs; i++ {
		if err := fn(); err != nil {
			return 0, err
		}
	}
	return time.Since(start) / time.Duration(runs), nil
}
