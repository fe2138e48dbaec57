package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/lattice/internal/logger"
	"github.com/samcharles93/lattice/internal/matrix"
)

func multiplyCmd() *cli.Command {
	var (
		aPath      string
		bPath      string
		outPath    string
		workers    int64
		sequential bool
	)

	return &cli.Command{
		Name:  "multiply",
		Usage: "Multiply two matrices from .lmx or .json files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "a",
				Usage:       "path to the left operand",
				Required:    true,
				Destination: &aPath,
			},
			&cli.StringFlag{
				Name:        "b",
				Usage:       "path to the right operand",
				Required:    true,
				Destination: &bPath,
			},
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "result file (.lmx or .json); prints to stdout when omitted",
				Destination: &outPath,
			},
			workersFlag(&workers),
			&cli.BoolFlag{
				Name:        "sequential",
				Usage:       "use the single-threaded multiply",
				Destination: &sequential,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			applyWorkersConfig(cmd, LoadConfig(), &workers)

			a, err := loadMatrix(aPath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: load a: %v", err), 1)
			}
			b, err := loadMatrix(bPath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: load b: %v", err), 1)
			}

			start := time.Now()
			var result matrix.Matrix[float64]
			if sequential {
				result, err = matrix.Multiply(a, b)
			} else {
				result, err = matrix.MultiplyConcurrent(a, b, resolveWorkers(workers))
			}
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: multiply: %v", err), 1)
			}
			log.Debug("multiply finished",
				"a", fmt.Sprintf("%dx%d", a.R, a.C),
				"b", fmt.Sprintf("%dx%d", b.R, b.C),
				"elapsed", time.Since(start),
			)

			if outPath == "" {
				fmt.Println(result.String())
				return nil
			}
			if err := writeMatrix(outPath, result); err != nil {
				return cli.Exit(fmt.Sprintf("error: write result: %v", err), 1)
			}
			log.Info("result written", "path", outPath, "shape", fmt.Sprintf("%dx%d", result.R, result.C))
			return nil
		},
	}
}
