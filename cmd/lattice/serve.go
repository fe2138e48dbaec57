package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/lattice/internal/api"
	"github.com/samcharles93/lattice/internal/logger"
	"github.com/samcharles93/lattice/internal/matrix"
	"github.com/samcharles93/lattice/internal/metrics"
)

func serveCmd() *cli.Command {
	var (
		addr        string
		workers     int64
		readTimeout time.Duration
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the multiply REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			workersFlag(&workers),
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read header timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			cfg := LoadConfig()
			applyWorkersConfig(cmd, cfg, &workers)
			applyServeConfig(cmd, cfg, &addr)

			counters := metrics.NewAtomic(matrix.PoolMetricKeys()...)
			pool, err := matrix.NewPool[float64](matrix.PoolConfig{
				Workers:  resolveWorkers(workers),
				Counters: counters,
			})
			if err != nil {
				return err
			}
			defer pool.Close()

			server := api.NewServer(pool, counters, log)
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)

			log.Info("starting server", "address", addr, "workers", pool.Workers())
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
