package main

import (
	"runtime"

	"github.com/urfave/cli/v3"
)

var (
	logLevel  string
	logFormat string
	debug     bool
)

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

func workersFlag(dest *int64) cli.Flag {
	return &cli.Int64Flag{
		Name:        "workers",
		Aliases:     []string{"w"},
		Usage:       "worker count (0 = number of CPUs)",
		Destination: dest,
	}
}

// resolveWorkers turns the flag/config value into a usable pool size.
func resolveWorkers(workers int64) int {
	if workers > 0 {
		return int(workers)
	}
	return runtime.GOMAXPROCS(0)
}
