package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/lattice/internal/version"
)

func versionCmd() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print the lattice version",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			fmt.Printf("lattice %s\n", version.String())
			return nil
		},
	}
}
