package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/migenius/wait-for-realityserver/internal/app"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newApp(app.Run).RunContext(ctx, args); err != nil {
		fmt.Fprintf(os.Stderr, "wait-for-rs: %v\n", err)
		return 1
	}
	return 0
}

type runFunc func(ctx context.Context, opts app.Options) error

func newApp(runner runFunc) *cli.App {
	return &cli.App{
		Name:            "wait-for-rs",
		Usage:           "wait until a RealityServer answers, then optionally watch its connectivity",
		Version:         version,
		Flags:           newFlags(),
		HideHelpCommand: true,
		Action: func(ctx *cli.Context) error {
			if ctx.NArg() > 0 {
				return fmt.Errorf("unexpected arguments: %v", ctx.Args().Slice())
			}
			return runner(ctx.Context, parseOptions(ctx))
		},
	}
}
