package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/dailydiet/internal/client/cli"
	"github.com/dmitrijs2005/dailydiet/internal/client/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, args, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "dietctl: %v\n", err)
		return 2
	}

	if err := cli.NewApp(cfg).Run(ctx, args); err != nil {
		fmt.Fprintf(os.Stderr, "dietctl: %v\n", err)
		if errors.Is(err, cli.ErrUsage) {
			return 2
		}
		return 1
	}
	return 0
}
