package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/dreschagin/uptime-dashboard/internal/interfaces/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.NewRootCommand(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "uptimectl:", err)
		os.Exit(1)
	}
}
