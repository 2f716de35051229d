package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/vaughan-dsouza/cloudportal/internal/cli"
	"github.com/vaughan-dsouza/cloudportal/internal/config"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.Execute(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
